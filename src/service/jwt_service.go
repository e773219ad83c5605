package service

import (
	"fmt"
	"time"

	"crm-app/src/config"

	"github.com/golang-jwt/jwt/v5"
)

// PeerClaims ピア間通信トークンのクレーム
type PeerClaims struct {
	Type string `json:"type"` // 常に "peer"
	jwt.RegisteredClaims
}

// JWTService ピア認証トークンの発行と検証。
// ローカルCLIとリモートサーバーが共有シークレットで相互に信頼する
type JWTService interface {
	GeneratePeerToken() (string, error)
	ValidatePeerToken(tokenString string) (*PeerClaims, error)
	Token() (string, error)
}

type jwtService struct {
	config *config.Config
}

// NewJWTService JWT管理サービスを作成
func NewJWTService(cfg *config.Config) JWTService {
	return &jwtService{config: cfg}
}

// GeneratePeerToken ピアトークンを生成
func (s *jwtService) GeneratePeerToken() (string, error) {
	now := time.Now()
	claims := &PeerClaims{
		Type: "peer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Auth.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "crm-app",
			Subject:   "peer",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Auth.PeerSecret))
}

// ValidatePeerToken ピアトークンを検証
func (s *jwtService) ValidatePeerToken(tokenString string) (*PeerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PeerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Auth.PeerSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*PeerClaims); ok && token.Valid {
		if claims.Type != "peer" {
			return nil, fmt.Errorf("invalid token type")
		}
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// Token httpclient.TokenProviderとして使うための別名
func (s *jwtService) Token() (string, error) {
	return s.GeneratePeerToken()
}
