// Package httpclient はリモートバックエンドに対するusecase実装を提供する。
// 同一サーバーの別インスタンスと通信する前提で、エラーボディの
// detail文字列をローカルと同じエラー型に復元する
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"crm-app/src/config"
	"crm-app/src/domain"

	"github.com/sirupsen/logrus"
)

// TokenProvider issues bearer tokens for peer authentication
type TokenProvider interface {
	Token() (string, error)
}

// Client is the base HTTP client for the remote backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     *logrus.Logger
}

// NewClient creates a new remote backend client.
// tokensがnilの場合はAuthorizationヘッダーを付けない
func NewClient(cfg *config.ServiceConfig, tokens TokenProvider, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		tokens: tokens,
		logger: logger,
	}
}

// errorBody is the wire format for error responses
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to issue peer token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("url", endpoint).Warn("リモートバックエンドへの接続に失敗")
		return &domain.BackendUnavailableError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &domain.BackendUnavailableError{
			Cause: fmt.Errorf("server returned status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		var eb errorBody
		detail := strings.TrimSpace(string(raw))
		if err := json.Unmarshal(raw, &eb); err == nil && eb.Detail != "" {
			detail = eb.Detail
		}
		return parseDetail(resp.StatusCode, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// detail文字列とローカルのエラー型の対応
var (
	duplicatePattern  = regexp.MustCompile(`^(\w+) '(.+)' already exists \(ID: (\d+)\)$`)
	referencePattern  = regexp.MustCompile(`^(\w+) IDs not found: ([\d, ]+)$`)
	taskAbsentPattern = regexp.MustCompile(`^Task with ID (\d+) not found$`)
	absentPattern     = regexp.MustCompile(`^(\w+) ID (\d+) not found$`)
	completedPattern  = regexp.MustCompile(`^Task '(.+)' is already completed$`)
	incompletePattern = regexp.MustCompile(`^Task '(.+)' is already incomplete$`)
)

// parseDetail reconstructs the typed error a peer instance reported
func parseDetail(status int, detail string) error {
	if m := duplicatePattern.FindStringSubmatch(detail); m != nil {
		id, _ := strconv.Atoi(m[3])
		return &domain.DuplicateEntityError{Kind: m[1], Label: m[2], ExistingID: id}
	}
	if m := referencePattern.FindStringSubmatch(detail); m != nil {
		ids := []int{}
		for _, part := range strings.Split(m[2], ",") {
			id, err := strconv.Atoi(strings.TrimSpace(part))
			if err == nil {
				ids = append(ids, id)
			}
		}
		return &domain.ReferenceNotFoundError{Kind: m[1], MissingIDs: ids}
	}
	if m := taskAbsentPattern.FindStringSubmatch(detail); m != nil {
		id, _ := strconv.Atoi(m[1])
		return &domain.NotFoundError{Kind: "Task", ID: id}
	}
	if m := absentPattern.FindStringSubmatch(detail); m != nil {
		id, _ := strconv.Atoi(m[2])
		return &domain.NotFoundError{Kind: m[1], ID: id}
	}
	if m := completedPattern.FindStringSubmatch(detail); m != nil {
		return &domain.TaskStateError{Title: m[1], Completed: true}
	}
	if m := incompletePattern.FindStringSubmatch(detail); m != nil {
		return &domain.TaskStateError{Title: m[1], Completed: false}
	}
	if status == http.StatusNotFound {
		// 構造化できないdetailでも不在エラーとしての分類は保つ
		return &domain.NotFoundError{Detail: detail}
	}
	return &domain.ValidationError{Message: detail}
}
