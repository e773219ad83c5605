package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-app/src/config"
	"crm-app/src/database"
	"crm-app/src/infrastructure/repository"
	"crm-app/src/interface/handler"
	"crm-app/src/logger"
	"crm-app/src/middleware"
	"crm-app/src/routes"
	"crm-app/src/schema"
	"crm-app/src/service"
	"crm-app/src/storage"
	"crm-app/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API server backed by the local database.
The server always operates on its own database; SERVICE_URL is ignored here
so that two instances never proxy to each other in a loop.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// 設定を読み込み
	cfg := config.LoadConfig()

	// ロガーを初期化
	if err := logger.InitLogger(cfg.Log.Directory, cfg.Log.Level); err != nil {
		return err
	}
	defer logger.CloseLogger()

	logger.Log.Info("アプリケーションを開始しています")

	// 永続型とワイヤ型の対応を起動時に検証する。
	// ここで不一致があれば起動を中断する
	if err := schema.Validate(); err != nil {
		logger.Log.WithError(err).Fatal("スキーマ整合性チェックに失敗")
	}

	// S3アップローダーを初期化（設定が有効な場合）
	var uploader *storage.LogUploader
	if cfg.Log.UploadEnabled {
		var err error
		uploader, err = storage.NewLogUploader(&cfg.S3, logger.Log)
		if err != nil {
			logger.Log.WithError(err).Error("S3アップローダーの初期化に失敗")
		} else {
			// 定期的なログアップロードを開始
			uploader.StartPeriodicUpload(cfg.Log.Directory, cfg.Log.UploadInterval, cfg.Log.UploadMaxAge)
		}
	}

	// データベースを開いてスキーマを適用
	db, err := database.NewDB(&cfg.Database, logger.Log)
	if err != nil {
		logger.Log.WithError(err).Fatal("データベースの初期化に失敗")
	}
	defer db.Close()

	if err := db.Migrate(cmd.Context()); err != nil {
		logger.Log.WithError(err).Fatal("スキーマの適用に失敗")
	}

	// サーバーは常にローカルのリポジトリを使う
	contactUsecase := usecase.NewContactUsecase(repository.NewContactRepository(db, logger.Log))
	organizationUsecase := usecase.NewOrganizationUsecase(repository.NewOrganizationRepository(db, logger.Log))
	noteUsecase := usecase.NewNoteUsecase(repository.NewNoteRepository(db, logger.Log))
	taskUsecase := usecase.NewTaskUsecase(repository.NewTaskRepository(db, logger.Log))

	// Ginルーターを初期化
	r := gin.New()
	r.Use(gin.Recovery())

	// NoRouteハンドラー（404）
	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, gin.H{"detail": "Route not found"})
	})

	// NoMethodハンドラー（405）
	r.NoMethod(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("405: サポートされていないメソッド")
		c.JSON(http.StatusMethodNotAllowed, gin.H{"detail": "Method not allowed"})
	})

	// ピア認証はシークレットが設定されている場合のみ有効
	var peerAuth gin.HandlerFunc
	if cfg.Auth.PeerSecret != "" {
		peerAuth = middleware.PeerAuthMiddleware(service.NewJWTService(cfg))
		logger.Log.Info("ピア認証を有効にしました")
	}

	health := func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
			"driver":    db.Driver(),
		})
	}

	routes.SetupRoutes(r, routes.Handlers{
		Contact:      handler.NewContactHandler(contactUsecase, logger.Log),
		Organization: handler.NewOrganizationHandler(organizationUsecase, logger.Log),
		Note:         handler.NewNoteHandler(noteUsecase, logger.Log),
		Task:         handler.NewTaskHandler(taskUsecase, logger.Log),
		Health:       health,
	}, peerAuth)

	// グレースフルシャットダウンの設定
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Log.Info("シャットダウンシグナルを受信しました")

		// 最後のログアップロードを実行
		if uploader != nil {
			logger.Log.Info("最後のログアップロードを実行中...")
			if err := uploader.UploadOldLogs(cfg.Log.Directory, 0); err != nil {
				logger.Log.WithError(err).Error("最後のログアップロードに失敗")
			}
		}

		db.Close()
		logger.CloseLogger()
		os.Exit(0)
	}()

	// サーバーを起動
	serverAddr := ":" + cfg.Server.Port
	logger.Log.WithField("port", cfg.Server.Port).Info("サーバーを開始します")

	if err := r.Run(serverAddr); err != nil {
		logger.Log.WithError(err).Fatal("サーバーの起動に失敗")
	}
	return nil
}
