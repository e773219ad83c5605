// Package cli はコマンドラインサーフェスを提供する。
// 各サブコマンドはHTTP APIと同じusecase層をディスパッチャー経由で呼ぶ
package cli

import (
	"fmt"
	"os"

	"crm-app/src/backend"
	"crm-app/src/config"
	"crm-app/src/database"
	"crm-app/src/logger"

	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crm",
	Short: "Contact, organization, note, and task management",
	Long: `A CRM tool managing contacts, organizations, notes, and tasks
with many-to-many tagging between them. Operations run against the local
database, or against a remote instance when SERVICE_URL is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// appContext CLIの1回の実行が使うリソース一式
type appContext struct {
	cfg     *config.Config
	backend *backend.Backend
	db      *database.DB
}

// Close releases the database connection when one was opened
func (a *appContext) Close() {
	if a.db != nil {
		a.db.Close()
	}
	logger.CloseLogger()
}

// newAppContext 設定を読み込み、バックエンドを一度だけ選択する。
// ローカルモードではスキーマも適用する
func newAppContext(cmd *cobra.Command) (*appContext, error) {
	cfg := config.LoadConfig()

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	if err := logger.InitCLILogger(cfg.Log.Directory, level); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app := &appContext{cfg: cfg}

	if !cfg.IsRemote() {
		db, err := database.NewDB(&cfg.Database, logger.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Migrate(cmd.Context()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
		app.db = db
	}

	app.backend = backend.New(cfg, app.db, logger.Log)
	return app, nil
}

// fail コマンドの失敗を出力する。プロセスは落とさない
func fail(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
}

// truncate 表形式出力用にタイトルを切り詰める
func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
