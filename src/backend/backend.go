// Package backend は設定からローカル・リモートどちらのバックエンドを
// 使うかを一度だけ決め、以降すべての操作を同じ側へ向ける
package backend

import (
	"crm-app/src/config"
	"crm-app/src/database"
	"crm-app/src/infrastructure/httpclient"
	"crm-app/src/infrastructure/repository"
	"crm-app/src/service"
	"crm-app/src/usecase"

	"github.com/sirupsen/logrus"
)

// Mode identifies which backend was selected
type Mode string

const (
	// ModeLocal ローカルのデータベースを直接操作する
	ModeLocal Mode = "local"
	// ModeRemote リモートサービスへHTTPで委譲する
	ModeRemote Mode = "remote"
)

// Backend bundles the usecase set for the selected mode
type Backend struct {
	Mode          Mode
	Contacts      usecase.ContactUsecase
	Organizations usecase.OrganizationUsecase
	Notes         usecase.NoteUsecase
	Tasks         usecase.TaskUsecase
}

// New selects the backend once based on configuration.
// SERVICE_URLが設定されていればリモート、なければローカル。
// リモートモードではdbはnilでよい
func New(cfg *config.Config, db *database.DB, logger *logrus.Logger) *Backend {
	if cfg.IsRemote() {
		var tokens httpclient.TokenProvider
		if cfg.Auth.PeerSecret != "" {
			tokens = service.NewJWTService(cfg)
		}
		client := httpclient.NewClient(&cfg.Service, tokens, logger)

		logger.WithField("service_url", cfg.Service.URL).Info("リモートバックエンドを選択しました")
		return &Backend{
			Mode:          ModeRemote,
			Contacts:      httpclient.NewContactClient(client),
			Organizations: httpclient.NewOrganizationClient(client),
			Notes:         httpclient.NewNoteClient(client),
			Tasks:         httpclient.NewTaskClient(client),
		}
	}

	logger.WithField("driver", db.Driver()).Info("ローカルバックエンドを選択しました")
	return &Backend{
		Mode:          ModeLocal,
		Contacts:      usecase.NewContactUsecase(repository.NewContactRepository(db, logger)),
		Organizations: usecase.NewOrganizationUsecase(repository.NewOrganizationRepository(db, logger)),
		Notes:         usecase.NewNoteUsecase(repository.NewNoteRepository(db, logger)),
		Tasks:         usecase.NewTaskUsecase(repository.NewTaskRepository(db, logger)),
	}
}
