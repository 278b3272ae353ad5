package service

import (
	"github.com/jk278/lifetracker/internal/adapter"
	"github.com/jk278/lifetracker/internal/config"
	"github.com/jk278/lifetracker/internal/crypto"
	"github.com/jk278/lifetracker/internal/logger"
	"github.com/jk278/lifetracker/internal/store"
	"github.com/jk278/lifetracker/models"
)

type Services struct {
	ConfigService ConfigService
	SyncManager   SyncManager
	SyncJob       SyncJob
	Notifier      *Notifier
}

func NewServices(storages *store.Storages, cfg *config.ClientConfig, log *logger.Logger) *Services {
	keychain := crypto.NewKeyChainService()

	newTransport := func(syncCfg models.SyncConfig) adapter.RemoteTransport {
		return adapter.NewWebDAVTransport(adapter.WebDAVConfig{
			BaseURL:  syncCfg.RemoteURL,
			Dir:      syncCfg.RemoteDir,
			Username: syncCfg.Username,
			Password: syncCfg.Password,
			Timeout:  cfg.Adapter.RequestTimeout,
		})
	}

	cfgSvc := NewSyncConfigService(
		storages.Settings,
		keychain,
		cfg.App.SecretKey,
		cfg.Sync,
		newTransport,
		log,
	)

	newRound := func(syncCfg models.SyncConfig) roundDeps {
		transport := newTransport(syncCfg)
		return roundDeps{
			transport:  transport,
			classifier: NewConflictClassifier(storages.Records, transport, log),
			engine:     NewResolutionEngine(storages.Records, storages.Audit, transport, log),
		}
	}

	notifier := NewNotifier(16)
	manager := NewSyncManager(
		cfgSvc,
		NewChangeDetector(),
		storages.Records,
		storages.Manifest,
		newRound,
		cfg.Adapter,
		notifier,
		log,
	)

	return &Services{
		ConfigService: cfgSvc,
		SyncManager:   manager,
		SyncJob:       NewSyncJob(manager, log),
		Notifier:      notifier,
	}
}
