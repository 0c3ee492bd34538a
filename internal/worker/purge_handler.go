package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"retail-backoffice/internal/config"
	"retail-backoffice/internal/repository"
	"retail-backoffice/internal/utils"
)

const TypePurgeStale = "import:purge_stale"

func NewPurgeStaleTask() *asynq.Task {
	return asynq.NewTask(TypePurgeStale, nil)
}

// PurgeHandler removes staged jobs that were never resumed. A detect call
// that the operator abandons leaves a job and its staged rows behind; this
// sweeps them once they outlive the retention window.
type PurgeHandler struct {
	importRepo *repository.ImportRepository
	cfg        *config.Config
	log        *logrus.Logger
}

func NewPurgeHandler(db *sqlx.DB, cfg *config.Config) *PurgeHandler {
	return &PurgeHandler{
		importRepo: repository.NewImportRepository(db, cfg.BatchSize),
		cfg:        cfg,
		log:        utils.GetLogger(),
	}
}

func (h *PurgeHandler) Handle(ctx context.Context, task *asynq.Task) error {
	hours := int(h.cfg.StagedJobTTL.Hours())
	if hours < 1 {
		hours = 1
	}

	purged, err := h.importRepo.PurgeStaleJobs(hours)
	if err != nil {
		h.log.WithError(err).Error("Failed to purge stale import jobs")
		return err
	}

	if purged > 0 {
		h.log.WithFields(logrus.Fields{
			"purged":       purged,
			"older_than_h": hours,
		}).Info("Purged stale import jobs")
	}
	return nil
}
