package worker

import (
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"retail-backoffice/internal/config"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, cfg *config.Config) {
	purgeHandler := NewPurgeHandler(db, cfg)

	mux.HandleFunc(TypePurgeStale, purgeHandler.Handle)
}
