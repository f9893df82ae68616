package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// pgRecorder persists audit events in Postgres. Schema lives in
// migrations/0001_audit_log.sql.
type pgRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to the DSN and verifies the connection.
func NewPostgresRecorder(ctx context.Context, dsn string) (Recorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &pgRecorder{pool: pool}, nil
}

func (r *pgRecorder) Record(ctx context.Context, event string, fields map[string]any) {
	payload, err := json.Marshal(fields)
	if err != nil {
		payload = []byte("{}")
	}

	// Best-effort: a broken audit sink must not break logins.
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	_, err = r.pool.Exec(insertCtx,
		`INSERT INTO audit_log (event, occurred_at, fields) VALUES ($1, $2, $3)`,
		event, time.Now().UTC(), payload,
	)
	if err != nil {
		logger.From(ctx).Warn("audit insert failed",
			logger.Component("audit"),
			logger.String("event", event),
			logger.Err(err),
		)
	}
}

func (r *pgRecorder) Close() { r.pool.Close() }
