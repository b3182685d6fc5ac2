package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"shophub/pkg/utils"
)

// PostgresRepo stores records in the activities table.
// actor_id is NULL for anonymous requests; meta is JSONB.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

// EnsureSchema creates the table and indexes if they do not exist.
func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const table = `
CREATE TABLE IF NOT EXISTS activities (
	id          TEXT PRIMARY KEY,
	actor_id    TEXT,
	action      TEXT NOT NULL,
	method      TEXT NOT NULL,
	path        TEXT,
	ip          TEXT,
	user_agent  TEXT,
	status_code INTEGER,
	meta        JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)
`
		if _, err := tx.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("create activities: %w", err)
		}
		const byActor = `CREATE INDEX IF NOT EXISTS activities_actor_created_idx ON activities (actor_id, created_at DESC)`
		if _, err := tx.ExecContext(ctx, byActor); err != nil {
			return fmt.Errorf("create activities actor index: %w", err)
		}
		const byCreated = `CREATE INDEX IF NOT EXISTS activities_created_idx ON activities (created_at)`
		if _, err := tx.ExecContext(ctx, byCreated); err != nil {
			return fmt.Errorf("create activities created index: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepo) Insert(ctx context.Context, rec Record) error {
	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	const q = `
INSERT INTO activities (id, actor_id, action, method, path, ip, user_agent, status_code, meta, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING
`
	_, err = r.db.ExecContext(ctx, q,
		rec.ID,
		nullString(rec.ActorID),
		rec.Action,
		rec.Method,
		rec.Path,
		nullString(rec.SourceAddress),
		nullString(rec.UserAgent),
		rec.StatusCode,
		meta,
		rec.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) ListByActor(ctx context.Context, actorID string, limit int) ([]Record, error) {
	const q = `
SELECT id, actor_id, action, method, path, ip, user_agent, status_code, meta, created_at
FROM activities
WHERE actor_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, actorID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var (
			rec                        Record
			actor, path, ip, userAgent sql.NullString
			status                     sql.NullInt64
			meta                       []byte
		)
		if err := rows.Scan(
			&rec.ID,
			&actor,
			&rec.Action,
			&rec.Method,
			&path,
			&ip,
			&userAgent,
			&status,
			&meta,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.ActorID = actor.String
		rec.Path = path.String
		rec.SourceAddress = ip.String
		rec.UserAgent = userAgent.String
		rec.StatusCode = int(status.Int64)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode meta for %s: %w", rec.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
