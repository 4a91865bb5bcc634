package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

const defaultAuditListLimit = 50

const auditSchema = `
	CREATE TABLE IF NOT EXISTS backoffice_audit (
		id         BIGSERIAL PRIMARY KEY,
		actor      TEXT        NOT NULL,
		entity     TEXT        NOT NULL,
		entity_id  TEXT,
		action     TEXT        NOT NULL,
		outcome    TEXT        NOT NULL,
		detail     TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresAuditLog implements AuditLog using PostgreSQL.
type PostgresAuditLog struct {
	db     *sql.DB
	logger *logging.LoggerV2
}

// NewPostgresAuditLog creates a new PostgreSQL audit log.
func NewPostgresAuditLog(db *sql.DB, logger *logging.LoggerV2) *PostgresAuditLog {
	return &PostgresAuditLog{
		db:     db,
		logger: logger,
	}
}

// EnsureSchema creates the audit table if it does not exist.
func (r *PostgresAuditLog) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, auditSchema)
	return err
}

// Record inserts entry and fills in its ID and CreatedAt.
func (r *PostgresAuditLog) Record(ctx context.Context, entry *models.AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO backoffice_audit (
			actor, entity, entity_id, action, outcome, detail, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.Actor,
		entry.Entity,
		nullString(entry.EntityID),
		entry.Action,
		entry.Outcome,
		nullString(entry.Detail),
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to record audit entry", logging.Fields{
			"entity": entry.Entity,
			"action": entry.Action,
			"error":  err.Error(),
		})
		return err
	}

	r.logger.Debug("Audit entry recorded", logging.Fields{
		"audit_id": entry.ID,
		"entity":   entry.Entity,
		"action":   entry.Action,
		"outcome":  entry.Outcome,
	})
	return nil
}

// List returns the most recent entries, newest first.
func (r *PostgresAuditLog) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditListLimit
	}

	query := `
		SELECT id, actor, entity, entity_id, action, outcome, detail, created_at
		FROM backoffice_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0)
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *PostgresAuditLog) scanEntry(rows *sql.Rows) (*models.AuditEntry, error) {
	var entry models.AuditEntry
	var entityID, detail sql.NullString

	err := rows.Scan(
		&entry.ID,
		&entry.Actor,
		&entry.Entity,
		&entityID,
		&entry.Action,
		&entry.Outcome,
		&detail,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if entityID.Valid {
		entry.EntityID = entityID.String
	}
	if detail.Valid {
		entry.Detail = detail.String
	}
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
