package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

func newAuditLog(t *testing.T) (*PostgresAuditLog, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresAuditLog(db, logging.NewLoggerV2("audit-test")), mock
}

func TestPostgresAuditLog_Record(t *testing.T) {
	log, mock := newAuditLog(t)
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO backoffice_audit")).
		WithArgs("admin@example.com", "product", "42", "update_stock", "success", nil, created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	entry := &models.AuditEntry{
		Actor:     "admin@example.com",
		Entity:    "product",
		EntityID:  "42",
		Action:    "update_stock",
		Outcome:   models.AuditOutcomeSuccess,
		CreatedAt: created,
	}
	require.NoError(t, log.Record(context.Background(), entry))

	assert.Equal(t, int64(7), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditLog_RecordDefaultsTimestamp(t *testing.T) {
	log, mock := newAuditLog(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO backoffice_audit")).
		WithArgs("anonymous", "order", nil, "create", "failure", "HTTP 500", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	entry := &models.AuditEntry{
		Actor:   "anonymous",
		Entity:  "order",
		Action:  "create",
		Outcome: models.AuditOutcomeFailure,
		Detail:  "HTTP 500",
	}
	require.NoError(t, log.Record(context.Background(), entry))

	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditLog_RecordError(t *testing.T) {
	log, mock := newAuditLog(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO backoffice_audit")).
		WillReturnError(assert.AnError)

	err := log.Record(context.Background(), &models.AuditEntry{Actor: "a", Entity: "user", Action: "delete"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgresAuditLog_List(t *testing.T) {
	log, mock := newAuditLog(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "actor", "entity", "entity_id", "action", "outcome", "detail", "created_at"}).
		AddRow(2, "admin", "order", "9", "cancel", "success", nil, now).
		AddRow(1, "admin", "user", nil, "create", "failure", "Duplicate email", now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM backoffice_audit")).
		WithArgs(defaultAuditListLimit).
		WillReturnRows(rows)

	entries, err := log.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "9", entries[0].EntityID)
	assert.Empty(t, entries[0].Detail)
	assert.Equal(t, models.AuditOutcomeFailure, entries[1].Outcome)
	assert.Equal(t, "Duplicate email", entries[1].Detail)
	assert.Empty(t, entries[1].EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAuditLog_EnsureSchema(t *testing.T) {
	log, mock := newAuditLog(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS backoffice_audit")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, log.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
