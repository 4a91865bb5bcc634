package repository

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// SnapshotCache keeps the last loaded list of each slice between restarts.
// A miss is reported as (false, nil).
type SnapshotCache interface {
	Load(ctx context.Context, slice store.Slice, out interface{}) (bool, error)
	Save(ctx context.Context, slice store.Slice, v interface{}) error
	Invalidate(ctx context.Context, slices ...store.Slice) error
}

// AuditLog records mutating back-office actions.
type AuditLog interface {
	Record(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

var (
	_ SnapshotCache = (*RedisSnapshotCache)(nil)
	_ SnapshotCache = NopSnapshotCache{}
	_ AuditLog      = (*PostgresAuditLog)(nil)
	_ AuditLog      = NopAuditLog{}
)

// NopSnapshotCache is used when the snapshot cache is disabled. Every load misses.
type NopSnapshotCache struct{}

func (NopSnapshotCache) Load(ctx context.Context, slice store.Slice, out interface{}) (bool, error) {
	return false, nil
}

func (NopSnapshotCache) Save(ctx context.Context, slice store.Slice, v interface{}) error {
	return nil
}

func (NopSnapshotCache) Invalidate(ctx context.Context, slices ...store.Slice) error {
	return nil
}

// NopAuditLog is used when auditing is disabled.
type NopAuditLog struct{}

func (NopAuditLog) Record(ctx context.Context, entry *models.AuditEntry) error {
	return nil
}

func (NopAuditLog) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return []models.AuditEntry{}, nil
}
