package service

import (
	"context"
	"strconv"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/clients"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/config"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/derived"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/events"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/repository"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

const anonymousActor = "anonymous"

// Backoffice is the action layer. Every write is sent to its backend and the
// affected slice is then reloaded; nothing is patched locally.
type Backoffice struct {
	products  clients.ProductClient
	users     clients.UserClient
	orders    clients.OrderClient
	store     *store.Store
	cache     repository.SnapshotCache
	audit     repository.AuditLog
	publisher events.Publisher
	config    *config.Config
	logger    *logging.LoggerV2
}

var _ events.Refresher = (*Backoffice)(nil)

// NewBackoffice creates the action layer. cache, audit and publisher may be
// nil; the matching feature is then skipped.
func NewBackoffice(
	products clients.ProductClient,
	users clients.UserClient,
	orders clients.OrderClient,
	st *store.Store,
	cache repository.SnapshotCache,
	audit repository.AuditLog,
	publisher events.Publisher,
	cfg *config.Config,
) *Backoffice {
	if cache == nil {
		cache = repository.NopSnapshotCache{}
	}
	if audit == nil {
		audit = repository.NopAuditLog{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Backoffice{
		products:  products,
		users:     users,
		orders:    orders,
		store:     st,
		cache:     cache,
		audit:     audit,
		publisher: publisher,
		config:    cfg,
		logger:    logging.NewLoggerV2("backoffice-service"),
	}
}

// State returns the current store snapshot.
func (s *Backoffice) State() store.State {
	return s.store.Snapshot()
}

// ClearError empties the error slot.
func (s *Backoffice) ClearError() {
	s.store.Dispatch(store.ErrorCleared{})
}

// Notices returns and clears the pending notifications.
func (s *Backoffice) Notices() []store.Notice {
	return s.store.DrainNotices()
}

// Dashboard computes the home-screen aggregates from the loaded lists.
func (s *Backoffice) Dashboard() derived.Dashboard {
	state := s.store.Snapshot()
	return derived.BuildDashboard(state.Products, state.Users, state.Orders, s.dashboardOptions())
}

func (s *Backoffice) dashboardOptions() derived.DashboardOptions {
	return derived.DashboardOptions{
		RecentOrders:      s.config.Dashboard.RecentOrders,
		TopProducts:       s.config.Dashboard.TopProducts,
		LowStockThreshold: s.config.Dashboard.LowStockThreshold,
	}
}

// UserNames maps every loaded user id to its display name.
func (s *Backoffice) UserNames() map[int64]string {
	return derived.DisplayNames(s.store.Snapshot().Users)
}

// AuditTrail lists recent audit entries.
func (s *Backoffice) AuditTrail(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if !s.config.Features.EnableAudit {
		return []models.AuditEntry{}, nil
	}
	return s.audit.List(ctx, limit)
}

// fail records err in the error slot and as an error notice.
func (s *Backoffice) fail(err error) {
	s.store.Fail(errors.Message(err))
}

// write describes one mutating call for auditing and event publishing.
type write struct {
	entity   string
	action   string
	entityID string
	slice    store.Slice
	success  string
}

// mutate runs call, then audits, publishes, invalidates the snapshot cache
// and reloads the affected slice. A reload failure after a successful call
// is returned as a RefreshError.
func (s *Backoffice) mutate(ctx context.Context, w write, call func(ctx context.Context) (interface{}, error)) error {
	result, err := call(ctx)
	s.recordAudit(ctx, w, err)
	if err != nil {
		s.logger.Error("Backend write failed", logging.Fields{
			"entity":    w.entity,
			"action":    w.action,
			"entity_id": w.entityID,
			"error":     err.Error(),
		})
		s.fail(err)
		return err
	}

	s.publish(ctx, w, result)

	if s.config.Features.EnableSnapshotCache {
		if err := s.cache.Invalidate(ctx, w.slice); err != nil {
			s.logger.Warn("Failed to invalidate snapshot", logging.Fields{
				"slice": w.slice,
				"error": err.Error(),
			})
		}
	}

	if err := s.reload(ctx, w.slice); err != nil {
		refreshErr := &errors.RefreshError{Slice: string(w.slice), Err: err}
		s.fail(refreshErr)
		return refreshErr
	}

	if w.success != "" {
		s.store.Notify(store.NoticeSuccess, w.success)
	}
	return nil
}

func (s *Backoffice) recordAudit(ctx context.Context, w write, callErr error) {
	if !s.config.Features.EnableAudit {
		return
	}
	entry := &models.AuditEntry{
		Actor:    actor(ctx),
		Entity:   w.entity,
		EntityID: w.entityID,
		Action:   w.action,
		Outcome:  models.AuditOutcomeSuccess,
	}
	if callErr != nil {
		entry.Outcome = models.AuditOutcomeFailure
		entry.Detail = errors.Message(callErr)
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to record audit entry", logging.Fields{
			"entity": w.entity,
			"action": w.action,
			"error":  err.Error(),
		})
	}
}

func (s *Backoffice) publish(ctx context.Context, w write, payload interface{}) {
	if !s.config.Features.EnableEvents {
		return
	}
	event, err := events.NewEvent(ctx, w.entity, w.action, w.entityID, actor(ctx), payload)
	if err == nil {
		err = s.publisher.Publish(ctx, event)
	}
	if err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish event", logging.Fields{
			"entity": w.entity,
			"action": w.action,
			"error":  err.Error(),
		})
	}
}

// actor names the caller for audit entries: the token's email, subject or
// user id, else "anonymous".
func actor(ctx context.Context) string {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return anonymousActor
	}
	claims, err := auth.ParseClaims(token)
	if err != nil {
		return anonymousActor
	}
	switch {
	case claims.Email != "":
		return claims.Email
	case claims.Subject != "":
		return claims.Subject
	case claims.UserID > 0:
		return "user:" + strconv.FormatInt(claims.UserID, 10)
	}
	return anonymousActor
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
