package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/store"
)

// loadUsers returns the list this call fetched, not the store snapshot, which
// a concurrent load may have replaced.
func (s *Backoffice) loadUsers(ctx context.Context, q store.Query) ([]models.User, error) {
	data, err := s.load(ctx, store.SliceUsers, q)
	if err != nil {
		return nil, err
	}
	items, _ := data.([]models.User)
	if items == nil {
		items = []models.User{}
	}
	return items, nil
}

// ListUsers reloads every user.
func (s *Backoffice) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.loadUsers(ctx, store.Query{})
}

// ActiveUsers reloads only active users. Later refreshes keep this view.
func (s *Backoffice) ActiveUsers(ctx context.Context) ([]models.User, error) {
	return s.loadUsers(ctx, store.Query{Kind: QueryActive})
}

// SearchUsers reloads users matching lastName.
func (s *Backoffice) SearchUsers(ctx context.Context, lastName string) ([]models.User, error) {
	if lastName == "" {
		return s.ListUsers(ctx)
	}
	return s.loadUsers(ctx, store.Query{Kind: QuerySearch, Arg: lastName})
}

// GetUser fetches a single user. The store is left untouched.
func (s *Backoffice) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	return user, nil
}

// CreateUser creates a user and reloads the user list.
func (s *Backoffice) CreateUser(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	return s.createUser(ctx, req, "create", "User created")
}

func (s *Backoffice) createUser(ctx context.Context, req *models.UserRequest, action, success string) (*models.User, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	var created *models.User
	err := s.mutate(ctx, write{
		entity:  "user",
		action:  action,
		slice:   store.SliceUsers,
		success: success,
	}, func(ctx context.Context) (interface{}, error) {
		u, err := s.users.CreateUser(ctx, req)
		created = u
		return u, err
	})
	return created, err
}

// UpdateUser replaces a user and reloads the user list.
func (s *Backoffice) UpdateUser(ctx context.Context, id int64, req *models.UserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	var updated *models.User
	err := s.mutate(ctx, write{
		entity:   "user",
		action:   "update",
		entityID: idString(id),
		slice:    store.SliceUsers,
		success:  "User updated",
	}, func(ctx context.Context) (interface{}, error) {
		u, err := s.users.UpdateUser(ctx, id, req)
		updated = u
		return u, err
	})
	return updated, err
}

// DeleteUser deletes a user and reloads the user list.
func (s *Backoffice) DeleteUser(ctx context.Context, id int64) error {
	return s.mutate(ctx, write{
		entity:   "user",
		action:   "delete",
		entityID: idString(id),
		slice:    store.SliceUsers,
		success:  "User deleted",
	}, func(ctx context.Context) (interface{}, error) {
		return nil, s.users.DeleteUser(ctx, id)
	})
}

// DeactivateUser marks a user inactive and reloads the user list.
func (s *Backoffice) DeactivateUser(ctx context.Context, id int64) (*models.User, error) {
	var updated *models.User
	err := s.mutate(ctx, write{
		entity:   "user",
		action:   "deactivate",
		entityID: idString(id),
		slice:    store.SliceUsers,
		success:  "User deactivated",
	}, func(ctx context.Context) (interface{}, error) {
		u, err := s.users.DeactivateUser(ctx, id)
		updated = u
		return u, err
	})
	return updated, err
}
