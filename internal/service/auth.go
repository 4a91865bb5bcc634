package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/auth"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/errors"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/logging"
	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// Profile is the caller's identity as read from the token, plus the user
// record when the membership service knows it.
type Profile struct {
	Claims *auth.Claims  `json:"claims"`
	User   *models.User `json:"user,omitempty"`
}

// Login exchanges credentials for a token.
func (s *Backoffice) Login(ctx context.Context, req *models.AuthRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	resp, err := s.users.Login(ctx, req)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if resp == nil {
		err := &errors.DecodeError{Service: "membership", Err: errors.New("empty login response")}
		s.fail(err)
		return nil, err
	}

	s.logger.Info("User logged in", logging.Fields{"email": req.Email})
	return resp, nil
}

// Register creates an account, then logs into it.
func (s *Backoffice) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		s.fail(err)
		return nil, err
	}

	userReq := &models.UserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}
	if _, err := s.createUser(ctx, userReq, "register", "Account created"); err != nil {
		var refreshErr *errors.RefreshError
		if !errors.As(err, &refreshErr) {
			return nil, err
		}
	}

	return s.Login(ctx, &models.AuthRequest{Email: req.Email, Password: req.Password})
}

// Me decodes the caller's token and looks up the matching user. The token
// is not verified here; the membership service checks it on the lookup.
func (s *Backoffice) Me(ctx context.Context) (*Profile, error) {
	token, ok := auth.TokenFromContext(ctx)
	if !ok {
		return nil, auth.ErrNoToken
	}

	claims, err := auth.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == 0 {
		return &Profile{Claims: claims}, nil
	}

	user, err := s.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &Profile{Claims: claims, User: user}, nil
}
