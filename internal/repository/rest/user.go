package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jwalitptl/hospital-dashboard/internal/model"
	"github.com/jwalitptl/hospital-dashboard/internal/repository"
)

type userRepository struct {
	c *Client
}

func NewUserRepository(c *Client) repository.UserRepository {
	return &userRepository{c: c}
}

func (r *userRepository) Profile(ctx context.Context, token string) (*model.Profile, error) {
	var p model.Profile
	if err := r.c.do(ctx, "profile", http.MethodGet, "/users/profile/", token, nil, &p); err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return &p, nil
}

func (r *userRepository) Logout(ctx context.Context, token string) error {
	if err := r.c.do(ctx, "logout", http.MethodPost, "/users/logout/", token, nil, nil); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}
