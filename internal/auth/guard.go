package auth

import (
	"context"
	"errors"
	"strconv"

	"taskman/internal/apperr"
	"taskman/internal/models"
)

// Actor is the proof that a request passed authentication. The field is
// unexported and there is no constructor besides Guard.Authenticate, so
// downstream code cannot mint one around the guard.
type Actor struct {
	user models.User
}

// UserID returns the authenticated user's id.
func (a Actor) UserID() int { return a.user.ID }

// User returns a copy of the authenticated user record.
func (a Actor) User() models.User { return a.user }

// UserSource is the slice of the credential store the guard needs.
type UserSource interface {
	GetByID(ctx context.Context, id int) (models.User, error)
}

// Guard resolves bearer tokens to user records. Every check funnels into
// the same apperr.ErrAuthentication so callers cannot probe which step
// failed. The store lookup runs on every call: deactivating a user locks
// them out immediately, without waiting for their tokens to expire.
type Guard struct {
	tokens *TokenManager
	users  UserSource
}

func NewGuard(tokens *TokenManager, users UserSource) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate validates a raw bearer token and returns an Actor for the
// subject. It is read-only and safe for concurrent use.
func (g *Guard) Authenticate(ctx context.Context, token string) (Actor, error) {
	if token == "" {
		return Actor{}, apperr.ErrAuthentication
	}

	subject, err := g.tokens.Validate(token)
	if err != nil {
		return Actor{}, apperr.ErrAuthentication
	}

	userID, err := strconv.Atoi(subject)
	if err != nil {
		return Actor{}, apperr.ErrAuthentication
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return Actor{}, apperr.ErrAuthentication
		}
		// Storage trouble is not an authentication verdict.
		return Actor{}, err
	}

	if !user.IsActive {
		return Actor{}, apperr.ErrAuthentication
	}

	return Actor{user: user}, nil
}
