package tenant

import (
	"context"
	"errors"

	authdomain "github.com/hintboard/hintboard/internal/auth/domain"
)

// sessionIdentity adapts the auth service to the gate's Identity contract:
// any invalid-session condition is anonymous, not an error.
type sessionIdentity struct {
	auth authdomain.Service
}

func NewIdentity(auth authdomain.Service) Identity {
	return sessionIdentity{auth: auth}
}

func (s sessionIdentity) CurrentUser(ctx context.Context, sessionToken string) (*authdomain.User, error) {
	sess, err := s.auth.Authenticate(ctx, sessionToken)
	if err != nil {
		if isAnonymous(err) {
			return nil, nil
		}
		return nil, err
	}
	user, err := s.auth.GetUser(ctx, sess.UserID)
	if errors.Is(err, authdomain.ErrUserNotFound) {
		// Dangling session for a deleted account.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isAnonymous(err error) bool {
	return errors.Is(err, authdomain.ErrSessionNotFound) ||
		errors.Is(err, authdomain.ErrSessionExpired) ||
		errors.Is(err, authdomain.ErrSessionRevoked) ||
		errors.Is(err, authdomain.ErrInvalidSession)
}
