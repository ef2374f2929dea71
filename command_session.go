package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Login checks the credentials of email and issues an access token. The
// account state is left untouched.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)

	user, err := s.repo.Users().FindByEmailTx(ctx, nil, email)
	if err != nil {
		return nil, err
	}

	if !s.creds.Verify(password, user.Password) {
		s.logger.Debug("login rejected id=%s", user.ID)
		return nil, withMessage(ErrUnauthorized, "Invalid password", nil)
	}

	token, err := s.tokens.Issue(ClaimsFromUser(user))
	if err != nil {
		s.logger.Error("token signing failed id=%s: %v", user.ID, err)
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to issue token")
	}

	return &LoginResult{
		User:            user,
		AccessToken:     token,
		ExpiresAt:       s.creds.TokenExpiry(),
		CookieExpiresAt: s.creds.CookieExpiry(),
	}, nil
}

// ResetPassword stores a new password for email. Reusing the current
// password is rejected.
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	req := ResetPasswordRequest{Email: email, Password: password, ConfirmPassword: password}
	if err := req.Validate(); err != nil {
		return err
	}

	return s.inTx(ctx, "reset password", func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		user, err := users.FindByEmailTx(ctx, tx, email)
		if err != nil {
			return err
		}

		if s.creds.Verify(password, user.Password) {
			return withMessage(ErrInvalidState, "New password cannot be the same as your old password", nil)
		}

		hash, err := s.creds.Hash(password)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}

		_, err = users.UpdatePartialTx(ctx, tx, user.ID, map[string]any{
			"password":   hash,
			"updated_at": s.now(),
		})
		return err
	})
}
