package accounts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// VerifyOTP confirms the account behind email with the code it was sent.
// Checks run in order: unknown email, already verified, no code on file,
// expired code, wrong code.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (*User, error) {
	email = normalizeEmail(email)

	var user *User
	err := s.inTx(ctx, "verify otp", func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		record, err := users.FindByEmailTx(ctx, tx, email)
		if err != nil {
			return err
		}

		if err := checkTransition(record, StateVerified); err != nil {
			return err
		}

		if record.OTP == nil || *record.OTP == "" || record.OTPExpiry == nil {
			return ErrMissingOTP.Clone()
		}

		now := s.now()
		if now.After(*record.OTPExpiry) {
			return ErrOTPExpired.Clone()
		}

		if !s.creds.Verify(otp, *record.OTP) {
			return withMessage(ErrUnauthorized, "Invalid OTP", nil)
		}

		if _, err := users.UpdatePartialTx(ctx, tx, record.ID, map[string]any{
			"is_verified": true,
			"otp":         nil,
			"otp_expiry":  nil,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		record.IsVerified = true
		record.OTP = nil
		record.OTPExpiry = nil
		record.UpdatedAt = now
		user = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user verified id=%s", user.ID)

	s.publish(ctx, s.routes.VerifiedKey, VerifiedEvent{
		Email:     user.Email,
		FirstName: user.FirstName,
	})

	return user, nil
}

// ResendOTP replaces the pending code of an unverified account and
// republishes the signup event with the new code.
func (s *Service) ResendOTP(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	otp, err := s.creds.GenerateOTP()
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate otp")
	}
	otpHash, err := s.creds.Hash(otp)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash otp")
	}

	var user *User
	expiry := s.creds.OTPExpiry().UTC()
	err = s.inTx(ctx, "resend otp", func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		record, err := users.FindByEmailTx(ctx, tx, email)
		if err != nil {
			return err
		}

		if err := checkTransition(record, StateUnverified); err != nil {
			return err
		}

		if _, err := users.UpdatePartialTx(ctx, tx, record.ID, map[string]any{
			"otp":        otpHash,
			"otp_expiry": expiry,
			"updated_at": s.now(),
		}); err != nil {
			return err
		}

		record.OTP = &otpHash
		record.OTPExpiry = &expiry
		user = record
		return nil
	})
	if err != nil {
		return "", err
	}

	s.publish(ctx, s.routes.SignupKey, SignupEvent{
		Email:     user.Email,
		FirstName: user.FirstName,
		OTP:       otp,
		OTPExpiry: expiry,
	})

	return fmt.Sprintf("A new otp successfully sent to: %s", user.Email), nil
}
