package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Register creates an unverified account and sends its OTP out of band
// through the signup event. Only elevated actors may create elevated
// accounts.
func (s *Service) Register(ctx context.Context, req CreateUserRequest, actor *Actor) (*User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role := RoleUser
	if req.Role != "" {
		role = UserRole(req.Role)
	}
	phone := s.phones.Normalize(req.Phone)

	otp, err := s.creds.GenerateOTP()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate otp")
	}
	passwordHash, err := s.creds.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	otpHash, err := s.creds.Hash(otp)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash otp")
	}

	var user *User
	err = s.inTx(ctx, "register user", func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		exists, err := users.ExistsTx(ctx, tx, "email", req.Email)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("email", req.Email)
		}

		if !CanAssignRole(actor, role) {
			return withMessage(ErrForbidden,
				"You do not have permission to create an admin. Only admins can create other admins.", nil)
		}

		exists, err = users.ExistsTx(ctx, tx, "phone", phone)
		if err != nil {
			return err
		}
		if exists {
			return conflictError("phone", phone)
		}

		now := s.now()
		expiry := s.creds.OTPExpiry().UTC()
		record := &User{
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Email:      req.Email,
			Phone:      phone,
			City:       req.City,
			Gender:     Gender(req.Gender),
			Role:       role,
			Password:   passwordHash,
			IsVerified: false,
			OTP:        &otpHash,
			OTPExpiry:  &expiry,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		user, err = users.InsertTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered id=%s role=%s", user.ID, user.Role)

	s.publish(ctx, s.routes.SignupKey, SignupEvent{
		Email:     user.Email,
		FirstName: user.FirstName,
		OTP:       otp,
		OTPExpiry: *user.OTPExpiry,
	})

	return user, nil
}
