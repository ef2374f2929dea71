package accounts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.Users().FindByIDTx(ctx, nil, id)
}

// UpdateByID applies a partial profile update. Email and phone must stay
// unique and role changes follow the same escalation rule as registration.
func (s *Service) UpdateByID(ctx context.Context, id uuid.UUID, req UpdateUserRequest, actor *Actor) (*User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var user *User
	err := s.inTx(ctx, "update user", func(ctx context.Context, tx bun.Tx) error {
		users := s.repo.Users()

		current, err := users.FindByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		fields := map[string]any{}

		if req.Email != nil {
			exists, err := users.ExistsExcludingIDTx(ctx, tx, "email", *req.Email, id)
			if err != nil {
				return err
			}
			if exists {
				return conflictError("email", *req.Email)
			}
			fields["email"] = *req.Email
		}

		if req.Phone != nil {
			phone := s.phones.Normalize(*req.Phone)
			exists, err := users.ExistsExcludingIDTx(ctx, tx, "phone", phone, id)
			if err != nil {
				return err
			}
			if exists {
				return conflictError("phone", phone)
			}
			fields["phone"] = phone
		}

		if req.Role != nil {
			role := UserRole(*req.Role)
			if role != current.Role && !CanAssignRole(actor, role) {
				return withMessage(ErrForbidden, "Only admins can grant the admin role", nil)
			}
			fields["role"] = role
		}

		if req.FirstName != nil {
			fields["first_name"] = *req.FirstName
		}
		if req.LastName != nil {
			fields["last_name"] = *req.LastName
		}
		if req.City != nil {
			fields["city"] = *req.City
		}
		if req.Gender != nil {
			fields["gender"] = Gender(*req.Gender)
		}

		if len(fields) == 0 {
			user = current
			return nil
		}
		fields["updated_at"] = s.now()

		affected, err := users.UpdatePartialTx(ctx, tx, id, fields)
		if err != nil {
			return err
		}
		if affected == 0 {
			return withMessage(ErrNotFound, fmt.Sprintf("user with id: %s not found", id), nil)
		}

		user, err = users.FindByIDTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteByID removes the account for good. Callers gate this on an
// elevated role.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, "delete user", func(ctx context.Context, tx bun.Tx) error {
		if err := s.repo.Users().DeleteByIDTx(ctx, tx, id); err != nil {
			return err
		}
		s.logger.Info("user deleted id=%s", id)
		return nil
	})
}
