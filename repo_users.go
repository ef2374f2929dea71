package accounts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// lookupFields are the columns existence checks may run against.
var lookupFields = map[string]bool{
	"email": true,
	"phone": true,
	"id":    true,
}

// updatableFields are the columns a partial update may touch.
var updatableFields = map[string]bool{
	"first_name":  true,
	"last_name":   true,
	"email":       true,
	"phone":       true,
	"city":        true,
	"gender":      true,
	"role":        true,
	"password":    true,
	"is_verified": true,
	"otp":         true,
	"otp_expiry":  true,
	"updated_at":  true,
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

// NewUsersRepository returns the bun backed account store
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (r *users) idb(tx bun.IDB) bun.IDB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *users) ExistsTx(ctx context.Context, tx bun.IDB, field, value string) (bool, error) {
	if !lookupFields[field] {
		return false, fmt.Errorf("field %q is not searchable", field)
	}
	return r.idb(tx).NewSelect().
		Model((*User)(nil)).
		Where("? = ?", bun.Ident(field), value).
		Exists(ctx)
}

func (r *users) ExistsExcludingIDTx(ctx context.Context, tx bun.IDB, field, value string, id uuid.UUID) (bool, error) {
	if !lookupFields[field] {
		return false, fmt.Errorf("field %q is not searchable", field)
	}
	return r.idb(tx).NewSelect().
		Model((*User)(nil)).
		Where("? = ?", bun.Ident(field), value).
		Where("id != ?", id).
		Exists(ctx)
}

// FindOneTx returns the first user matching criteria, or ErrNotFound
func (r *users) FindOneTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (*User, error) {
	user, err := r.GetTx(ctx, r.idb(tx), criteria...)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrNotFound.Clone()
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to query user")
	}
	return user, nil
}

func (r *users) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	user, err := r.FindOneTx(ctx, tx, repository.SelectByID(id.String()))
	if IsNotFound(err) {
		return nil, withMessage(ErrNotFound, fmt.Sprintf("user with id: %s not found", id), nil)
	}
	return user, err
}

func (r *users) FindByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	user, err := r.FindOneTx(ctx, tx, repository.SelectBy("email", "=", email))
	if IsNotFound(err) {
		return nil, withMessage(ErrNotFound, fmt.Sprintf("user with email: %s not found", email), nil)
	}
	return user, err
}

func (r *users) FindPageTx(ctx context.Context, tx bun.IDB, filter *ListCriteria, offset, limit int) ([]*User, int, error) {
	records, total, err := r.ListTx(ctx, r.idb(tx),
		applyCriteria(filter),
		repository.OrderBy("created_at DESC", "id DESC"),
		repository.Paginate(limit, offset),
	)
	if err != nil && !repository.IsNoRowError(err) {
		return nil, 0, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	if records == nil {
		records = []*User{}
	}
	return records, total, nil
}

func (r *users) InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}
	if user.Role == "" {
		user.Role = RoleUser
	}

	record, err := r.CreateTx(ctx, r.idb(tx), user)
	if err != nil {
		return nil, mapWriteError(err, map[string]string{
			"email": user.Email,
			"phone": user.Phone,
		})
	}
	return record, nil
}

func (r *users) UpdatePartialTx(ctx context.Context, tx bun.IDB, id uuid.UUID, fields map[string]any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !updatableFields[k] {
			return 0, fmt.Errorf("field %q is not updatable", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := r.idb(tx).NewUpdate().
		Model((*User)(nil)).
		Where("id = ?", id)
	for _, k := range keys {
		q = q.Set("? = ?", bun.Ident(k), fields[k])
	}

	res, err := q.Exec(ctx)
	if err != nil {
		values := map[string]string{}
		for _, f := range uniqueFields {
			if v, ok := fields[f].(string); ok {
				values[f] = v
			}
		}
		return 0, mapWriteError(err, values)
	}
	return res.RowsAffected()
}

// DeleteByIDTx removes the user with id, or returns ErrNotFound
func (r *users) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	record, err := r.FindByIDTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := r.DeleteTx(ctx, r.idb(tx), record); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user")
	}
	return nil
}

func applyCriteria(c *ListCriteria) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if c == nil {
			return q
		}
		if c.FirstName != "" {
			q = q.Where("LOWER(?TableAlias.first_name) LIKE ?", likeExpr(c.FirstName))
		}
		if c.LastName != "" {
			q = q.Where("LOWER(?TableAlias.last_name) LIKE ?", likeExpr(c.LastName))
		}
		if c.City != "" {
			q = q.Where("LOWER(?TableAlias.city) LIKE ?", likeExpr(c.City))
		}
		if c.Email != "" {
			q = q.Where("?TableAlias.email = ?", c.Email)
		}
		if c.Phone != "" {
			q = q.Where("?TableAlias.phone = ?", c.Phone)
		}
		if c.Gender != "" {
			q = q.Where("?TableAlias.gender = ?", c.Gender)
		}
		if c.Role != "" {
			q = q.Where("?TableAlias.role = ?", c.Role)
		}
		if c.IsVerified != nil {
			q = q.Where("?TableAlias.is_verified = ?", *c.IsVerified)
		}
		if c.CreatedFrom != nil {
			q = q.Where("?TableAlias.created_at >= ?", *c.CreatedFrom)
		}
		if c.CreatedBefore != nil {
			q = q.Where("?TableAlias.created_at < ?", *c.CreatedBefore)
		}
		return q
	}
}

func likeExpr(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
