package accounts

import (
	"context"

	"github.com/uptrace/bun"
)

// List returns one page of users matching every field set on the filter,
// newest first.
func (s *Service) List(ctx context.Context, filter UserFilter) (*UserPage, error) {
	criteria, err := BuildCriteria(filter, s.phones)
	if err != nil {
		return nil, err
	}
	page := ResolvePage(filter, s.defPage, s.defSize)

	var (
		records []*User
		total   int
	)
	err = s.inTx(ctx, "list users", func(ctx context.Context, tx bun.Tx) error {
		var err error
		records, total, err = s.repo.Users().FindPageTx(ctx, tx, criteria, page.Offset(), page.Size)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &UserPage{
		Users:      records,
		Pagination: NewPagination(total, page),
	}, nil
}
