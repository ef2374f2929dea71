package accounts

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100

	dateLayout = "2006-01-02"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// UserFilter holds the raw list query as sent by clients.
type UserFilter struct {
	FirstName  string `query:"first_name"`
	LastName   string `query:"last_name"`
	City       string `query:"city"`
	Gender     string `query:"gender"`
	Role       string `query:"role"`
	Email      string `query:"email"`
	Phone      string `query:"phone"`
	IsVerified string `query:"is_verified"`
	StartDate  string `query:"start_date"`
	EndDate    string `query:"end_date"`
	Page       string `query:"page"`
	Size       string `query:"size"`
}

// ListCriteria is the normalized, conjunctive form of a UserFilter.
type ListCriteria struct {
	FirstName  string
	LastName   string
	City       string
	Email      string
	Phone      string
	Gender     Gender
	Role       UserRole
	IsVerified *bool

	// CreatedFrom is inclusive, CreatedBefore exclusive.
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// PageRequest is a resolved page number and size
type PageRequest struct {
	Page int
	Size int
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// BuildCriteria validates and normalizes a filter. Dates must come in pairs
// formatted as YYYY-MM-DD, otherwise ErrInvalidFormat is returned.
func BuildCriteria(f UserFilter, phones *PhoneNormalizer) (*ListCriteria, error) {
	c := &ListCriteria{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		City:      strings.ToLower(strings.TrimSpace(f.City)),
		Email:     normalizeEmail(f.Email),
		Gender:    Gender(strings.ToLower(strings.TrimSpace(f.Gender))),
		Role:      UserRole(strings.ToLower(strings.TrimSpace(f.Role))),
	}

	if p := strings.TrimSpace(f.Phone); p != "" {
		c.Phone = phones.Normalize(p)
	}

	if v := strings.TrimSpace(f.IsVerified); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, withMessage(ErrInvalidFormat, "is_verified must be true or false", map[string]any{
				"is_verified": v,
			})
		}
		c.IsVerified = &b
	}

	start := strings.TrimSpace(f.StartDate)
	end := strings.TrimSpace(f.EndDate)
	if start == "" && end == "" {
		return c, nil
	}

	from, err := parseDate("start_date", start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("end_date", end)
	if err != nil {
		return nil, err
	}

	before := to.AddDate(0, 0, 1)
	c.CreatedFrom = &from
	c.CreatedBefore = &before
	return c, nil
}

func parseDate(field, value string) (time.Time, error) {
	meta := map[string]any{field: value}
	if !datePattern.MatchString(value) {
		return time.Time{}, withMessage(ErrInvalidFormat, "use date format YYYY-MM-DD for "+field, meta)
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, withMessage(ErrInvalidFormat, "invalid date for "+field, meta)
	}
	return t.UTC(), nil
}

// ResolvePage applies defaults to page and size. Invalid values fall back
// to the defaults and size is capped at MaxPageSize.
func ResolvePage(f UserFilter, defPage, defSize int) PageRequest {
	if defPage <= 0 {
		defPage = DefaultPageNumber
	}
	if defSize <= 0 {
		defSize = DefaultPageSize
	}

	p := PageRequest{Page: defPage, Size: defSize}
	if n, err := strconv.Atoi(strings.TrimSpace(f.Page)); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.Size)); err == nil && n > 0 {
		p.Size = n
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// NewPagination computes page metadata for total rows
func NewPagination(total int, req PageRequest) Pagination {
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Pagination{
		TotalRows:   total,
		PerPage:     req.Size,
		CurrentPage: req.Page,
		TotalPages:  totalPages,
		HasNextPage: req.Page < totalPages,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
