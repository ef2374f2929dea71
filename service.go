package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

const (
	defaultOperationTimeout = 10 * time.Second
	defaultPublishTimeout   = 5 * time.Second
)

// Service runs the account lifecycle: registration, OTP verification,
// login, password reset and profile management. It holds no per account
// state; everything lives in the store.
type Service struct {
	repo           RepositoryManager
	tokens         TokenIssuer
	creds          *Credentials
	notifier       Notifier
	logger         Logger
	routes         EventRoutes
	phones         *PhoneNormalizer
	defPage        int
	defSize        int
	timeout        time.Duration
	publishTimeout time.Duration
}

type ServiceOption func(*Service)

func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = normalizeNotifier(n)
	}
}

func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		s.logger = normalizeLogger(l)
	}
}

func WithCredentials(c *Credentials) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.creds = c
		}
	}
}

func WithEventRoutes(r EventRoutes) ServiceOption {
	return func(s *Service) {
		s.routes = r.withDefaults()
	}
}

func WithPhoneNormalizer(p *PhoneNormalizer) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.phones = p
		}
	}
}

// WithPageDefaults sets the page number and size used when a list
// request omits them
func WithPageDefaults(page, size int) ServiceOption {
	return func(s *Service) {
		if page > 0 {
			s.defPage = page
		}
		if size > 0 {
			s.defSize = size
		}
	}
}

func WithOperationTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithConfig applies the runtime configuration
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithEventRoutes(EventRoutes{
			Exchange:    cfg.GetExchange(),
			SignupKey:   cfg.GetSignupRoutingKey(),
			VerifiedKey: cfg.GetVerifiedRoutingKey(),
		})(s)
		WithPageDefaults(cfg.GetDefaultPageNumber(), cfg.GetDefaultPageSize())(s)
		WithPhoneNormalizer(NewPhoneNormalizer(cfg.GetPhoneRegion()))(s)
	}
}

func NewService(repo RepositoryManager, tokens TokenIssuer, opts ...ServiceOption) *Service {
	s := &Service{
		repo:           repo,
		tokens:         tokens,
		creds:          NewCredentials(),
		notifier:       noopNotifier{},
		logger:         defLogger{},
		routes:         EventRoutes{}.withDefaults(),
		phones:         NewPhoneNormalizer(""),
		defPage:        DefaultPageNumber,
		defSize:        DefaultPageSize,
		timeout:        defaultOperationTimeout,
		publishTimeout: defaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Credentials() *Credentials {
	return s.creds
}

func (s *Service) now() time.Time {
	return s.creds.Now().UTC()
}

// inTx runs fn in a store transaction bounded by the operation timeout.
// Rich errors pass through, anything else becomes an internal error.
func (s *Service) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during "+op)
	default:
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.repo.RunInTx(ctx, nil, fn)
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr
	}
	s.logger.Error("%s failed: %v", op, err)
	return errors.Wrap(err, errors.CategoryInternal, "failed to "+op)
}
