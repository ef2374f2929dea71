package accounts

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-accounts/middleware/jwtware"
)

const (
	DefaultRoutePrefix = "/users"
	DefaultCookieName  = "access_token"
)

// AccountService is the lifecycle surface the HTTP controller drives
type AccountService interface {
	Register(ctx context.Context, req CreateUserRequest, actor *Actor) (*User, error)
	VerifyOTP(ctx context.Context, email, otp string) (*User, error)
	ResendOTP(ctx context.Context, email string) (string, error)
	List(ctx context.Context, filter UserFilter) (*UserPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateByID(ctx context.Context, id uuid.UUID, req UpdateUserRequest, actor *Actor) (*User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ResetPassword(ctx context.Context, email, password string) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// OTPThrottle decides whether another OTP may be sent to email
type OTPThrottle interface {
	Allow(ctx context.Context, email string) error
}

type UsersController struct {
	Logger        Logger
	Service       AccountService
	Tokens        jwtware.TokenValidator
	Throttle      OTPThrottle
	Prefix        string
	ContextKey    string
	CookieName    string
	SecureCookies bool
}

func NewUsersController(service AccountService, tokens jwtware.TokenValidator) *UsersController {
	return &UsersController{
		Logger:        defLogger{},
		Service:       service,
		Tokens:        tokens,
		Prefix:        DefaultRoutePrefix,
		ContextKey:    jwtware.DefaultContextKey,
		CookieName:    DefaultCookieName,
		SecureCookies: true,
	}
}

// WithConfig applies cookie settings from the runtime configuration
func (uc *UsersController) WithConfig(cfg Config) *UsersController {
	if cfg != nil {
		uc.SecureCookies = cfg.GetSecureCookies()
	}
	return uc
}

func (uc *UsersController) WithLogger(logger Logger) *UsersController {
	uc.Logger = normalizeLogger(logger)
	return uc
}

func (uc *UsersController) WithThrottle(t OTPThrottle) *UsersController {
	uc.Throttle = t
	return uc
}

// RegisterRoutes mounts the user routes on r. Session and OTP routes are
// public, POST on the collection takes an optional token so admins can
// create admins, everything else requires a valid token.
func (uc *UsersController) RegisterRoutes(r fiber.Router) {
	lookup := "cookie:" + uc.CookieName + ",header:" + fiber.HeaderAuthorization

	authGate := jwtware.New(jwtware.Config{
		TokenValidator:  uc.Tokens,
		ContextKey:      uc.ContextKey,
		TokenLookup:     lookup,
		ContextEnricher: EnrichContext,
	})
	optionalGate := jwtware.New(jwtware.Config{
		Optional:        true,
		TokenValidator:  uc.Tokens,
		ContextKey:      uc.ContextKey,
		TokenLookup:     lookup,
		ContextEnricher: EnrichContext,
	})

	g := r.Group(uc.Prefix)

	g.Post("/login", uc.Login)
	g.Post("/logout", uc.Logout)
	g.Post("/reset-password", uc.ResetPassword)
	g.Post("/verify-otp", uc.VerifyOTP)
	g.Post("/resend-otp", uc.ResendOTP)

	g.Post("/", optionalGate, uc.Create)
	g.Get("/", authGate, uc.List)
	g.Get("/:id", authGate, uc.Get)
	g.Put("/:id", authGate, OwnerOrAdmin(uc.ContextKey), uc.Update)
	g.Delete("/:id", authGate, jwtware.RequireRoles(uc.ContextKey, string(RoleAdmin)), uc.Delete)
}

func (uc *UsersController) Create(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	actor, _ := ActorFromContext(c.UserContext())
	user, err := uc.Service.Register(c.UserContext(), *payload, actor)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func (uc *UsersController) List(c *fiber.Ctx) error {
	filter := UserFilter{}
	if err := c.QueryParser(&filter); err != nil {
		return withMessage(ErrInvalidFormat, "invalid query string", nil)
	}

	page, err := uc.Service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (uc *UsersController) Get(c *fiber.Ctx) error {
	id, err := paramUUID(c)
	if err != nil {
		return err
	}

	user, err := uc.Service.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (uc *UsersController) Update(c *fiber.Ctx) error {
	id, err := paramUUID(c)
	if err != nil {
		return err
	}

	payload := new(UpdateUserRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	actor, _ := ActorFromContext(c.UserContext())
	user, err := uc.Service.UpdateByID(c.UserContext(), id, *payload, actor)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (uc *UsersController) Delete(c *fiber.Ctx) error {
	id, err := paramUUID(c)
	if err != nil {
		return err
	}

	if err := uc.Service.DeleteByID(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User successfully deleted"})
}

func (uc *UsersController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	res, err := uc.Service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	SetSessionCookie(c, uc.CookieName, res.AccessToken, res.CookieExpiresAt, uc.SecureCookies)
	return c.JSON(res)
}

func (uc *UsersController) Logout(c *fiber.Ctx) error {
	ClearSessionCookie(c, uc.CookieName, uc.SecureCookies)
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

func (uc *UsersController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	if err := uc.Service.ResetPassword(c.UserContext(), payload.Email, payload.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User password reset successful"})
}

func (uc *UsersController) VerifyOTP(c *fiber.Ctx) error {
	payload := new(VerifyOTPRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	user, err := uc.Service.VerifyOTP(c.UserContext(), payload.Email, payload.OTP)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User successfully verified",
		"user":    user,
	})
}

func (uc *UsersController) ResendOTP(c *fiber.Ctx) error {
	payload := new(ResendOTPRequest)
	if err := uc.bind(c, payload); err != nil {
		return err
	}

	if uc.Throttle != nil {
		if err := uc.Throttle.Allow(c.UserContext(), normalizeEmail(payload.Email)); err != nil {
			return err
		}
	}

	msg, err := uc.Service.ResendOTP(c.UserContext(), payload.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": msg})
}

type validatable interface {
	Validate() error
}

func (uc *UsersController) bind(c *fiber.Ctx, payload validatable) error {
	if err := c.BodyParser(payload); err != nil {
		return errors.New("invalid request body", errors.CategoryBadInput).
			WithTextCode(TextCodeValidation).
			WithCode(errors.CodeBadRequest)
	}

	if n, ok := payload.(interface{ Normalize() }); ok {
		n.Normalize()
	}

	return payload.Validate()
}

func paramUUID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.New("Validation failed (uuid is expected)", errors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithCode(errors.CodeBadRequest)
	}
	return id, nil
}
