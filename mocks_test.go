package accounts_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accounts "github.com/goliatone/go-accounts"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req accounts.CreateUserRequest, actor *accounts.Actor) (*accounts.User, error) {
	args := m.Called(ctx, req, actor)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockAccountService) VerifyOTP(ctx context.Context, email, otp string) (*accounts.User, error) {
	args := m.Called(ctx, email, otp)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockAccountService) ResendOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAccountService) List(ctx context.Context, filter accounts.UserFilter) (*accounts.UserPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*accounts.UserPage)
	return page, args.Error(1)
}

func (m *MockAccountService) GetByID(ctx context.Context, id uuid.UUID) (*accounts.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockAccountService) UpdateByID(ctx context.Context, id uuid.UUID, req accounts.UpdateUserRequest, actor *accounts.Actor) (*accounts.User, error) {
	args := m.Called(ctx, id, req, actor)
	user, _ := args.Get(0).(*accounts.User)
	return user, args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, email, password string) (*accounts.LoginResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*accounts.LoginResult)
	return res, args.Error(1)
}

func (m *MockAccountService) ResetPassword(ctx context.Context, email, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *MockAccountService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockThrottle struct {
	mock.Mock
}

func (m *MockThrottle) Allow(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
