package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ReadUser(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) ReadUserByCredentials(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	args := m.Called(ctx, email, hashedPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, id string, u *entity.User) (*entity.User, error) {
	args := m.Called(ctx, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishUserEvent(ctx context.Context, ev UserEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) IndexUser(ctx context.Context, u UserDto) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockIndexer) RemoveUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockIndexer) SearchUsers(ctx context.Context, q string, size int) ([]UserDto, error) {
	args := m.Called(ctx, q, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]UserDto), args.Error(1)
}

type MockRevoker struct {
	mock.Mock
}

func (m *MockRevoker) Revoke(ctx context.Context, jti string, until time.Time) error {
	args := m.Called(ctx, jti, until)
	return args.Error(0)
}

func (m *MockRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

// sampleUser returns a valid stored user.
func sampleUser() *entity.User {
	return &entity.User{
		ID:             "6a3c1f0e-3c5a-4a55-9d34-0e9f7f1d2b11",
		EmailAddress:   "jane@example.com",
		HashedPassword: "stored-hash",
		FirstName:      "Jane",
		LastName:       "Doe",
		Birthday:       time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:         entity.GenderFemale,
		Role:           entity.RoleUser,
		Phone:          "+15550100",
		Address: entity.Address{
			AddressLine: "1 Main St",
			City:        "Springfield",
			ZipCode:     "12345",
			Country:     "US",
		},
		CreatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}
