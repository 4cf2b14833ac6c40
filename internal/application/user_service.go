package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	repo "github.com/oksasatya/starter-webapi/internal/domain/repository"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

// EventPublisher emits user lifecycle events. Failures never fail the request.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, ev UserEvent) error
}

// UserIndexer keeps a searchable copy of users.
type UserIndexer interface {
	IndexUser(ctx context.Context, u UserDto) error
	RemoveUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, q string, size int) ([]UserDto, error)
}

// TokenRevoker records logged-out token ids until they would expire anyway.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service orchestrates user use cases. Events, Index and Revoker are optional.
type Service struct {
	Repo    repo.UserRepository
	JWT     *JWTService
	Hasher  *helpers.PasswordHasher
	Events  EventPublisher
	Index   UserIndexer
	Revoker TokenRevoker
	Logger  *logrus.Logger
	now     func() time.Time
}

func NewService(repo repo.UserRepository, jwt *JWTService, hasher *helpers.PasswordHasher, events EventPublisher, index UserIndexer, revoker TokenRevoker, logger *logrus.Logger) *Service {
	return &Service{
		Repo:    repo,
		JWT:     jwt,
		Hasher:  hasher,
		Events:  events,
		Index:   index,
		Revoker: revoker,
		Logger:  logger,
		now:     time.Now,
	}
}

type RegisterInput struct {
	User     UserDto
	Password string
}

// UpdateInput replaces the stored user. An empty Password keeps the current
// hash. Role changes are applied only when AllowRoleChange is set.
type UpdateInput struct {
	User            UserDto
	Password        string
	AllowRoleChange bool
}

// Register creates a new user with the User role and a fresh id.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserDto, error) {
	u, err := ToUser(in.User)
	if err != nil {
		return nil, err
	}
	u.ID = uuid.NewString()
	u.Role = entity.RoleUser
	u.HashedPassword = s.Hasher.Hash(in.Password)
	u.Birthday = entity.DateOf(u.Birthday)
	if err := u.Validate(); err != nil {
		return nil, err
	}

	created, err := s.Repo.CreateUser(ctx, u)
	if err != nil {
		return nil, err
	}
	dto := ToUserDto(created)
	s.afterWrite(ctx, EventUserRegistered, dto)
	return &dto, nil
}

// Login hashes the password and delegates to the JWT service.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	return s.JWT.CreateToken(ctx, HashedLoginRequest{
		EmailAddress:   email,
		HashedPassword: s.Hasher.Hash(password),
	})
}

// Logout revokes the token's jti until its expiry. Without a revoker it is a no-op.
func (s *Service) Logout(ctx context.Context, claims *helpers.Claims) error {
	if s.Revoker == nil || claims == nil || claims.ID == "" {
		return nil
	}
	until := s.now().Add(helpers.AccessTokenTTL)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.Revoker.Revoke(ctx, claims.ID, until)
}

func (s *Service) GetUser(ctx context.Context, id string) (*UserDto, error) {
	u, err := s.Repo.ReadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToUserDto(u)
	return &dto, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateInput) (*UserDto, error) {
	current, err := s.Repo.ReadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := ToUser(in.User)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.HashedPassword = current.HashedPassword
	if in.Password != "" {
		next.HashedPassword = s.Hasher.Hash(in.Password)
	}
	if !in.AllowRoleChange || next.Role == "" {
		next.Role = current.Role
	}
	next.Birthday = entity.DateOf(next.Birthday)

	updated, err := s.Repo.UpdateUser(ctx, id, next)
	if err != nil {
		return nil, err
	}
	dto := ToUserDto(updated)
	s.afterWrite(ctx, EventUserUpdated, dto)
	return &dto, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	u, err := s.Repo.ReadUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, EventUserDeleted, u.ID, u.EmailAddress)
	if s.Index != nil {
		if err := s.Index.RemoveUser(ctx, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("search index delete failed")
		}
	}
	return nil
}

// SearchUsers runs a full text query against the user index.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]UserDto, error) {
	if s.Index == nil {
		return nil, ErrSearchUnavailable
	}
	switch {
	case size <= 0:
		size = 10
	case size > 50:
		size = 50
	}
	return s.Index.SearchUsers(ctx, q, size)
}

// Authorize loads the requester and checks access to targetID.
// Admins pass always; other users pass only for themselves and only when
// adminOnly is false.
func (s *Service) Authorize(ctx context.Context, requesterID, targetID string, adminOnly bool) (*entity.User, error) {
	requester, err := s.Repo.ReadUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester.Role == entity.RoleAdmin {
		return requester, nil
	}
	if adminOnly || requester.ID != targetID {
		return nil, ErrForbidden
	}
	return requester, nil
}

func (s *Service) afterWrite(ctx context.Context, eventType string, dto UserDto) {
	s.publish(ctx, eventType, dto.ID, dto.EmailAddress)
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, dto); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", dto.ID).Warn("search index failed")
	}
}

func (s *Service) publish(ctx context.Context, eventType, userID, email string) {
	if s.Events == nil {
		return
	}
	ev := UserEvent{Type: eventType, UserID: userID, Email: email, OccurredAt: s.now().UTC()}
	if err := s.Events.PublishUserEvent(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", eventType).Warn("publish user event failed")
	}
}
