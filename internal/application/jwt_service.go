package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/config"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	repo "github.com/oksasatya/starter-webapi/internal/domain/repository"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

// JWTService turns a valid credential pair into a signed access token.
type JWTService struct {
	Repo   repo.UserRepository
	Params config.JWTParameters
	Tokens *helpers.JWTManager
	Logger *logrus.Logger
}

func NewJWTService(params config.JWTParameters, repo repo.UserRepository, logger *logrus.Logger) *JWTService {
	return &JWTService{
		Repo:   repo,
		Params: params,
		Tokens: helpers.NewJWTManager(params.Key, params.Issuer, params.Audience),
		Logger: logger,
	}
}

// CreateToken looks the user up by email and hashed password and signs an
// HS512 token for them. A lookup miss returns an error matching both
// ErrAuthenticationFailed and entity.ErrUserNotFound.
func (s *JWTService) CreateToken(ctx context.Context, req HashedLoginRequest) (*LoginResponse, error) {
	if !s.Params.Complete() {
		return nil, ErrJWTNotConfigured
	}
	if s.Logger != nil {
		s.Logger.WithField("email", req.EmailAddress).Debug("creating access token")
	}

	u, err := s.Repo.ReadUserByCredentials(ctx, req.EmailAddress, req.HashedPassword)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return nil, err
	}

	token, _, err := s.Tokens.GenerateAccessToken(u.ID, req.EmailAddress)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("sign access token failed")
		}
		return nil, err
	}
	return &LoginResponse{AccessToken: token}, nil
}

// ParseToken validates a bearer token issued by CreateToken.
func (s *JWTService) ParseToken(token string) (*helpers.Claims, error) {
	if !s.Params.Complete() {
		return nil, ErrJWTNotConfigured
	}
	return s.Tokens.ParseAccessToken(token)
}
