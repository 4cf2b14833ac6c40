package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	repo "github.com/oksasatya/starter-webapi/internal/domain/repository"
)

// IndexSync replays user events against the search index, reading the
// current row from the repository so out-of-order events converge.
type IndexSync struct {
	Repo   repo.UserRepository
	Index  UserIndexer
	Logger *logrus.Logger
}

func NewIndexSync(repo repo.UserRepository, index UserIndexer, logger *logrus.Logger) *IndexSync {
	return &IndexSync{Repo: repo, Index: index, Logger: logger}
}

// Handle applies one event. Unknown event types are ignored.
func (s *IndexSync) Handle(ctx context.Context, ev UserEvent) error {
	switch ev.Type {
	case EventUserRegistered, EventUserUpdated:
		u, err := s.Repo.ReadUser(ctx, ev.UserID)
		if errors.Is(err, entity.ErrUserNotFound) {
			// deleted after the event was published
			return s.remove(ctx, ev.UserID)
		}
		if err != nil {
			return fmt.Errorf("read user %s: %w", ev.UserID, err)
		}
		if err := s.Index.IndexUser(ctx, ToUserDto(u)); err != nil {
			return fmt.Errorf("index user %s: %w", ev.UserID, err)
		}
	case EventUserDeleted:
		return s.remove(ctx, ev.UserID)
	default:
		if s.Logger != nil {
			s.Logger.WithField("event", ev.Type).Debug("ignoring unknown user event")
		}
		return nil
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"event": ev.Type, "user_id": ev.UserID}).Debug("user index synced")
	}
	return nil
}

func (s *IndexSync) remove(ctx context.Context, id string) error {
	if err := s.Index.RemoveUser(ctx, id); err != nil {
		return fmt.Errorf("remove user %s: %w", id, err)
	}
	return nil
}
