package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/pkg/helpers"
)

func newIndexSync() (*IndexSync, *MockUserRepository, *MockIndexer) {
	r := new(MockUserRepository)
	idx := new(MockIndexer)
	return NewIndexSync(r, idx, helpers.NewDiscardLogger()), r, idx
}

func TestIndexSync_UpsertsCurrentRow(t *testing.T) {
	for _, typ := range []string{EventUserRegistered, EventUserUpdated} {
		t.Run(typ, func(t *testing.T) {
			s, r, idx := newIndexSync()
			u := sampleUser()
			r.On("ReadUser", mock.Anything, u.ID).Return(u, nil)
			idx.On("IndexUser", mock.Anything, ToUserDto(u)).Return(nil)

			assert.NoError(t, s.Handle(context.Background(), UserEvent{Type: typ, UserID: u.ID}))
			idx.AssertExpectations(t)
		})
	}
}

func TestIndexSync_MissingRowRemovesDocument(t *testing.T) {
	s, r, idx := newIndexSync()
	r.On("ReadUser", mock.Anything, "gone").Return(nil, entity.ErrUserNotFound)
	idx.On("RemoveUser", mock.Anything, "gone").Return(nil)

	assert.NoError(t, s.Handle(context.Background(), UserEvent{Type: EventUserUpdated, UserID: "gone"}))
	idx.AssertNotCalled(t, "IndexUser", mock.Anything, mock.Anything)
}

func TestIndexSync_Deleted(t *testing.T) {
	s, r, idx := newIndexSync()
	idx.On("RemoveUser", mock.Anything, "u1").Return(nil)

	assert.NoError(t, s.Handle(context.Background(), UserEvent{Type: EventUserDeleted, UserID: "u1"}))
	r.AssertNotCalled(t, "ReadUser", mock.Anything, mock.Anything)
}

func TestIndexSync_Errors(t *testing.T) {
	boom := errors.New("boom")

	s, r, _ := newIndexSync()
	r.On("ReadUser", mock.Anything, "u1").Return(nil, boom)
	assert.ErrorIs(t, s.Handle(context.Background(), UserEvent{Type: EventUserRegistered, UserID: "u1"}), boom)

	s, _, idx := newIndexSync()
	idx.On("RemoveUser", mock.Anything, "u1").Return(boom)
	assert.ErrorIs(t, s.Handle(context.Background(), UserEvent{Type: EventUserDeleted, UserID: "u1"}), boom)
}

func TestIndexSync_UnknownTypeIgnored(t *testing.T) {
	s, r, idx := newIndexSync()
	assert.NoError(t, s.Handle(context.Background(), UserEvent{Type: "user.exploded", UserID: "u1"}))
	r.AssertExpectations(t)
	idx.AssertExpectations(t)
}
