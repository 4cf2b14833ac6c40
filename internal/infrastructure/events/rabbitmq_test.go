package events

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/starter-webapi/internal/application"
)

type fakeAcker struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAcker) Ack(bool) error { f.acked = true; return nil }
func (f *fakeAcker) Nack(_, requeue bool) error {
	f.nacked, f.requeue = true, requeue
	return nil
}

func sampleEvent() application.UserEvent {
	return application.UserEvent{
		Type:       application.EventUserRegistered,
		UserID:     "6a3c1f0e-3c5a-4a55-9d34-0e9f7f1d2b11",
		Email:      "jane@example.com",
		OccurredAt: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode(t *testing.T) {
	ev := sampleEvent()
	msg, err := encode(ev)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, ev.Type, msg.Type)

	back, err := decode(msg.Body)
	require.NoError(t, err)
	assert.Equal(t, ev, back)
}

func TestDecode_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `{`,
		"no type":    `{"user_id":"x"}`,
		"no user id": `{"type":"user.updated"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decode([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestDispatch(t *testing.T) {
	body, err := encode(sampleEvent())
	require.NoError(t, err)

	t.Run("ack on success", func(t *testing.T) {
		a := &fakeAcker{}
		var got application.UserEvent
		dispatch(context.Background(), delivery{acker: a, body: body.Body}, nil, func(_ context.Context, ev application.UserEvent) error {
			got = ev
			return nil
		})
		assert.True(t, a.acked)
		assert.Equal(t, sampleEvent().UserID, got.UserID)
	})

	t.Run("requeue first failure", func(t *testing.T) {
		a := &fakeAcker{}
		dispatch(context.Background(), delivery{acker: a, body: body.Body}, nil, func(context.Context, application.UserEvent) error {
			return errors.New("boom")
		})
		assert.True(t, a.nacked)
		assert.True(t, a.requeue)
	})

	t.Run("drop redelivered failure", func(t *testing.T) {
		a := &fakeAcker{}
		dispatch(context.Background(), delivery{acker: a, body: body.Body, redelivered: true}, nil, func(context.Context, application.UserEvent) error {
			return errors.New("boom")
		})
		assert.True(t, a.nacked)
		assert.False(t, a.requeue)
	})

	t.Run("drop malformed", func(t *testing.T) {
		a := &fakeAcker{}
		called := false
		dispatch(context.Background(), delivery{acker: a, body: []byte("nope")}, nil, func(context.Context, application.UserEvent) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, a.nacked)
		assert.False(t, a.requeue)
	})
}
