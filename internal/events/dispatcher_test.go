package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishRunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var calls []string
	d.Subscribe(EventIncidentCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventIncidentCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventIncidentCreated, IncidentID: 1})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventIncidentCreated}))
}
