package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventCaseTriaged, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.CaseID)
		return nil
	})
	d.Subscribe(EventCaseTriaged, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.CaseID)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseTriaged, CaseID: "c-1"}))
	assert.Equal(t, []string{"first:c-1", "second:c-1"}, got)
}

func TestPublishLogsHandlerFailureAndContinues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcherWithLogger(zap.New(core))

	reached := false
	d.Subscribe(EventCaseEscalated, func(context.Context, Event) error {
		return errors.New("webhook down")
	})
	d.Subscribe(EventCaseEscalated, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCaseEscalated, CaseID: "c-2"}))
	assert.True(t, reached, "later handlers still run after a failure")

	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "c-2", entries[0].ContextMap()["case_id"])
}
