package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSink struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *stubSink) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func validEvent(stage Stage) Event {
	return Event{
		RunID: UUIDToBytes(uuid.New()),
		TS:    time.Now().UTC(),
		Stage: stage,
		Site:  "Karnak",
		Step:  "primary",
	}
}

func TestHubDeliversEventsToSinks(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(validEvent(StageRunStart))
	hub.Emit(validEvent(StageSiteStart))
	hub.Emit(validEvent(StageStepDone))

	require.NoError(t, hub.Close(context.Background()))

	events := sink.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, StageRunStart, events[0].Stage)
	assert.Equal(t, StageStepDone, events[2].Stage)
	assert.True(t, sink.closed)
}

func TestHubDiscardsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{}, sink)

	hub.Emit(Event{})
	hub.Emit(Event{Stage: StageSiteDone})
	hub.Emit(validEvent("BOGUS"))

	// Site event without a site name.
	evt := validEvent(StageSiteDone)
	evt.Site = ""
	hub.Emit(evt)

	require.NoError(t, hub.Close(context.Background()))
	assert.Empty(t, sink.snapshot())
}

func TestHubEmitAfterCloseIsNoOp(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{}, sink)
	require.NoError(t, hub.Close(context.Background()))

	hub.Emit(validEvent(StageRunStart))
	assert.Empty(t, sink.snapshot())
}

func TestHubNilSafe(t *testing.T) {
	t.Parallel()

	var hub *Hub
	hub.Emit(validEvent(StageRunStart))
	assert.NoError(t, hub.Close(context.Background()))
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Event)
		wantErr bool
	}{
		{name: "valid step event", mutate: func(e *Event) {}},
		{name: "run event without site", mutate: func(e *Event) {
			e.Stage = StageRunStart
			e.Site = ""
			e.Step = ""
		}},
		{name: "zero run id", mutate: func(e *Event) { e.RunID = [16]byte{} }, wantErr: true},
		{name: "zero timestamp", mutate: func(e *Event) { e.TS = time.Time{} }, wantErr: true},
		{name: "step event without step", mutate: func(e *Event) { e.Step = "" }, wantErr: true},
		{name: "negative duration", mutate: func(e *Event) { e.Dur = -time.Second }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := validEvent(StageStepDone)
			tt.mutate(&evt)
			err := evt.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunUUIDRoundTrip(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	evt := Event{RunID: UUIDToBytes(id)}
	assert.Equal(t, id, evt.RunUUID())
}
