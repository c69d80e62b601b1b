package notify

import (
	"errors"
	"testing"
	"time"

	config "github.com/parvel/divtracker/internal/config/server"
	"github.com/parvel/divtracker/pkg/log"
	"github.com/stretchr/testify/assert"
)

type recordingSubscriber struct {
	alive   bool
	err     error
	panics  bool
	events  []string
	payload any
}

func (s *recordingSubscriber) Alive() bool {
	return s.alive
}

func (s *recordingSubscriber) Send(event string, payload any) error {
	if s.panics {
		panic("window destroyed")
	}

	s.events = append(s.events, event)
	s.payload = payload
	return s.err
}

func testBroadcaster() *Broadcaster {
	return NewBroadcaster(log.NewLoggerService("test", config.LogServerConfig{
		Level:      "FATAL",
		TimeFormat: time.RFC3339,
		NoTerminal: true,
	}))
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := testBroadcaster()

	first := &recordingSubscriber{alive: true}
	second := &recordingSubscriber{alive: true}
	b.Subscribe("first", first)
	b.Subscribe("second", second)

	b.Publish("filter:rarities-applied", 42)

	assert.Equal(t, []string{"filter:rarities-applied"}, first.events)
	assert.Equal(t, []string{"filter:rarities-applied"}, second.events)
	assert.Equal(t, 42, second.payload)
}

func TestPublishSkipsDeadSubscribers(t *testing.T) {
	b := testBroadcaster()

	dead := &recordingSubscriber{alive: false}
	live := &recordingSubscriber{alive: true}
	b.Subscribe("dead", dead)
	b.Subscribe("live", live)

	b.Publish("event", nil)

	assert.Empty(t, dead.events)
	assert.Len(t, live.events, 1)
}

func TestPublishIsolatesFailures(t *testing.T) {
	b := testBroadcaster()

	failing := &recordingSubscriber{alive: true, err: errors.New("send failed")}
	panicking := &recordingSubscriber{alive: true, panics: true}
	healthy := &recordingSubscriber{alive: true}
	b.Subscribe("failing", failing)
	b.Subscribe("panicking", panicking)
	b.Subscribe("healthy", healthy)

	assert.NotPanics(t, func() {
		b.Publish("event", nil)
	})

	assert.Len(t, healthy.events, 1)
}

func TestUnsubscribe(t *testing.T) {
	b := testBroadcaster()

	sub := &recordingSubscriber{alive: true}
	b.Subscribe("sub", sub)
	b.Unsubscribe("sub")

	b.Publish("event", nil)

	assert.Empty(t, sub.events)
}
