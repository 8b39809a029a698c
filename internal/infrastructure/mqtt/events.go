package mqtt

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// DefaultEventBuffer is the queue length used when NewEventPublisher is
// given a non-positive buffer.
const DefaultEventBuffer = 1024

// Publisher sends one message. *Client implements it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// EventPayload is the JSON body of an event message.
type EventPayload struct {
	fontsound.Event
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher forwards device events to MQTT.
//
// OnEvent only enqueues, so device operations never wait on the broker.
// When the queue is full the event is dropped and counted. Run drains the
// queue until its context is cancelled.
type EventPublisher struct {
	pub    Publisher
	topics Topics
	qos    byte
	queue  chan fontsound.Event
	now    func() time.Time
	logger Logger

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewEventPublisher creates a publisher sending through pub.
func NewEventPublisher(pub Publisher, topics Topics, qos byte, buffer int) *EventPublisher {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &EventPublisher{
		pub:    pub,
		topics: topics,
		qos:    qos,
		queue:  make(chan fontsound.Event, buffer),
		now:    time.Now,
	}
}

// SetLogger sets the logger used for publish failures.
func (p *EventPublisher) SetLogger(logger Logger) {
	p.logger = logger
}

// OnEvent implements fontsound.Observer.
func (p *EventPublisher) OnEvent(ev fontsound.Event) {
	select {
	case p.queue <- ev:
	default:
		p.dropped.Add(1)
	}
}

// Run publishes queued events until ctx is done. Events still queued at
// that point are flushed before returning.
func (p *EventPublisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case ev := <-p.queue:
			p.publish(ev)
		}
	}
}

func (p *EventPublisher) flush() {
	for {
		select {
		case ev := <-p.queue:
			p.publish(ev)
		default:
			return
		}
	}
}

func (p *EventPublisher) publish(ev fontsound.Event) {
	payload, err := json.Marshal(EventPayload{Event: ev, Timestamp: p.now().UTC()})
	if err == nil {
		err = p.pub.Publish(p.topics.Event(ev.Device, string(ev.Kind)), payload, p.qos, false)
	}
	if err != nil {
		p.failed.Add(1)
		if p.logger != nil {
			p.logger.Warn("publishing fontsound event failed", "kind", ev.Kind, "id", ev.ID, "error", err)
		}
		return
	}
	p.published.Add(1)
}

// PublisherStats counts what happened to observed events.
type PublisherStats struct {
	Published uint64 `json:"published"`
	Dropped   uint64 `json:"dropped"`
	Failed    uint64 `json:"failed"`
}

// Stats returns the publisher counters.
func (p *EventPublisher) Stats() PublisherStats {
	return PublisherStats{
		Published: p.published.Load(),
		Dropped:   p.dropped.Load(),
		Failed:    p.failed.Load(),
	}
}
