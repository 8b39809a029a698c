package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakePublisher records messages in memory.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []message
	err  error
}

type message struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (f *fakePublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, message{topic, payload, qos, retained})
	return nil
}

func (f *fakePublisher) messages() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.msgs...)
}

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"status", NewTopics("fontsound").SystemStatus(), "fontsound/system/status"},
		{"event", NewTopics("fontsound").Event("synth0", "created"), "fontsound/synth0/events/created"},
		{"custom prefix", NewTopics("studio/a/").Event("dev", "linked"), "studio/a/dev/events/linked"},
		{"empty prefix", NewTopics("").SystemStatus(), "fontsound/system/status"},
		{"zero value", Topics{}.SystemStatus(), "fontsound/system/status"},
		{"sanitised device", NewTopics("fontsound").Event("a/b+#", "deleted"), "fontsound/a_b__/events/deleted"},
		{"empty device", NewTopics("fontsound").Event("", "teardown"), "fontsound/_/events/teardown"},
		{"all events", NewTopics("fontsound").AllEvents(), "fontsound/+/events/#"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildStatusPayload(t *testing.T) {
	var p statusPayload
	if err := json.Unmarshal(buildStatusPayload("offline", "fontsoundd", "graceful_shutdown"), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Status != "offline" || p.ClientID != "fontsoundd" || p.Reason != "graceful_shutdown" {
		t.Errorf("payload = %+v", p)
	}
	if _, err := time.Parse(time.RFC3339, p.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", p.Timestamp, err)
	}

	online := string(buildStatusPayload("online", "x", ""))
	if strings.Contains(online, "reason") {
		t.Errorf("online payload should omit reason: %s", online)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{Host: "broker.local", Port: 8883, TLS: true, ClientID: "fontsoundd"},
		Auth:   config.MQTTAuthConfig{Username: "user", Password: "pass"},
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 2,
			MaxDelay:     30,
		},
	}
	opts := buildClientOptions(cfg)
	configureLWT(opts, NewTopics("fontsound"), cfg.Broker.ClientID)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://broker.local:8883" {
		t.Errorf("Servers = %v, want [ssl://broker.local:8883]", opts.Servers)
	}
	if opts.ClientID != "fontsoundd" || opts.Username != "user" || opts.Password != "pass" {
		t.Errorf("identity = %q %q %q", opts.ClientID, opts.Username, opts.Password)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig should be set when TLS is enabled")
	}
	if opts.MaxReconnectInterval != 30*time.Second {
		t.Errorf("MaxReconnectInterval = %v, want 30s", opts.MaxReconnectInterval)
	}
	if !opts.WillEnabled || opts.WillTopic != "fontsound/system/status" || !opts.WillRetained {
		t.Errorf("will = %v %q %v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
}

func TestClient_NotConnected(t *testing.T) {
	c := &Client{}

	if c.IsConnected() {
		t.Error("IsConnected() = true for zero client")
	}
	if err := c.Publish("t", nil, 0, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestValidatePublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"ok", "fontsound/x", []byte("{}"), 1, nil},
		{"empty topic", "", nil, 0, ErrInvalidTopic},
		{"bad qos", "t", nil, 3, ErrInvalidQoS},
		{"too large", "t", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublish(tt.topic, tt.payload, tt.qos)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePublish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventPublisher_PublishesJSON(t *testing.T) {
	fake := &fakePublisher{}
	pub := NewEventPublisher(fake, NewTopics("fontsound"), 1, 8)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	dev, err := fontsound.NewDevice(fontsound.Options{Name: "synth0"})
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	dev.SetObserver(pub)
	ids, err := dev.Gen(2)
	if err != nil {
		t.Fatalf("Gen() error = %v", err)
	}
	if err := dev.SetInt(ids[0], fontsound.ParamLink, int32(ids[1])); err != nil {
		t.Fatalf("SetInt(link) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	msgs := fake.messages()
	if len(msgs) != 3 {
		t.Fatalf("published %d messages, want 3", len(msgs))
	}
	if msgs[0].topic != "fontsound/synth0/events/created" || msgs[0].qos != 1 || msgs[0].retained {
		t.Errorf("first message = %+v", msgs[0])
	}

	if msgs[2].topic != "fontsound/synth0/events/linked" {
		t.Errorf("third topic = %q", msgs[2].topic)
	}
	var got map[string]any
	if err := json.Unmarshal(msgs[2].payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got["kind"] != "linked" || got["device"] != "synth0" || got["target"] != float64(ids[1]) {
		t.Errorf("payload = %v", got)
	}
	if got["timestamp"] != "2026-03-01T12:00:00Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	if st := pub.Stats(); st.Published != 3 || st.Dropped != 0 || st.Failed != 0 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestEventPublisher_DropsWhenFull(t *testing.T) {
	pub := NewEventPublisher(&fakePublisher{}, NewTopics(""), 0, 2)
	for i := 0; i < 5; i++ {
		pub.OnEvent(fontsound.Event{Kind: fontsound.EventCreated, ID: uint32(i + 1)})
	}
	if st := pub.Stats(); st.Dropped != 3 {
		t.Errorf("Dropped = %d, want 3", st.Dropped)
	}
}

func TestEventPublisher_CountsFailures(t *testing.T) {
	fake := &fakePublisher{err: ErrNotConnected}
	pub := NewEventPublisher(fake, NewTopics(""), 0, 4)
	pub.OnEvent(fontsound.Event{Kind: fontsound.EventDeleted, ID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = pub.Run(ctx)

	if st := pub.Stats(); st.Failed != 1 || st.Published != 0 {
		t.Errorf("Stats() = %+v, want one failure", st)
	}
}

func TestEventPublisher_RunStopsOnCancel(t *testing.T) {
	fake := &fakePublisher{}
	pub := NewEventPublisher(fake, NewTopics(""), 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pub.Run(ctx) }()

	pub.OnEvent(fontsound.Event{Kind: fontsound.EventCreated, Device: "d", ID: 1})
	deadline := time.Now().Add(2 * time.Second)
	for len(fake.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if len(fake.messages()) != 1 {
		t.Errorf("published %d messages, want 1", len(fake.messages()))
	}
}
