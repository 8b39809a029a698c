package fontsound

// Logger defines the logging interface used by the Device.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventKind names a lifecycle transition.
type EventKind string

// Event kinds.
const (
	EventCreated  EventKind = "created"
	EventDeleted  EventKind = "deleted"
	EventParamSet EventKind = "param_set"
	EventLinked   EventKind = "linked"
	EventTeardown EventKind = "teardown"
)

// Event describes one successful state change on a device.
//
// For EventLinked, Target is the new link (0 when cleared) and Previous the
// old one. For EventCreated/EventDeleted one event is emitted per
// fontsound. EventTeardown carries the number of destroyed objects in Count.
type Event struct {
	Kind     EventKind `json:"kind"`
	Device   string    `json:"device"`
	ID       uint32    `json:"id,omitempty"`
	Param    string    `json:"param,omitempty"`
	Values   []int32   `json:"values,omitempty"`
	Target   uint32    `json:"target,omitempty"`
	Previous uint32    `json:"previous,omitempty"`
	Count    int       `json:"count,omitempty"`
}

// Observer receives device events synchronously, after the change is
// visible. Implementations must not block and must not call back into
// mutating Device methods.
type Observer interface {
	OnEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(ev Event) { f(ev) }

// Observers fans one event out to several observers in order.
type Observers []Observer

// OnEvent implements Observer.
func (o Observers) OnEvent(ev Event) {
	for _, obs := range o {
		obs.OnEvent(ev)
	}
}

type noopObserver struct{}

func (noopObserver) OnEvent(Event) {}
