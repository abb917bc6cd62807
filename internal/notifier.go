package internal

// ChangeKind identifies which record type was just persisted.
type ChangeKind string

const (
	ChangeCapture   ChangeKind = "capture"
	ChangeSummary   ChangeKind = "summary"
	ChangeTelemetry ChangeKind = "telemetry"
	ChangeDaily     ChangeKind = "daily"
)

// Notifier receives a fire-and-forget signal after every successful persist.
// Implementations must not block; the core never waits on them.
type Notifier interface {
	Changed(kind ChangeKind)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(kind ChangeKind)

// Changed calls f(kind).
func (f NotifierFunc) Changed(kind ChangeKind) {
	f(kind)
}

// notify is a nil-safe dispatch helper.
func notify(n Notifier, kind ChangeKind) {
	if n != nil {
		n.Changed(kind)
	}
}
