package eventlog

// Log is the append-only, ordered event stream for one simulation run.
type Log struct {
	events []Event
	seq    int64
}

// New constructs an empty Log.
func New() *Log {
	return &Log{events: make([]Event, 0, 1024)}
}

// Append assigns the next monotonic sequence number to evt and appends it.
// evt.Seq is overwritten; callers should leave it zero.
func (l *Log) Append(evt Event) Event {
	evt.Seq = l.seq
	l.seq++
	l.events = append(l.events, evt)
	return evt
}

// All returns every event appended so far, in order. The returned slice
// is a copy; callers may not mutate log state through it.
func (l *Log) All() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Tick returns every event appended during the given absolute tick, in
// order.
func (l *Log) Tick(absoluteTick int64) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Tick == absoluteTick {
			out = append(out, e)
		}
	}
	return out
}

// Len reports how many events have been appended.
func (l *Log) Len() int { return len(l.events) }
