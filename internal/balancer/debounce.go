package balancer

import "time"

// DefaultDebounce is how long the total must stay on target before the session
// is declared balanced.
const DefaultDebounce = 400 * time.Millisecond

// State is the debounced balance state.
type State int

const (
	// StateUnbalanced means the total is off target.
	StateUnbalanced State = iota
	// StatePending means the total is on target and a timer is running.
	StatePending
	// StateBalanced means the total stayed on target for the full interval.
	StateBalanced
)

func (s State) String() string {
	switch s {
	case StateUnbalanced:
		return "unbalanced"
	case StatePending:
		return "pending"
	case StateBalanced:
		return "balanced"
	default:
		return "unknown"
	}
}

// Ticket identifies one scheduled debounce timer.
type Ticket uint64

// Debounce turns the instantaneous IsBalanced signal into a settled
// declaration. Every observation invalidates earlier tickets, so a new edit
// cancels any pending timer. The zero value uses DefaultDebounce.
type Debounce struct {
	interval time.Duration
	seq      Ticket
	state    State
}

// NewDebounce returns a Debounce with the given interval.
func NewDebounce(interval time.Duration) Debounce {
	return Debounce{interval: interval}
}

// Interval is the time a caller should wait before calling Fire.
func (d *Debounce) Interval() time.Duration {
	if d.interval <= 0 {
		return DefaultDebounce
	}
	return d.interval
}

// Observe records the current instantaneous balance. It returns the ticket to
// pass to Fire and whether a timer needs scheduling.
func (d *Debounce) Observe(balanced bool) (Ticket, bool) {
	d.seq++
	if !balanced {
		d.state = StateUnbalanced
		return d.seq, false
	}
	if d.state == StateBalanced {
		return d.seq, false
	}
	d.state = StatePending
	return d.seq, true
}

// Fire settles the pending timer identified by t. Stale tickets are ignored.
// It reports whether the state changed to balanced.
func (d *Debounce) Fire(t Ticket) bool {
	if t != d.seq || d.state != StatePending {
		return false
	}
	d.state = StateBalanced
	return true
}

// State returns the debounced state.
func (d *Debounce) State() State { return d.state }

// Settled reports whether the session has been declared balanced.
func (d *Debounce) Settled() bool { return d.state == StateBalanced }
