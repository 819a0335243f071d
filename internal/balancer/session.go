// Package balancer implements the incremental balancer: a per-session state
// machine that lets a user nudge one technology at a time toward a projected
// generation target without overshooting it or driving any technology below
// zero.
//
// Session values are immutable; every transition returns a new Session.
package balancer

import (
	"math"
	"strings"

	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/units"
)

// Defaults for Options.
const (
	DefaultSteps            = 5
	DefaultFallbackFraction = 0.005
	DefaultMinStep          = 1e-6
)

// Options tunes step sizing and tolerance.
type Options struct {
	// Epsilon is the TWh tolerance for "balanced" and no-op detection.
	Epsilon float64

	// Steps is how many equal steps span the gap between base and target.
	Steps int

	// FallbackFraction of base is the step when target ≈ base.
	FallbackFraction float64

	// MinStep is the smallest step ever used.
	MinStep float64
}

// DefaultOptions returns the standard balancer tuning.
func DefaultOptions() Options {
	return Options{
		Epsilon:          units.Epsilon,
		Steps:            DefaultSteps,
		FallbackFraction: DefaultFallbackFraction,
		MinStep:          DefaultMinStep,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.Steps <= 0 {
		o.Steps = d.Steps
	}
	if o.FallbackFraction <= 0 {
		o.FallbackFraction = d.FallbackFraction
	}
	if o.MinStep <= 0 {
		o.MinStep = d.MinStep
	}
	return o
}

// Session is one user's balancing state for one country.
type Session struct {
	countryID string
	base      float64
	target    float64
	step      float64
	eps       float64

	ids      []string
	names    map[string]string
	shares   map[string]float64
	original map[string]float64
	deltas   map[string]float64
}

// NewSession starts a session for country aiming at target TWh. extra adds
// technologies the country does not currently use, at original generation 0.
func NewSession(country *catalog.Country, target float64, extra []catalog.Technology, opts Options) Session {
	opts = opts.withDefaults()

	s := Session{
		target:   target,
		eps:      opts.Epsilon,
		names:    make(map[string]string),
		shares:   make(map[string]float64),
		original: make(map[string]float64),
		deltas:   map[string]float64{},
	}
	if country != nil {
		s.countryID = country.ID
		s.base = country.TotalGeneration
		for _, t := range country.Technologies {
			s.add(t.ID, t.Name, t.Share)
		}
	}
	for _, t := range extra {
		s.add(t.ID, t.Name, 0)
	}

	diff := math.Abs(target - s.base)
	if diff <= s.eps {
		s.step = math.Max(opts.MinStep, s.base*opts.FallbackFraction)
	} else {
		s.step = math.Max(opts.MinStep, diff/float64(opts.Steps))
	}
	return s
}

func (s *Session) add(id, name string, share float64) {
	id = strings.TrimSpace(id)
	if id == "" || s.has(id) {
		return
	}
	if name == "" {
		name = id
	}
	s.ids = append(s.ids, id)
	s.names[id] = name
	s.shares[id] = share
	s.original[id] = share * s.base
}

func (s Session) has(id string) bool {
	_, ok := s.original[id]
	return ok
}

func (s Session) withDelta(id string, v float64, keep bool) Session {
	next := s
	next.deltas = make(map[string]float64, len(s.deltas)+1)
	for k, d := range s.deltas {
		next.deltas[k] = d
	}
	if keep {
		next.deltas[id] = v
	} else {
		delete(next.deltas, id)
	}
	return next
}

// Increase adds one step to id, capped at the remaining gap to the target.
// It is a no-op for unknown ids or once the target is reached.
func (s Session) Increase(id string) Session {
	if !s.has(id) {
		return s
	}
	remaining := s.Remaining()
	if remaining <= s.eps {
		return s
	}
	return s.withDelta(id, s.deltas[id]+math.Min(s.step, remaining), true)
}

// Decrease removes one step from id, never taking its generation below 0.
func (s Session) Decrease(id string) Session {
	if !s.has(id) {
		return s
	}
	current := s.deltas[id]
	next := math.Max(current-s.step, -s.original[id])
	if math.Abs(next-current) <= s.eps {
		if math.Abs(next) <= s.eps {
			if _, ok := s.deltas[id]; ok {
				return s.withDelta(id, 0, false)
			}
		}
		return s
	}
	return s.withDelta(id, next, true)
}

// Reset discards every edit.
func (s Session) Reset() Session {
	next := s
	next.deltas = map[string]float64{}
	return next
}

// CountryID returns the session's country.
func (s Session) CountryID() string { return s.countryID }

// Base returns the country's current total generation.
func (s Session) Base() float64 { return s.base }

// Target returns the projected total the session aims for.
func (s Session) Target() float64 { return s.target }

// Step returns the per-action step in TWh.
func (s Session) Step() float64 { return s.step }

// IDs returns technology ids in session order.
func (s Session) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Lookup returns the session's spelling of id, matched case-insensitively.
func (s Session) Lookup(id string) (string, bool) {
	id = strings.TrimSpace(id)
	for _, known := range s.ids {
		if strings.EqualFold(known, id) {
			return known, true
		}
	}
	return "", false
}

// Name returns the display name for id.
func (s Session) Name(id string) string { return s.names[id] }

// Delta returns the accumulated edit for id.
func (s Session) Delta(id string) float64 { return s.deltas[id] }

// Original returns id's generation before edits.
func (s Session) Original(id string) float64 { return s.original[id] }

// Generation returns id's current generation.
func (s Session) Generation(id string) float64 { return s.original[id] + s.deltas[id] }

// TotalDelta is the sum of all edits.
func (s Session) TotalDelta() float64 {
	values := make([]float64, 0, len(s.deltas))
	for _, id := range s.ids {
		if d, ok := s.deltas[id]; ok {
			values = append(values, d)
		}
	}
	return units.Sum(values)
}

// Total is the current generation total.
func (s Session) Total() float64 { return s.base + s.TotalDelta() }

// Remaining is the gap left to the target. Negative when above it.
func (s Session) Remaining() float64 { return s.target - s.Total() }

// Progress is the total as a percentage of the target, clamped to [0, 100].
func (s Session) Progress() float64 {
	const minTarget = 1e-9
	return units.Clamp(s.Total()/math.Max(s.target, minTarget)*100, 0, 100)
}

// IsBalanced reports whether the total equals the target right now. The
// debounced declaration lives in Debounce.
func (s Session) IsBalanced() bool {
	return math.Abs(s.Total()-s.target) < s.eps
}

// HasChanges reports whether any edit is non-negligible.
func (s Session) HasChanges() bool {
	for _, d := range s.deltas {
		if math.Abs(d) > s.eps {
			return true
		}
	}
	return false
}

// Changes returns the non-negligible edits as engine user changes, in session
// order.
func (s Session) Changes() []engine.UserChange {
	total := s.Total()
	changes := make([]engine.UserChange, 0, len(s.deltas))
	for _, id := range s.ids {
		d := s.deltas[id]
		if math.Abs(d) <= s.eps {
			continue
		}
		prevShare := s.shares[id]
		prevTWh := s.original[id]
		newTWh := math.Max(0, prevTWh+d)
		newShare := 0.0
		if total > 0 {
			newShare = newTWh / total
		}
		changes = append(changes, engine.UserChange{
			ID:             id,
			PrevShare:      &prevShare,
			PrevGeneration: &prevTWh,
			NewShare:       &newShare,
			NewGeneration:  &newTWh,
		})
	}
	return changes
}
