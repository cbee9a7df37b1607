// Package reorder implements the drag-reorder gesture as an explicit state
// machine driven by abstract pointer events, so the ordering logic stays
// testable without any rendering toolkit.
package reorder

import "errors"

type State int

const (
	Idle State = iota
	Dragging
	HoveringBefore
	HoveringAfter
	HoveringColumn
)

var (
	ErrGestureActive    = errors.New("a drag gesture is already in progress")
	ErrUnknownContainer = errors.New("unknown container")
	ErrFullscreen       = errors.New("cannot drag a fullscreen container")
)

// Committer is the registry surface the machine commits against.
type Committer interface {
	Order() []string
	ColumnOf(id string) (int, bool)
	IsFullscreen(id string) bool
	CommitReorder(order []string, moved string, column int) error
}

// Machine tracks one in-progress drag gesture. Hover events recompute the
// insertion side; nothing is mutated until Drop resolves to a valid target.
type Machine struct {
	committer Committer
	state     State
	source    string
	target    string
	column    int
}

func NewMachine(committer Committer) *Machine {
	return &Machine{committer: committer, column: -1}
}

func (m *Machine) State() State { return m.state }

// Source returns the dragged container id, empty outside a gesture.
func (m *Machine) Source() string { return m.source }

// Start begins a gesture over a grabbable handle. Rejected for unknown ids
// and for containers currently in fullscreen mode.
func (m *Machine) Start(sourceID string) error {
	if m.state != Idle {
		return ErrGestureActive
	}
	if _, ok := m.committer.ColumnOf(sourceID); !ok {
		return ErrUnknownContainer
	}
	if m.committer.IsFullscreen(sourceID) {
		return ErrFullscreen
	}
	m.state = Dragging
	m.source = sourceID
	return nil
}

// HoverContainer resolves the insertion side by the midpoint rule: a
// pointer above the candidate's vertical midpoint means insert-before, at
// or below means insert-after. Hovering the dragged container itself drops
// the highlight.
func (m *Machine) HoverContainer(targetID string, pointerY, midY float64) {
	if m.state == Idle {
		return
	}
	if targetID == m.source {
		m.state = Dragging
		m.target = ""
		m.column = -1
		return
	}
	if _, ok := m.committer.ColumnOf(targetID); !ok {
		m.state = Dragging
		m.target = ""
		return
	}

	if pointerY < midY {
		m.state = HoveringBefore
	} else {
		m.state = HoveringAfter
	}
	m.target = targetID
	m.column = -1
}

// HoverColumn targets the empty tail of a column.
func (m *Machine) HoverColumn(column int) {
	if m.state == Idle {
		return
	}
	m.state = HoveringColumn
	m.target = ""
	m.column = column
}

// Leave clears the current candidate without ending the gesture.
func (m *Machine) Leave() {
	if m.state == Idle {
		return
	}
	m.state = Dragging
	m.target = ""
	m.column = -1
}

// Drop commits the gesture. Without a resolved candidate the committed
// order stays untouched and the machine just returns to Idle.
func (m *Machine) Drop() error {
	state, source, target, column := m.state, m.source, m.target, m.column
	m.reset()

	switch state {
	case HoveringBefore, HoveringAfter:
		order, ok := spliced(m.committer.Order(), source, target, state == HoveringAfter)
		if !ok {
			return nil
		}
		col, ok := m.committer.ColumnOf(target)
		if !ok {
			return nil
		}
		return m.committer.CommitReorder(order, source, col)

	case HoveringColumn:
		order := remove(m.committer.Order(), source)
		order = append(order, source)
		return m.committer.CommitReorder(order, source, column)

	default:
		return nil
	}
}

// Cancel aborts the gesture with no mutation.
func (m *Machine) Cancel() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = Idle
	m.source = ""
	m.target = ""
	m.column = -1
}

// spliced removes source from the order and reinserts it relative to
// target. ok is false when either id is missing from the current order.
func spliced(order []string, source, target string, after bool) ([]string, bool) {
	if source == target {
		return nil, false
	}

	found := false
	for _, id := range order {
		if id == source {
			found = true
			break
		}
	}
	if !found {
		return nil, false
	}

	out := make([]string, 0, len(order))
	inserted := false
	for _, id := range order {
		if id == source {
			continue
		}
		if id == target {
			if after {
				out = append(out, id, source)
			} else {
				out = append(out, source, id)
			}
			inserted = true
			continue
		}
		out = append(out, id)
	}
	if !inserted {
		return nil, false
	}
	return out, true
}

func remove(order []string, id string) []string {
	out := make([]string, 0, len(order))
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
