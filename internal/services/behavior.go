package services

import (
	"time"

	"github.com/lockedloop/tempus-fugit/internal/models"
	"github.com/lockedloop/tempus-fugit/internal/timecalc"
)

const shortTermWindow = 7 * 24 * time.Hour

// CountdownState holds the derived and per-tick fields of a countdown
// container. Derived fields are recomputed on construction and on every data
// update; tick fields on every tick.
type CountdownState struct {
	Start      time.Time            `json:"-"`
	Target     time.Time            `json:"-"`
	TotalWeeks int                  `json:"totalWeeks"`
	YearRanges []timecalc.YearRange `json:"yearRanges"`
	// ShortTerm is frozen when the derived state is computed (construction
	// or edit), not re-evaluated per tick. A countdown crossing the 7-day
	// boundary keeps its display mode until the next edit or reload.
	ShortTerm bool `json:"shortTerm"`

	ElapsedWeeks int                `json:"elapsedWeeks"`
	Remaining    timecalc.Breakdown `json:"remaining"`
	Progress     float64            `json:"progress"`
}

// LiveContainer is one mounted container: the persisted record plus the
// runtime state the renderer consumes.
type LiveContainer struct {
	Record     models.Container
	Countdown  *CountdownState
	Fullscreen bool
}

// Behavior is the per-variant function table. Composition instead of
// subtype overrides: adding a variant means adding one table entry.
type Behavior struct {
	ComputeDerived func(lc *LiveContainer, now time.Time)
	OnTick         func(lc *LiveContainer, now time.Time)
}

var behaviors = map[models.ContainerType]Behavior{
	models.TypeCountdown: {
		ComputeDerived: countdownDerived,
		OnTick:         countdownTick,
	},
	models.TypeImage: {
		ComputeDerived: passthroughDerived,
		OnTick:         passthroughTick,
	},
	models.TypeText: {
		ComputeDerived: passthroughDerived,
		OnTick:         passthroughTick,
	},
}

// behaviorFor defaults to the countdown behavior for an unrecognized type,
// mirroring the load-time forward-compatibility guard.
func behaviorFor(typ models.ContainerType) Behavior {
	if b, ok := behaviors[typ]; ok {
		return b
	}
	return behaviors[models.TypeCountdown]
}

func countdownDerived(lc *LiveContainer, now time.Time) {
	data := lc.Record.Countdown()
	if data == nil {
		lc.Countdown = &CountdownState{}
		return
	}

	start, target := data.Dates()
	lc.Countdown = &CountdownState{
		Start:      start,
		Target:     target,
		TotalWeeks: timecalc.WeeksBetween(start, target),
		YearRanges: timecalc.YearRanges(start, target),
		ShortTerm:  target.After(now) && target.Sub(now) < shortTermWindow,
	}
	countdownTick(lc, now)
}

func countdownTick(lc *LiveContainer, now time.Time) {
	st := lc.Countdown
	if st == nil {
		return
	}
	st.ElapsedWeeks = timecalc.ElapsedWeeks(st.Start, now)
	st.Remaining = timecalc.Remaining(st.Target, now)
	st.Progress = progress(st.Start, st.Target, now)
}

// progress is the fractional position of now inside [start, target],
// clamped to [0, 100]. An inverted or zero-width range reads as finished.
func progress(start, target, now time.Time) float64 {
	total := target.Sub(start)
	if total <= 0 {
		return 100
	}
	p := float64(now.Sub(start)) / float64(total) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Image and text containers pass their payload straight through to the
// renderer; nothing to derive, nothing to tick.
func passthroughDerived(_ *LiveContainer, _ time.Time) {}

func passthroughTick(_ *LiveContainer, _ time.Time) {}
