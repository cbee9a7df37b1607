package services

import "github.com/lockedloop/tempus-fugit/internal/timecalc"

// RenderSink receives refresh notifications for the external rendering
// layer. The core never renders; it only pushes data.
type RenderSink interface {
	RenderContainer(lc *LiveContainer)
	RenderClock(clock timecalc.Clock)
}

type noopRenderSink struct{}

func (noopRenderSink) RenderContainer(_ *LiveContainer) {}
func (noopRenderSink) RenderClock(_ timecalc.Clock)     {}
