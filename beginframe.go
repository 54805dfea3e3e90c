package compositor

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultInterval is the assumed display refresh interval when the tick
// source does not report one (60 Hz).
const DefaultInterval = time.Second / 60

// BeginFrameArgs describes one tick: the frame-boundary opportunity
// delivered by the external tick source.
//
// The state machine stores the most recent args verbatim for diagnostics
// and does not interpret them; deadline policy belongs to the driver's
// owner.
type BeginFrameArgs struct {
	// FrameTime is when the frame period began.
	FrameTime time.Time

	// Deadline is the latest time by which the frame should be presented.
	Deadline time.Time

	// Interval is the expected time between ticks.
	Interval time.Duration
}

// NewBeginFrameArgs returns args for a tick starting at frameTime with the
// given interval. The deadline is one interval after the frame time. A
// non-positive interval is replaced with DefaultInterval.
func NewBeginFrameArgs(frameTime time.Time, interval time.Duration) BeginFrameArgs {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return BeginFrameArgs{
		FrameTime: frameTime,
		Deadline:  frameTime.Add(interval),
		Interval:  interval,
	}
}

// IsValid reports whether the args describe a real tick.
// The zero BeginFrameArgs is not valid.
func (a BeginFrameArgs) IsValid() bool {
	return !a.FrameTime.IsZero() && a.Interval > 0
}

// String returns a compact human-readable form for diagnostics.
func (a BeginFrameArgs) String() string {
	if !a.IsValid() {
		return "BeginFrameArgs{invalid}"
	}
	return fmt.Sprintf("BeginFrameArgs{frame_time=%s deadline=%s interval=%s}",
		a.FrameTime.Format(time.RFC3339Nano),
		a.Deadline.Format(time.RFC3339Nano),
		a.Interval)
}

// LogValue implements slog.LogValuer.
func (a BeginFrameArgs) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Time("frame_time", a.FrameTime),
		slog.Time("deadline", a.Deadline),
		slog.Duration("interval", a.Interval),
	)
}
