package compositor

// Settings holds the feature toggles a StateMachine is constructed with.
// Settings are immutable for the lifetime of the state machine.
type Settings struct {
	// ProducerSidePainting is true when tile content is painted on the
	// producer side. It gates visible-tile updates and, when disabled,
	// makes every applied commit request a redraw (without the feature,
	// committing is what makes new content visible).
	ProducerSidePainting bool

	// ForceDrawOnCheckerboardTimeout enables the escalation policy that
	// arms a forced redraw after repeated failed draws.
	ForceDrawOnCheckerboardTimeout bool

	// SynchronousDrawer is true when a synchronous/headless drawer is in
	// use. Read by the driver, not by the decision logic.
	SynchronousDrawer bool

	// ThrottleFrameProduction is true when frame production should be
	// throttled to display ticks. Read by the driver, not by the decision
	// logic.
	ThrottleFrameProduction bool
}

// defaultMaxFailedDraws is how many consecutive failed draws it takes to
// arm a forced redraw when ForceDrawOnCheckerboardTimeout is enabled.
const defaultMaxFailedDraws = 3

// Option configures a StateMachine during creation.
// Use functional options to customize behavior.
//
// Example:
//
//	// Defaults: no producer-side painting, no checkerboard timeout.
//	m := compositor.NewStateMachine()
//
//	// Producer-side painting with forced-redraw escalation after 2 failures.
//	m := compositor.NewStateMachine(
//	    compositor.WithProducerSidePainting(),
//	    compositor.WithCheckerboardTimeout(),
//	    compositor.WithMaxFailedDraws(2),
//	)
type Option func(*machineOptions)

// machineOptions holds optional configuration for StateMachine creation.
type machineOptions struct {
	settings       Settings
	maxFailedDraws int
}

// defaultMachineOptions returns the default state machine options.
func defaultMachineOptions() machineOptions {
	return machineOptions{
		maxFailedDraws: defaultMaxFailedDraws,
	}
}

// WithSettings replaces the whole settings record at once.
func WithSettings(s Settings) Option {
	return func(o *machineOptions) {
		o.settings = s
	}
}

// WithProducerSidePainting enables producer-side tile painting.
func WithProducerSidePainting() Option {
	return func(o *machineOptions) {
		o.settings.ProducerSidePainting = true
	}
}

// WithCheckerboardTimeout enables forced-redraw escalation after repeated
// failed draws.
func WithCheckerboardTimeout() Option {
	return func(o *machineOptions) {
		o.settings.ForceDrawOnCheckerboardTimeout = true
	}
}

// WithSynchronousDrawer marks the drawer as synchronous/headless.
func WithSynchronousDrawer() Option {
	return func(o *machineOptions) {
		o.settings.SynchronousDrawer = true
	}
}

// WithFrameThrottling enables throttling of frame production to ticks.
func WithFrameThrottling() Option {
	return func(o *machineOptions) {
		o.settings.ThrottleFrameProduction = true
	}
}

// WithMaxFailedDraws sets how many consecutive failed draws arm a forced
// redraw. Values below 1 are clamped to 1. Only meaningful together with
// WithCheckerboardTimeout.
func WithMaxFailedDraws(n int) Option {
	return func(o *machineOptions) {
		if n < 1 {
			n = 1
		}
		o.maxFailedDraws = n
	}
}
