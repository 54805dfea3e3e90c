// Package compositor provides a deterministic frame-scheduling core for
// GPU compositors.
//
// # Overview
//
// A compositor pipeline has two conceptually concurrent actors: a producer
// that generates content updates ("commits") and a drawer that rasterizes
// and presents frames to an output surface. The StateMachine in this
// package serializes every decision about those two actors into one linear
// call sequence: given everything known right now, it answers which single
// action should happen next.
//
// The state machine performs no I/O, no threading, and no timing. An
// external driver owns the real threads, calls NextAction, performs the
// indicated side effect, and reports the outcome back through UpdateState
// and the notification methods. The driver package ships a single-threaded
// harness that implements this loop.
//
// # Quick Start
//
//	import "github.com/gogpu/compositor"
//
//	m := compositor.NewStateMachine()
//	m.SetCanStart()
//	m.SetVisible(true)
//	m.SetCanDraw(true)
//	m.SetNeedsCommit()
//
//	for {
//	    action := m.NextAction()
//	    if action == compositor.ActionNone {
//	        break
//	    }
//	    m.UpdateState(action)
//	    // ... perform the side effect named by action ...
//	}
//
// # Guarantees
//
// The decision logic enforces, simultaneously:
//
//   - at most one draw, one commit request, one tree-activation attempt and
//     one visible-tile update per tick
//   - safe hand-off of the shared layer textures between producer and
//     drawer, with deadlock avoidance so a stalled drawer never starves
//     the producer
//   - recovery sequencing for a lost and recreated output surface
//   - escalation to a forced redraw after repeated failed draws
//   - a forced-commit fast path that bypasses the normal visibility and
//     timing gates
//
// # Logging
//
// The package is silent by default. Call SetLogger to route diagnostics
// through a log/slog logger shared by all subpackages.
package compositor
