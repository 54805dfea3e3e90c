// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package driver runs a compositor state machine against a client.
//
// The state machine decides what to do; the client does it. Driver sits
// between them and runs the decision loop: after every notification it
// repeatedly asks the machine for its next action, applies the state
// transition, and dispatches the action to the client until the machine
// has nothing left to schedule.
//
// A typical embedding forwards vsync to BeginTick/EndTick and forwards
// producer events (new content, commit results, surface loss) through
// the corresponding Driver methods:
//
//	d := driver.New(client)
//	d.SetCanStart()
//	d.SetVisible(true)
//	d.SetCanDraw(true)
//	for d.WantsTick() {
//		d.BeginTick(compositor.NewBeginFrameArgs(time.Now(), interval))
//		d.EndTick()
//	}
//
// Driver is single-threaded, like the machine it owns. Client callbacks
// may notify the driver synchronously; the dispatch loop picks the new
// state up on its next iteration instead of recursing.
package driver
