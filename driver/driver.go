// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"github.com/gogpu/compositor"
)

// DrawResult reports the outcome of a draw the client performed.
type DrawResult struct {
	// Success reports whether the frame was drawn and swapped.
	Success bool

	// UsedDegradedTile reports whether the swapped frame contained at
	// least one placeholder tile.
	UsedDegradedTile bool
}

// Client performs the side effects the state machine schedules.
// All methods are called from the driver's dispatch loop, after the
// corresponding state transition has already been applied.
type Client interface {
	// ScheduledActionRequestCommit asks the producer to begin building
	// a new frame.
	ScheduledActionRequestCommit()

	// ScheduledActionCommit applies the frame the producer delivered.
	ScheduledActionCommit()

	// ScheduledActionUpdateVisibleTiles rasterizes outstanding tiles in
	// the visible region.
	ScheduledActionUpdateVisibleTiles()

	// ScheduledActionActivatePendingTree promotes the pending layer
	// tree to active.
	ScheduledActionActivatePendingTree()

	// ScheduledActionDrawIfPossible draws and swaps the active frame.
	// Drawing may fail, for example on missing layer content.
	ScheduledActionDrawIfPossible() DrawResult

	// ScheduledActionDrawForced draws and swaps unconditionally.
	ScheduledActionDrawForced() DrawResult

	// ScheduledActionBeginSurfaceCreation starts asynchronous creation
	// of a new output surface. The client calls DidInitializeSurface
	// once the surface is ready.
	ScheduledActionBeginSurfaceCreation()

	// ScheduledActionAcquireTexturesForProducer hands the layer
	// textures to the producer.
	ScheduledActionAcquireTexturesForProducer()
}

// Driver owns a state machine and dispatches its scheduled actions to a
// Client. Like the machine, a Driver is confined to a single goroutine.
type Driver struct {
	machine *compositor.StateMachine
	client  Client

	// dispatching guards against reentrant action processing when a
	// client callback notifies the driver synchronously.
	dispatching bool
}

// New creates a driver around a fresh state machine configured by opts.
// New panics if client is nil.
func New(client Client, opts ...compositor.Option) *Driver {
	if client == nil {
		panic("driver: nil client")
	}
	return &Driver{
		machine: compositor.NewStateMachine(opts...),
		client:  client,
	}
}

// Machine returns the underlying state machine, for queries and
// diagnostics. Mutating it directly bypasses the dispatch loop.
func (d *Driver) Machine() *compositor.StateMachine { return d.machine }

// WantsTick reports whether the driver should receive the next frame
// tick. With frame throttling enabled it also asks for ticks the
// machine merely anticipates needing, to hide scheduling latency.
func (d *Driver) WantsTick() bool {
	if d.machine.TickNeeded() {
		return true
	}
	return d.machine.Settings().ThrottleFrameProduction && d.machine.ProactiveTickWanted()
}

// BeginTick enters a frame tick and drains scheduled actions. With a
// synchronous drawer the tick is self-contained and BeginTick ends it
// before returning; otherwise the embedder calls EndTick at the frame
// deadline.
func (d *Driver) BeginTick(args compositor.BeginFrameArgs) {
	d.machine.DidEnterTick(args)
	d.processActions()
	if d.machine.Settings().SynchronousDrawer {
		d.EndTick()
	}
}

// EndTick leaves the current frame tick.
func (d *Driver) EndTick() {
	d.machine.DidLeaveTick()
	d.processActions()
}

// SetVisible forwards compositor visibility.
func (d *Driver) SetVisible(visible bool) {
	d.machine.SetVisible(visible)
	d.processActions()
}

// SetCanStart signals that surface creation may begin.
func (d *Driver) SetCanStart() {
	d.machine.SetCanStart()
	d.processActions()
}

// SetCanDraw forwards whether drawing is currently possible.
func (d *Driver) SetCanDraw(can bool) {
	d.machine.SetCanDraw(can)
	d.processActions()
}

// SetNeedsCommit records that the producer has new content.
func (d *Driver) SetNeedsCommit() {
	d.machine.SetNeedsCommit()
	d.processActions()
}

// SetNeedsForcedCommit requests the high-priority commit path that
// bypasses visibility and draw-readiness gating.
func (d *Driver) SetNeedsForcedCommit() {
	d.machine.SetNeedsCommit()
	d.machine.SetNeedsForcedCommit()
	d.processActions()
}

// SetNeedsRedraw records that the active frame must be drawn again.
func (d *Driver) SetNeedsRedraw() {
	d.machine.SetNeedsRedraw()
	d.processActions()
}

// SetNeedsForcedRedraw requests a draw that bypasses the usual gating.
func (d *Driver) SetNeedsForcedRedraw() {
	d.machine.SetNeedsForcedRedraw()
	d.processActions()
}

// SetHasPendingTree forwards whether a pending layer tree exists.
func (d *Driver) SetHasPendingTree(has bool) {
	d.machine.SetHasPendingTree(has)
	d.processActions()
}

// SetProducerNeedsTextures records that the producer is blocked on the
// layer textures.
func (d *Driver) SetProducerNeedsTextures() {
	d.machine.SetProducerNeedsTextures()
	d.processActions()
}

// DidFinishCommit signals that the producer delivered the requested
// frame and the commit may be applied.
func (d *Driver) DidFinishCommit() {
	d.machine.DidFinishCommit()
	d.processActions()
}

// DidRejectCommit signals that the producer declined the commit
// request. didHandle reports whether the producer consumed the update
// anyway.
func (d *Driver) DidRejectCommit(didHandle bool) {
	d.machine.DidRejectCommit(didHandle)
	d.processActions()
}

// DidLoseSurface signals that the output surface was lost.
func (d *Driver) DidLoseSurface() {
	d.machine.DidLoseSurface()
	d.processActions()
}

// DidInitializeSurface signals that surface creation completed.
func (d *Driver) DidInitializeSurface() {
	d.machine.DidInitializeSurface()
	d.processActions()
}

// processActions drains the machine's scheduled actions. Each iteration
// applies the transition first, then dispatches to the client, so the
// client observes post-action state. Reentrant calls return
// immediately; the outer loop picks up any state they changed.
func (d *Driver) processActions() {
	if d.dispatching {
		return
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()

	for {
		action := d.machine.NextAction()
		if action == compositor.ActionNone {
			return
		}
		compositor.Logger().Debug("dispatching action",
			"action", action,
			"commit_state", d.machine.CommitState(),
		)
		d.machine.UpdateState(action)
		d.dispatch(action)
	}
}

func (d *Driver) dispatch(action compositor.Action) {
	switch action {
	case compositor.ActionRequestCommit:
		d.client.ScheduledActionRequestCommit()
	case compositor.ActionCommit:
		d.client.ScheduledActionCommit()
	case compositor.ActionUpdateVisibleTiles:
		d.client.ScheduledActionUpdateVisibleTiles()
	case compositor.ActionActivatePendingTree:
		d.client.ScheduledActionActivatePendingTree()
	case compositor.ActionDrawIfPossible:
		res := d.client.ScheduledActionDrawIfPossible()
		if res.UsedDegradedTile {
			d.machine.DidSwapUseDegradedTile()
		}
		d.machine.DidDrawIfPossibleCompleted(res.Success)
	case compositor.ActionDrawForced:
		res := d.client.ScheduledActionDrawForced()
		if res.UsedDegradedTile {
			d.machine.DidSwapUseDegradedTile()
		}
	case compositor.ActionBeginSurfaceCreation:
		d.client.ScheduledActionBeginSurfaceCreation()
	case compositor.ActionAcquireTexturesForProducer:
		d.client.ScheduledActionAcquireTexturesForProducer()
	default:
		panic("driver: unknown action " + action.String())
	}
}
