// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package driver

import (
	"testing"
	"time"

	"github.com/gogpu/compositor"
)

// recordingClient records dispatched actions and answers draws with
// canned results.
type recordingClient struct {
	actions []compositor.Action
	draw    DrawResult
	forced  DrawResult

	// onRequestCommit, when set, runs inside the RequestCommit dispatch.
	onRequestCommit func()
}

func (c *recordingClient) record(a compositor.Action) {
	c.actions = append(c.actions, a)
}

func (c *recordingClient) ScheduledActionRequestCommit() {
	c.record(compositor.ActionRequestCommit)
	if c.onRequestCommit != nil {
		c.onRequestCommit()
	}
}

func (c *recordingClient) ScheduledActionCommit() {
	c.record(compositor.ActionCommit)
}

func (c *recordingClient) ScheduledActionUpdateVisibleTiles() {
	c.record(compositor.ActionUpdateVisibleTiles)
}

func (c *recordingClient) ScheduledActionActivatePendingTree() {
	c.record(compositor.ActionActivatePendingTree)
}

func (c *recordingClient) ScheduledActionDrawIfPossible() DrawResult {
	c.record(compositor.ActionDrawIfPossible)
	return c.draw
}

func (c *recordingClient) ScheduledActionDrawForced() DrawResult {
	c.record(compositor.ActionDrawForced)
	return c.forced
}

func (c *recordingClient) ScheduledActionBeginSurfaceCreation() {
	c.record(compositor.ActionBeginSurfaceCreation)
}

func (c *recordingClient) ScheduledActionAcquireTexturesForProducer() {
	c.record(compositor.ActionAcquireTexturesForProducer)
}

func wantActions(t *testing.T, got, want []compositor.Action) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatched %v, want %v", got, want)
		}
	}
}

func testArgs() compositor.BeginFrameArgs {
	return compositor.NewBeginFrameArgs(time.Unix(1000, 0), 16*time.Millisecond)
}

// bringUp walks the driver through surface creation into a visible,
// drawable state.
func bringUp(t *testing.T, d *Driver, c *recordingClient) {
	t.Helper()
	d.SetCanStart()
	wantActions(t, c.actions, []compositor.Action{compositor.ActionBeginSurfaceCreation})
	d.DidInitializeSurface()
	d.SetVisible(true)
	d.SetCanDraw(true)
	c.actions = nil
}

func TestNewNilClientPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(nil) did not panic")
		}
	}()
	New(nil)
}

func TestDriverHappyPath(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: true}}
	d := New(client)
	bringUp(t, d, client)

	d.SetNeedsCommit()
	d.DidFinishCommit()
	d.BeginTick(testArgs())
	d.EndTick()

	wantActions(t, client.actions, []compositor.Action{
		compositor.ActionRequestCommit,
		compositor.ActionCommit,
		compositor.ActionDrawIfPossible,
	})
	if got := d.Machine().CommitState(); got != compositor.CommitStateIdle {
		t.Errorf("CommitState() = %v, want Idle", got)
	}
	if got := d.Machine().CommitCount(); got != 1 {
		t.Errorf("CommitCount() = %d, want 1", got)
	}
	if d.WantsTick() {
		t.Error("WantsTick() = true after a clean frame")
	}
}

func TestDriverFailedDrawRequestsCommit(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: false}}
	d := New(client)
	bringUp(t, d, client)

	d.SetNeedsCommit()
	d.DidFinishCommit()
	client.actions = nil

	// The failed draw consumes this tick's draw slot and hands off to
	// the producer within the same tick.
	d.BeginTick(testArgs())
	d.EndTick()

	wantActions(t, client.actions, []compositor.Action{
		compositor.ActionDrawIfPossible,
		compositor.ActionRequestCommit,
	})
	if !d.WantsTick() {
		t.Error("WantsTick() = false while a retry is pending")
	}
}

func TestDriverForcedCommitWhileInvisible(t *testing.T) {
	client := &recordingClient{forced: DrawResult{Success: true}}
	d := New(client)

	// No surface, not visible: only the forced path makes progress.
	d.SetNeedsForcedCommit()
	d.DidFinishCommit()
	d.SetNeedsForcedRedraw()

	wantActions(t, client.actions, []compositor.Action{
		compositor.ActionRequestCommit,
		compositor.ActionCommit,
		compositor.ActionDrawForced,
	})
	if got := d.Machine().CommitState(); got != compositor.CommitStateFrameInProgress {
		t.Errorf("CommitState() after forced draw = %v, want FrameInProgress", got)
	}
}

func TestDriverReportsDegradedSwap(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: true, UsedDegradedTile: true}}
	d := New(client)
	bringUp(t, d, client)

	d.SetNeedsCommit()
	d.DidFinishCommit()
	d.BeginTick(testArgs())
	d.EndTick()

	// The degraded swap keeps the machine asking for ticks so the
	// placeholder content gets replaced.
	if !d.WantsTick() {
		t.Error("WantsTick() = false after a degraded swap")
	}
}

func TestDriverSynchronousDrawerEndsTick(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: true}}
	d := New(client, compositor.WithSynchronousDrawer())
	bringUp(t, d, client)

	d.SetNeedsCommit()
	d.DidFinishCommit()
	client.actions = nil

	// BeginTick is self-contained: it draws and leaves the tick.
	d.BeginTick(testArgs())
	wantActions(t, client.actions, []compositor.Action{compositor.ActionDrawIfPossible})

	// A second tick can draw again, so the first one really ended.
	client.actions = nil
	d.SetNeedsRedraw()
	d.BeginTick(testArgs())
	wantActions(t, client.actions, []compositor.Action{compositor.ActionDrawIfPossible})
}

func TestDriverTextureHandOff(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: true}}
	d := New(client)
	bringUp(t, d, client)

	// A commit leaves the drawer holding the textures.
	d.SetNeedsCommit()
	d.DidFinishCommit()
	client.actions = nil

	// Invisible, the drawer will never draw; a blocked producer gets
	// the textures immediately.
	d.SetVisible(false)
	d.SetProducerNeedsTextures()

	wantActions(t, client.actions, []compositor.Action{compositor.ActionAcquireTexturesForProducer})
	if got := d.Machine().TextureState(); got != compositor.TextureAcquiredByProducer {
		t.Errorf("TextureState() = %v, want AcquiredByProducer", got)
	}
}

func TestDriverReentrantClient(t *testing.T) {
	// The producer answers the commit request synchronously from inside
	// the dispatch callback. The driver must not recurse; the commit is
	// applied by the outer loop.
	client := &recordingClient{draw: DrawResult{Success: true}}
	d := New(client)
	client.onRequestCommit = func() { d.DidFinishCommit() }
	bringUp(t, d, client)

	d.SetNeedsCommit()

	wantActions(t, client.actions, []compositor.Action{
		compositor.ActionRequestCommit,
		compositor.ActionCommit,
	})
	if got := d.Machine().CommitState(); got != compositor.CommitStateWaitingForFirstDraw {
		t.Errorf("CommitState() = %v, want WaitingForFirstDraw", got)
	}
}

func TestDriverWantsTickProactive(t *testing.T) {
	// canDraw stays false so no tick is strictly needed; a pending
	// commit makes one merely anticipated.
	throttled := New(&recordingClient{}, compositor.WithFrameThrottling())
	throttled.SetCanStart()
	throttled.DidInitializeSurface()
	throttled.SetVisible(true)
	throttled.SetNeedsCommit()
	if !throttled.WantsTick() {
		t.Error("throttled WantsTick() = false with a commit pending")
	}

	plain := New(&recordingClient{})
	plain.SetCanStart()
	plain.DidInitializeSurface()
	plain.SetVisible(true)
	plain.SetNeedsCommit()
	if plain.WantsTick() {
		t.Error("unthrottled WantsTick() = true without a needed tick")
	}
}

func TestDriverSurfaceLossRecreation(t *testing.T) {
	client := &recordingClient{draw: DrawResult{Success: true}}
	d := New(client)
	bringUp(t, d, client)

	d.DidLoseSurface()
	// Recreation starts as soon as the pipeline is idle.
	wantActions(t, client.actions, []compositor.Action{compositor.ActionBeginSurfaceCreation})
	client.actions = nil

	d.DidInitializeSurface()
	// A recreated surface needs fresh content before anything draws.
	wantActions(t, client.actions, []compositor.Action{compositor.ActionRequestCommit})
	if got := d.Machine().CommitState(); got != compositor.CommitStateFrameInProgress {
		t.Errorf("CommitState() = %v, want FrameInProgress", got)
	}
}
