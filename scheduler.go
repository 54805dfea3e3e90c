package compositor

import (
	"fmt"
	"log/slog"
	"strings"
)

// StateMachine is the frame-scheduling decision engine.
//
// It holds three interacting sub-states (commit pipeline, layer-texture
// ownership, output-surface lifecycle) plus scalar bookkeeping, and answers
// one question repeatedly through NextAction: given everything known right
// now, what single action should happen next?
//
// Every field mutation happens inside this type's own methods. External
// code reports facts through the notification methods and advances the
// bookkeeping through UpdateState; it never writes state directly.
//
// A StateMachine is single-threaded and synchronous: every method runs to
// completion with no locking and no blocking. The caller must ensure only
// one goroutine is inside it at a time.
//
// Illegal call sequences (finishing a commit while idle, initializing a
// surface that is not being created, ...) are contract violations by the
// driver and panic rather than coerce the state: the two sides have
// desynchronized and any recovery would mask a real bug.
type StateMachine struct {
	settings       Settings
	maxFailedDraws int

	commitState  CommitState
	textureState TextureState
	surfaceState SurfaceState

	// currentFrame advances once per tick. The lastFrame* markers record
	// the frame at which each once-per-tick event last happened; equality
	// with currentFrame means "already done this tick".
	currentFrame                 int
	lastFrameDrawn               int
	lastFrameTreeActivation      int
	lastFrameVisibleTilesUpdated int
	lastFrameCommitRequested     int

	commitCount            int
	consecutiveFailedDraws int

	needsRedraw                      bool
	needsForcedRedraw                bool
	needsRedrawAfterNextCommit       bool
	needsForcedRedrawAfterNextCommit bool
	needsCommit                      bool
	needsForcedCommit                bool
	expectImmediateTick              bool
	producerNeedsTextures            bool
	insideTick                       bool
	visible                          bool
	canStart                         bool
	canDraw                          bool
	lastDrawFailed                   bool
	swapUsedDegradedTile             bool
	hasPendingTree                   bool
	createdFirstSurface              bool

	lastTick BeginFrameArgs
}

// NewStateMachine creates a state machine with the given options.
//
// The machine starts idle, invisible, unable to draw, with no output
// surface; the driver enables it through SetCanStart, SetVisible and
// SetCanDraw as the surrounding system comes up.
func NewStateMachine(opts ...Option) *StateMachine {
	o := defaultMachineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &StateMachine{
		settings:                     o.settings,
		maxFailedDraws:               o.maxFailedDraws,
		commitState:                  CommitStateIdle,
		textureState:                 TextureUnlocked,
		surfaceState:                 SurfaceLost,
		lastFrameDrawn:               -1,
		lastFrameTreeActivation:      -1,
		lastFrameVisibleTilesUpdated: -1,
		lastFrameCommitRequested:     -1,
	}
}

// Settings returns the immutable settings the machine was built with.
// The driver reads SynchronousDrawer and ThrottleFrameProduction from here.
func (m *StateMachine) Settings() Settings { return m.settings }

// Once-per-tick markers.

func (m *StateMachine) drewThisTick() bool            { return m.lastFrameDrawn == m.currentFrame }
func (m *StateMachine) activatedTreeThisTick() bool   { return m.lastFrameTreeActivation == m.currentFrame }
func (m *StateMachine) updatedTilesThisTick() bool    { return m.lastFrameVisibleTilesUpdated == m.currentFrame }
func (m *StateMachine) requestedCommitThisTick() bool { return m.lastFrameCommitRequested == m.currentFrame }

// DrawSuspendedUntilCommit reports whether drawing is currently impossible:
// the drawer cannot draw, is not visible, or the producer holds the layer
// textures. While suspended, a new commit is the only way forward.
func (m *StateMachine) DrawSuspendedUntilCommit() bool {
	if !m.canDraw {
		return true
	}
	if !m.visible {
		return true
	}
	if m.textureState == TextureAcquiredByProducer {
		return true
	}
	return false
}

// scheduledToDraw reports whether a redraw is wanted and not suspended.
func (m *StateMachine) scheduledToDraw() bool {
	return m.needsRedraw && !m.DrawSuspendedUntilCommit()
}

// shouldDraw reports whether a draw is eligible right now. A forced redraw
// is always eligible; a normal redraw additionally requires an active tick,
// no draw yet this tick, and an active surface.
func (m *StateMachine) shouldDraw() bool {
	if m.needsForcedRedraw {
		return true
	}
	if !m.scheduledToDraw() {
		return false
	}
	if !m.insideTick {
		return false
	}
	if m.drewThisTick() {
		return false
	}
	if m.surfaceState != SurfaceActive {
		return false
	}
	return true
}

func (m *StateMachine) drawAction() Action {
	if m.needsForcedRedraw {
		return ActionDrawForced
	}
	return ActionDrawIfPossible
}

func (m *StateMachine) shouldActivatePendingTree() bool {
	return m.hasPendingTree && m.insideTick && !m.activatedTreeThisTick()
}

func (m *StateMachine) shouldUpdateVisibleTiles() bool {
	if !m.settings.ProducerSidePainting {
		return false
	}
	if m.updatedTilesThisTick() {
		return false
	}
	return m.shouldActivatePendingTree() || m.shouldDraw() || m.swapUsedDegradedTile
}

// shouldAcquireTexturesForProducer implements the deadlock-avoidance rule
// for texture reclaim: textures held by a drawer that will never draw again
// must not starve the producer. The tick-need predicate is read once, as a
// snapshot, not re-evaluated against the post-transfer state.
func (m *StateMachine) shouldAcquireTexturesForProducer() bool {
	if !m.producerNeedsTextures {
		return false
	}
	if m.textureState == TextureUnlocked {
		return true
	}
	if m.textureState != TextureAcquiredByDrawer {
		panic("compositor: producer requested textures it already owns")
	}
	// Transfer the drawer's hold only when the drawer is stalled: either
	// not scheduled to draw at all, or not in need of another tick.
	if !m.scheduledToDraw() {
		return true
	}
	if !m.TickNeeded() {
		return true
	}
	return false
}

// NextAction computes the single highest-priority action to perform right
// now. It is pure: calling it mutates nothing.
func (m *StateMachine) NextAction() Action {
	if m.shouldAcquireTexturesForProducer() {
		return ActionAcquireTexturesForProducer
	}

	switch m.commitState {
	case CommitStateIdle:
		if m.surfaceState != SurfaceActive && m.needsForcedRedraw {
			return ActionDrawForced
		}
		if m.surfaceState != SurfaceActive && m.needsForcedCommit {
			if m.hasPendingTree {
				return ActionNone
			}
			return ActionRequestCommit
		}
		if m.surfaceState == SurfaceLost && m.canStart {
			return ActionBeginSurfaceCreation
		}
		if m.surfaceState == SurfaceCreating {
			return ActionNone
		}
		if m.shouldUpdateVisibleTiles() {
			return ActionUpdateVisibleTiles
		}
		if m.shouldActivatePendingTree() {
			return ActionActivatePendingTree
		}
		if m.shouldDraw() {
			return m.drawAction()
		}
		if m.needsCommit &&
			((m.visible && !m.requestedCommitThisTick() && m.surfaceState == SurfaceActive) ||
				m.needsForcedCommit) {
			if m.hasPendingTree {
				return ActionNone
			}
			return ActionRequestCommit
		}
		return ActionNone

	case CommitStateFrameInProgress:
		if m.shouldUpdateVisibleTiles() {
			return ActionUpdateVisibleTiles
		}
		if m.shouldActivatePendingTree() {
			return ActionActivatePendingTree
		}
		if m.shouldDraw() {
			return m.drawAction()
		}
		return ActionNone

	case CommitStateReadyToCommit:
		return ActionCommit

	case CommitStateWaitingForFirstDraw:
		if m.shouldUpdateVisibleTiles() {
			return ActionUpdateVisibleTiles
		}
		if m.shouldActivatePendingTree() {
			return ActionActivatePendingTree
		}
		// Draw even on a lost surface so the applied commit is consumed
		// and surface recreation can proceed.
		if m.shouldDraw() || m.surfaceState == SurfaceLost {
			return m.drawAction()
		}
		// A draw must normally separate two commits. When drawing is
		// suspended anyway, the next commit is the only way to make
		// progress, so allow it.
		if m.needsCommit &&
			(m.needsForcedCommit || (m.visible && !m.requestedCommitThisTick())) &&
			m.DrawSuspendedUntilCommit() {
			return ActionRequestCommit
		}
		return ActionNone

	case CommitStateWaitingForFirstForcedDraw:
		if m.shouldUpdateVisibleTiles() {
			return ActionUpdateVisibleTiles
		}
		if m.shouldActivatePendingTree() {
			return ActionActivatePendingTree
		}
		if m.needsForcedRedraw {
			return ActionDrawForced
		}
		return ActionNone
	}
	return ActionNone
}

// UpdateState advances the bookkeeping for an action the driver has just
// performed. It must be called with the exact action previously returned
// by NextAction.
func (m *StateMachine) UpdateState(action Action) {
	switch action {
	case ActionNone:
		return

	case ActionUpdateVisibleTiles:
		m.lastFrameVisibleTilesUpdated = m.currentFrame

	case ActionActivatePendingTree:
		m.lastFrameTreeActivation = m.currentFrame

	case ActionRequestCommit:
		if m.hasPendingTree {
			panic("compositor: commit requested while a pending tree exists")
		}
		if !m.visible && !m.needsForcedCommit {
			panic("compositor: commit requested while invisible without a forced commit")
		}
		m.commitState = CommitStateFrameInProgress
		m.needsCommit = false
		m.needsForcedCommit = false
		m.lastFrameCommitRequested = m.currentFrame

	case ActionCommit:
		m.commitCount++
		if m.expectImmediateTick {
			m.commitState = CommitStateWaitingForFirstForcedDraw
		} else {
			m.commitState = CommitStateWaitingForFirstDraw
		}
		// Without producer-side painting, committing is what makes new
		// content visible, so every commit implies a redraw.
		if !m.settings.ProducerSidePainting {
			m.needsRedraw = true
		}
		// A failed draw already consumed this tick's draw slot; forget it
		// so the fresh content is not spuriously skipped.
		if m.lastDrawFailed {
			m.lastFrameDrawn = -1
		}
		m.promoteDeferredRedraws()
		m.textureState = TextureAcquiredByDrawer

	case ActionDrawIfPossible, ActionDrawForced:
		m.needsRedraw = false
		m.needsForcedRedraw = false
		m.lastDrawFailed = false
		m.swapUsedDegradedTile = false
		if m.insideTick {
			m.lastFrameDrawn = m.currentFrame
		}
		switch m.commitState {
		case CommitStateWaitingForFirstForcedDraw:
			m.commitState = CommitStateFrameInProgress
			m.expectImmediateTick = false
		case CommitStateWaitingForFirstDraw:
			m.commitState = CommitStateIdle
		}
		if m.textureState == TextureAcquiredByDrawer {
			m.textureState = TextureUnlocked
		}

	case ActionBeginSurfaceCreation:
		if m.commitState != CommitStateIdle {
			panic("compositor: surface creation started with a commit in flight")
		}
		if m.surfaceState != SurfaceLost {
			panic("compositor: surface creation started while surface is " + m.surfaceState.String())
		}
		m.surfaceState = SurfaceCreating

	case ActionAcquireTexturesForProducer:
		m.textureState = TextureAcquiredByProducer
		m.producerNeedsTextures = false

	default:
		panic(fmt.Sprintf("compositor: UpdateState with unknown action %d", action))
	}
}

// promoteDeferredRedraws consumes the one-shot "after next commit" latches.
func (m *StateMachine) promoteDeferredRedraws() {
	if m.needsRedrawAfterNextCommit {
		m.needsRedrawAfterNextCommit = false
		m.needsRedraw = true
	}
	if m.needsForcedRedrawAfterNextCommit {
		m.needsForcedRedrawAfterNextCommit = false
		m.needsForcedRedraw = true
	}
}

// Notifications.

// DidEnterTick records entry into a tick. The frame counter advances and
// the descriptor is stored verbatim for diagnostics.
func (m *StateMachine) DidEnterTick(args BeginFrameArgs) {
	m.currentFrame++
	m.insideTick = true
	m.lastTick = args
}

// DidLeaveTick records exit from the current tick.
func (m *StateMachine) DidLeaveTick() {
	m.insideTick = false
}

// SetVisible reports a visibility change of the compositor output.
func (m *StateMachine) SetVisible(visible bool) {
	m.visible = visible
}

// SetNeedsRedraw requests a redraw at the next eligible opportunity.
func (m *StateMachine) SetNeedsRedraw() {
	m.needsRedraw = true
}

// SetNeedsForcedRedraw requests a draw that bypasses visibility and timing
// gates. The draw happens even while invisible.
func (m *StateMachine) SetNeedsForcedRedraw() {
	m.needsForcedRedraw = true
}

// DidSwapUseDegradedTile records that the presented frame used a
// lower-quality placeholder in place of fully-ready content.
func (m *StateMachine) DidSwapUseDegradedTile() {
	m.swapUsedDegradedTile = true
}

// DidDrawIfPossibleCompleted reports the outcome of an ActionDrawIfPossible
// dispatch. A failure re-requests both a redraw and a commit; repeated
// failures escalate to a forced redraw once the configured threshold is
// reached and the checkerboard-timeout policy is enabled. The forced redraw
// is deferred until after the next commit: forcing immediately would
// present stale textures.
func (m *StateMachine) DidDrawIfPossibleCompleted(success bool) {
	m.lastDrawFailed = !success
	if success {
		m.consecutiveFailedDraws = 0
		return
	}
	m.needsRedraw = true
	m.needsCommit = true
	m.consecutiveFailedDraws++
	if m.settings.ForceDrawOnCheckerboardTimeout &&
		m.consecutiveFailedDraws >= m.maxFailedDraws {
		m.consecutiveFailedDraws = 0
		m.needsForcedRedrawAfterNextCommit = true
		Logger().Warn("repeated failed draws, forcing redraw after next commit",
			"threshold", m.maxFailedDraws)
	}
}

// SetNeedsCommit requests a commit at the next eligible opportunity.
func (m *StateMachine) SetNeedsCommit() {
	m.needsCommit = true
}

// SetNeedsForcedCommit requests a commit that bypasses the visibility and
// timing gates a normal commit requires, and arms the immediate-tick fast
// path for the producer.
func (m *StateMachine) SetNeedsForcedCommit() {
	m.needsForcedCommit = true
	m.expectImmediateTick = true
}

// DidFinishCommit reports that the producer finished building the commit.
// Legal only while a commit is in progress, or while a forced hand-off is
// outstanding in any non-idle state.
func (m *StateMachine) DidFinishCommit() {
	ok := m.commitState == CommitStateFrameInProgress ||
		(m.expectImmediateTick && m.commitState != CommitStateIdle)
	if !ok {
		panic("compositor: commit finished while " + m.commitState.String())
	}
	m.commitState = CommitStateReadyToCommit
}

// DidRejectCommit reports that the producer rejected the commit hand-off.
// didHandle is true when the producer handled the rejection cleanly; it may
// have pushed partial state, so the deferred redraw latches are promoted
// just as for a real commit. Legal only while a commit is in progress.
func (m *StateMachine) DidRejectCommit(didHandle bool) {
	if m.commitState != CommitStateFrameInProgress {
		panic("compositor: commit rejected while " + m.commitState.String())
	}
	if m.expectImmediateTick {
		// Another attempt follows through the normal forced path.
		m.expectImmediateTick = false
		return
	}
	m.commitState = CommitStateIdle
	if didHandle {
		m.promoteDeferredRedraws()
	} else {
		m.needsCommit = true
	}
}

// SetProducerNeedsTextures records that the producer asked for the shared
// layer textures. Only one request may be outstanding, and the producer
// must not already own them.
func (m *StateMachine) SetProducerNeedsTextures() {
	if m.producerNeedsTextures {
		panic("compositor: texture request already outstanding")
	}
	if m.textureState == TextureAcquiredByProducer {
		panic("compositor: producer already owns the layer textures")
	}
	m.producerNeedsTextures = true
}

// SetCanStart enables surface creation. One-shot latch.
func (m *StateMachine) SetCanStart() {
	m.canStart = true
}

// SetCanDraw reports whether the drawer is currently capable of drawing.
func (m *StateMachine) SetCanDraw(can bool) {
	m.canDraw = can
}

// SetHasPendingTree reports whether a committed-but-not-activated tree
// exists on the drawer side.
func (m *StateMachine) SetHasPendingTree(has bool) {
	m.hasPendingTree = has
}

// DidLoseSurface reports that the output surface was lost. A no-op while
// the surface is already lost or being recreated.
func (m *StateMachine) DidLoseSurface() {
	if m.surfaceState == SurfaceLost || m.surfaceState == SurfaceCreating {
		return
	}
	m.surfaceState = SurfaceLost
	Logger().Warn("output surface lost")
}

// DidInitializeSurface reports that surface creation finished and the
// surface is active. On a recreated surface the content must be
// resynchronized before drawing again, so a fresh commit is forced and any
// stale pending redraw is suppressed. In all cases a redraw is armed for
// after the next commit.
func (m *StateMachine) DidInitializeSurface() {
	if m.surfaceState != SurfaceCreating {
		panic("compositor: surface initialized while " + m.surfaceState.String())
	}
	m.surfaceState = SurfaceActive
	recreated := m.createdFirstSurface
	if recreated {
		m.needsCommit = true
		m.needsRedraw = false
	}
	m.needsRedrawAfterNextCommit = true
	m.createdFirstSurface = true
	Logger().Info("output surface initialized", "recreated", recreated)
}

// SetMaxFailedDraws overrides the consecutive-failed-draw threshold.
// Diagnostic/test hook.
func (m *StateMachine) SetMaxFailedDraws(n int) {
	if n < 1 {
		n = 1
	}
	m.maxFailedDraws = n
}

// Queries.

// CommitPending reports whether a commit hand-off is outstanding: the
// producer has been asked and the commit has not yet been applied.
func (m *StateMachine) CommitPending() bool {
	return m.commitState == CommitStateFrameInProgress ||
		m.commitState == CommitStateReadyToCommit
}

// RedrawPending reports whether a redraw has been requested.
func (m *StateMachine) RedrawPending() bool {
	return m.needsRedraw
}

// TickNeeded reports whether the drawer needs another tick to make
// progress.
func (m *StateMachine) TickNeeded() bool {
	// Until the drawer can draw again, ticking it is pointless.
	if !m.canDraw {
		return false
	}
	if m.needsForcedRedraw {
		return true
	}
	if m.visible && m.swapUsedDegradedTile {
		return true
	}
	return m.needsRedraw && m.visible && m.surfaceState == SurfaceActive
}

// ProactiveTickWanted reports whether the drawer would like another tick
// even without a hard requirement: content is on the way and a tick would
// shorten its latency.
func (m *StateMachine) ProactiveTickWanted() bool {
	if !m.visible || m.surfaceState != SurfaceActive {
		return false
	}
	return m.needsCommit || m.CommitPending() || m.hasPendingTree
}

// HasInitializedSurface reports whether an output surface has ever been
// successfully created.
func (m *StateMachine) HasInitializedSurface() bool {
	return m.createdFirstSurface
}

// CommitState returns the commit-pipeline sub-state for diagnostics.
func (m *StateMachine) CommitState() CommitState { return m.commitState }

// TextureState returns the texture-ownership sub-state for diagnostics.
func (m *StateMachine) TextureState() TextureState { return m.textureState }

// SurfaceState returns the output-surface sub-state for diagnostics.
func (m *StateMachine) SurfaceState() SurfaceState { return m.surfaceState }

// CommitCount returns how many commits have been applied.
func (m *StateMachine) CommitCount() int { return m.commitCount }

// String returns a human-readable dump of every internal field.
func (m *StateMachine) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "StateMachine{commit_state=%s texture_state=%s surface_state=%s",
		m.commitState, m.textureState, m.surfaceState)
	fmt.Fprintf(&b, " current_frame=%d last_frame_drawn=%d last_frame_tree_activation=%d",
		m.currentFrame, m.lastFrameDrawn, m.lastFrameTreeActivation)
	fmt.Fprintf(&b, " last_frame_visible_tiles_updated=%d last_frame_commit_requested=%d",
		m.lastFrameVisibleTilesUpdated, m.lastFrameCommitRequested)
	fmt.Fprintf(&b, " commit_count=%d consecutive_failed_draws=%d max_failed_draws=%d",
		m.commitCount, m.consecutiveFailedDraws, m.maxFailedDraws)
	fmt.Fprintf(&b, " needs_redraw=%t needs_forced_redraw=%t needs_redraw_after_next_commit=%t needs_forced_redraw_after_next_commit=%t",
		m.needsRedraw, m.needsForcedRedraw, m.needsRedrawAfterNextCommit, m.needsForcedRedrawAfterNextCommit)
	fmt.Fprintf(&b, " needs_commit=%t needs_forced_commit=%t expect_immediate_tick=%t producer_needs_textures=%t",
		m.needsCommit, m.needsForcedCommit, m.expectImmediateTick, m.producerNeedsTextures)
	fmt.Fprintf(&b, " inside_tick=%t visible=%t can_start=%t can_draw=%t",
		m.insideTick, m.visible, m.canStart, m.canDraw)
	fmt.Fprintf(&b, " last_draw_failed=%t swap_used_degraded_tile=%t has_pending_tree=%t created_first_surface=%t",
		m.lastDrawFailed, m.swapUsedDegradedTile, m.hasPendingTree, m.createdFirstSurface)
	fmt.Fprintf(&b, " last_tick=%s}", m.lastTick)
	return b.String()
}

// LogValue implements slog.LogValuer so the full state can be attached to
// a log record with a single attribute.
func (m *StateMachine) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("commit_state", m.commitState.String()),
		slog.String("texture_state", m.textureState.String()),
		slog.String("surface_state", m.surfaceState.String()),
		slog.Int("current_frame", m.currentFrame),
		slog.Int("last_frame_drawn", m.lastFrameDrawn),
		slog.Int("last_frame_tree_activation", m.lastFrameTreeActivation),
		slog.Int("last_frame_visible_tiles_updated", m.lastFrameVisibleTilesUpdated),
		slog.Int("last_frame_commit_requested", m.lastFrameCommitRequested),
		slog.Int("commit_count", m.commitCount),
		slog.Int("consecutive_failed_draws", m.consecutiveFailedDraws),
		slog.Int("max_failed_draws", m.maxFailedDraws),
		slog.Bool("needs_redraw", m.needsRedraw),
		slog.Bool("needs_forced_redraw", m.needsForcedRedraw),
		slog.Bool("needs_redraw_after_next_commit", m.needsRedrawAfterNextCommit),
		slog.Bool("needs_forced_redraw_after_next_commit", m.needsForcedRedrawAfterNextCommit),
		slog.Bool("needs_commit", m.needsCommit),
		slog.Bool("needs_forced_commit", m.needsForcedCommit),
		slog.Bool("expect_immediate_tick", m.expectImmediateTick),
		slog.Bool("producer_needs_textures", m.producerNeedsTextures),
		slog.Bool("inside_tick", m.insideTick),
		slog.Bool("visible", m.visible),
		slog.Bool("can_start", m.canStart),
		slog.Bool("can_draw", m.canDraw),
		slog.Bool("last_draw_failed", m.lastDrawFailed),
		slog.Bool("swap_used_degraded_tile", m.swapUsedDegradedTile),
		slog.Bool("has_pending_tree", m.hasPendingTree),
		slog.Bool("created_first_surface", m.createdFirstSurface),
		slog.Any("last_tick", m.lastTick),
	)
}
