package compositor

// CommitState tracks where the current commit is in the pipeline.
//
// The normal path is Idle → FrameInProgress → ReadyToCommit →
// WaitingForFirstDraw → Idle. A forced commit takes the
// WaitingForFirstForcedDraw branch instead of WaitingForFirstDraw.
type CommitState int

const (
	// CommitStateIdle means no commit is in flight.
	CommitStateIdle CommitState = iota

	// CommitStateFrameInProgress means the producer has been asked to
	// build a commit and has not finished yet.
	CommitStateFrameInProgress

	// CommitStateReadyToCommit means the producer finished and the commit
	// is waiting to be applied to the drawer-visible tree.
	CommitStateReadyToCommit

	// CommitStateWaitingForFirstDraw means the commit was applied and the
	// drawer has not yet presented it.
	CommitStateWaitingForFirstDraw

	// CommitStateWaitingForFirstForcedDraw is the forced-commit variant of
	// WaitingForFirstDraw: only a forced draw may complete it.
	CommitStateWaitingForFirstForcedDraw
)

// String returns the commit state name.
func (s CommitState) String() string {
	switch s {
	case CommitStateIdle:
		return "Idle"
	case CommitStateFrameInProgress:
		return "FrameInProgress"
	case CommitStateReadyToCommit:
		return "ReadyToCommit"
	case CommitStateWaitingForFirstDraw:
		return "WaitingForFirstDraw"
	case CommitStateWaitingForFirstForcedDraw:
		return "WaitingForFirstForcedDraw"
	default:
		return "Unknown"
	}
}

// TextureState tracks which side currently owns the shared layer textures.
//
// The drawer may only draw while the textures are Unlocked or held by the
// drawer. The producer is only granted ownership after it has explicitly
// asked and the current owner can safely release.
type TextureState int

const (
	// TextureUnlocked means neither side holds the layer textures.
	TextureUnlocked TextureState = iota

	// TextureAcquiredByProducer means the producer holds the textures.
	// Drawing is suspended until the next commit returns them.
	TextureAcquiredByProducer

	// TextureAcquiredByDrawer means the drawer holds the textures for the
	// frame it is about to present.
	TextureAcquiredByDrawer
)

// String returns the texture state name.
func (s TextureState) String() string {
	switch s {
	case TextureUnlocked:
		return "Unlocked"
	case TextureAcquiredByProducer:
		return "AcquiredByProducer"
	case TextureAcquiredByDrawer:
		return "AcquiredByDrawer"
	default:
		return "Unknown"
	}
}

// SurfaceState tracks the output-surface lifecycle.
//
// A surface must be lost before a new one begins creation, and creation
// must finish before any draw is attempted against it.
type SurfaceState int

const (
	// SurfaceActive means a presentable surface exists.
	SurfaceActive SurfaceState = iota

	// SurfaceLost means the surface is gone and a new one is needed.
	SurfaceLost

	// SurfaceCreating means a replacement surface is being created.
	SurfaceCreating
)

// String returns the surface state name.
func (s SurfaceState) String() string {
	switch s {
	case SurfaceActive:
		return "Active"
	case SurfaceLost:
		return "Lost"
	case SurfaceCreating:
		return "Creating"
	default:
		return "Unknown"
	}
}
