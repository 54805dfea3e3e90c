package compositor

// Action is the single side effect the driver must perform next.
//
// NextAction returns exactly one Action per call. The driver performs the
// named side effect (or determines it is impossible) and then calls
// UpdateState with that same Action so the state machine can advance its
// bookkeeping.
type Action int

const (
	// ActionNone indicates nothing should happen right now.
	ActionNone Action = iota

	// ActionRequestCommit asks the producer to begin building a commit.
	ActionRequestCommit

	// ActionCommit applies the finished commit to the drawer-visible tree.
	ActionCommit

	// ActionUpdateVisibleTiles refreshes the set of visible tiles before
	// activation or drawing. Only issued when producer-side painting is
	// enabled.
	ActionUpdateVisibleTiles

	// ActionActivatePendingTree attempts to activate the pending
	// (committed but not yet drawn) tree.
	ActionActivatePendingTree

	// ActionDrawIfPossible rasterizes and presents a frame if the drawer
	// is able to.
	ActionDrawIfPossible

	// ActionDrawForced rasterizes and presents a frame unconditionally,
	// bypassing visibility and timing gates. Used for recovery.
	ActionDrawForced

	// ActionBeginSurfaceCreation starts creating a new output surface
	// after the previous one was lost.
	ActionBeginSurfaceCreation

	// ActionAcquireTexturesForProducer transfers ownership of the shared
	// layer textures to the producer.
	ActionAcquireTexturesForProducer
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionRequestCommit:
		return "RequestCommit"
	case ActionCommit:
		return "Commit"
	case ActionUpdateVisibleTiles:
		return "UpdateVisibleTiles"
	case ActionActivatePendingTree:
		return "ActivatePendingTree"
	case ActionDrawIfPossible:
		return "DrawIfPossible"
	case ActionDrawForced:
		return "DrawForced"
	case ActionBeginSurfaceCreation:
		return "BeginSurfaceCreation"
	case ActionAcquireTexturesForProducer:
		return "AcquireTexturesForProducer"
	default:
		return "Unknown"
	}
}
