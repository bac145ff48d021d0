package viewer

import "time"

// Page-turn timing. The start delay gives the presentation a settled
// frame before the animation begins; the duration is fixed and the
// machine never measures it itself, completion always arrives as an
// external event.
const (
	TurnStartDelay = 10 * time.Millisecond
	TurnDuration   = time.Second
)

// TurnDirection is the way a page turn moves through the document.
type TurnDirection int

const (
	TurnForward TurnDirection = iota
	TurnBackward
)

func (d TurnDirection) String() string {
	if d == TurnBackward {
		return "backward"
	}
	return "forward"
}

// TurnPhase is the machine state.
type TurnPhase int

const (
	// TurnIdle means no turn is in flight.
	TurnIdle TurnPhase = iota
	// TurnArmed means a turn was accepted but its animation has not
	// started yet.
	TurnArmed
	// TurnRunning means the animation is under way.
	TurnRunning
)

// Turn is the page-turn state machine for the spread layout. A turn is
// requested, armed, started by an external tick, and committed by an
// external finish event carrying the turn's sequence number. Stale or
// spurious events are ignored by sequence comparison, so a finish from
// an abandoned turn can never commit a newer one.
type Turn struct {
	phase     TurnPhase
	direction TurnDirection
	seq       uint64
	startedAt time.Time
}

// NewTurn returns an idle machine.
func NewTurn() *Turn {
	return &Turn{}
}

func (t *Turn) Phase() TurnPhase          { return t.phase }
func (t *Turn) Direction() TurnDirection  { return t.direction }
func (t *Turn) Seq() uint64               { return t.seq }
func (t *Turn) Turning() bool             { return t.phase != TurnIdle }

// Request asks for a turn. It is accepted only when the machine is idle,
// the session shows the spread layout, and the destination exists:
// forward needs a page beyond the current spread, backward needs one
// before it. Rejected requests change nothing and make no sound.
func (t *Turn) Request(dir TurnDirection, s *Session) bool {
	if t.phase != TurnIdle || s.Layout() != LayoutSpread {
		return false
	}

	inc := s.increment()
	switch dir {
	case TurnForward:
		if s.Page()+inc-1 >= s.PageCount() {
			return false
		}
	case TurnBackward:
		if s.Page() <= 1 {
			return false
		}
	default:
		return false
	}

	t.phase = TurnArmed
	t.direction = dir
	t.seq++
	return true
}

// Start moves an armed turn into its running phase. Events carrying a
// stale sequence, or arriving while idle, are dropped.
func (t *Turn) Start(seq uint64, now time.Time) bool {
	if t.phase != TurnArmed || seq != t.seq {
		return false
	}
	t.phase = TurnRunning
	t.startedAt = now
	return true
}

// Finish commits a completed turn: the current page advances by the
// layout increment (backward turns clamp at page 1), zoom and pan reset,
// and the machine returns to idle. A finish while idle or with a stale
// sequence is spurious and ignored. It reports whether a commit happened.
func (t *Turn) Finish(seq uint64, s *Session) bool {
	if t.phase == TurnIdle || seq != t.seq {
		return false
	}

	inc := s.increment()
	switch t.direction {
	case TurnForward:
		s.SetPage(s.Page() + inc)
	case TurnBackward:
		s.SetPage(s.Page() - inc)
	}

	t.phase = TurnIdle
	t.startedAt = time.Time{}
	return true
}

// Abort destroys an in-flight turn without committing. Layout switches
// and direct jumps use this so a dangling finish event finds a stale
// sequence and does nothing.
func (t *Turn) Abort() {
	if t.phase == TurnIdle {
		return
	}
	t.phase = TurnIdle
	t.startedAt = time.Time{}
	t.seq++
}

// Progress reports how far the running animation has come in [0, 1].
// It is purely cosmetic: frames draw from it, but the commit only ever
// happens through Finish.
func (t *Turn) Progress(now time.Time) float64 {
	if t.phase != TurnRunning {
		return 0
	}
	p := float64(now.Sub(t.startedAt)) / float64(TurnDuration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// increment is how many pages one turn or spread step covers.
func (s *Session) increment() int {
	if s.layout == LayoutSpread {
		return 2
	}
	return 1
}
