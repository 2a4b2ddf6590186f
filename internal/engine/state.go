package engine

import "sync/atomic"

// State is a job's position in its pipeline. A job moves forward only:
// Queued, Decoding, Transforming, Encoding, DoneOK, or to DoneErr from
// any non-terminal state.
type State int32

const (
	Queued State = iota
	Decoding
	Transforming
	Encoding
	DoneOK
	DoneErr
)

var stateNames = [...]string{"queued", "decoding", "transforming", "encoding", "done_ok", "done_err"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "invalid"
	}
	return stateNames[s]
}

// Terminal reports whether s is DoneOK or DoneErr.
func (s State) Terminal() bool { return s == DoneOK || s == DoneErr }

// processing reports whether a job in s holds a worker and a decoded asset.
func (s State) processing() bool { return s == Decoding || s == Transforming || s == Encoding }

type job struct {
	index int
	input Input
	state atomic.Int32
}

func (j *job) load() State { return State(j.state.Load()) }

// advance moves the job from one state to the next. It fails when
// another goroutine (the cancel sweep) got there first.
func (j *job) advance(from, to State) bool {
	return j.state.CompareAndSwap(int32(from), int32(to))
}
