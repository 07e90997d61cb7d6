package domain

import "time"

// Transition names the operation currently in flight on the engine.
type Transition string

const (
	TransitionNone       Transition = ""
	TransitionRefresh    Transition = "refresh"
	TransitionStart      Transition = "start"
	TransitionEnd        Transition = "end"
	TransitionPauseStart Transition = "pause_start"
	TransitionPauseEnd   Transition = "pause_end"
)

type Phase string

const (
	PhaseNoSession     Phase = "no_session"
	PhaseOpen          Phase = "open"
	PhaseTransitioning Phase = "transitioning"
)

// PhaseOf derives the observable phase; loading without a named transition
// cannot be expressed.
func PhaseOf(pending Transition, current *WorkSession) Phase {
	switch {
	case pending != TransitionNone:
		return PhaseTransitioning
	case current != nil:
		return PhaseOpen
	default:
		return PhaseNoSession
	}
}

// View is the cached working set. Current and Sessions are always replaced together.
type View struct {
	Current     *WorkSession
	Sessions    []WorkSession
	LastRefresh time.Time
}

func (v View) Clone() View {
	out := View{LastRefresh: v.LastRefresh, Sessions: make([]WorkSession, 0, len(v.Sessions))}
	if v.Current != nil {
		current := v.Current.Clone()
		out.Current = &current
	}
	for _, s := range v.Sessions {
		out.Sessions = append(out.Sessions, s.Clone())
	}
	return out
}
