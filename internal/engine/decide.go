package engine

import "github.com/nao1215/torbar/internal/model"

// Observation is what the probes reported during one run.
type Observation struct {
	// Active is the service activity state.
	Active bool
	// Bootstrap is 0 whenever Active is false.
	Bootstrap int
	// Connected is false unless Bootstrap is 100.
	Connected bool
	// Present reports whether the proxy artifacts are installed.
	Present bool
}

// Decision is the corrective action for an Observation.
type Decision struct {
	Action   model.Action
	Notified bool
}

// Decide picks the corrective action. It has no side effects.
//
// An inactive service with artifacts left behind is reverted; a fully
// bootstrapped service without artifacts gets them applied. Anything else
// leaves the artifacts alone and carries the previous notified flag.
func Decide(obs Observation, prevNotified bool) Decision {
	switch {
	case !obs.Active && obs.Present:
		return Decision{Action: model.ActionRevert, Notified: true}
	case obs.Active && obs.Bootstrap == 100 && !obs.Present:
		return Decision{Action: model.ActionApply, Notified: true}
	default:
		return Decision{Action: model.ActionNone, Notified: prevNotified}
	}
}

// Classify maps the probe results to a Status. The first matching rule wins,
// so a complete but unverified bootstrap is still connecting.
func Classify(active bool, bootstrap int, connected bool) model.Status {
	switch {
	case connected:
		return model.StatusConnected
	case active && bootstrap > 0:
		return model.StatusConnecting
	case active:
		return model.StatusStarting
	default:
		return model.StatusOff
	}
}
