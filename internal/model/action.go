package model

// Action is the corrective side effect chosen by reconciliation.
type Action int

const (
	// ActionNone leaves the proxy artifacts untouched.
	ActionNone Action = iota
	// ActionApply installs the proxy artifacts.
	ActionApply
	// ActionRevert removes the proxy artifacts.
	ActionRevert
)

// String returns the lowercase action name.
func (a Action) String() string {
	switch a {
	case ActionApply:
		return "apply"
	case ActionRevert:
		return "revert"
	default:
		return "none"
	}
}

// ParseAction is the inverse of Action.String. Unknown names map to ActionNone.
func ParseAction(name string) Action {
	switch name {
	case "apply":
		return ActionApply
	case "revert":
		return ActionRevert
	default:
		return ActionNone
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}
