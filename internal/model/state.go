package model

// PersistedState is what survives between invocations.
//
//	{"status": "connecting", "bootstrap": 45, "proxy_notified": false}
//
// Missing fields take their zero value; status null is StatusNone.
type PersistedState struct {
	Status        Status `json:"status"`
	Bootstrap     int    `json:"bootstrap"`
	ProxyNotified bool   `json:"proxy_notified"`
}

// DefaultPersistedState is the state assumed when nothing usable is stored.
func DefaultPersistedState() PersistedState {
	return PersistedState{Status: StatusNone}
}
