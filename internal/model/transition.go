package model

import "time"

// Transition is one recorded status change.
type Transition struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	Bootstrap int       `json:"bootstrap"`
	Action    Action    `json:"action"`
}
