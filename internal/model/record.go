package model

import "strconv"

// Bar icons (Nerd Font private use codepoints).
const (
	IconConnected  = "\uF371"
	IconConnecting = "\uF0EC"
	IconStarting   = "\U000F051F"
	IconOff        = "\U000F139B"
)

// CSS classes the bar stylesheet keys on.
const (
	ClassConnected  = "tor-active"
	ClassConnecting = "tor-connecting"
	ClassStarting   = "tor-starting"
	ClassOff        = "tor-off"
)

// StatusRecord is the single JSON object printed for the bar per status run.
type StatusRecord struct {
	Text       string `json:"text"`
	Tooltip    string `json:"tooltip"`
	Class      string `json:"class"`
	Percentage int    `json:"percentage"`
}

// NewStatusRecord renders status and bootstrap percent into a StatusRecord.
// It is a pure function of its inputs; StatusNone renders as StatusOff.
func NewStatusRecord(status Status, percent int) StatusRecord {
	percent = ClampPercent(percent)

	switch status {
	case StatusConnected:
		return StatusRecord{
			Text:       IconConnected + " TOR",
			Tooltip:    "🔒 Tor network is active\n✅ Your traffic is anonymized\n🌐 Proxy enabled",
			Class:      ClassConnected,
			Percentage: percent,
		}
	case StatusConnecting:
		p := strconv.Itoa(percent)
		return StatusRecord{
			Text:       IconConnecting + " " + p + "%",
			Tooltip:    "🔄 Tor is connecting...\n📊 Bootstrap: " + p + "%",
			Class:      ClassConnecting,
			Percentage: percent,
		}
	case StatusStarting:
		return StatusRecord{
			Text:       IconStarting + " START",
			Tooltip:    "⏳ Tor service is starting...",
			Class:      ClassStarting,
			Percentage: percent,
		}
	default:
		return StatusRecord{
			Text:       IconOff + " OFF",
			Tooltip:    "🔓 Tor is not running\n🖱️ Click to start\n🌐 Direct connection",
			Class:      ClassOff,
			Percentage: percent,
		}
	}
}

// ClampPercent limits p to 0..100.
func ClampPercent(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
