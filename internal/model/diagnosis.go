package model

import "time"

// Diagnosis collects everything the doctor command inspects.
// Each pipeline step fills in its own fields; a step that fails records a
// StepError and leaves its fields at their zero value.
type Diagnosis struct {
	GeneratedAt time.Time `json:"generated_at"`
	Unit        string    `json:"unit"`

	ServiceActive bool `json:"service_active"`
	Bootstrap     int  `json:"bootstrap"`

	Socks SocksCheck `json:"socks"`

	// IsTor is nil when the connectivity check was not run.
	IsTor *bool `json:"is_tor,omitempty"`

	ProxyEnv  FileCheck       `json:"proxy_env"`
	Rules     []RuleCheck     `json:"rules"`
	FlagFiles []FlagFileCheck `json:"flag_files"`

	// Status and Action are what a status run would derive right now.
	Status Status `json:"status"`
	Action Action `json:"action"`

	Errors []StepError `json:"errors,omitempty"`
}

// NewDiagnosis returns an empty Diagnosis for unit.
func NewDiagnosis(unit string) *Diagnosis {
	return &Diagnosis{
		GeneratedAt: time.Now(),
		Unit:        unit,
		Rules:       []RuleCheck{},
		FlagFiles:   []FlagFileCheck{},
	}
}

// AddError records a failed step.
func (d *Diagnosis) AddError(step string, err error) {
	d.Errors = append(d.Errors, StepError{Step: step, Message: err.Error()})
}

// Healthy reports whether routing is fully in place: service active,
// bootstrap complete, egress verified and every artifact present.
func (d *Diagnosis) Healthy() bool {
	if !d.ServiceActive || d.Bootstrap != 100 || d.IsTor == nil || !*d.IsTor {
		return false
	}
	if !d.ProxyEnv.Present {
		return false
	}
	for _, r := range d.Rules {
		if !r.Present {
			return false
		}
	}
	return true
}

// SocksCheck is the outcome of a SOCKS5 handshake with the local listener.
type SocksCheck struct {
	Address string `json:"address"`
	Result  string `json:"result"`
	OK      bool   `json:"ok"`
}

// FileCheck reports whether a managed file exists.
type FileCheck struct {
	Path    string `json:"path"`
	Present bool   `json:"present"`
}

// RuleCheck reports whether one redirection rule is installed.
type RuleCheck struct {
	Rule    string `json:"rule"`
	Present bool   `json:"present"`
	Error   string `json:"error,omitempty"`
}

// FlagFileCheck counts proxy lines left in a browser flag file.
type FlagFileCheck struct {
	Path       string `json:"path"`
	Exists     bool   `json:"exists"`
	ProxyLines int    `json:"proxy_lines"`
}

// StepError is a failed diagnostic step.
type StepError struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}
