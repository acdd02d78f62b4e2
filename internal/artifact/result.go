package artifact

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Step is the outcome of one best-effort step.
type Step struct {
	Name string
	Err  error
}

// Result collects the steps of one Apply or Revert.
type Result struct {
	Steps []Step
}

func (r *Result) record(name string, err error) {
	r.Steps = append(r.Steps, Step{Name: name, Err: err})
}

// OK reports whether every step succeeded.
func (r Result) OK() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return false
		}
	}
	return true
}

// Err aggregates the failed steps, or returns nil when all succeeded.
func (r Result) Err() error {
	var merr *multierror.Error
	for _, s := range r.Steps {
		if s.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", s.Name, s.Err))
		}
	}
	return merr.ErrorOrNil()
}

// Failed returns the names of the failed steps.
func (r Result) Failed() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s.Name)
		}
	}
	return out
}
