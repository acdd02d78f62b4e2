package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/torbar/internal/model"
)

// Step is one diagnostic check.
//
// Design decision: steps share a single *model.Diagnosis instead of
// returning values. Later steps read what earlier ones found (the
// connectivity step needs the service state, the decision step needs
// everything), so ordering in the pipeline is the dependency graph.
type Step interface {
	// Do inspects the system and records its findings in diag.
	// A returned error is added to diag.Errors by the pipeline.
	Do(ctx context.Context, diag *model.Diagnosis) error

	// Name returns the step's name for logging and error reports.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps running after a step fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails.
//
// Design decision: the doctor always sets this. A dead SOCKS listener or a
// sudo refusal on the rule check is a finding to report, not a reason to
// skip the remaining checks. The default stays stop-on-error so a pipeline
// built without options fails fast.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order, checking for cancellation between them.
// Steps bound their own external calls with timeouts, so cancellation is
// only observed at step boundaries.
//
// Returns the first step error unless continueOnError is set, in which case
// errors only end up in diag.Errors. A cancelled context always stops the
// pipeline.
func (p *Pipeline) Execute(ctx context.Context, diag *model.Diagnosis) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			diag.AddError(step.Name(), ctx.Err())
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step", "step", step.Name())

		if err := step.Do(ctx, diag); err != nil {
			p.logger.Debug("step failed", "step", step.Name(), "error", err)
			diag.AddError(step.Name(), err)
			if !p.continueOnError {
				return err
			}
			continue
		}
		p.logger.Debug("step completed", "step", step.Name())
	}
	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
