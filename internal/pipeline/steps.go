package pipeline

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/nao1215/torbar/internal/artifact"
	"github.com/nao1215/torbar/internal/engine"
	"github.com/nao1215/torbar/internal/fileutil"
	"github.com/nao1215/torbar/internal/firewall"
	"github.com/nao1215/torbar/internal/model"
	"github.com/nao1215/torbar/internal/tor"
)

// ServiceStep records whether the Tor unit is active.
type ServiceStep struct {
	probe engine.ServiceProbe
}

// NewServiceStep creates a ServiceStep.
func NewServiceStep(probe engine.ServiceProbe) *ServiceStep {
	return &ServiceStep{probe: probe}
}

// Name returns the step name.
func (s *ServiceStep) Name() string { return "service" }

// Do records the activity state.
func (s *ServiceStep) Do(ctx context.Context, diag *model.Diagnosis) error {
	diag.ServiceActive = s.probe.IsActive(ctx)
	return nil
}

// BootstrapStep records the bootstrap percentage. It is skipped while the
// service is inactive, as in a status run.
type BootstrapStep struct {
	probe engine.BootstrapProbe
}

// NewBootstrapStep creates a BootstrapStep.
func NewBootstrapStep(probe engine.BootstrapProbe) *BootstrapStep {
	return &BootstrapStep{probe: probe}
}

// Name returns the step name.
func (s *BootstrapStep) Name() string { return "bootstrap" }

// Do records the bootstrap percentage.
func (s *BootstrapStep) Do(ctx context.Context, diag *model.Diagnosis) error {
	if !diag.ServiceActive {
		return nil
	}
	diag.Bootstrap = model.ClampPercent(s.probe.Percent(ctx))
	return nil
}

// SocksChecker performs a SOCKS5 handshake.
type SocksChecker interface {
	ProxyAddress() string
	CheckConnection(ctx context.Context) tor.ProxyStatus
}

// SocksStep checks that the SOCKS5 listener answers.
type SocksStep struct {
	client SocksChecker
}

// NewSocksStep creates a SocksStep.
func NewSocksStep(client SocksChecker) *SocksStep {
	return &SocksStep{client: client}
}

// Name returns the step name.
func (s *SocksStep) Name() string { return "socks" }

// Do records the handshake result.
func (s *SocksStep) Do(ctx context.Context, diag *model.Diagnosis) error {
	status := s.client.CheckConnection(ctx)
	diag.Socks = model.SocksCheck{
		Address: s.client.ProxyAddress(),
		Result:  status.String(),
		OK:      status == tor.ProxyStatusOK,
	}
	return status.Error()
}

// ConnectivityChecker queries the check endpoint.
type ConnectivityChecker interface {
	Check(ctx context.Context) (tor.CheckResult, error)
}

// ConnectivityStep asks the check endpoint whether traffic leaves through
// Tor. Unlike a status run it also runs before bootstrap completes, so the
// report shows the direct path while Tor is still connecting.
type ConnectivityStep struct {
	checker ConnectivityChecker
}

// NewConnectivityStep creates a ConnectivityStep.
func NewConnectivityStep(checker ConnectivityChecker) *ConnectivityStep {
	return &ConnectivityStep{checker: checker}
}

// Name returns the step name.
func (s *ConnectivityStep) Name() string { return "connectivity" }

// Do records the verdict. IsTor stays nil when the service is inactive or
// the check fails.
func (s *ConnectivityStep) Do(ctx context.Context, diag *model.Diagnosis) error {
	if !diag.ServiceActive {
		return nil
	}
	res, err := s.checker.Check(ctx)
	if err != nil {
		return err
	}
	isTor := res.IsTor
	diag.IsTor = &isTor
	return nil
}

// RuleInspector reports which redirection rules are installed.
type RuleInspector interface {
	States(ctx context.Context) []firewall.RuleState
}

// ArtifactStep reports each proxy artifact individually.
type ArtifactStep struct {
	envFile   string
	rules     RuleInspector
	flagFiles []string
}

// NewArtifactStep creates an ArtifactStep.
func NewArtifactStep(envFile string, rules RuleInspector, flagFiles []string) *ArtifactStep {
	return &ArtifactStep{envFile: envFile, rules: rules, flagFiles: flagFiles}
}

// Name returns the step name.
func (s *ArtifactStep) Name() string { return "artifacts" }

// Do inspects the env file, every rule and every flag file. Inspection
// errors are collected and returned together after all artifacts were seen.
func (s *ArtifactStep) Do(ctx context.Context, diag *model.Diagnosis) error {
	var result *multierror.Error

	diag.ProxyEnv = model.FileCheck{Path: s.envFile, Present: fileutil.Exists(s.envFile)}

	for _, st := range s.rules.States(ctx) {
		rc := model.RuleCheck{Rule: st.Rule.String(), Present: st.Present}
		if st.Err != nil {
			rc.Error = st.Err.Error()
			result = multierror.Append(result, fmt.Errorf("rule %q: %w", st.Rule, st.Err))
		}
		diag.Rules = append(diag.Rules, rc)
	}

	for _, path := range s.flagFiles {
		exists, n, err := artifact.CountProxyFlags(path)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("flag file %s: %w", path, err))
		}
		diag.FlagFiles = append(diag.FlagFiles, model.FlagFileCheck{Path: path, Exists: exists, ProxyLines: n})
	}

	return result.ErrorOrNil()
}

// DecisionStep fills in what a status run would derive from the findings.
type DecisionStep struct{}

// NewDecisionStep creates a DecisionStep.
func NewDecisionStep() *DecisionStep {
	return &DecisionStep{}
}

// Name returns the step name.
func (s *DecisionStep) Name() string { return "decision" }

// Do classifies the diagnosis and picks the action a status run would take.
func (s *DecisionStep) Do(_ context.Context, diag *model.Diagnosis) error {
	connected := diag.Bootstrap == 100 && diag.IsTor != nil && *diag.IsTor
	obs := engine.Observation{
		Active:    diag.ServiceActive,
		Bootstrap: diag.Bootstrap,
		Connected: connected,
		Present:   diag.ProxyEnv.Present,
	}
	diag.Status = engine.Classify(obs.Active, obs.Bootstrap, obs.Connected)
	diag.Action = engine.Decide(obs, false).Action
	return nil
}
