package pipeline

import (
	"log/slog"

	"github.com/nao1215/torbar/internal/bootstrap"
	"github.com/nao1215/torbar/internal/config"
	"github.com/nao1215/torbar/internal/firewall"
	"github.com/nao1215/torbar/internal/service"
	"github.com/nao1215/torbar/internal/tor"
)

// NewDoctor builds the diagnostic pipeline for cfg.
func NewDoctor(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	svc, err := service.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := tor.NewClient(cfg.SocksAddress, cfg.NetworkTimeout)
	if err != nil {
		return nil, err
	}
	checker, err := tor.NewCheckerFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	backend, err := firewall.NewBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	rules := firewall.NewRedirector(backend, firewall.RedirectRules(cfg.TransPort, cfg.DNSPort), logger)

	p := New(WithLogger(logger), WithContinueOnError(true))
	p.AddSteps(
		NewServiceStep(svc),
		NewBootstrapStep(bootstrap.NewJournalProbe(cfg, logger)),
		NewSocksStep(client),
		NewConnectivityStep(checker),
		NewArtifactStep(cfg.ProxyEnvFile, rules, cfg.FlagFiles),
		NewDecisionStep(),
	)
	return p, nil
}
