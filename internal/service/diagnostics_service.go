package service

import (
	"context"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/internal/repository"
	"github.com/formhub/backend/pkg/wordpress"
)

// DiagnosticsService runs the operator-facing probes against a site:
// REST root reachability, forms plugin namespace, plugin install state.
// None of these are on the sync path.
type DiagnosticsService interface {
	Run(ctx context.Context, siteID int64) (*model.DiagnosticsReport, error)
}

type diagnosticsServiceImpl struct {
	sites     repository.SiteRepository
	newClient ClientFactory
}

// NewDiagnosticsService creates a DiagnosticsService.
func NewDiagnosticsService(sites repository.SiteRepository, newClient ClientFactory) DiagnosticsService {
	return &diagnosticsServiceImpl{sites: sites, newClient: newClient}
}

// Run executes the probes in order, stopping early when the site itself is
// unreachable. Probe failures are reported in the result, not as errors.
func (s *diagnosticsServiceImpl) Run(ctx context.Context, siteID int64) (*model.DiagnosticsReport, error) {
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	client := s.newClient(site)
	report := &model.DiagnosticsReport{SiteID: site.ID}

	if err := client.CheckReachable(ctx); err != nil {
		report.Reachable.Error = wordpress.ErrorMessage(err)
		return report, nil
	}
	report.Reachable.OK = true

	if err := client.CheckPluginAPI(ctx); err != nil {
		report.PluginAPI.Error = wordpress.ErrorMessage(err)
	} else {
		report.PluginAPI.OK = true
	}

	info, err := client.PluginStatus(ctx)
	if err != nil {
		report.Plugin.Error = wordpress.ErrorMessage(err)
	} else {
		report.Plugin.Installed = true
		report.Plugin.Active = info.Status == "active"
		report.Plugin.Version = info.Version
	}
	return report, nil
}
