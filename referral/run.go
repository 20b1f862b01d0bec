package referral

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// LeadSource is the raw converted-lead extract for one month
// (store/sqlite in this repo).
type LeadSource interface {
	ReferralLeadsForMonth(ctx context.Context, month model.Month) ([]model.ReferralLead, error)
}

type Audit interface {
	WriteReferral(ctx context.Context, row model.ReferralRow, mode config.AuditMode)
}

// Runner wires the Referral Scorer (C7) to its collaborators.
type Runner struct {
	Directory identity.Directory
	Leads     LeadSource
	Config    *config.Store
	Audit     Audit
	Log       zerolog.Logger
}

func NewRunner(dir identity.Directory, leads LeadSource, cfgStore *config.Store, auditSvc Audit, log zerolog.Logger) *Runner {
	return &Runner{
		Directory: dir, Leads: leads, Config: cfgStore, Audit: auditSvc,
		Log: log.With().Str("component", "referral").Logger(),
	}
}

// Run implements orchestrator.Scorers.RunReferral's signature: it resolves
// each lead's converter (and referrer, if any) against the RM directory
// and scores it against the fixed point table (spec.md §4.7). A lead
// whose converter cannot be resolved is skipped; one cannot score credit
// for an RM the directory has never heard of.
func (r *Runner) Run(ctx context.Context, month model.Month) ([]model.ReferralRow, error) {
	doc, err := r.Config.Referral(ctx)
	if err != nil {
		return nil, fmt.Errorf("referral: load config: %w", err)
	}
	cfg := doc.Options
	hash := config.MustHash(cfg)

	resolver := identity.NewResolver(r.Directory, cfg.IgnoredRMs)

	leads, err := r.Leads.ReferralLeadsForMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("referral: load leads: %w", err)
	}

	var out []model.ReferralRow
	for _, lead := range leads {
		converter, found, err := r.Directory.Lookup(ctx, lead.ConverterEmployeeID)
		if err != nil {
			return nil, fmt.Errorf("referral: lookup converter %q: %w", lead.ConverterEmployeeID, err)
		}
		if !found || resolver.IsIgnored(converter.DisplayName) {
			continue
		}

		var referrer *model.RM
		if lead.ReferrerEmployeeID != nil {
			rm, found, err := r.Directory.Lookup(ctx, *lead.ReferrerEmployeeID)
			if err != nil {
				return nil, fmt.Errorf("referral: lookup referrer %q: %w", *lead.ReferrerEmployeeID, err)
			}
			if found && !resolver.IsIgnored(rm.DisplayName) {
				referrer = &rm
			}
		}

		rows := Score(Input{
			LeadID: lead.LeadID, ReferralType: lead.ReferralType, Converter: converter, Referrer: referrer,
			SameFamilyHeadAsExisting: lead.SameFamilyHeadAsExisting, Month: month, Cfg: cfg, ConfigHash: hash,
		})
		for _, row := range rows {
			r.Audit.WriteReferral(ctx, row, cfg.Options.AuditMode)
			out = append(out, row)
		}
	}

	r.Log.Info().Str("month", month.String()).Int("rows", len(out)).Msg("referral scored")
	return out, nil
}
