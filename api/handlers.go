/*
handlers.go - HTTP handlers for the public leaderboard and admin config API

ARCHITECTURE:
  Handler holds every collaborator the routes need (store, config store,
  identity directory, orchestrator, locker) the same way the teacher's
  Handler bundles Store and PolicyFactory. Handlers parse the request,
  delegate to the domain packages, and serialize the result; they never
  contain scoring logic themselves.

ERROR HANDLING:
  Mirrors spec.md §7's taxonomy at the transport boundary: validation
  failures are 400 with a structured field-error list, not-found is 404,
  everything else unexpected is 500. No error ever causes a partial
  write (config PUT validates before touching the backend).
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/lock"
	"github.com/vilakshan/pli-leaderboard/model"
	"github.com/vilakshan/pli-leaderboard/orchestrator"
)

const timeRFC3339 = time.RFC3339

// lockTTL bounds how long a single re-aggregation run may hold the
// reaggregate job lock before another replica is allowed to take over.
const lockTTL = 15 * time.Minute

// Store is everything the handlers need to read persisted rows; kept
// narrow (store/sqlite satisfies it structurally) so handlers stay
// testable against a fake.
type Store interface {
	PublicForMonth(ctx context.Context, month model.Month) ([]model.PublicRow, error)
	PublicForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.PublicRow, bool, error)
	LumpsumForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.LumpsumRow, bool, error)
	SipForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.SipRow, bool, error)
	InsuranceForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.InsuranceRow, bool, error)
	ReferralForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) ([]model.ReferralRow, error)
	Create(ctx context.Context, a model.Adjustment) error
	SetStatus(ctx context.Context, id string, status model.AdjustmentStatus, actedBy string) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store        Store
	Directory    identity.Directory
	Config       *config.Store
	Orchestrator *orchestrator.Orchestrator
	Locker       *lock.Locker
	validate     *validator.Validate
	log          zerolog.Logger
}

func NewHandler(store Store, dir identity.Directory, cfgStore *config.Store, orch *orchestrator.Orchestrator, locker *lock.Locker, log zerolog.Logger) *Handler {
	return &Handler{
		Store: store, Directory: dir, Config: cfgStore, Orchestrator: orch, Locker: locker,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "api").Logger(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeValidationErrors(w http.ResponseWriter, errs config.ValidationErrors) {
	fields := make([]FieldErrorDTO, len(errs))
	for i, e := range errs {
		fields[i] = FieldErrorDTO{Field: e.Field, Message: e.Message}
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: fields})
}

func parseMonth(r *http.Request) (model.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		now := time.Now()
		return model.NewMonth(now.Year(), now.Month()), nil
	}
	return model.ParseMonth(raw)
}

// =============================================================================
// PUBLIC LEADERBOARD
// =============================================================================

// ListLeaderboard handles GET /leaderboard?month=YYYY-MM&view={MTD|YTD}.
func (h *Handler) ListLeaderboard(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	rows, err := h.Store.PublicForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaderboard", err)
		return
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].TotalPointsFinal.Float64() > rows[j].TotalPointsFinal.Float64()
	})

	dtos := make([]LeaderboardRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = toLeaderboardRowDTO(i+1, row)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMe handles GET /leaderboard/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	h.getUserRow(w, r, caller.EmployeeID)
}

// GetMeBreakdown handles GET /leaderboard/me/breakdown.
func (h *Handler) GetMeBreakdown(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFromContext(r.Context())
	h.getUserBreakdown(w, r, caller.EmployeeID)
}

// GetUser handles GET /leaderboard/user/{id} (admin-only).
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.getUserRow(w, r, model.EntityID(chi.URLParam(r, "id")))
}

// GetUserBreakdown handles GET /leaderboard/user/{id}/breakdown (admin-only).
func (h *Handler) GetUserBreakdown(w http.ResponseWriter, r *http.Request) {
	h.getUserBreakdown(w, r, model.EntityID(chi.URLParam(r, "id")))
}

func (h *Handler) getUserRow(w http.ResponseWriter, r *http.Request, employeeID model.EntityID) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}
	row, found, err := h.Store.PublicForEmployee(r.Context(), employeeID, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load row", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no row for employee/month", nil)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardRowDTO(0, row))
}

func (h *Handler) getUserBreakdown(w http.ResponseWriter, r *http.Request, employeeID model.EntityID) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}
	ctx := r.Context()

	public, found, err := h.Store.PublicForEmployee(ctx, employeeID, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load public row", err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no row for employee/month", nil)
		return
	}

	dto := BreakdownDTO{
		EmployeeID: string(employeeID), EmployeeName: public.EmployeeName, Month: month.String(),
		Adjustments: toAdjustmentDTOs(public.Adjustments), AuditSummary: toPublicAuditSummaryDTO(public.AuditSummary),
	}

	if l, found, err := h.Store.LumpsumForEmployee(ctx, employeeID, month); err == nil && found {
		dto.Lumpsum = &LumpsumDTO{
			NetPurchase: l.NetPurchase.Float64(), GrowthPct: l.GrowthPct, Rate: l.Rate,
			PointsTotal: l.PointsTotal.Float64(),
		}
	}
	if s, found, err := h.Store.SipForEmployee(ctx, employeeID, month); err == nil && found {
		dto.Sip = &SipDTO{
			NetSip: s.NetSip.Float64(), Tier: s.Tier, GateApplied: s.GateApplied,
			SipPoints: s.SipPoints.Float64(), PointsTotal: s.PointsTotal.Float64(),
		}
	}
	if ins, found, err := h.Store.InsuranceForEmployee(ctx, employeeID, month); err == nil && found {
		dto.Insurance = &InsuranceDTO{
			FreshPremiumEligible: ins.FreshPremiumEligible, PayoutSlabLabel: ins.PayoutSlabLabel,
			PointsTotal: ins.PointsTotal.Float64(),
		}
	}
	if refs, err := h.Store.ReferralForEmployee(ctx, employeeID, month); err == nil {
		for _, ref := range refs {
			dto.Referrals = append(dto.Referrals, ReferralRowDTO{
				LeadID: ref.LeadID, Scenario: string(ref.Scenario), Points: ref.Points.Float64(),
			})
		}
	}

	writeJSON(w, http.StatusOK, dto)
}

// groupKeyFor resolves the grouping key a team-view request asked for.
// leaderboard.Aggregate never sets TeamID or ReportingManagerID on
// PublicRow, so every row falls into "unassigned"; the grouping plumbing
// itself is still exercised end to end.
func groupKeyFor(row model.PublicRow, groupType string) string {
	switch groupType {
	case "team":
		if row.TeamID != "" {
			return row.TeamID
		}
	case "manager":
		if row.ReportingManagerID != "" {
			return row.ReportingManagerID
		}
	}
	return "unassigned"
}

// GetTeamView handles GET /leaderboard/team-view?month=... (admin-only).
func (h *Handler) GetTeamView(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}
	groupType := r.URL.Query().Get("group_type")
	if groupType == "" {
		groupType = "team"
	}

	rows, err := h.Store.PublicForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaderboard", err)
		return
	}

	summaries := make(map[string]*GroupSummaryDTO)
	var order []string
	for _, row := range rows {
		key := groupKeyFor(row, groupType)
		g, ok := summaries[key]
		if !ok {
			g = &GroupSummaryDTO{GroupKey: key}
			summaries[key] = g
			order = append(order, key)
		}
		g.MemberCount++
		g.TotalPointsPublic += row.TotalPointsPublic.Float64()
	}

	out := make([]GroupSummaryDTO, len(order))
	for i, key := range order {
		out[i] = *summaries[key]
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTeamViewMembers handles GET /leaderboard/team-view/members (admin-only).
func (h *Handler) GetTeamViewMembers(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}
	groupType := r.URL.Query().Get("group_type")
	if groupType == "" {
		groupType = "team"
	}
	groupKey := r.URL.Query().Get("group_key")

	rows, err := h.Store.PublicForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaderboard", err)
		return
	}

	var out []GroupMemberDTO
	for _, row := range rows {
		if groupKey != "" && groupKeyFor(row, groupType) != groupKey {
			continue
		}
		out = append(out, GroupMemberDTO{
			EmployeeID: string(row.EmployeeID), EmployeeName: row.EmployeeName,
			TotalPointsPublic: row.TotalPointsPublic.Float64(), PayoutEligible: row.PayoutEligible,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetBreakdownExport handles GET /leaderboard/breakdown?month=...&group_key=MASTER_TEAM (admin-only).
func (h *Handler) GetBreakdownExport(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	rows, err := h.Store.PublicForMonth(r.Context(), month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leaderboard", err)
		return
	}

	out := make([]LeaderboardRowDTO, len(rows))
	for i, row := range rows {
		out[i] = toLeaderboardRowDTO(i+1, row)
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// ADMIN CONFIG
// =============================================================================

// scorerConfigResponse builds the GET/PUT/reset response envelope common
// to every module (spec.md §6.3: "{module, effective_config, raw_config,
// schema_version}"). Per-metric configs have no separate "raw" override
// layer in this design (Document[T].Options already is the merged,
// effective value — see the per-metric MergeOver methods in
// config/lumpsum.go, sip.go, insurance.go and referral.go), so both fields
// carry the same payload.
func scorerConfigResponse(module config.Metric, schemaVersion, version int, updatedAt, updatedBy string, effective, raw any) ScorerConfigResponse {
	return ScorerConfigResponse{
		Module: string(module), EffectiveConfig: effective, RawConfig: raw,
		SchemaVersion: schemaVersion, Version: version, UpdatedAt: updatedAt, UpdatedBy: updatedBy,
	}
}

func (h *Handler) GetScorerConfig(w http.ResponseWriter, r *http.Request) {
	module := config.Metric(chi.URLParam(r, "module"))
	ctx := r.Context()

	switch module {
	case config.MetricLumpsum:
		doc, err := h.Config.Lumpsum(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricSip:
		doc, err := h.Config.Sip(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricInsurance:
		doc, err := h.Config.Insurance(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	default:
		writeError(w, http.StatusNotFound, "unknown scorer module", nil)
	}
}

func (h *Handler) PutScorerConfig(w http.ResponseWriter, r *http.Request) {
	module := config.Metric(chi.URLParam(r, "module"))

	var req ScorerPutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	caller, _ := CallerFromContext(r.Context())
	ctx := r.Context()

	switch module {
	case config.MetricLumpsum:
		var patch config.LumpsumConfig
		if err := json.Unmarshal(req.Patch, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid patch", err)
			return
		}
		doc, errs, err := h.Config.PutLumpsum(ctx, patch, string(caller.EmployeeID), req.Reason)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update config", err)
			return
		}
		if errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricSip:
		var patch config.SipConfig
		if err := json.Unmarshal(req.Patch, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid patch", err)
			return
		}
		doc, errs, err := h.Config.PutSip(ctx, patch, string(caller.EmployeeID), req.Reason)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update config", err)
			return
		}
		if errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricInsurance:
		var patch config.InsuranceConfig
		if err := json.Unmarshal(req.Patch, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid patch", err)
			return
		}
		doc, errs, err := h.Config.PutInsurance(ctx, patch, string(caller.EmployeeID), req.Reason)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to update config", err)
			return
		}
		if errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	default:
		writeError(w, http.StatusNotFound, "unknown scorer module", nil)
	}
}

func (h *Handler) ResetScorerConfig(w http.ResponseWriter, r *http.Request) {
	module := config.Metric(chi.URLParam(r, "module"))
	caller, _ := CallerFromContext(r.Context())
	ctx := r.Context()

	switch module {
	case config.MetricLumpsum:
		doc, err := h.Config.ResetLumpsum(ctx, string(caller.EmployeeID), "admin reset")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricSip:
		doc, err := h.Config.ResetSip(ctx, string(caller.EmployeeID), "admin reset")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	case config.MetricInsurance:
		doc, err := h.Config.ResetInsurance(ctx, string(caller.EmployeeID), "admin reset")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset config", err)
			return
		}
		writeJSON(w, http.StatusOK, scorerConfigResponse(module, doc.SchemaVersion, doc.Version, doc.UpdatedAt.Format(timeRFC3339), doc.UpdatedBy, doc.Options, doc.Options))
	default:
		writeError(w, http.StatusNotFound, "unknown scorer module", nil)
	}
}

// Reaggregate handles POST /admin/scorer/{module}/reaggregate. The module
// path segment is accepted for route symmetry with spec.md §6.3 but a
// re-aggregation run always re-scores every metric together (spec.md
// §4.9: Lumpsum/Insurance must run before SIP regardless of which module
// triggered the request).
func (h *Handler) Reaggregate(w http.ResponseWriter, r *http.Request) {
	var req ReaggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	months, err := parseReaggregateMonths(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month(s)", err)
		return
	}

	ctx := r.Context()
	handle, acquired, err := h.Locker.Acquire(ctx, "reaggregate", lockTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to acquire lock", err)
		return
	}
	if !acquired {
		writeError(w, http.StatusConflict, "a re-aggregation run is already in progress", nil)
		return
	}
	defer func() { _ = handle.Release(ctx) }()

	for _, m := range months {
		if err := h.Orchestrator.RunMonth(ctx, m); err != nil {
			writeError(w, http.StatusInternalServerError, "re-aggregation failed", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "months": req.Months})
}

func parseReaggregateMonths(req ReaggregateRequest) ([]model.Month, error) {
	if req.Month != "" {
		m, err := model.ParseMonth(req.Month)
		if err != nil {
			return nil, err
		}
		return []model.Month{m}, nil
	}
	out := make([]model.Month, 0, len(req.Months))
	for _, raw := range req.Months {
		m, err := model.ParseMonth(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// CreateAdjustment handles POST /admin/adjustments.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	var req CreateAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	month, err := model.ParseMonth(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err)
		return
	}

	caller, _ := CallerFromContext(r.Context())
	a := model.Adjustment{
		ID: uuid.NewString(), EmployeeID: model.EntityID(req.EmployeeID), Month: month,
		Reason: req.Reason, Value: req.Value, Type: model.AdjustmentType(req.Type),
		Status: model.AdjustmentPending, CreatedAt: time.Now(), ActedBy: string(caller.EmployeeID),
	}
	if err := h.Store.Create(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// SetAdjustmentStatus handles POST /admin/adjustments/{id}/status.
func (h *Handler) SetAdjustmentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req SetAdjustmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	caller, _ := CallerFromContext(r.Context())
	if err := h.Store.SetStatus(r.Context(), id, model.AdjustmentStatus(req.Status), string(caller.EmployeeID)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update adjustment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetScorerAudit handles GET /admin/scorer/{module}/audit?limit=N.
func (h *Handler) GetScorerAudit(w http.ResponseWriter, r *http.Request) {
	module := config.Metric(chi.URLParam(r, "module"))
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := h.Config.Audit(r.Context(), module, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load audit archive", err)
		return
	}
	out := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, out)
}
