// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yasinhessnawi1/sentrylog/internal/auth"
	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/repository"
	"github.com/yasinhessnawi1/sentrylog/internal/service"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// AccessLogHandler exposes the admin query surface (spec §4.E/§6) over
// captured access records, suspicious-IP detection, and ban management.
type AccessLogHandler struct {
	query *service.AdminQueryService
}

// NewAccessLogHandler creates an AccessLogHandler.
//
// Parameters:
//   - query: The AdminQueryService backing every endpoint
//
// Returns:
//   - A properly initialized AccessLogHandler
func NewAccessLogHandler(query *service.AdminQueryService) *AccessLogHandler {
	return &AccessLogHandler{query: query}
}

// ListAccessLogs returns a filtered, paginated page of access records.
//
// HTTP Method:
//   - GET
//
// URL Path:
//   - /sp-admin/access-logs
//
// Requires:
//   - Authentication: Admin JWT
//
// Responses:
//   - 200 OK: Paginated list of access records
//   - 400 Bad Request: Invalid filter parameters (out-of-range or malformed
//     page/limit values are not rejected; they fall back to defaults and are clamped)
//   - 500 Internal Server Error: Server-side error
//
// @Summary List access log records
// @Description Returns access records matching the given filters, paginated
// @Tags Admin/AccessLogs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=[]models.AccessRecord}
// @Failure 400 {object} utils.Response{error=string}
// @Failure 500 {object} utils.Response{error=string}
// @Router /sp-admin/access-logs [get]
func (h *AccessLogHandler) ListAccessLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	startDate, endDate, err := utils.ValidateDateRange(q.Get(constants.QueryParamStartDate), q.Get(constants.QueryParamEndDate))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	filter := repository.AccessLogFilter{
		IPAddress: q.Get(constants.QueryParamIPAddress),
		TenantID:  q.Get(constants.QueryParamTenantID),
		UserID:    q.Get(constants.QueryParamUserID),
		Method:    q.Get(constants.QueryParamMethod),
		Path:      q.Get(constants.QueryParamPath),
		StartDate: startDate,
		EndDate:   endDate,
	}

	if raw := q.Get(constants.QueryParamStatusCode); raw != "" {
		statusCode, convErr := strconv.Atoi(raw)
		if convErr != nil {
			utils.ErrorFromAppError(w, utils.NewValidationError(constants.QueryParamStatusCode, "Must be an integer"))
			return
		}
		filter.StatusCode = statusCode
		filter.HasStatusCode = true
	}

	pagination := parsePagination(r, constants.DefaultAccessLogPageSize)

	records, total, err := h.query.ListLogs(r.Context(), filter, repository.Pagination{Page: pagination.Page, Limit: pagination.PageSize})
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.Paginated(w, http.StatusOK, records, pagination.Page, pagination.PageSize, total)
}

// ListSuspiciousIPs returns the ranked suspicious-IP candidates produced by
// the Detection Engine.
//
// HTTP Method:
//   - GET
//
// URL Path:
//   - /sp-admin/access-logs/suspicious
//
// Requires:
//   - Authentication: Admin JWT
//
// Responses:
//   - 200 OK: Ranked suspicious-IP candidates
//   - 400 Bad Request: Invalid query parameters
//   - 500 Internal Server Error: Server-side error
//
// @Summary List suspicious IP addresses
// @Description Returns IPs flagged by the detection engine, ranked by risk score
// @Tags Admin/AccessLogs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Response{data=[]models.SuspiciousIP}
// @Failure 400 {object} utils.Response{error=string}
// @Failure 500 {object} utils.Response{error=string}
// @Router /sp-admin/access-logs/suspicious [get]
func (h *AccessLogHandler) ListSuspiciousIPs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	startDate, endDate, err := utils.ValidateDateRange(q.Get(constants.QueryParamStartDate), q.Get(constants.QueryParamEndDate))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	options := service.DetectionOptions{}
	if !startDate.IsZero() {
		options.StartDate = &startDate
	}
	if !endDate.IsZero() {
		options.EndDate = &endDate
	}

	if raw := q.Get(constants.QueryParamMinRiskScore); raw != "" {
		minRiskScore, convErr := strconv.Atoi(raw)
		if convErr != nil || minRiskScore < 0 || minRiskScore > 100 {
			utils.ErrorFromAppError(w, utils.NewValidationError(constants.QueryParamMinRiskScore, "Must be an integer between 0 and 100"))
			return
		}
		options.MinRiskScore = &minRiskScore
	}

	suspicious, err := h.query.ListSuspiciousIPs(r.Context(), options)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, suspicious)
}

// GetIPDetails returns request statistics and ban/whitelist status for a
// single IP address.
//
// HTTP Method:
//   - GET
//
// URL Path:
//   - /sp-admin/access-logs/ip/:ipAddress
//
// Requires:
//   - Authentication: Admin JWT
//
// Responses:
//   - 200 OK: IP statistics and authority verdicts
//   - 400 Bad Request: Invalid IP address or query parameters
//   - 500 Internal Server Error: Server-side error
//
// @Summary Get IP address details
// @Description Returns request statistics and ban/whitelist status for an IP
// @Tags Admin/AccessLogs
// @Produce json
// @Security BearerAuth
// @Param ipAddress path string true "IP address"
// @Success 200 {object} utils.Response{data=service.IPDetailView}
// @Failure 400 {object} utils.Response{error=string}
// @Failure 500 {object} utils.Response{error=string}
// @Router /sp-admin/access-logs/ip/{ipAddress} [get]
func (h *AccessLogHandler) GetIPDetails(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, constants.ParamIPAddress)
	if !utils.IsValidIP(ip) {
		utils.ErrorFromAppError(w, utils.NewValidationError(constants.ParamIPAddress, "Must be a valid IP address"))
		return
	}

	q := r.URL.Query()
	startDate, endDate, err := utils.ValidateDateRange(q.Get(constants.QueryParamStartDate), q.Get(constants.QueryParamEndDate))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	details, err := h.query.GetIPDetails(r.Context(), ip, startDate, endDate)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, details)
}

// banRequest is the decoded body of BanIPFromSuspicious.
type banRequest struct {
	Reason    string     `json:"reason"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// BanIPFromSuspicious bans an IP address, synthesizing a default reason from
// the Detection Engine when none is supplied.
//
// HTTP Method:
//   - POST
//
// URL Path:
//   - /sp-admin/access-logs/ip/:ipAddress/ban
//
// Requires:
//   - Authentication: Admin JWT
//
// Request Body:
//   - JSON object with optional "reason" and "expiresAt" fields
//
// Responses:
//   - 201 Created: IP successfully banned
//   - 400 Bad Request: Invalid IP address or request body
//   - 500 Internal Server Error: Server-side error
//
// @Summary Ban an IP address from the suspicious-IP listing
// @Description Bans an IP address, synthesizing a reason from current detection factors if absent
// @Tags Admin/AccessLogs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ipAddress path string true "IP address"
// @Param ban body banRequest false "Optional reason/expiry override"
// @Success 201 {object} utils.Response{data=models.BanEntry}
// @Failure 400 {object} utils.Response{error=string}
// @Failure 500 {object} utils.Response{error=string}
// @Router /sp-admin/access-logs/ip/{ipAddress}/ban [post]
func (h *AccessLogHandler) BanIPFromSuspicious(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, constants.ParamIPAddress)
	if !utils.IsValidIP(ip) {
		utils.ErrorFromAppError(w, utils.NewValidationError(constants.ParamIPAddress, "Must be a valid IP address"))
		return
	}

	var req banRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		if !isEmptyBodyError(err) {
			utils.ErrorFromAppError(w, utils.ParseError(err))
			return
		}
	}

	username, ok := auth.GetUsername(r)
	if !ok {
		username = "system"
	}

	ban, err := h.query.BanFromSuspicious(r.Context(), ip, service.BanFromSuspiciousOptions{
		Reason:    req.Reason,
		ExpiresAt: req.ExpiresAt,
	}, username)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusCreated, ban)
}

// isEmptyBodyError reports whether err is the validation error DecodeJSON
// returns for an absent request body; the ban endpoint treats a missing
// body the same as an empty {} override.
func isEmptyBodyError(err error) bool {
	appErr, ok := err.(*utils.AppError)
	return ok && appErr.Message == constants.MsgEmptyRequestBody
}

// parsePagination extracts page/limit query parameters, defaulting limit to
// defaultLimit rather than utils.GetPaginationParams' generic default.
func parsePagination(r *http.Request, defaultLimit int) utils.PaginationParams {
	q := r.URL.Query()

	page := constants.DefaultPage
	if raw := q.Get(constants.QueryParamPage); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 1 {
			page = parsed
		}
	}

	limit := defaultLimit
	if raw := q.Get(constants.QueryParamLimit); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < constants.MinPageSize {
		limit = constants.MinPageSize
	} else if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	return utils.PaginationParams{Page: page, PageSize: limit}
}
