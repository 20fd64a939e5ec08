package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/diabetes-risk/internal/domain/admin"
	"github.com/yanqian/diabetes-risk/internal/domain/records"
	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

// sessionHeader carries the id of the browser session owning a result slot.
const sessionHeader = "X-Session-ID"

// Handler wires the HTTP transport to domain services.
type Handler struct {
	riskSvc   risk.Service
	recordSvc records.Service
	adminSvc  admin.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(riskSvc risk.Service, recordSvc records.Service, adminSvc admin.Service, logger *slog.Logger) *Handler {
	return &Handler{
		riskSvc:   riskSvc,
		recordSvc: recordSvc,
		adminSvc:  adminSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// Assess validates a raw form, scores it and stores the result slot.
func (h *Handler) Assess(c *gin.Context) {
	var form risk.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	assessment, err := h.riskSvc.Assess(c.Request.Context(), risk.AssessRequest{
		SessionID: c.GetHeader(sessionHeader),
		Form:      form,
	})
	if err != nil {
		abortWithError(c, domainError(err, "assessment_failed"))
		return
	}

	c.Header(sessionHeader, assessment.SessionID)
	c.JSON(http.StatusOK, assessment)
}

// Evaluate scores an already normalized measurement without storing anything.
func (h *Handler) Evaluate(c *gin.Context) {
	var m risk.Measurement
	if err := c.ShouldBindJSON(&m); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, h.riskSvc.Evaluate(m))
}

// Result reads back the session's latest assessment.
func (h *Handler) Result(c *gin.Context) {
	sessionID := strings.TrimSpace(c.GetHeader(sessionHeader))
	if sessionID == "" {
		sessionID = strings.TrimSpace(c.Query("session"))
	}
	assessment, ok, err := h.riskSvc.LoadResult(c.Request.Context(), sessionID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "result_failed", "failed to load result", err))
		return
	}
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "result_not_found", "no stored result for this session", nil))
		return
	}
	c.JSON(http.StatusOK, assessment)
}

// SaveRecord is the collector endpoint the submission sink posts to.
func (h *Handler) SaveRecord(c *gin.Context) {
	var req records.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.recordSvc.Save(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "record_save_failed"))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AdminLogin exchanges staff credentials for a bearer token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req admin.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.adminSvc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "login_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListRecords returns saved records filtered by risk category and sex.
func (h *Handler) ListRecords(c *gin.Context) {
	filter := records.ListFilter{
		RiskCategory: c.Query("risk_category"),
		Sex:          c.Query("sex"),
	}
	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be an integer", err))
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "offset must be an integer", err))
		return
	}

	items, err := h.recordSvc.List(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, domainError(err, "record_list_failed"))
		return
	}
	if claims, ok := staffClaims(c); ok {
		h.logger.Info("records listed", "staff", claims.Username, "count", len(items))
	}
	c.JSON(http.StatusOK, gin.H{"records": items})
}

// GetRecord returns one saved record.
func (h *Handler) GetRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "record id must be an integer", err))
		return
	}
	record, err := h.recordSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err, "record_load_failed"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
