package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/models"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/service"
	"github.com/Lyzr-Apps/corey-support-agent-amazing-gear-2llo/internal/session"
)

type Handler struct {
	Store     *session.Store
	Settings  *session.Settings
	Chat      *service.ChatService
	Approvals *service.ApprovalService
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session_id": h.Store.SessionID()})
}

type SendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// @Summary Send a chat message
// @Description Sends a user message to the support agent and applies any workflow effects from its reply
// @Tags chat
// @Accept json
// @Produce json
// @Param body body SendMessageRequest true "message"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/chat/messages [post]
func (h *Handler) ChatSend(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}

	messages, err := h.Chat.Send(c.Request.Context(), req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message must not be empty", nil)
		case errors.Is(err, service.ErrBusy):
			writeError(c, http.StatusConflict, "BUSY", "A previous exchange is still in flight", nil)
		default:
			writeError(c, http.StatusInternalServerError, "CHAT_ERROR", "Failed to process message", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"stats":    h.Store.Stats(),
	})
}

func (h *Handler) ChatMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Messages()})
}

func (h *Handler) TicketsList(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.Tickets()})
}

func (h *Handler) TicketDetails(c *gin.Context) {
	id := c.Param("id")
	t, ok := h.Store.Ticket(id)
	if !ok {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ApprovalsPending(c *gin.Context) {
	items := h.Store.PendingApprovals()
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) ApprovalsResolved(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Store.ResolvedApprovals()})
}

type ResolveApprovalRequest struct {
	OrderID  string `json:"order_id" validate:"required"`
	Decision string `json:"decision" validate:"required,oneof=approved denied"`
	Notes    string `json:"notes" validate:"required"`
}

// @Summary Resolve a pending approval
// @Description Applies an operator decision to a pending approval request via the approval-handling agent
// @Tags approvals
// @Accept json
// @Produce json
// @Param body body ResolveApprovalRequest true "decision"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/approvals/resolve [post]
func (h *Handler) ApprovalResolve(c *gin.Context) {
	var req ResolveApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	record, err := h.Approvals.Resolve(c.Request.Context(), req.OrderID, req.Decision, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotesRequired):
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Operator notes are required", nil)
		case errors.Is(err, session.ErrNotFound):
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Approval request is not pending", nil)
		case errors.Is(err, service.ErrProcessing):
			writeError(c, http.StatusConflict, "PROCESSING", "Approval is already being processed", nil)
		default:
			writeError(c, http.StatusBadGateway, "AGENT_ERROR", "Failed to process approval", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"resolved": record, "pending": h.Store.PendingApprovals()})
}

func (h *Handler) RevenueList(c *gin.Context) {
	stats := h.Store.Stats()
	c.JSON(http.StatusOK, gin.H{
		"items":            h.Store.RevenueEntries(),
		"pro_fund_balance": stats.ProFundBalance,
		"conversion_count": stats.ConversionCount,
	})
}

// Dashboard aggregates the stat-card view: ticket counts, revenue totals,
// Pro Fund progress, and the payout-ready flag.
func (h *Handler) Dashboard(c *gin.Context) {
	settings := h.Settings.Get()
	stats := h.Store.Stats()

	balance, conversions := h.Store.FundProgress(time.Now().UTC(), 0)
	policy := session.FundPolicy{
		ThresholdAmount: settings.ProFundThreshold,
		ThresholdCount:  settings.ConversionCountThreshold,
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"pro_fund": gin.H{
			"balance":          balance,
			"conversion_count": conversions,
			"threshold":        settings.ProFundThreshold,
			"count_threshold":  settings.ConversionCountThreshold,
			"time_window_days": settings.TimeWindowDays,
			"ready":            policy.Ready(balance, conversions),
		},
		"notification_count": stats.PendingApprovals,
	})
}

func (h *Handler) SettingsGet(c *gin.Context) {
	c.JSON(http.StatusOK, h.Settings.Get())
}

func (h *Handler) SettingsUpdate(c *gin.Context) {
	var req models.AppSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if req.ProFundPercentage < 0 || req.ProFundPercentage > 100 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "pro_fund_percentage must be between 0 and 100", nil)
		return
	}
	h.Settings.Update(req)
	c.JSON(http.StatusOK, h.Settings.Get())
}

type SampleDataRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) SampleData(c *gin.Context) {
	var req SampleDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if req.Enabled {
		h.Store.LoadSample(time.Now().UTC())
	} else {
		h.Store.Reset()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "stats": h.Store.Stats()})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
