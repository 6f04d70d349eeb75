package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gunvolt24/brokerdemo/internal/domain"
	"github.com/Gunvolt24/brokerdemo/internal/ports"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	sender     ports.MessageSender
	log        ports.Logger
	brokerName string
	timeout    time.Duration
	now        func() time.Time
}

// NewHandler — brokerName попадает в текст ошибки 500 ("SQS", "Kafka").
// timeout <= 0 — без собственного таймаута на запрос.
func NewHandler(sender ports.MessageSender, log ports.Logger, brokerName string, timeout time.Duration) *Handler {
	return &Handler{
		sender:     sender,
		log:        log,
		brokerName: brokerName,
		timeout:    timeout,
		now:        time.Now,
	}
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	SentID    string `json:"sentId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) postMessage(c *gin.Context) {
	var req domain.MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "ID is required"})
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	res, err := h.sender.Send(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "ID is required"})
			return
		}
		h.log.Errorf(ctx, "send failed id=%s err=%v", req.ID, err)
		c.JSON(http.StatusInternalServerError, errorResponse{
			Error:   "Failed to send message to " + h.brokerName,
			Details: err.Error(),
		})
		return
	}

	h.log.Infof(ctx, "message sent to %s message_id=%s", h.brokerName, res.MessageID)
	c.JSON(http.StatusOK, sendResponse{Success: true, MessageID: res.MessageID, SentID: res.SentID})
}

func (h *Handler) health(c *gin.Context) {
	healthHandler(h.now)(c)
}

// healthHandler — общий для продюсера и воркера ответ liveness-пробы.
func healthHandler(now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": now().UTC()})
	}
}
