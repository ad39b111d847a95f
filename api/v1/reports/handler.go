package reports

import (
	"certhub/internal/domainutil"
	"certhub/internal/httpx"
	"certhub/internal/report"

	"github.com/gin-gonic/gin"
)

// Handler accepts user-submitted issue reports
type Handler struct {
	sender report.Sender
}

// NewHandler creates a new reports handler
func NewHandler(sender report.Sender) *Handler {
	return &Handler{sender: sender}
}

// SubmitRequest represents an issue report request body
type SubmitRequest struct {
	RequestID string `json:"requestId"`
	Domain    string `json:"domain"`
	Email     string `json:"email" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

// Submit forwards an issue report to the operations team
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("email and message are required"))
		return
	}
	if err := domainutil.ValidateEmail(req.Email); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid email address"))
		return
	}

	err := h.sender.Send(c.Request.Context(), report.IssueReport{
		RequestID: req.RequestID,
		Domain:    req.Domain,
		Email:     req.Email,
		Message:   req.Message,
	})
	if err != nil {
		httpx.FailErr(c, httpx.ErrExternalError("failed to deliver report", err))
		return
	}

	httpx.OKMsg(c, "report submitted", nil)
}
