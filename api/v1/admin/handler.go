package admin

import (
	"certhub/internal/httpx"
	"certhub/internal/issuance"
	"certhub/internal/stats"

	"github.com/gin-gonic/gin"
)

// Handler exposes operational endpoints for the admin account
type Handler struct {
	recorder stats.Recorder
	store    *issuance.Store
}

// NewHandler creates a new admin handler
func NewHandler(recorder stats.Recorder, store *issuance.Store) *Handler {
	return &Handler{recorder: recorder, store: store}
}

// StatsResponse represents usage statistics response data
type StatsResponse struct {
	stats.Summary
	ActiveRequests int `json:"activeRequests"`
}

// Stats reports issuance counters and the live request count
func (h *Handler) Stats(c *gin.Context) {
	summary, err := h.recorder.Snapshot(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to read statistics", err))
		return
	}

	httpx.OK(c, StatsResponse{
		Summary:        summary,
		ActiveRequests: h.store.Len(),
	})
}
