package certificates

import (
	"context"
	"errors"

	"certhub/internal/httpx"
	"certhub/internal/issuance"

	"github.com/gin-gonic/gin"
)

// Service is the slice of the issuance orchestrator the handlers consume.
type Service interface {
	RequestCertificate(ctx context.Context, in issuance.RequestInput) (*issuance.RequestResult, error)
	StartValidation(ctx context.Context, requestID string) (*issuance.StatusResult, error)
	CheckStatus(ctx context.Context, requestID string) (*issuance.StatusResult, error)
}

// Handler exposes the certificate issuance API
type Handler struct {
	svc Service
}

// NewHandler creates a new certificates handler
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// RequestBody represents a certificate request body
type RequestBody struct {
	Domain string `json:"domain" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Method string `json:"method"`
}

// Request opens a certificate request and returns the challenge material
func (h *Handler) Request(c *gin.Context) {
	var body RequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.FailErr(c, httpx.ErrParamMissing("domain and email are required"))
		return
	}

	res, err := h.svc.RequestCertificate(c.Request.Context(), issuance.RequestInput{
		Domain: body.Domain,
		Email:  body.Email,
		Method: body.Method,
	})
	if err != nil {
		httpx.FailErr(c, mapError(err))
		return
	}

	httpx.OK(c, res)
}

// Validate asks the CA to verify the published challenges
func (h *Handler) Validate(c *gin.Context) {
	res, err := h.svc.StartValidation(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		httpx.FailErr(c, mapError(err))
		return
	}

	httpx.OKMsg(c, "validation completed", res)
}

// Status reports where a request stands and delivers the certificate once
func (h *Handler) Status(c *gin.Context) {
	res, err := h.svc.CheckStatus(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		httpx.FailErr(c, mapError(err))
		return
	}

	httpx.OK(c, res)
}

// mapError translates issuance sentinels into API error envelopes
func mapError(err error) *httpx.AppError {
	switch {
	case errors.Is(err, issuance.ErrInvalidInput):
		return httpx.ErrParamInvalid(err.Error())
	case errors.Is(err, issuance.ErrNotFound):
		return httpx.ErrNotFound("certificate request not found or expired")
	case errors.Is(err, issuance.ErrInvalidState):
		return httpx.ErrStateConflict(err.Error())
	case errors.Is(err, issuance.ErrChallengeUnavailable):
		return httpx.ErrParamInvalid(err.Error())
	case errors.Is(err, issuance.ErrValidationTimeout):
		return httpx.ErrExternalError(err.Error(), err)
	case errors.Is(err, issuance.ErrCertificateNotReady):
		return httpx.ErrNotReady("certificate is not ready yet, try again later", err)
	default:
		return httpx.ErrExternalError("ACME operation failed", err)
	}
}
