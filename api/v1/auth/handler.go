package auth

import (
	"time"

	"certhub/internal/auth"
	"certhub/internal/config"
	"certhub/internal/httpx"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expireAt"`
	Username string `json:"username"`
}

// LoginHandler authenticates the configured admin account
func LoginHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
			return
		}

		if cfg.Admin.Username == "" || cfg.Admin.PasswordHash == "" {
			httpx.FailErr(c, httpx.ErrForbidden("admin access is not configured"))
			return
		}

		// Same error for unknown user and wrong password
		if req.Username != cfg.Admin.Username {
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
			return
		}
		if err := auth.ComparePassword(cfg.Admin.PasswordHash, req.Password); err != nil {
			httpx.FailErr(c, httpx.ErrInvalidToken("invalid credentials"))
			return
		}

		expireAt := time.Now().Add(time.Duration(cfg.JWT.ExpireMinutes) * time.Minute)
		token, err := auth.GenerateToken(req.Username, "admin", expireAt, cfg.JWT.Issuer)
		if err != nil {
			httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
			return
		}

		httpx.OK(c, LoginResponse{
			Token:    token,
			ExpireAt: expireAt.Format(time.RFC3339),
			Username: req.Username,
		})
	}
}
