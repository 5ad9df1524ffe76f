package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capykyo/capy-book-fetch/internal/apperrors"
	"github.com/capykyo/capy-book-fetch/internal/auth"
	"github.com/capykyo/capy-book-fetch/internal/logger"
)

const (
	defaultLoginUser = "default-user"

	// MsgDevVerifySkipped is returned by GET /api/auth/verify in development.
	MsgDevVerifySkipped = "development mode: token verification skipped"
)

// TokenIssuer signs tokens.
type TokenIssuer interface {
	GenerateToken(userID, env string, ttl time.Duration) (string, error)
	DefaultExpiration() time.Duration
}

// LoginRequest is the optional body of POST /api/auth/login.
type LoginRequest struct {
	UserID    string `json:"userId"`
	ExpiresIn string `json:"expiresIn"`
}

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresIn string `json:"expiresIn"`
}

// VerifyResponse is returned by GET /api/auth/verify.
type VerifyResponse struct {
	Success bool `json:"success"`
	Payload any  `json:"payload"`
}

// AuthHandler handles token endpoints.
type AuthHandler struct {
	issuer      TokenIssuer
	verifier    auth.Verifier
	expiresIn   string
	development bool
}

// NewAuthHandler creates a new auth handler. expiresIn is the configured token
// lifetime reported when a login request names none. In development verification is skipped.
func NewAuthHandler(issuer TokenIssuer, verifier auth.Verifier, expiresIn string, development bool) *AuthHandler {
	return &AuthHandler{
		issuer:      issuer,
		verifier:    verifier,
		expiresIn:   expiresIn,
		development: development,
	}
}

// Login issues a token without credentials. Registered only in development.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, bindError(err))
		return
	}

	if req.UserID == "" {
		req.UserID = defaultLoginUser
	}

	ttl := h.issuer.DefaultExpiration()
	if req.ExpiresIn == "" {
		req.ExpiresIn = h.expiresIn
	} else {
		parsed, err := auth.ParseExpiry(req.ExpiresIn)
		if err != nil {
			respondError(c, apperrors.Wrap(apperrors.KindInvalidInput, "invalid expiresIn", err))
			return
		}
		ttl = parsed
	}

	token, err := h.issuer.GenerateToken(req.UserID, "", ttl)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.KindUnknown, "failed to generate token", err))
		return
	}

	logger.FromContext(c.Request.Context()).Info("Development token issued",
		logger.String("user_id", req.UserID),
		logger.String("expires_in", req.ExpiresIn),
	)

	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: req.ExpiresIn,
	})
}

// Verify reports the claims of the presented bearer token.
func (h *AuthHandler) Verify(c *gin.Context) {
	if h.development {
		c.JSON(http.StatusOK, VerifyResponse{
			Success: true,
			Payload: gin.H{"message": MsgDevVerifySkipped},
		})
		return
	}

	claims, err := auth.Authenticate(h.verifier, c.GetHeader("Authorization"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{Success: true, Payload: claims})
}
