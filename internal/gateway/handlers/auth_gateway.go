package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"qmenus-system/config"
	"qmenus-system/internal/utils"
)

type AuthHTTPHandler struct {
	auth         config.AuthConfig
	restaurantID string
}

func NewAuthHTTPHandler(auth config.AuthConfig, restaurantID string) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		auth:         auth,
		restaurantID: restaurantID,
	}
}

type LoginRequest struct {
	TerminalID  string `json:"terminal_id" binding:"required"`
	TerminalKey string `json:"terminal_key" binding:"required"`
}

func (h *AuthHTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	idOK := subtle.ConstantTimeCompare([]byte(req.TerminalID), []byte(h.auth.TerminalID)) == 1
	keyOK := subtle.ConstantTimeCompare([]byte(req.TerminalKey), []byte(h.auth.TerminalKey)) == 1
	if !idOK || !keyOK {
		c.JSON(http.StatusUnauthorized, errorResponse("Invalid terminal credentials"))
		return
	}

	token, exp, err := utils.GenerateToken(req.TerminalID, h.restaurantID, h.auth.TokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to issue token"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Login successful", map[string]interface{}{
		"token":      token,
		"expires_at": exp,
	}))
}
