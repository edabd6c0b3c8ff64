// Authentication HTTP handlers.
//
// This file exposes the public endpoints that exchange a Telegram Mini App
// init-data payload for a session token:
//   - POST /auth/telegram           (verify init data, issue a session token)
//   - POST /auth/telegram/validate  (verify init data only, no token)
//
// The verification failure taxonomy is surfaced verbatim to the client so a
// Mini App can distinguish a broken integration (malformed payload, wrong
// bot) from a stale session (expired auth_date).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studsovet/go-forms-backend/internal/auth"
)

//
// Service contracts
//

// InitDataVerifier checks a raw Telegram init-data payload and extracts the
// verified identity. *auth.Verifier satisfies it.
type InitDataVerifier interface {
	Verify(rawInitData string) (*auth.InitData, error)
}

// TokenIssuer mints session tokens for verified identities.
// *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(id auth.Identity) (token string, expiresIn int, err error)
}

//
// DTOs
//

// TelegramAuthRequest carries the raw init-data string exactly as received
// from the Telegram WebApp bridge.
type TelegramAuthRequest struct {
	InitData string `json:"init_data" binding:"required,min=1" example:"query_id=AAH...&user=%7B%22id%22%3A99281932...&auth_date=1716920000&hash=c0d3..."`
}

// TokenPayload is the session token envelope.
type TokenPayload struct {
	// Token is the compact session token to present as a Bearer credential.
	Token string `json:"token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in" example:"600"`
}

// TelegramAuthResponse is returned by POST /auth/telegram on success.
type TelegramAuthResponse struct {
	Success      bool           `json:"success"`
	User         *auth.Identity `json:"user"`
	AuthDate     int64          `json:"auth_date"`
	ChatInstance string         `json:"chat_instance,omitempty"`
	ChatType     string         `json:"chat_type,omitempty"`
	JWT          TokenPayload   `json:"jwt"`
}

// TelegramValidateResponse is returned by POST /auth/telegram/validate.
type TelegramValidateResponse struct {
	Success      bool           `json:"success"`
	User         *auth.Identity `json:"user"`
	AuthDate     int64          `json:"auth_date"`
	ChatInstance string         `json:"chat_instance,omitempty"`
	ChatType     string         `json:"chat_type,omitempty"`
}

// verifyFailure maps an init-data verification error to its stable code.
// Every failure is a 401: the caller has not proven who they are.
func verifyFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpired):
		fail(c, http.StatusUnauthorized, ErrCodeExpiredInitData, "init data expired")
	case errors.Is(err, auth.ErrSignatureMismatch):
		fail(c, http.StatusUnauthorized, ErrCodeSignatureMismatch, "init data signature mismatch")
	default:
		fail(c, http.StatusUnauthorized, ErrCodeMalformedInitData, "init data malformed")
	}
}

//
// Handlers
//

// TelegramAuth godoc
// @ID          telegramAuth
// @Summary     Authenticate with Telegram init data
// @Description Verifies a Telegram Mini App init-data payload and issues a short-lived session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.TelegramAuthRequest  true  "Raw init data"
//
// @Success     200  {object} handlers.TelegramAuthResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Verification failed"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /auth/telegram [post]
func (h *Handlers) TelegramAuth(c *gin.Context) {
	var req TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "init_data required")
		return
	}

	data, err := h.verifier.Verify(req.InitData)
	if err != nil {
		verifyFailure(c, err)
		return
	}

	token, expiresIn, err := h.tokens.Issue(data.User)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue session token")
		return
	}

	ok(c, http.StatusOK, TelegramAuthResponse{
		Success:      true,
		User:         &data.User,
		AuthDate:     data.AuthDate,
		ChatInstance: data.ChatInstance,
		ChatType:     data.ChatType,
		JWT:          TokenPayload{Token: token, ExpiresIn: expiresIn},
	})
}

// TelegramValidate godoc
// @ID          telegramValidate
// @Summary     Validate Telegram init data
// @Description Verifies a Telegram Mini App init-data payload without issuing a token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.TelegramAuthRequest  true  "Raw init data"
//
// @Success     200  {object} handlers.TelegramValidateResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     401  {object} handlers.ErrorResponse "Verification failed"
// @Router      /auth/telegram/validate [post]
func (h *Handlers) TelegramValidate(c *gin.Context) {
	var req TelegramAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "init_data required")
		return
	}

	data, err := h.verifier.Verify(req.InitData)
	if err != nil {
		verifyFailure(c, err)
		return
	}

	ok(c, http.StatusOK, TelegramValidateResponse{
		Success:      true,
		User:         &data.User,
		AuthDate:     data.AuthDate,
		ChatInstance: data.ChatInstance,
		ChatType:     data.ChatType,
	})
}
