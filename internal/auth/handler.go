package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mediahost/service/internal/middleware"
	"github.com/mediahost/service/internal/response"
	"github.com/mediahost/service/internal/validation"
)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("auth")}
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email" example:"admin@example.com"`
	Password string `json:"password" validate:"required"       example:"secret"`
}

// SignIn godoc
//
//	@Summary		Sign in
//	@Description	Exchange admin email and password for a JWT session token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signInRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/sign-in [post]
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	session, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		h.log.Error("sign-in failed", zap.Error(err))
		response.InternalError(w)
		return
	}

	response.OK(w, session)
}

// SignOut godoc
//
//	@Summary		Sign out
//	@Description	Revoke the current session token.
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/auth/sign-out [post]
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jti, _ := ctx.Value(middleware.TokenIDKey).(string)
	expiresAt, _ := ctx.Value(middleware.TokenExpiryKey).(time.Time)
	if jti == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := h.svc.SignOut(ctx, jti, middleware.UserID(ctx), expiresAt); err != nil {
		h.log.Error("sign-out failed", zap.Error(err))
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}
