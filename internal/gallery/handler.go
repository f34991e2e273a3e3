package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/layout"
	"github.com/mediahost/service/internal/media"
	"github.com/mediahost/service/internal/middleware"
	"github.com/mediahost/service/internal/reorder"
	"github.com/mediahost/service/internal/response"
	"github.com/mediahost/service/internal/validation"
)

// Handler holds HTTP handlers for gallery views and reordering.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new gallery Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named("gallery")}
}

type moveRequest struct {
	From *int `json:"from" validate:"required,min=0" example:"4"`
	To   *int `json:"to"   validate:"required,min=0" example:"0"`
}

type stepRequest struct {
	Index     *int   `json:"index"     validate:"required,min=0"    example:"2"`
	Direction string `json:"direction" validate:"required,oneof=up down" example:"up"`
}

type dragRequest struct {
	Event string `json:"event" validate:"required,oneof=start over end abort" example:"start"`
	Index int    `json:"index" validate:"min=0" example:"1"`
}

type orderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,unique,dive,uuid" example:"e7eedc79-0707-4fe4-8734-526b7ef13a7b"`
}

type saveData struct {
	Updates []reorder.Update `json:"updates"`
}

// PublicList godoc
//
//	@Summary		Public gallery
//	@Description	All gallery items in display order.
//	@Tags			gallery
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=[]media.Item}
//	@Failure		500	{object}	response.Envelope
//	@Router			/public/gallery [get]
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Items(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, items)
}

// Layout godoc
//
//	@Summary		Masonry layout
//	@Description	Distributes the gallery round-robin over the column count resolved for the viewport width.
//	@Tags			gallery
//	@Produce		json
//	@Param			width	query		int	true	"Viewport width in pixels"
//	@Success		200		{object}	response.Envelope{data=Layout}
//	@Failure		400		{object}	response.Envelope
//	@Router			/public/gallery/layout [get]
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.Atoi(r.URL.Query().Get("width"))
	if err != nil || width < 0 {
		response.BadRequest(w, "width must be a non-negative integer")
		return
	}
	out, err := h.svc.Layout(r.Context(), width)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, out)
}

// Lightbox godoc
//
//	@Summary		Lightbox view
//	@Description	Opens the lightbox on the item at a logical index. Pass width to also get the masonry cell.
//	@Tags			gallery
//	@Produce		json
//	@Param			index	path		int	true	"Logical index, zero-based"
//	@Param			width	query		int	false	"Viewport width in pixels"
//	@Success		200		{object}	response.Envelope{data=LightboxView}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/public/gallery/lightbox/{index} [get]
func (h *Handler) Lightbox(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		response.BadRequest(w, "index must be an integer")
		return
	}
	width := 0
	if raw := r.URL.Query().Get("width"); raw != "" {
		if width, err = strconv.Atoi(raw); err != nil {
			response.BadRequest(w, "width must be an integer")
			return
		}
	}

	view, err := h.svc.Lightbox(r.Context(), index, width)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, view)
}

// EnterReorder godoc
//
//	@Summary		Enter reorder mode
//	@Description	Starts a reorder session over a detached copy of the current order.
//	@Tags			reorder
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Session}
//	@Failure		409	{object}	response.Envelope
//	@Router			/gallery/reorder [post]
func (h *Handler) EnterReorder(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Enter(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, s)
}

// GetReorder godoc
//
//	@Summary		Current reorder session
//	@Tags			reorder
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Session}
//	@Router			/gallery/reorder [get]
func (h *Handler) GetReorder(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.svc.Session(middleware.UserID(r.Context())))
}

// MoveItem godoc
//
//	@Summary		Move an item
//	@Description	Removes the item at from and reinserts it at to in the working copy.
//	@Tags			reorder
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		moveRequest	true	"Move"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/gallery/reorder/move [post]
func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.svc.Move(middleware.UserID(r.Context()), *req.From, *req.To)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, s)
}

// StepItem godoc
//
//	@Summary		Step an item up or down
//	@Tags			reorder
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		stepRequest	true	"Step"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/gallery/reorder/step [post]
func (h *Handler) StepItem(w http.ResponseWriter, r *http.Request) {
	var req stepRequest
	if !decode(w, r, &req) {
		return
	}
	dir, err := reorder.ParseDirection(req.Direction)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	s, err := h.svc.Step(middleware.UserID(r.Context()), *req.Index, dir)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, s)
}

// DragItem godoc
//
//	@Summary		Drag gesture event
//	@Description	start and over only update drag feedback; end commits the single move from source to the last hovered index.
//	@Tags			reorder
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		dragRequest	true	"Drag event"
//	@Success		200		{object}	response.Envelope{data=Session}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/gallery/reorder/drag [post]
func (h *Handler) DragItem(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.svc.Drag(middleware.UserID(r.Context()), DragEvent(req.Event), req.Index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, s)
}

// SaveReorder godoc
//
//	@Summary		Save the working order
//	@Description	Writes positions 1..N for the working copy. If any update fails the session stays in reorder mode and the save can be retried.
//	@Tags			reorder
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=saveData}
//	@Failure		409	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Router			/gallery/reorder/save [post]
func (h *Handler) SaveReorder(w http.ResponseWriter, r *http.Request) {
	updates, err := h.svc.Save(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, saveData{Updates: updates})
}

// CancelReorder godoc
//
//	@Summary		Leave reorder mode without saving
//	@Tags			reorder
//	@Security		BearerAuth
//	@Success		204
//	@Failure		409	{object}	response.Envelope
//	@Router			/gallery/reorder [delete]
func (h *Handler) CancelReorder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Cancel(middleware.UserID(r.Context())); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// SaveOrder godoc
//
//	@Summary		Replace the gallery order
//	@Description	Accepts the full ordered id list and writes positions 1..N.
//	@Tags			reorder
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		orderRequest	true	"Ordered ids"
//	@Success		200		{object}	response.Envelope{data=saveData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/gallery/order [put]
func (h *Handler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decode(w, r, &req) {
		return
	}
	ids, err := parseIDs(req.IDs)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	updates, err := h.svc.SaveOrder(r.Context(), ids)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, saveData{Updates: updates})
}

// parseIDs normalizes ids to their canonical lowercase form.
func parseIDs(raw []string) ([]string, error) {
	ids := make([]string, len(raw))
	for i, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("ids[%d]: must be a valid UUID", i)
		}
		ids[i] = id.String()
	}
	return ids, nil
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	if err := validation.Struct(dst); err != nil {
		response.BadRequest(w, err.Error())
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var batch *reorder.BatchError
	switch {
	case errors.As(err, &batch):
		response.BadGateway(w, batch.Error())
	case errors.Is(err, reorder.ErrNotReordering),
		errors.Is(err, reorder.ErrAlreadyReordering),
		errors.Is(err, reorder.ErrBusy):
		response.Conflict(w, err.Error())
	case errors.Is(err, reorder.ErrInvalidMove), errors.Is(err, ErrOrderMismatch):
		response.BadRequest(w, err.Error())
	case errors.Is(err, layout.ErrEmpty), errors.Is(err, layout.ErrOutOfRange), errors.Is(err, media.ErrNotFound):
		response.NotFound(w, err.Error())
	default:
		h.log.Error("request failed", zap.Error(err))
		response.InternalError(w)
	}
}
