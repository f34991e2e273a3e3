package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/middleware"
	"github.com/mediahost/service/internal/response"
	"github.com/mediahost/service/internal/validation"
)

// multipartOverhead is the room left for form fields around the file part.
const multipartOverhead = 1 << 20

// Handler holds HTTP handlers for one media collection.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates a new media Handler.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log.Named(string(svc.Kind().Collection))}
}

type updateRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=200" example:"Sunset"`
	Description *string `json:"description" validate:"omitempty,max=2000"      example:"Taken on the pier"`
}

// List godoc
//
//	@Summary		List media items
//	@Description	Gallery items come back by position, PDFs newest first.
//	@Tags			media
//	@Produce		json
//	@Security		BearerAuth
//	@Param			collection	path		string	true	"gallery or pdfs"
//	@Success		200			{object}	response.Envelope{data=[]Item}
//	@Failure		401			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/{collection} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, items)
}

// Get godoc
//
//	@Summary		Get a media item
//	@Description	The /gallery and /pdfs routes require a bearer token. /public/pdfs/{id} does not.
//	@Tags			media
//	@Produce		json
//	@Param			id	path		string	true	"Item ID"
//	@Success		200	{object}	response.Envelope{data=Item}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/gallery/{id} [get]
//	@Router			/pdfs/{id} [get]
//	@Router			/public/pdfs/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, it)
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Multipart upload. Gallery accepts image/* up to the gallery limit, PDFs accept application/pdf up to the PDF limit. Title defaults to the file name without extension.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			collection	path		string	true	"gallery or pdfs"
//	@Param			file		formData	file	true	"File"
//	@Param			title		formData	string	false	"Title"
//	@Success		201			{object}	response.Envelope{data=Item}
//	@Failure		400			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		415			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/{collection} [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	u, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	it, err := h.svc.Create(r.Context(), u)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, it)
}

// Replace godoc
//
//	@Summary		Replace the file behind an item
//	@Description	Uploads a new blob, repoints the record, then removes the old blob.
//	@Tags			media
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			collection	path		string	true	"gallery or pdfs"
//	@Param			id			path		string	true	"Item ID"
//	@Param			file		formData	file	true	"File"
//	@Success		200			{object}	response.Envelope{data=Item}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Failure		413			{object}	response.Envelope
//	@Failure		415			{object}	response.Envelope
//	@Router			/{collection}/{id}/file [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	it, err := h.svc.Replace(r.Context(), id, u)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, it)
}

// Update godoc
//
//	@Summary		Edit title or description
//	@Description	Description edits are only supported for gallery items.
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			collection	path		string			true	"gallery or pdfs"
//	@Param			id			path		string			true	"Item ID"
//	@Param			request		body		updateRequest	true	"Fields to change"
//	@Success		200			{object}	response.Envelope{data=Item}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/{collection}/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validation.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	it, err := h.svc.Update(r.Context(), id, Patch{Title: req.Title, Description: req.Description})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, it)
}

// Delete godoc
//
//	@Summary		Delete an item
//	@Description	Removes the blob best-effort, then the record.
//	@Tags			media
//	@Security		BearerAuth
//	@Param			collection	path	string	true	"gallery or pdfs"
//	@Param			id			path	string	true	"Item ID"
//	@Success		204
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/{collection}/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	response.NoContent(w)
}

// readUpload parses the multipart body and writes the error response itself
// when it returns false.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (Upload, bool) {
	limit := h.svc.Kind().MaxSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.PayloadTooLarge(w, "file too large")
			return Upload{}, false
		}
		response.BadRequest(w, "invalid multipart form")
		return Upload{}, false
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "file is required")
		return Upload{}, false
	}
	defer file.Close()

	if header.Size > limit {
		response.PayloadTooLarge(w, "file too large")
		return Upload{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "could not read file")
		return Upload{}, false
	}

	return Upload{
		Title:       r.FormValue("title"),
		FileName:    header.Filename,
		ContentType: detectContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
		UserID:      middleware.UserID(r.Context()),
	}, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "item not found")
	case errors.Is(err, ErrTooLarge):
		response.PayloadTooLarge(w, err.Error())
	case errors.Is(err, ErrInvalidType):
		response.UnsupportedMediaType(w, err.Error())
	case IsValidation(err):
		response.BadRequest(w, err.Error())
	default:
		h.log.Error("request failed", zap.Error(err))
		response.InternalError(w)
	}
}

// pathID parses the {id} URL parameter. Malformed ids are rejected before
// they reach the database.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid id")
		return "", false
	}
	return id.String(), true
}

func detectContentType(header string, data []byte) string {
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
