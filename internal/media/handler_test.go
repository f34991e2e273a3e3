package media

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/middleware"
)

func router(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Upload)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Put("/{id}/file", h.Replace)
	return r
}

func multipartBody(t *testing.T, fileName, contentType string, data []byte, title string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data) //nolint:errcheck
	if title != "" {
		w.WriteField("title", title) //nolint:errcheck
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) Item {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Data    Item `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	return env.Data
}

func TestHandler_UploadStatuses(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
		status      int
	}{
		{"image accepted", "a.png", "image/png", pngHeader, http.StatusCreated},
		{"sniffed when octet-stream", "a.png", "application/octet-stream", pngHeader, http.StatusCreated},
		{"wrong type", "a.txt", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType},
		{"too large", "a.png", "image/png", bytes.Repeat([]byte("x"), 64), http.StatusRequestEntityTooLarge},
		{"empty", "a.png", "image/png", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(GalleryKind(32))
			body, ct := multipartBody(t, tt.fileName, tt.contentType, tt.data, "")
			req := httptest.NewRequest(http.MethodPost, "/", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			router(NewHandler(f.svc, zap.NewNop())).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusCreated && f.blobs.uploads != 0 {
				t.Error("rejected upload reached storage")
			}
		})
	}
}

func TestHandler_UploadStampsUser(t *testing.T) {
	f := newFixture(GalleryKind(1 << 20))
	body, ct := multipartBody(t, "a.png", "image/png", pngHeader, "Harbour")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, "u-9"))
	rec := httptest.NewRecorder()
	router(NewHandler(f.svc, zap.NewNop())).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	it := decodeItem(t, rec)
	if it.Title != "Harbour" || it.UserID == nil || *it.UserID != "u-9" {
		t.Errorf("unexpected item %+v", it)
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	f := newFixture(GalleryKind(1 << 20))
	it, _ := f.svc.Create(context.Background(), Upload{FileName: "a.png", ContentType: "image/png", Data: pngHeader})
	h := router(NewHandler(f.svc, zap.NewNop()))

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	if rec := do(http.MethodPatch, "/"+it.ID, `{"description":"quiet morning"}`); rec.Code != http.StatusOK {
		t.Fatalf("patch: expected 200, got %d", rec.Code)
	} else if got := decodeItem(t, rec); got.Description == nil || *got.Description != "quiet morning" {
		t.Errorf("description not saved: %+v", got)
	}
	if rec := do(http.MethodPatch, "/"+it.ID, `{"title":"`+strings.Repeat("t", 201)+`"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("long title: expected 400, got %d", rec.Code)
	}
	if rec := do(http.MethodPatch, "/not-a-uuid", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rec.Code)
	}
	if rec := do(http.MethodDelete, "/"+it.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", rec.Code)
	}
	if rec := do(http.MethodGet, "/"+it.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get deleted: expected 404, got %d", rec.Code)
	}
}

func TestHandler_Replace(t *testing.T) {
	f := newFixture(PDFKind(1 << 20))
	it, _ := f.svc.Create(context.Background(), Upload{FileName: "v1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4 one")})

	body, ct := multipartBody(t, "v2.pdf", "application/pdf", []byte("%PDF-1.4 two"), "")
	req := httptest.NewRequest(http.MethodPut, "/"+it.ID+"/file", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	router(NewHandler(f.svc, zap.NewNop())).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeItem(t, rec); got.FileName != "v2.pdf" {
		t.Errorf("expected replaced file name, got %q", got.FileName)
	}
}
