package httpx

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/hostelhub/hostel-api/internal/domain/model"
	"github.com/hostelhub/hostel-api/internal/service"
)

// maxPhotoBytes caps complaint photo uploads, multipart overhead included.
const maxPhotoBytes = 5 << 20

// ComplaintHandlers provides HTTP handlers for complaint operations.
type ComplaintHandlers struct {
	Svc    *service.ComplaintService
	Logger *slog.Logger
}

type statusRequest struct {
	Status string `json:"status"`
}

// Create files a complaint for the caller.
// POST /api/complaints.
func (h *ComplaintHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateComplaintRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Svc.Submit(r.Context(), ActorFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

// List handles GET /api/complaints?status=&limit=&offset=.
func (h *ComplaintHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, defaultListLimit, maxListLimit)
	opts := model.ComplaintListOptions{Limit: limit, Offset: offset}
	if raw := queryPtr(r, "status"); raw != nil {
		st, ok := model.ParseComplaintStatus(*raw)
		if !ok {
			st = model.ComplaintStatus(*raw)
		}
		opts.Status = &st
	}

	items, err := h.Svc.List(r.Context(), ActorFromContext(r.Context()), opts)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"complaints": items,
		"limit":      limit,
		"offset":     offset,
	})
}

// Get handles GET /api/complaints/{id}.
func (h *ComplaintHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Svc.Get(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// UpdateStatus handles PATCH /api/complaints/{id}/status.
func (h *ComplaintHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.Svc.UpdateStatus(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// Stats handles GET /api/complaints/stats.
func (h *ComplaintHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// UploadPhoto attaches an image to a complaint. The body is either the raw image with its
// Content-Type or a multipart form carrying a "photo" file.
// PUT /api/complaints/{id}/photo.
func (h *ComplaintHandlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoBytes)

	body, contentType, closeFn, err := photoFromRequest(r)
	if err != nil {
		writePhotoError(w, r, h.Logger, err)
		return
	}
	defer closeFn()

	c, err := h.Svc.AttachPhoto(r.Context(), ActorFromContext(r.Context()), r.PathValue("id"), contentType, body)
	if err != nil {
		writePhotoError(w, r, h.Logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

func photoFromRequest(r *http.Request) (io.Reader, string, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, r.Header.Get("Content-Type"), func() {}, nil
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		return nil, "", nil, err
	}
	return file, header.Header.Get("Content-Type"), func() { _ = file.Close() }, nil
}

func writePhotoError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		WriteError(w, ErrorParams{
			Code:    http.StatusRequestEntityTooLarge,
			ErrCode: "photo_too_large",
			Err:     errors.New("photo exceeds the 5 MiB limit"),
			Field:   "photo",
		})
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err, Field: "photo"})
	default:
		writeServiceError(w, r, logger, err)
	}
}
