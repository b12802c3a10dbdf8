package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
	"github.com/heartmarshall/kindergarten-backend/internal/imaging"
)

type imageService interface {
	Process(ctx context.Context, u imaging.Upload, entityType string, crop *imaging.CropRegion) (imaging.Asset, error)
	ProcessBase64(ctx context.Context, dataURI, entityType string) (imaging.Asset, error)
	Delete(ctx context.Context, path string) error
	URL(path string, thumb bool) string
}

// ImageHandler serves image upload endpoints.
type ImageHandler struct {
	images  imageService
	maxSize int64
	log     *slog.Logger
}

// NewImageHandler creates an ImageHandler. maxSize bounds the request body.
func NewImageHandler(images imageService, maxSize int64, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images:  images,
		maxSize: maxSize,
		log:     logger.With("handler", "images"),
	}
}

type imageResponse struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

type base64Request struct {
	Data string `json:"data"`
}

// multipart and base64 overhead on top of the file itself
const bodySlack = 1 << 20

// Upload handles POST /api/images/{type} with a multipart "image" field and
// optional crop_x, crop_y, crop_width, crop_height fields.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+bodySlack)

	file, header, err := r.FormFile("image")
	var upload imaging.Upload
	switch {
	case err == nil:
		defer file.Close()
		upload, err = spool(file, header)
		if err != nil {
			h.log.ErrorContext(r.Context(), "spool upload", slog.String("error", err.Error()))
			upload = imaging.Upload{Error: imaging.UploadErrCantWrite}
		}
		defer os.Remove(upload.TempPath)
	case errors.Is(err, http.ErrMissingFile):
		upload = imaging.Upload{Error: imaging.UploadErrNoFile}
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			upload = imaging.Upload{Error: imaging.UploadErrFormSize}
			break
		}
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	crop, err := cropFromForm(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	asset, err := h.images.Process(r.Context(), upload, r.PathValue("type"), crop)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(asset))
}

// UploadBase64 handles POST /api/images/{type}/base64 with {"data": "data:image/...;base64,..."}.
func (h *ImageHandler) UploadBase64(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize*4/3+bodySlack)

	var req base64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.images.ProcessBase64(r.Context(), req.Data, r.PathValue("type"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toResponse(asset))
}

// Delete handles DELETE /api/images?path=boxes/full/<name>.webp.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.images.Delete(r.Context(), r.URL.Query().Get("path")); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ImageHandler) toResponse(a imaging.Asset) imageResponse {
	return imageResponse{
		Path:     a.Path,
		Filename: a.Filename,
		URL:      h.images.URL(a.Path, false),
		ThumbURL: h.images.URL(a.Path, true),
	}
}

// spool copies a multipart file to a temporary file the processor can read.
func spool(file multipart.File, header *multipart.FileHeader) (imaging.Upload, error) {
	tmp, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return imaging.Upload{}, err
	}
	defer tmp.Close()

	n, err := io.Copy(tmp, file)
	if err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return imaging.Upload{}, err
	}

	return imaging.Upload{
		TempPath: tmp.Name(),
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     n,
	}, nil
}

func cropFromForm(r *http.Request) (*imaging.CropRegion, error) {
	fields := []string{"crop_x", "crop_y", "crop_width", "crop_height"}
	if r.FormValue(fields[2]) == "" || r.FormValue(fields[3]) == "" {
		return nil, nil
	}

	vals := make([]int, len(fields))
	for i, f := range fields {
		raw := r.FormValue(f)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.NewValidationError(f, "must be a number")
		}
		vals[i] = int(v)
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return nil, nil
	}
	return &imaging.CropRegion{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}
