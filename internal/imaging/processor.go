// Package imaging validates uploaded pictures and stores them as a pair of
// square WebP files: a full-size variant and a thumbnail.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/heartmarshall/kindergarten-backend/internal/config"
)

var allowedMIME = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type encodeFunc func(w io.Writer, img image.Image, quality int) error

func encodeWebP(w io.Writer, img image.Image, quality int) error {
	return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
}

// Processor implements the image pipeline.
type Processor struct {
	log    *slog.Logger
	cfg    config.ImagesConfig
	now    func() time.Time
	encode encodeFunc
}

// NewProcessor creates a new Processor.
func NewProcessor(logger *slog.Logger, cfg config.ImagesConfig) *Processor {
	return &Processor{
		log:    logger.With("service", "imaging"),
		cfg:    cfg,
		now:    time.Now,
		encode: encodeWebP,
	}
}

// Process validates an uploaded file and writes its full and thumbnail
// variants under entityType. crop is optional.
func (p *Processor) Process(ctx context.Context, u Upload, entityType string, crop *CropRegion) (Asset, error) {
	if u.Error != UploadOK {
		return Asset{}, invalid("%s", u.Error.Message())
	}
	if u.Size > p.cfg.MaxSize {
		return Asset{}, invalid("file is larger than %d bytes", p.cfg.MaxSize)
	}
	if !mimeAllowed(u.MIMEType) {
		return Asset{}, invalid("unsupported file type %q", u.MIMEType)
	}
	if u.TempPath == "" {
		return Asset{}, invalid("%s", UploadErrNoFile.Message())
	}

	data, err := readLimited(u.TempPath, p.cfg.MaxSize)
	if err != nil {
		return Asset{}, err
	}
	return p.process(ctx, data, entityType, crop)
}

// ProcessBase64 runs the pipeline on a "data:image/...;base64," URI. The
// payload size is checked before decoding.
func (p *Processor) ProcessBase64(ctx context.Context, dataURI, entityType string) (Asset, error) {
	header, payload, ok := strings.Cut(strings.TrimSpace(dataURI), ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return Asset{}, invalid("malformed data URI")
	}
	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if !mimeAllowed(declared) {
		return Asset{}, invalid("unsupported file type %q", declared)
	}

	payload = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, payload)
	// DecodedLen counts padding as data.
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > p.cfg.MaxSize+2 {
		return Asset{}, invalid("file is larger than %d bytes", p.cfg.MaxSize)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Asset{}, invalid("invalid base64 payload")
	}
	if int64(len(data)) > p.cfg.MaxSize {
		return Asset{}, invalid("file is larger than %d bytes", p.cfg.MaxSize)
	}
	return p.process(ctx, data, entityType, nil)
}

func (p *Processor) process(ctx context.Context, data []byte, entityType string, crop *CropRegion) (Asset, error) {
	dir := sanitizeEntityType(entityType)
	if dir == "" {
		return Asset{}, invalid("entity type is required")
	}
	if len(data) == 0 {
		return Asset{}, invalid("file is empty")
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), allowedMIME...) {
		return Asset{}, invalid("unsupported file type %q", detected.String())
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Asset{}, invalid("file is not a valid image")
	}
	if !crop.empty() {
		src = cropImage(src, clampCrop(*crop, src.Bounds()))
	}

	name := newFilename(p.now())
	fullRel, thumbRel := relPaths(dir, name)
	fullAbs := p.abs(fullRel)

	if err := p.write(fullAbs, squareResize(src, p.cfg.FullSize)); err != nil {
		return Asset{}, fmt.Errorf("imaging: write full: %w", err)
	}
	if err := p.write(p.abs(thumbRel), squareResize(src, p.cfg.ThumbSize)); err != nil {
		if rmErr := os.Remove(fullAbs); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			p.log.ErrorContext(ctx, "remove orphaned full image",
				slog.String("path", fullRel),
				slog.String("error", rmErr.Error()),
			)
		}
		return Asset{}, fmt.Errorf("imaging: write thumbnail: %w", err)
	}

	p.log.InfoContext(ctx, "image stored",
		slog.String("path", fullRel),
		slog.String("source_type", detected.String()),
	)
	return Asset{Path: fullRel, ThumbPath: thumbRel, Filename: name + ext}, nil
}

// write encodes img to path. A partially written file is removed.
func (p *Processor) write(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	err = p.encode(f, img, p.cfg.Quality)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// Delete removes both variants of a stored image. Missing files are not an
// error. Paths escaping the upload directory are rejected.
func (p *Processor) Delete(ctx context.Context, rel string) error {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return invalid("invalid image path %q", rel)
	}

	var errs []error
	for _, r := range []string{rel, thumbOf(rel)} {
		if err := os.Remove(p.abs(r)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		p.log.ErrorContext(ctx, "delete image failed",
			slog.String("path", rel),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("imaging: delete %s: %w", rel, err)
	}
	return nil
}

// URL maps a relative path to its public URL. No I/O is done.
func (p *Processor) URL(rel string, thumb bool) string {
	if rel == "" {
		return ""
	}
	rel = strings.TrimPrefix(rel, "/")
	if thumb {
		rel = thumbOf(rel)
	}
	return strings.TrimRight(p.cfg.BaseURL, "/") + "/" + rel
}

func (p *Processor) abs(rel string) string {
	return filepath.Join(p.cfg.UploadDir, filepath.FromSlash(rel))
}

func mimeAllowed(declared string) bool {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return false
	}
	if mt == "image/jpg" || mt == "image/pjpeg" {
		mt = "image/jpeg"
	}
	return mimetype.EqualsAny(mt, allowedMIME...)
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, invalid("%s", UploadErrNoFile.Message())
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("imaging: read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, invalid("file is larger than %d bytes", limit)
	}
	return data, nil
}
