package imaging

import (
	"fmt"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

// UploadError is the transport-level status of an uploaded file. The numbering
// follows the classic form-upload error codes (5 is unused).
type UploadError int

const (
	UploadOK           UploadError = 0
	UploadErrIniSize   UploadError = 1
	UploadErrFormSize  UploadError = 2
	UploadErrPartial   UploadError = 3
	UploadErrNoFile    UploadError = 4
	UploadErrNoTmpDir  UploadError = 6
	UploadErrCantWrite UploadError = 7
	UploadErrExtension UploadError = 8
)

var uploadErrorMessages = map[UploadError]string{
	UploadErrIniSize:   "file exceeds the server upload limit",
	UploadErrFormSize:  "file exceeds the form upload limit",
	UploadErrPartial:   "file was only partially uploaded",
	UploadErrNoFile:    "no file was uploaded",
	UploadErrNoTmpDir:  "missing temporary folder",
	UploadErrCantWrite: "failed to write file to disk",
	UploadErrExtension: "upload stopped by extension",
}

// Message returns a human-readable description of the code.
func (e UploadError) Message() string {
	if e == UploadOK {
		return ""
	}
	if m, ok := uploadErrorMessages[e]; ok {
		return m
	}
	return fmt.Sprintf("unknown upload error (%d)", int(e))
}

// Upload describes a file received from a client and stored at TempPath.
type Upload struct {
	TempPath string
	Filename string
	MIMEType string
	Size     int64
	Error    UploadError
}

// CropRegion is a rectangle in source pixel coordinates. Out-of-bounds
// values are clamped, never rejected.
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// empty reports whether c selects no area. Empty crops are ignored.
func (c *CropRegion) empty() bool {
	return c == nil || c.Width <= 0 || c.Height <= 0
}

// Asset is the result of a successful Process call. Path is the relative
// path of the full-size variant.
type Asset struct {
	Path      string `json:"path"`
	ThumbPath string `json:"thumb_path"`
	Filename  string `json:"filename"`
}

// ValidationError reports an upload rejected before any file was written.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "image: " + e.Message
}

// Unwrap lets callers match domain.ErrValidation with errors.Is.
func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
