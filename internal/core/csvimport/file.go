package csvimport

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
)

// CSVMimeType is the content type every upload is stored with.
const CSVMimeType = "text/csv"

// File is a chosen upload.
type File struct {
	Name     string
	Data     []byte
	MimeType string
}

// NewFile wraps data, detecting its media type from the bytes. Plain text
// named *.csv is reported as text/csv since single-column sheets look like
// any other text.
func NewFile(name string, data []byte) File {
	return File{Name: name, Data: data, MimeType: detectMimeType(name, data)}
}

// ReadFile loads path into a File named after its base name.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.Wrap(err, "read csv")
	}
	return NewFile(filepath.Base(path), data), nil
}

func detectMimeType(name string, data []byte) string {
	m := mimetype.Detect(data)
	if m.Is(CSVMimeType) {
		return CSVMimeType
	}
	if strings.EqualFold(filepath.Ext(name), ".csv") && (m.Is("text/plain") || m.Is("application/octet-stream")) {
		return CSVMimeType
	}
	mt, _, _ := strings.Cut(m.String(), ";")
	return mt
}
