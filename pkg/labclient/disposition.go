package labclient

import (
	"mime"
	"path"
	"strings"
)

// DefaultCSVFilename is used when the export response names no file.
const DefaultCSVFilename = "materiais_laboratorio.csv"

// filenameFromDisposition reads filename* (RFC 5987) or filename from a
// Content-Disposition header. Directory parts are dropped.
func filenameFromDisposition(header, fallback string) string {
	if header == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	// mime decodes filename* into the plain "filename" key
	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return fallback
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return fallback
	}
	return name
}
