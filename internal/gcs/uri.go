package gcs

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Scheme is the URI prefix of Cloud Storage objects.
const Scheme = "gs://"

// ParseURI splits gs://bucket/path/to/object into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, Scheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, Scheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// URI formats a bucket and object as a gs:// URI.
func URI(bucket, object string) string {
	return Scheme + bucket + "/" + object
}

// ExtractFilenameFromGCSURI extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func ExtractFilenameFromGCSURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, Scheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// StatementObjectName builds a unique object name for an uploaded
// statement: statements/YYYY/MM/<uuid>-<filename>.
func StatementObjectName(filename string, now time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "statement.csv"
	}
	return fmt.Sprintf("statements/%04d/%02d/%s-%s", now.Year(), int(now.Month()), uuid.NewString(), base)
}
