// Package gallery holds the core domain types of the clothing-image store:
// brands, image projections, upload grants and the content-type policy.
package gallery

import (
	"strings"
	"time"
)

// MaxFileSize is the hard cap for a single uploaded image (10 MiB).
const MaxFileSize = 10 * 1024 * 1024

// ContentTypeJPEG is the normalized output type of completed uploads.
const ContentTypeJPEG = "image/jpeg"

// ContentTypeOctetStream is what S3 reports for objects written through a
// presigned PUT that carried no Content-Type header.
const ContentTypeOctetStream = "application/octet-stream"

// allowedContentTypes is the upload policy. GIF is deliberately excluded.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// AllowedContentType reports whether mime is an accepted image type.
func AllowedContentType(mime string) bool {
	_, ok := allowedContentTypes[mime]
	return ok
}

// NormalizeContentType lower-cases, strips parameters (e.g. "; charset=binary")
// and maps the common image/jpg misspelling to image/jpeg.
func NormalizeContentType(mime string) string {
	m := strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	if m == "image/jpg" {
		return ContentTypeJPEG
	}
	return m
}

// Brand is one named grouping of images owned by a user. (UserID, BrandID)
// is the primary identity; BrandName resolves to at most one live BrandID
// per user. Email and Groups are denormalized audit snapshots, never used
// for authorization.
type Brand struct {
	UserID      string    `json:"userId"`
	BrandID     string    `json:"brandId"`
	BrandName   string    `json:"brandName"`
	UploadCount int       `json:"uploadCount"`
	Email       string    `json:"email,omitempty"`
	Groups      string    `json:"groups,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ImageItem is the listing projection of a stored object. It is recomputed
// per request (including a fresh read grant) and never persisted.
type ImageItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	BrandID      string    `json:"brandId"`
	URL          string    `json:"url"`
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	UploadDate   time.Time `json:"uploadDate"`
	ContentType  string    `json:"contentType"`
	URLExpiresIn int       `json:"urlExpiresIn"`
}

// FileDescriptor describes one file the client intends to upload.
type FileDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// UploadGrant is the ephemeral result of a successful prepare for one file:
// a time-limited presigned PUT URL bound to a storage key. Expiry is the
// only revocation mechanism.
type UploadGrant struct {
	FileName  string `json:"fileName"`
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	Method    string `json:"method"`
	ExpiresIn int    `json:"expiresIn"`
}

// ObjectMetadata is the advisory metadata attached to a stored object.
// Display values are base64-encoded by the caller (see domain/keys).
type ObjectMetadata struct {
	Brand        string
	OriginalName string
	Owner        string
	UploadDate   string
}

// MetadataMap renders the metadata in the flat form the object store takes.
func (m ObjectMetadata) MetadataMap() map[string]string {
	return map[string]string{
		"brand":        m.Brand,
		"originalname": m.OriginalName,
		"owner":        m.Owner,
		"uploaddate":   m.UploadDate,
	}
}
