// Package keys turns user-supplied identifiers (brand names, file names)
// into storage-safe S3 key segments and back.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// maxSanitizedBaseLen is the longest file-name base kept after encoding.
// Names that blow past this (or stay percent-encoded, i.e. were almost
// entirely non-ASCII) are replaced with a millisecond timestamp to keep
// keys short and collision-resistant.
const maxSanitizedBaseLen = 100

// ConfigFolder is the reserved sub-path for brand configuration artifacts.
const ConfigFolder = "config"

// SanitizeSegment converts raw into an ASCII, path-safe key segment:
// surrounding whitespace is trimmed, internal whitespace runs collapse to a
// single hyphen, and everything outside the unreserved set is
// percent-encoded. The %20 artifact is rewritten to a hyphen for
// readability.
func SanitizeSegment(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Join(strings.Fields(s), "-")
	s = encodeURIComponent(s)
	return strings.ReplaceAll(s, "%20", "-")
}

// SanitizeFileName splits at the last dot, sanitizes the base and
// lower-cases the extension. A base that is still percent-encoded after
// sanitization, or longer than 100 characters, is swapped for a timestamp.
func SanitizeFileName(fileName string) string {
	base, ext := fileName, ""
	if i := strings.LastIndex(fileName, "."); i > 0 {
		base, ext = fileName[:i], fileName[i:]
	}

	base = SanitizeSegment(base)
	if len(base) > maxSanitizedBaseLen || strings.Contains(base, "%") {
		base = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	return base + strings.ToLower(ext)
}

// WithJPGExtension replaces the file extension with ".jpg". Completed
// uploads are normalized to JPEG regardless of the source format.
func WithJPGExtension(fileName string) string {
	base := fileName
	if i := strings.LastIndex(fileName, "."); i > 0 {
		base = fileName[:i]
	}
	return base + ".jpg"
}

// ImageKey builds the storage key for an uploaded image:
// {userId}/{brandId}/{sanitized-base}.jpg. Empty segments are refused so a
// blank identity can never widen a prefix.
func ImageKey(userID, brandID, fileName string) (string, error) {
	safeUser := SanitizeSegment(userID)
	safeBrand := SanitizeSegment(brandID)
	if safeUser == "" || safeBrand == "" {
		return "", fmt.Errorf("keys: empty key segment (user=%q brand=%q)", userID, brandID)
	}
	safeName := WithJPGExtension(SanitizeFileName(fileName))
	return safeUser + "/" + safeBrand + "/" + safeName, nil
}

// ConfigKey builds the storage key for a brand configuration artifact:
// {brandId}/config/{sanitized-file}. Config artifacts are privileged-only
// and carry no per-user namespace.
func ConfigKey(brandID, fileName string) (string, error) {
	safeBrand := SanitizeSegment(brandID)
	if safeBrand == "" {
		return "", fmt.Errorf("keys: empty brand segment %q", brandID)
	}
	safeName := SanitizeFileName(fileName)
	if safeName == "" {
		return "", fmt.Errorf("keys: empty file name %q", fileName)
	}
	return safeBrand + "/" + ConfigFolder + "/" + safeName, nil
}

// UserPrefix returns the namespace root owned by a user.
func UserPrefix(userID string) string {
	return SanitizeSegment(userID) + "/"
}

// BrandPrefix returns the namespace root for one brand of a user.
func BrandPrefix(userID, brandID string) string {
	return SanitizeSegment(userID) + "/" + SanitizeSegment(brandID) + "/"
}

// ParsedKey is the decomposition of an image object key.
type ParsedKey struct {
	Owner    string // first segment, the sanitized owner user id
	BrandID  string // second segment
	FileName string // last segment
	IsConfig bool   // true when the key sits under a config/ sub-path
}

// ParseKey splits an object key into its ownership segments. Keys are the
// access-control boundary, so callers compare Owner against the effective
// namespace rather than trusting metadata.
func ParseKey(key string) ParsedKey {
	parts := strings.Split(key, "/")
	p := ParsedKey{FileName: parts[len(parts)-1]}
	if len(parts) > 0 {
		p.Owner = parts[0]
	}
	if len(parts) > 1 {
		p.BrandID = parts[1]
	}
	if len(parts) > 2 && parts[2] == ConfigFolder {
		p.IsConfig = true
	}
	return p
}

// encodeURIComponent mirrors the JavaScript function of the same name:
// unreserved characters pass through, every other byte becomes an
// uppercase %XX triplet.
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
