package keys

import "encoding/base64"

// S3 user metadata is ASCII-only, so display values (brand names, original
// file names) round-trip through base64. Metadata is advisory: a value that
// fails to decode is returned as-is instead of propagating an error.

// EncodeMetadataValue encodes an arbitrary UTF-8 string for storage in an
// ASCII-only metadata field.
func EncodeMetadataValue(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeMetadataValue reverses EncodeMetadataValue. Decoding failures fall
// back to the raw input; legacy objects may carry un-encoded values.
func DecodeMetadataValue(encoded string) string {
	if encoded == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(decoded)
}
