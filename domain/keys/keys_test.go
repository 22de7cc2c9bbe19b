package keys

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "Nike", "Nike"},
		{"trims whitespace", "  Nike  ", "Nike"},
		{"collapses internal whitespace", "New   Balance\tRunning", "New-Balance-Running"},
		{"encodes slash", "a/b", "a%2Fb"},
		{"encodes cjk", "ユニクロ", "%E3%83%A6%E3%83%8B%E3%82%AF%E3%83%AD"},
		{"keeps unreserved punctuation", "brand-x_v2.0", "brand-x_v2.0"},
		{"empty stays empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSegment(tt.in))
		})
	}
}

func TestSanitizeSegment_NeverContainsSpaceOrSlash(t *testing.T) {
	inputs := []string{
		"a b c",
		"path/to/thing",
		" mixed 日本語 / input ",
		"\ttabs\tand spaces ",
		"%20 literal artifact",
		strings.Repeat("é ", 50),
	}

	for _, in := range inputs {
		got := SanitizeSegment(in)
		assert.NotContains(t, got, " ", "input %q", in)
		assert.NotContains(t, got, "/", "input %q", in)
		for i := 0; i < len(got); i++ {
			c := got[i]
			ok := isUnreserved(c) || c == '%' ||
				(c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
			assert.True(t, ok, "unexpected byte %q in %q", c, got)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	t.Run("lower-cases extension", func(t *testing.T) {
		assert.Equal(t, "photo.jpg", SanitizeFileName("photo.JPG"))
	})

	t.Run("sanitizes base and keeps extension", func(t *testing.T) {
		assert.Equal(t, "summer-look.png", SanitizeFileName("summer look.PNG"))
	})

	t.Run("no extension", func(t *testing.T) {
		assert.Equal(t, "photo", SanitizeFileName("photo"))
	})

	t.Run("leading dot is not an extension", func(t *testing.T) {
		assert.Equal(t, ".hidden", SanitizeFileName(".hidden"))
	})

	t.Run("non-ascii base falls back to timestamp", func(t *testing.T) {
		got := SanitizeFileName("春のコーデ.webp")
		require.True(t, strings.HasSuffix(got, ".webp"), got)
		base := strings.TrimSuffix(got, ".webp")
		assert.NotContains(t, base, "%")
		for _, r := range base {
			assert.True(t, r >= '0' && r <= '9', "expected digits, got %q", got)
		}
	})

	t.Run("overlong base falls back to timestamp", func(t *testing.T) {
		got := SanitizeFileName(strings.Repeat("a", 150) + ".jpg")
		base := strings.TrimSuffix(got, ".jpg")
		assert.LessOrEqual(t, len(base), maxSanitizedBaseLen)
	})
}

func TestWithJPGExtension(t *testing.T) {
	assert.Equal(t, "a.jpg", WithJPGExtension("a.png"))
	assert.Equal(t, "a.jpg", WithJPGExtension("a"))
	assert.Equal(t, "a.b.jpg", WithJPGExtension("a.b.webp"))
}

func TestImageKey(t *testing.T) {
	key, err := ImageKey("u1", "b-123", "a.png")
	require.NoError(t, err)
	assert.Equal(t, "u1/b-123/a.jpg", key)

	_, err = ImageKey("", "b-123", "a.png")
	assert.Error(t, err)

	_, err = ImageKey("u1", "   ", "a.png")
	assert.Error(t, err)
}

func TestConfigKey(t *testing.T) {
	key, err := ConfigKey("b-123", "gender-map.json")
	require.NoError(t, err)
	assert.Equal(t, "b-123/config/gender-map.json", key)

	_, err = ConfigKey("", "gender-map.json")
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	p := ParseKey("u1/b-123/a.jpg")
	assert.Equal(t, "u1", p.Owner)
	assert.Equal(t, "b-123", p.BrandID)
	assert.Equal(t, "a.jpg", p.FileName)
	assert.False(t, p.IsConfig)

	p = ParseKey("u1/b-123/config/settings.json")
	assert.True(t, p.IsConfig)
	assert.Equal(t, "settings.json", p.FileName)

	p = ParseKey("orphan")
	assert.Equal(t, "orphan", p.Owner)
	assert.Empty(t, p.BrandID)
}

func TestMetadataRoundTrip(t *testing.T) {
	values := []string{
		"Nike",
		"ユニクロ 2024 春",
		"file with spaces.png",
		"",
		"emoji 👗👠",
		strings.Repeat("私", 66), // ~200 bytes of UTF-8
	}

	for _, v := range values {
		assert.Equal(t, v, DecodeMetadataValue(EncodeMetadataValue(v)), "value %q", v)
	}
}

func TestDecodeMetadataValue_FallsBackOnGarbage(t *testing.T) {
	// Not valid base64: returned verbatim rather than erroring.
	assert.Equal(t, "not%%base64!", DecodeMetadataValue("not%%base64!"))
}
