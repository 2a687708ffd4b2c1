package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Basmati Rice 5kg", "basmati-rice-5kg"},
		{"Café au Lait", "cafe-au-lait"},
		{"  spaced   out  ", "spaced-out"},
		{"UPPER_case&symbols!", "upper-case-symbols"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GenerateSlug(tc.in), "input %q", tc.in)
	}
}

func TestEscapeRegex(t *testing.T) {
	assert.Equal(t, `rice \(5kg\)`, EscapeRegex("rice (5kg)"))
	assert.Equal(t, `a\.b\*c`, EscapeRegex("a.b*c"))
}

func TestParseBoolQuery(t *testing.T) {
	b, err := ParseBoolQuery("")
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = ParseBoolQuery("true")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, *b)

	b, err = ParseBoolQuery("0")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.False(t, *b)

	_, err = ParseBoolQuery("yes")
	assert.Error(t, err)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 30, ParseIntDefault("", 30))
	assert.Equal(t, 30, ParseIntDefault("abc", 30))
	assert.Equal(t, 7, ParseIntDefault("7", 30))
}

func TestParseDateQuery(t *testing.T) {
	_, ok := ParseDateQuery("")
	assert.False(t, ok)

	d, ok := ParseDateQuery("2026-08-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDateQuery("2026-08-01T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, 10, d.Hour())

	_, ok = ParseDateQuery("01/08/2026")
	assert.False(t, ok)
}

func TestStringsToObjectIDs(t *testing.T) {
	ids, err := StringsToObjectIDs([]string{"64b1f0a2e4b0c93f6a1d2e3f"})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, "64b1f0a2e4b0c93f6a1d2e3f", ids[0].Hex())

	_, err = StringsToObjectIDs([]string{"nothex"})
	assert.Error(t, err)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.Error(t, CheckPassword(hash, "wrong-pass"))
}

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAccessToken("64b1f0a2e4b0c93f6a1d2e3f", "9876543210", "user", time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "64b1f0a2e4b0c93f6a1d2e3f", claims.UserID)
	assert.Equal(t, "9876543210", claims.Mobile)
	assert.Equal(t, "user", claims.Role)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestHashTokenNeverStoresPlaintext(t *testing.T) {
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")

	token, err := GenerateRefreshToken("64b1f0a2e4b0c93f6a1d2e3f")
	require.NoError(t, err)

	digest := HashToken(token)
	assert.NotEqual(t, token, digest)
	assert.Len(t, digest, 64)
	assert.Regexp(t, "^[0-9a-f]+$", digest)

	// Deterministic, so lookups by digest find the stored row.
	assert.Equal(t, digest, HashToken(token))
	assert.NotEqual(t, digest, HashToken(token+"x"))
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAccessToken("64b1f0a2e4b0c93f6a1d2e3f", "9876543210", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "test-secret")
	assert.Error(t, err)
}

func TestTTLDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "")
	assert.Equal(t, 15*time.Minute, AccessTTL())
	assert.Equal(t, 14*24*time.Hour, RefreshTTL())

	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "5")
	assert.Equal(t, 5*time.Minute, AccessTTL())
}
