package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqidsCodec_RoundTrip(t *testing.T) {
	c, err := NewSqidsCodec("", 6)
	require.NoError(t, err)

	seen := make(map[string]int)
	for i := 0; i < 500; i++ {
		code, err := c.Encode(i)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(code), 6)

		prev, dup := seen[code]
		require.False(t, dup, "index %d and %d share code %q", prev, i, code)
		seen[code] = i

		got, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestSqidsCodec_RejectsMalformed(t *testing.T) {
	c, err := NewSqidsCodec("", 6)
	require.NoError(t, err)

	for _, code := range []string{"", "!!!!!!", "a b c d", "ä"} {
		_, err := c.Decode(code)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}
}

func TestSqidsCodec_RejectsNonCanonical(t *testing.T) {
	c, err := NewSqidsCodec("", 6)
	require.NoError(t, err)

	code, err := c.Encode(42)
	require.NoError(t, err)

	// An extra character decodes to something else or nothing, never to 42 again.
	got, err := c.Decode(code + code)
	if err == nil {
		assert.NotEqual(t, 42, got)
	}
}

func TestSqidsCodec_RejectsBadMinLength(t *testing.T) {
	_, err := NewSqidsCodec("", 300)
	assert.Error(t, err)
}

func TestSqidsCodec_NegativeIndex(t *testing.T) {
	c, err := NewSqidsCodec("", 0)
	require.NoError(t, err)

	_, err = c.Encode(-1)
	assert.Error(t, err)
}

func TestDecimalCodec(t *testing.T) {
	c := DecimalCodec{}

	code, err := c.Encode(17)
	require.NoError(t, err)
	assert.Equal(t, "17", code)

	got, err := c.Decode("17")
	require.NoError(t, err)
	assert.Equal(t, 17, got)

	for _, bad := range []string{"", "-1", "+3", "007", "abc", "1.5"} {
		_, err := c.Decode(bad)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", bad)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "default is sqids", opts: Options{MinLength: 4}},
		{name: "sqids", opts: Options{Kind: KindSqids, MinLength: 8}},
		{name: "decimal", opts: Options{Kind: KindDecimal}},
		{name: "unknown", opts: Options{Kind: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			code, err := c.Encode(3)
			require.NoError(t, err)
			got, err := c.Decode(code)
			require.NoError(t, err)
			assert.Equal(t, 3, got)
		})
	}
}
