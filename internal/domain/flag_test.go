package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true}, {"true", true}, {"YES", true}, {" on ", true},
		{"0", false}, {"false", false}, {"No", false}, {"off", false}, {"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFlag(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlag_RejectsUnknownTokens(t *testing.T) {
	for _, in := range []string{"maybe", "2", "y", "nope"} {
		_, err := ParseFlag(in)
		assert.ErrorIs(t, err, ErrInvalidFlag, in)
	}
}

func TestFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Flag
	}{
		{"json true", `true`, true},
		{"json false", `false`, false},
		{"null", `null`, false},
		{"number one", `1`, true},
		{"number zero", `0`, false},
		{"string yes", `"yes"`, true},
		{"string empty", `""`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Flag
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &f))
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestFlag_UnmarshalJSON_Invalid(t *testing.T) {
	for _, raw := range []string{`"maybe"`, `3`, `[1]`} {
		var f Flag
		err := json.Unmarshal([]byte(raw), &f)
		assert.Error(t, err, raw)
	}
}
