package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFlag is returned for boolean-ish values outside the allow-list.
var ErrInvalidFlag = errors.New("invalid boolean flag")

var (
	trueTokens  = map[string]bool{"1": true, "true": true, "yes": true, "on": true}
	falseTokens = map[string]bool{"0": true, "false": true, "no": true, "off": true, "": true}
)

// Flag is a request boolean that also accepts the string and numeric tokens
// sent by form-driven clients. Only the literal tokens in the allow-list are
// accepted; anything else is rejected instead of being coerced.
type Flag bool

// ParseFlag parses a boolean-ish token, case-insensitively.
func ParseFlag(s string) (bool, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	switch {
	case trueTokens[token]:
		return true, nil
	case falseTokens[token]:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidFlag, s)
	}
}

// UnmarshalJSON accepts true/false, null, 0/1 and allow-listed strings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}

	var s string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFlag, err)
		}
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidFlag, data)
		}
		*f = Flag(b)
		return nil
	default:
		s = string(data)
	}

	b, err := ParseFlag(s)
	if err != nil {
		return err
	}
	*f = Flag(b)
	return nil
}
