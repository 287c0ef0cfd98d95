package cookie

import (
	"encoding/base64"
	"strings"
)

// EncodedPrefix marks values written by Encode.
const EncodedPrefix = "base64-"

// Encode makes an arbitrary string safe for a cookie value.
func Encode(value string) string {
	return EncodedPrefix + base64.RawURLEncoding.EncodeToString([]byte(value))
}

// Decode reverses Encode. Values without the prefix are returned as-is so
// cookies written in raw form keep working.
func Decode(value string) (string, error) {
	raw, ok := strings.CutPrefix(value, EncodedPrefix)
	if !ok {
		return value, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
	if err != nil {
		return "", ErrInvalidFormat
	}
	return string(b), nil
}
