package server

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const maxNameLength = 32

var errInvalidName = errors.New("invalid name")

// validateName trims and bounds a display name. Control characters are
// rejected rather than stripped.
func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", errInvalidName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", errInvalidName
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return "", errInvalidName
		}
	}
	return name, nil
}
