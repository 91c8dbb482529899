package domain

import "strings"

const MaxDisplayNameLen = 36

// CleanDisplayName trims and bounds a free-text name. The presentation
// layer validates too, but the registry must reject empty names on its own.
func CleanDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrInvalidInput
	}
	if len(name) > MaxDisplayNameLen {
		name = name[:MaxDisplayNameLen]
	}
	return name, nil
}
