package domain

import "strings"

// BaseType reduces a project type to its first two dash segments,
// e.g. "api-service-city-service" -> "api-service".
func BaseType(t string) string {
	parts := strings.Split(t, "-")
	if len(parts) >= 2 {
		return strings.Join(parts[:2], "-")
	}
	return t
}
