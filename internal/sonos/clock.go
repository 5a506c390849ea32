package sonos

import (
	"strconv"
	"strings"
)

// ParseClock converts an AVTransport clock string ("H:MM:SS", "MM:SS",
// or a bare seconds field) to whole seconds. Sonos reports unknown
// positions as "NOT_IMPLEMENTED" or empty; those and any other malformed
// value yield 0. The parser never fails.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}
