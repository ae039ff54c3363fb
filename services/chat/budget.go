package chat

import (
	"strconv"
	"strings"
)

// ParseBudget converts a free-text budget mention into whole currency
// units. It accepts currency symbols, thousands separators and common
// magnitude suffixes ("750k", "1.2m", "2 million"). Returns false when
// the text does not contain a usable amount; the engine treats that as
// "budget not provided this turn".
func ParseBudget(raw string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"£", "$", "gbp", "aud"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "million"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "million")
	case strings.HasSuffix(s, "mil"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "mil")
	case strings.HasSuffix(s, "m"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "k"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "k")
	}
	s = strings.TrimSpace(s)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return int64(value * multiplier), true
}
