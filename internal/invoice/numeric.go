package invoice

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseNumeric converts an extracted scalar into a float64. It never fails:
// nil, non-finite numbers and unparseable text all become 0.
//
// Text is stripped of everything except digits, '.', ',' and '-', and the
// first ',' is read as a decimal separator. "1,234" therefore parses as
// 1.234, not 1234; ingestion and editing rely on the same reading.
func ParseNumeric(input any) float64 {
	switch v := input.(type) {
	case nil:
		return 0
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case *float64:
		if v == nil {
			return 0
		}
		return finite(*v)
	case string:
		return parseNumericString(v)
	case *string:
		if v == nil {
			return 0
		}
		return parseNumericString(*v)
	case json.Number:
		return parseNumericString(string(v))
	case Value:
		return ParseNumeric(v.Any())
	case *Value:
		if v == nil {
			return 0
		}
		return ParseNumeric(v.Any())
	default:
		return parseNumericString(fmt.Sprint(v))
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseNumericString(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, s)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	prefix := floatPrefix(cleaned)
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// floatPrefix returns the longest leading decimal literal in s
// (optional '-', digits, optional fraction), or "" if s does not start with one.
func floatPrefix(s string) string {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}
	intStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits := i - intStart
	end := i
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i > fracStart {
			digits += i - fracStart
			end = i
		}
	}
	if digits == 0 {
		return ""
	}
	return s[:end]
}
