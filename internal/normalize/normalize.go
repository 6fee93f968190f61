// Package normalize turns raw admin-panel payloads into canonical media
// records. Clients submit a flat key/value object where several fields may
// arrive as native JSON structures, JSON-encoded strings or comma-separated
// strings; everything here is lenient and never fails a request over a
// malformed optional field.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([\w-]{11})`),
	regexp.MustCompile(`youtu\.be/([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([\w-]{11})`),
}

var youtubeIDPattern = regexp.MustCompile(`^[\w-]{11}$`)

// Clean trims string values and maps empty or whitespace-only strings to
// nil; non-string values pass through unchanged
func Clean(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// CleanString returns the cleaned string value, or nil when the input is
// absent, empty or not a string
func CleanString(value any) *string {
	cleaned := Clean(value)
	if cleaned == nil {
		return nil
	}
	s, ok := cleaned.(string)
	if !ok {
		return nil
	}
	return &s
}

// ToDateInputFormat normalizes a date value to YYYY-MM-DD: the first ten
// characters of an ISO string, or the formatted value for time inputs
func ToDateInputFormat(value any) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		if len(s) > 10 {
			s = s[:10]
		}
		return &s
	case time.Time:
		s := v.Format("2006-01-02")
		return &s
	default:
		return nil
	}
}

// ExtractYoutubeID pulls the 11-character video id out of the known
// YouTube URL shapes, or accepts a bare id verbatim; returns "" otherwise
func ExtractYoutubeID(url string) string {
	if url == "" {
		return ""
	}
	for _, p := range youtubePatterns {
		if m := p.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	if youtubeIDPattern.MatchString(url) {
		return url
	}
	return ""
}

// StringList normalizes any list-like input to a string slice: a
// JSON-encoded array string, a comma-separated string or an existing list
// all produce the same result. Unparseable JSON yields an empty list.
func StringList(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringValue(item))
		}
		return out
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return []string{}
		}
		if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return []string{}
			}
			out := make([]string, 0, len(items))
			for _, item := range items {
				out = append(out, stringValue(item))
			}
			return out
		}
		out := []string{}
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []string{}
	}
}

// ParseFloat parses a float from number or string input; absence, empty
// strings and malformed values all yield nil rather than an error
func ParseFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// ParseInt parses an integer with the same absent-on-failure rule as
// ParseFloat; fractional number input is truncated
func ParseInt(value any) *int {
	f := ParseFloat(value)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// jsonObject coerces map-like input (a native object or a JSON-encoded
// object string) into a generic map; anything else yields nil
func jsonObject(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil
		}
		return out
	default:
		return nil
	}
}

// stringValue renders a scalar as a string; numbers lose a trailing ".0"
// so JSON-decoded integers round-trip cleanly
func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
