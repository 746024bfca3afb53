package outcome

import (
	"encoding/json"
)

// LastJSONObject scans text for the last balanced {...} span that parses
// as a JSON object. External tools are known to emit progress noise before
// and after their final JSON payload, so the scan is tolerant of
// surrounding garbage: a balanced span that fails to parse is treated as
// more noise, and the last span that does parse wins even when malformed
// brace spans follow it.
func LastJSONObject(text string) (Detail, bool) {
	var last Detail
	found := false

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if depth > 0 && inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue // stray closing brace in noise
			}
			depth--
			if depth == 0 {
				if d, ok := tryParseObject(text[start : i+1]); ok {
					last = d
					found = true
				}
			}
		}
	}
	return last, found
}

func tryParseObject(span string) (Detail, bool) {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(span), &m); err != nil {
		return nil, false
	}
	return Detail(m), true
}
