package utils

import "encoding/json"

// SalvagedJSON is the outcome of pulling a JSON value out of free text.
// A failed salvage keeps the raw text so callers can log it; it is never
// confused with a legitimately empty value.
type SalvagedJSON struct {
	Value json.RawMessage // nil when unparseable
	Raw   string
}

func (s SalvagedJSON) Parsed() bool { return len(s.Value) > 0 }

// SalvageJSONObject locates the first balanced JSON object in free text.
// Model replies tend to wrap JSON in prose or markdown fences; everything
// around the object is ignored.
func SalvageJSONObject(raw string) SalvagedJSON {
	return salvage(raw, '{', '}')
}

// SalvageJSONArray is SalvageJSONObject for top-level arrays.
func SalvageJSONArray(raw string) SalvagedJSON {
	return salvage(raw, '[', ']')
}

func salvage(raw string, open, close byte) SalvagedJSON {
	for start := 0; start < len(raw); start++ {
		if raw[start] != open {
			continue
		}
		if end, ok := scanBalanced(raw, start, open, close); ok {
			candidate := raw[start : end+1]
			if json.Valid([]byte(candidate)) {
				return SalvagedJSON{Value: json.RawMessage(candidate), Raw: raw}
			}
		}
	}
	return SalvagedJSON{Raw: raw}
}

// scanBalanced walks from the opening delimiter to its match, skipping
// string literals and escapes.
func scanBalanced(s string, start int, open, close byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
