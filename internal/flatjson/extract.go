// Package flatjson provides single-key value lookup over raw JSON text.
//
// It is deliberately not a structural parser: it finds the first literal
// occurrence of a key and slices out the value that follows. Payload shapes
// queried through it are known and flat for the keys in question, so bracket
// matching beyond the one value being read is unnecessary. A key string
// appearing inside another value's content can fool it; callers accept this.
package flatjson

import "strings"

// Extract returns the value for the first occurrence of key in text.
// String values are returned without their surrounding quotes but with
// escape sequences preserved verbatim (an escaped quote stays `\"`).
// Non-string values are read up to the first ',', '}' or whitespace.
// The second return is false if the key is absent, no ':' follows it,
// or a string value's closing quote is never found.
func Extract(text, key string) (string, bool) {
	search := `"` + key + `"`
	keyIdx := strings.Index(text, search)
	if keyIdx == -1 {
		return "", false
	}

	colon := strings.IndexByte(text[keyIdx:], ':')
	if colon == -1 {
		return "", false
	}

	i := keyIdx + colon + 1
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	if i >= len(text) {
		return "", false
	}

	if text[i] == '"' {
		end := i + 1
		for end < len(text) {
			if text[end] == '"' && text[end-1] != '\\' {
				return text[i+1 : end], true
			}
			end++
		}
		// truncated input, closing quote never found
		return "", false
	}

	end := i
	for end < len(text) && text[end] != ',' && text[end] != '}' && !isSpace(text[end]) {
		end++
	}
	return text[i:end], true
}

// ExtractArray returns the bracketed array value for key, including the
// surrounding '[' and ']', located by matching-depth bracket scanning.
func ExtractArray(text, key string) (string, bool) {
	return extractDelimited(text, key, '[', ']')
}

// ExtractObject returns the braced object value for key, including the
// surrounding '{' and '}', located by matching-depth brace scanning.
func ExtractObject(text, key string) (string, bool) {
	return extractDelimited(text, key, '{', '}')
}

func extractDelimited(text, key string, open, close byte) (string, bool) {
	search := `"` + key + `"`
	keyIdx := strings.Index(text, search)
	if keyIdx == -1 {
		return "", false
	}

	start := strings.IndexByte(text[keyIdx:], open)
	if start == -1 {
		return "", false
	}
	start += keyIdx

	depth := 1
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// Strings walks a bracketed array or braced object slice and returns every
// quoted string inside it, in order. For an object slice this yields keys
// and values alternating.
func Strings(slice string) []string {
	var out []string
	i := 0
	for i < len(slice) {
		start := strings.IndexByte(slice[i:], '"')
		if start == -1 {
			break
		}
		start += i
		end := strings.IndexByte(slice[start+1:], '"')
		if end == -1 {
			break
		}
		end += start + 1
		out = append(out, slice[start+1:end])
		i = end + 1
	}
	return out
}

// Unescape reverses the escaping applied to a JSON-encoded string value:
// escaped quotes and escaped backslashes become literal. Used on nested
// payloads that arrive as a JSON string and must be re-parsed.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	return strings.ReplaceAll(s, `\\`, `\`)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
