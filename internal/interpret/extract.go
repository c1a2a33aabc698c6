package interpret

import "strings"

// locate finds the single JSON object candidate inside free text. Fenced code
// blocks win over bare braces; otherwise the first balanced {...} span is
// taken, tracking brace depth and skipping braces inside string literals.
func locate(text string) (string, bool) {
	if fenced, ok := fencedBlock(text); ok {
		if span, ok := balancedSpan(fenced); ok {
			return span, true
		}
	}
	return balancedSpan(text)
}

func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// skip an optional language tag such as ```json
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if len(firstLine) <= 16 && !strings.ContainsAny(firstLine, "{}") {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func balancedSpan(text string) (string, bool) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
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
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// repair applies the bounded fix-ups tolerated before the single retry:
// trailing commas before a closing brace/bracket are dropped, and
// single-quoted keys/values are converted to double-quoted ones.
func repair(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
			b.WriteByte(c)
		case c == '\\':
			escaped = true
			if inSingle && i+1 < len(s) && s[i+1] == '\'' {
				// \' inside a single-quoted span becomes a bare quote
				b.WriteByte('\'')
				i++
				escaped = false
				continue
			}
			b.WriteByte(c)
		case inDouble:
			if c == '"' {
				inDouble = false
			}
			b.WriteByte(c)
		case inSingle:
			if c == '\'' {
				inSingle = false
				b.WriteByte('"')
				continue
			}
			if c == '"' {
				b.WriteString(`\"`)
				continue
			}
			b.WriteByte(c)
		case c == '"':
			inDouble = true
			b.WriteByte(c)
		case c == '\'':
			inSingle = true
			b.WriteByte('"')
		case c == ',':
			if j := nextNonSpace(s, i+1); j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue // trailing comma
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func nextNonSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}
