// Package frontmatter reads and writes the `---` delimited metadata block at
// the top of a post file.
package frontmatter

import "strings"

const delimiter = "---"

// Normalize guarantees that the closing delimiter of a leading metadata block
// is followed by a line break before the body begins. Input that does not
// open with a delimiter line is returned unchanged, as is input that is
// already well formed. The inserted line break matches the predominant style
// of the input.
//
// A closing delimiter glued to a body line that itself starts with a dash
// (a list item or a rule) is only split off when the block has no exact
// closing line further down.
func Normalize(raw string) string {
	first, pos, hasNL := nextLine(raw, 0)
	if !hasNL || !isDelimiterLine(first) {
		return raw
	}

	dashed := -1
	for pos < len(raw) {
		line, next, nl := nextLine(raw, pos)
		if strings.HasPrefix(line, delimiter) {
			tail := line[len(delimiter):]
			if strings.TrimSpace(tail) == "" {
				if nl {
					return raw
				}
				return raw + detectNewline(raw)
			}
			if tail[0] != '-' {
				// closing delimiter glued to the first body line
				return splitAt(raw, pos+len(delimiter))
			}
			if dashed < 0 {
				dashed = pos
			}
		}
		pos = next
	}
	if dashed >= 0 {
		return splitAt(raw, dashed+len(delimiter))
	}
	return raw
}

// HasOpening reports whether raw starts with a metadata delimiter line
func HasOpening(raw string) bool {
	first, _, hasNL := nextLine(raw, 0)
	return hasNL && isDelimiterLine(first)
}

// Split separates a leading metadata block from the body. Delimiter lines may
// carry trailing whitespace. When no complete block is present, had is false
// and body is the full input.
func Split(raw string) (meta string, body string, had bool) {
	first, pos, hasNL := nextLine(raw, 0)
	if !hasNL || !isDelimiterLine(first) {
		return "", raw, false
	}
	start := pos
	for pos < len(raw) {
		line, next, _ := nextLine(raw, pos)
		if isDelimiterLine(line) {
			return raw[start:pos], raw[next:], true
		}
		pos = next
	}
	return "", raw, false
}

// StripBlock removes an embedded metadata block from user supplied content,
// along with one blank line directly after it.
func StripBlock(content string) string {
	_, body, had := Split(Normalize(content))
	if !had {
		return content
	}
	if strings.HasPrefix(body, "\r\n") {
		return body[2:]
	}
	return strings.TrimPrefix(body, "\n")
}

// nextLine returns the line starting at pos without its terminator, the
// offset of the following line and whether a line feed ended the line.
func nextLine(s string, pos int) (line string, next int, hasNL bool) {
	idx := strings.IndexByte(s[pos:], '\n')
	if idx < 0 {
		return strings.TrimSuffix(s[pos:], "\r"), len(s), false
	}
	return strings.TrimSuffix(s[pos:pos+idx], "\r"), pos + idx + 1, true
}

func splitAt(raw string, cut int) string {
	return raw[:cut] + detectNewline(raw) + raw[cut:]
}

func isDelimiterLine(line string) bool {
	return strings.TrimRight(line, " \t") == delimiter
}

func detectNewline(s string) string {
	lf := strings.Count(s, "\n")
	crlf := strings.Count(s, "\r\n")
	if crlf > 0 && crlf >= lf-crlf {
		return "\r\n"
	}
	return "\n"
}
