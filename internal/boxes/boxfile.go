package boxes

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// String formats the box as one box-file line: "<char> <left> <bottom> <right> <top> 0".
func (b CharBox) String() string {
	return fmt.Sprintf("%c %d %d %d %d 0", b.Char, b.Left, b.Bottom, b.Right, b.Top)
}

// Format renders boxes as box-file content. Lines are joined by "\n" without
// a trailing newline; no boxes yields an empty string.
func Format(bxs []CharBox) string {
	lines := make([]string, len(bxs))
	for i, b := range bxs {
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Parse reads box-file content produced by Format. A trailing newline and
// "\r\n" line endings are accepted. The page number column must be present
// but is not returned.
func Parse(content string) ([]CharBox, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return []CharBox{}, nil
	}

	lines := strings.Split(content, "\n")
	result := make([]CharBox, 0, len(lines))
	for n, line := range lines {
		box, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("box line %d: %w", n+1, err)
		}
		result = append(result, box)
	}
	return result, nil
}

// parseLine splits off the leading character before tokenizing, since the
// character itself may be a space.
func parseLine(line string) (CharBox, error) {
	r, size := utf8.DecodeRuneInString(line)
	if r == utf8.RuneError && size <= 1 {
		return CharBox{}, fmt.Errorf("missing or invalid character in %q", line)
	}
	rest := line[size:]
	if !strings.HasPrefix(rest, " ") {
		return CharBox{}, fmt.Errorf("expected space after character in %q", line)
	}

	fields := strings.Fields(rest)
	if len(fields) != 5 {
		return CharBox{}, fmt.Errorf("expected 5 numeric fields, got %d in %q", len(fields), line)
	}

	var coords [5]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return CharBox{}, fmt.Errorf("invalid number %q: %w", f, err)
		}
		coords[i] = v
	}

	return CharBox{
		Char:   r,
		Left:   coords[0],
		Bottom: coords[1],
		Right:  coords[2],
		Top:    coords[3],
	}, nil
}
