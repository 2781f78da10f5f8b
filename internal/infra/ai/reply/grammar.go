// Package reply parses line-oriented model replies of the form
//
//	Claim: The earth is round.
//	Accuracy: Accurate
//	Evidence: Satellite imagery.
//
// into records. Grammar:
//
//   - every line is trimmed; a leading list marker ("-", "*", "1.", "1)"),
//     markdown heading hashes and bold/italic markers are stripped
//   - "Key: value" where Key matches a grammar key (case-insensitive) is a field line
//   - any other line is ignored (preambles, blank lines, commentary)
//   - the Start key opens a new record
//   - a field line before any Start line is an UnparseableError
//   - a field repeated inside one record is an UnparseableError
//
// Records missing fields are returned as-is. A reply without any Start line
// yields no records and no error.
package reply

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bryanwahyu/podcast-assistant/internal/domain/ai"
)

// Record maps a canonical grammar key to its value.
type Record map[string]string

// Grammar describes one record layout.
type Grammar struct {
	Start  string
	Fields []string
}

// UnparseableError reports the first line that breaks the grammar.
type UnparseableError struct {
	Line   int
	Text   string
	Reason string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

func (e *UnparseableError) Unwrap() error { return ai.ErrUnparseable }

var listMarker = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+|#+\s*)`)

// Parse splits text into records according to the grammar.
func (g Grammar) Parse(text string) ([]Record, error) {
	keys := make(map[string]string, len(g.Fields)+1)
	keys[strings.ToLower(g.Start)] = g.Start
	for _, f := range g.Fields {
		keys[strings.ToLower(f)] = f
	}

	records := make([]Record, 0)
	var cur Record
	for i, raw := range strings.Split(text, "\n") {
		key, value, ok := splitField(raw)
		if !ok {
			continue
		}
		canon, known := keys[strings.ToLower(key)]
		if !known {
			continue
		}
		switch {
		case canon == g.Start:
			cur = Record{canon: value}
			records = append(records, cur)
		case cur == nil:
			return nil, &UnparseableError{Line: i + 1, Text: raw, Reason: fmt.Sprintf("%s before first %s", canon, g.Start)}
		default:
			if _, dup := cur[canon]; dup {
				return nil, &UnparseableError{Line: i + 1, Text: raw, Reason: fmt.Sprintf("duplicate %s in one record", canon)}
			}
			cur[canon] = value
		}
	}
	return records, nil
}

func splitField(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	line = listMarker.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.Trim(line[:idx], "*_ ")
	value = strings.Trim(strings.TrimSpace(line[idx+1:]), "*_")
	return key, strings.TrimSpace(value), key != ""
}
