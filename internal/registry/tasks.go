package registry

import (
	"fmt"
	"strings"

	"github.com/autonomax/registryx/internal/rowstore"
)

// Task is one actionable line pulled out of a project's free-text fields.
type Task struct {
	ID    string `json:"id"    yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// taskFields are read in this order; the sequence number runs across all of them.
var taskFields = []string{FieldTasks, FieldActions, FieldSteps}

const defaultVerb = "do"

// TokenizeTasks splits the tasks, actions and steps fields into tasks.
// Each non-blank line becomes one task with id T<seq>_<verb>, where verb is
// the lower-cased leading ASCII-letter run of the line.
func TokenizeTasks(row rowstore.Row) []Task {
	var tasks []Task

	seq := 1

	for _, field := range taskFields {
		for _, line := range splitLines(row.Get(field)) {
			title := cleanTaskLine(line)
			if title == "" {
				continue
			}

			tasks = append(tasks, Task{
				ID:    fmt.Sprintf("T%02d_%s", seq, leadingVerb(title)),
				Title: title,
			})
			seq++
		}
	}

	return tasks
}

// cleanTaskLine trims whitespace and any leading run of bullet markers.
func cleanTaskLine(line string) string {
	s := strings.TrimSpace(line)
	s = strings.TrimLeft(s, "-•")

	return strings.TrimSpace(s)
}

func leadingVerb(s string) string {
	end := 0
	for end < len(s) && isASCIILetter(s[end]) {
		end++
	}

	if end == 0 {
		return defaultVerb
	}

	return strings.ToLower(s[:end])
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// splitLines breaks text on every line boundary: \n, \r, \v, \f, the file,
// group and record separators, NEL and the Unicode line and paragraph
// separators. Empty pieces are dropped.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return true
		default:
			return false
		}
	})
}
