package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o/--output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var errInvalidFormat = errors.New("invalid output format (want text, json or yaml)")

// addOutputFlag registers -o/--output on fs.
func addOutputFlag(fs *flag.FlagSet) {
	fs.StringP("output", "o", formatText, "Output format: text, json or yaml")
}

// outputFormat reads and validates the -o flag.
func outputFormat(fs *flag.FlagSet) (string, error) {
	format, _ := fs.GetString("output")

	switch format {
	case formatText, formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", errInvalidFormat, format)
	}
}

// emit writes v as JSON or YAML, or calls text for the text format.
func emit(o *IO, format string, v any, text func()) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(o.Out())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(o.Out())
		enc.SetIndent(2)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		text()
	}

	return nil
}
