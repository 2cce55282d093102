package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
)

var errQueryRequired = errors.New("search query is required")

// SearchCmd returns the search command.
func SearchCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.Int("limit", registry.DefaultSearchLimit, "Maximum hits to show")
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "search <query>... [flags]",
		Short: "Search the keyword index",
		Long: `Case-insensitive substring search over the indexed text and name of
each project. Arguments are joined with spaces. Run "index build" first.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			format, err := outputFormat(fs)
			if err != nil {
				return err
			}

			limit, _ := fs.GetInt("limit")
			if limit < 0 {
				return errors.New("--limit must be non-negative")
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errQueryRequired
			}

			if len(reg.Index().Items) == 0 {
				warnEmptyIndex(io)
			}

			result := reg.SearchIndex(query, limit)

			return emit(io, format, result, func() { printIndexDocuments(io, result.Items) })
		},
	}
}
