package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
)

var errIndexAction = errors.New("index needs an action: build or show")

// IndexCmd returns the index command.
func IndexCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "index <build|show> [flags]",
		Short: "Rebuild or print the keyword index",
		Long: `build rebuilds the index file from the project registry.
show prints the current index. A missing, unreadable or empty index prints
as empty with a warning and exit code 1.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			format, err := outputFormat(fs)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return errIndexAction
			}

			switch args[0] {
			case "build":
				return execIndexBuild(io, reg, format)
			case "show":
				idx := reg.Index()
				if len(idx.Items) == 0 {
					warnEmptyIndex(io)
				}

				return emit(io, format, idx, func() { printIndexDocuments(io, idx.Items) })
			default:
				return fmt.Errorf("%w, got %q", errIndexAction, args[0])
			}
		},
	}
}

func execIndexBuild(io *IO, reg *registry.Registry, format string) error {
	result, err := reg.RebuildIndex()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	return emit(io, format, result, func() {
		io.Printf("wrote %s (%d projects)\n", result.Wrote, result.Count)
	})
}

func warnEmptyIndex(io *IO) {
	io.Warn("index is empty or unreadable", "run registryx index build")
}

func printIndexDocuments(io *IO, docs []registry.IndexDocument) {
	for _, doc := range docs {
		io.Printf("%s [%s] %s\n", doc.ProjectID, doc.Family, doc.Name)
	}
}
