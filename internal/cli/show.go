package cli

import (
	"context"
	"strings"

	"github.com/autonomax/registryx/internal/registry"
	"github.com/autonomax/registryx/internal/rowstore"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "show <id> [flags]",
		Short: "Show project details",
		Long:  "Display every field of a project row, in column order.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, reg, fs, args)
		},
	}
}

func execShow(io *IO, reg *registry.Registry, fs *flag.FlagSet, args []string) error {
	format, err := outputFormat(fs)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return registry.ErrProjectIDRequired
	}

	row, err := reg.GetProject(args[0])
	if err != nil {
		return err
	}

	return emit(io, format, row, func() { printRow(io, row) })
}

// printRow prints "key: value" lines. Continuation lines of multi-line
// values are indented by two spaces.
func printRow(io *IO, row rowstore.Row) {
	for _, key := range row.Keys() {
		value := strings.ReplaceAll(row.Get(key), "\n", "\n  ")
		io.Println(key + ": " + value)
	}
}
