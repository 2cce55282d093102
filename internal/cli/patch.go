package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/autonomax/registryx/internal/registry"
	"github.com/autonomax/registryx/internal/rowstore"

	flag "github.com/spf13/pflag"
)

var errInvalidUpdate = errors.New("invalid update, want field=value")

// PatchCmd returns the patch command.
func PatchCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("patch", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "patch <id> <field=value>...",
		Short: "Update fields of a project",
		Long: `Set one or more fields on a project and rewrite the registry file.
Fields that are not columns yet are added as new columns. An empty value
clears the field.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execPatch(io, reg, fs, args)
		},
	}
}

func execPatch(io *IO, reg *registry.Registry, fs *flag.FlagSet, args []string) error {
	format, err := outputFormat(fs)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return registry.ErrProjectIDRequired
	}

	updates, err := parseUpdates(args[1:])
	if err != nil {
		return err
	}

	result, err := reg.PatchProject(args[0], updates)
	if err != nil {
		return err
	}

	return emit(io, format, result, func() {
		io.Printf("patched %s: %s\n", args[0], strings.Join(updates.Keys(), ", "))
	})
}

// parseUpdates turns field=value arguments into a row, keeping argument
// order. A repeated field keeps its last value.
func parseUpdates(args []string) (rowstore.Row, error) {
	if len(args) == 0 {
		return rowstore.Row{}, registry.ErrUpdatesRequired
	}

	updates := rowstore.NewRow()

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)

		if !ok || key == "" {
			return rowstore.Row{}, fmt.Errorf("%w: %q", errInvalidUpdate, arg)
		}

		updates.Set(key, value)
	}

	return updates, nil
}
