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

var errInvalidFamily = errors.New("invalid family")

// LsCmd returns the ls command.
func LsCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("family", "", "Only list projects of this family ("+familyNames()+")")
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List projects",
		Long:  "List all projects in file order, with the family each name classifies into.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execLs(io, reg, fs)
		},
	}
}

func execLs(io *IO, reg *registry.Registry, fs *flag.FlagSet) error {
	format, err := outputFormat(fs)
	if err != nil {
		return err
	}

	family, _ := fs.GetString("family")
	if fs.Changed("family") && !isFamily(family) {
		return fmt.Errorf("%w: %q (want one of %s)", errInvalidFamily, family, familyNames())
	}

	listing, err := reg.ListProjects()
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if family != "" {
		rows := listing.Groups[registry.Family(family)]

		return emit(io, format, rows, func() { printProjectLines(io, rows) })
	}

	return emit(io, format, listing, func() { printProjectLines(io, listing.Items) })
}

func printProjectLines(io *IO, rows []rowstore.Row) {
	for _, row := range rows {
		io.Println(formatProjectLine(row))
	}
}

// formatProjectLine renders "<id> [<family>] <name> (<status>, <pct>%)".
func formatProjectLine(row rowstore.Row) string {
	name := row.Get(registry.FieldName)

	line := fmt.Sprintf("%s [%s] %s", row.Get(registry.FieldProjectID), registry.ClassifyFamily(name), name)

	var details []string

	if status := row.Get(registry.FieldStatus); status != "" {
		details = append(details, status)
	}

	if pct := strings.TrimSpace(row.Get(registry.FieldPercentComplete)); pct != "" {
		details = append(details, pct+"%")
	}

	if len(details) > 0 {
		line += " (" + strings.Join(details, ", ") + ")"
	}

	return line
}

func isFamily(name string) bool {
	for _, f := range registry.Families() {
		if string(f) == name {
			return true
		}
	}

	return false
}

func familyNames() string {
	names := make([]string, 0, len(registry.Families()))
	for _, f := range registry.Families() {
		names = append(names, string(f))
	}

	return strings.Join(names, "|")
}
