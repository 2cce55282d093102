package cli

import (
	"context"
	"fmt"

	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
)

// TeamCmd returns the team command.
func TeamCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("team", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "team <id> [flags]",
		Short: "List team assignments of a project",
		Exec: func(_ context.Context, io *IO, args []string) error {
			format, err := outputFormat(fs)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return registry.ErrProjectIDRequired
			}

			team, err := reg.Team(args[0])
			if err != nil {
				return err
			}

			return emit(io, format, team, func() {
				for _, member := range team.Members {
					line := fmt.Sprintf("%s: %s", member.Get(registry.FieldRole), member.Get(registry.FieldAssignee))

					if capacity := member.Get(registry.FieldCapacityPct); capacity != "" {
						line += " (" + capacity + "%)"
					}

					if notes := member.Get(registry.FieldNotes); notes != "" {
						line += " - " + notes
					}

					io.Println(line)
				}
			})
		},
	}
}
