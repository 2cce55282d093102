package cli

import (
	"context"
	"strings"

	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
)

// WBSCmd returns the wbs command.
func WBSCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("wbs", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "wbs <id> [flags]",
		Short: "Show the work breakdown of a project",
		Long: `Show the work breakdown tree of a project: the seven fixed phases, with
the first twelve tasks placed under Offer Design, Asset Creation and Launch.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			format, err := outputFormat(fs)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return registry.ErrProjectIDRequired
			}

			graph, err := reg.WBS(args[0])
			if err != nil {
				return err
			}

			return emit(io, format, graph, func() { printTree(io, graph) })
		},
	}
}

// printTree prints graph depth-first from its root, two spaces per level.
// Each node's children are expanded once.
func printTree(io *IO, graph registry.Graph) {
	if len(graph.Nodes) == 0 {
		return
	}

	labels := make(map[string]string, len(graph.Nodes))
	for _, node := range graph.Nodes {
		labels[node.ID] = node.Label
	}

	children := make(map[string][]string, len(graph.Nodes))
	for _, edge := range graph.Edges {
		children[edge.From] = append(children[edge.From], edge.To)
	}

	// A project id may collide with a phase or task id.
	seen := make(map[string]bool, len(graph.Nodes))

	var walk func(id string, depth int)

	walk = func(id string, depth int) {
		io.Printf("%s%s %s\n", strings.Repeat("  ", depth), id, labels[id])

		if seen[id] {
			return
		}

		seen[id] = true

		for _, child := range children[id] {
			walk(child, depth+1)
		}
	}

	walk(graph.Nodes[0].ID, 0)
}
