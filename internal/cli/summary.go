package cli

import (
	"context"
	"sort"

	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
)

// SummaryCmd returns the summary command.
func SummaryCmd(reg *registry.Registry) *Command {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	addOutputFlag(fs)

	return &Command{
		Flags: fs,
		Usage: "summary [flags]",
		Short: "Count projects by family, channel, category, status and completion",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			format, err := outputFormat(fs)
			if err != nil {
				return err
			}

			summary, err := reg.Summarize()
			if err != nil {
				return err
			}

			return emit(io, format, summary, func() { printSummary(io, summary) })
		},
	}
}

func printSummary(io *IO, summary registry.Summary) {
	io.Printf("total: %d\n", summary.Total)

	sections := []struct {
		title  string
		counts map[string]int
	}{
		{"families", summary.Families},
		{"channels", summary.Channels},
		{"categories", summary.Categories},
		{"status", summary.Status},
		{"completion", summary.Completion},
	}

	for _, section := range sections {
		io.Println()
		io.Println(section.title + ":")

		for _, key := range sortedByCount(section.counts) {
			io.Printf("  %-24s %d\n", key, section.counts[key])
		}
	}
}

// sortedByCount returns the keys of counts, largest count first, ties by key.
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}

	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}

		return keys[i] < keys[j]
	})

	return keys
}
