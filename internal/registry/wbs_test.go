package registry_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/autonomax/registryx/internal/registry"
	"github.com/autonomax/registryx/internal/rowstore"

	"github.com/google/go-cmp/cmp"
)

func TestTokenizeTasks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  rowstore.Row
		want []registry.Task
	}{
		{
			name: "bullets and blank lines",
			row:  rowstore.NewRow("tasks", "- Write script\n• Record audio\n\nEdit video"),
			want: []registry.Task{
				{ID: "T01_write", Title: "Write script"},
				{ID: "T02_record", Title: "Record audio"},
				{ID: "T03_edit", Title: "Edit video"},
			},
		},
		{
			name: "sequence continues across fields",
			row: rowstore.NewRow(
				"steps", "Ship it",
				"tasks", "Plan\r\nDraft",
				"actions", "  -- Review draft  ",
			),
			want: []registry.Task{
				{ID: "T01_plan", Title: "Plan"},
				{ID: "T02_draft", Title: "Draft"},
				{ID: "T03_review", Title: "Review draft"},
				{ID: "T04_ship", Title: "Ship it"},
			},
		},
		{
			name: "no leading letters defaults verb",
			row:  rowstore.NewRow("tasks", "123 launch\n# heading\nQA-check build"),
			want: []registry.Task{
				{ID: "T01_do", Title: "123 launch"},
				{ID: "T02_do", Title: "# heading"},
				{ID: "T03_qa", Title: "QA-check build"},
			},
		},
		{
			name: "control and unicode line separators",
			row:  rowstore.NewRow("tasks", "Plan\x1cDraft\x1dReview\x1ePublish\vShare\u2028Measure"),
			want: []registry.Task{
				{ID: "T01_plan", Title: "Plan"},
				{ID: "T02_draft", Title: "Draft"},
				{ID: "T03_review", Title: "Review"},
				{ID: "T04_publish", Title: "Publish"},
				{ID: "T05_share", Title: "Share"},
				{ID: "T06_measure", Title: "Measure"},
			},
		},
		{
			name: "only bullets is blank",
			row:  rowstore.NewRow("tasks", "-\n•\n--•-\n  \n"),
			want: nil,
		},
		{
			name: "missing fields",
			row:  rowstore.NewRow("name", "x"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := registry.TokenizeTasks(tt.row)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TokenizeTasks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildWBSAlwaysHasRootAndSevenPhases(t *testing.T) {
	t.Parallel()

	for _, taskCount := range []int{0, 1, 4, 5, 9, 12, 20} {
		t.Run(fmt.Sprintf("%d tasks", taskCount), func(t *testing.T) {
			t.Parallel()

			row := rowstore.NewRow("project_id", "p1", "name", "Demo", "tasks", taskLines(taskCount))
			graph := registry.BuildWBS(row)

			placed := min(taskCount, 12)

			if got, want := len(graph.Nodes), 8+placed; got != want {
				t.Errorf("nodes=%d, want=%d", got, want)
			}

			if got, want := len(graph.Edges), 7+placed; got != want {
				t.Errorf("edges=%d, want=%d", got, want)
			}

			rootEdges := 0
			for _, e := range graph.Edges {
				if e.From == "p1" {
					rootEdges++
				}
			}

			if rootEdges != 7 {
				t.Errorf("root edges=%d, want=7", rootEdges)
			}
		})
	}
}

func TestBuildWBSPlacesTasksOnPhases(t *testing.T) {
	t.Parallel()

	row := rowstore.NewRow("project_id", "p9", "name", "Boppin Beats", "tasks", taskLines(13))
	graph := registry.BuildWBS(row)

	if diff := cmp.Diff(registry.ProjectRef{ID: "p9", Name: "Boppin Beats"}, graph.Project); diff != "" {
		t.Errorf("project mismatch (-want +got):\n%s", diff)
	}

	wantPhases := []registry.Node{
		{ID: "p9", Label: "Boppin Beats"},
		{ID: "P1", Label: "Pre-Dev/Hunting"},
		{ID: "P2", Label: "Discovery"},
		{ID: "P3", Label: "Offer Design"},
		{ID: "P4", Label: "Asset Creation"},
		{ID: "P5", Label: "Channel Packaging"},
		{ID: "P6", Label: "Launch"},
		{ID: "P7", Label: "Optimize"},
	}

	if diff := cmp.Diff(wantPhases, graph.Nodes[:8]); diff != "" {
		t.Errorf("phase nodes mismatch (-want +got):\n%s", diff)
	}

	parents := map[string]string{}
	for _, e := range graph.Edges[7:] {
		parents[e.To] = e.From
	}

	wantParents := map[string]string{
		"T01_step": "P3", "T02_step": "P3", "T03_step": "P3", "T04_step": "P3",
		"T05_step": "P4", "T06_step": "P4", "T07_step": "P4", "T08_step": "P4",
		"T09_step": "P6", "T10_step": "P6", "T11_step": "P6", "T12_step": "P6",
	}

	if diff := cmp.Diff(wantParents, parents); diff != "" {
		t.Errorf("task parents mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildWBSDefaultLabel(t *testing.T) {
	t.Parallel()

	graph := registry.BuildWBS(rowstore.NewRow("project_id", "p2"))

	if got, want := graph.Nodes[0], (registry.Node{ID: "p2", Label: "Project"}); got != want {
		t.Errorf("root=%+v, want=%+v", got, want)
	}
}

func taskLines(n int) string {
	lines := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		lines = append(lines, fmt.Sprintf("- step %d", i))
	}

	return strings.Join(lines, "\n")
}
