package registry

import (
	"fmt"

	"github.com/autonomax/registryx/internal/rowstore"
)

// Phases of every work breakdown, in order. Phase n has node id "P<n>".
var Phases = []string{
	"Pre-Dev/Hunting",
	"Discovery",
	"Offer Design",
	"Asset Creation",
	"Channel Packaging",
	"Launch",
	"Optimize",
}

const defaultProjectLabel = "Project"

// phaseSlot attaches tasks[start:end] to phase.
type phaseSlot struct {
	phase      int
	start, end int
}

// taskSlots covers the first 12 tasks; later tasks are not placed.
var taskSlots = []phaseSlot{
	{phase: 3, start: 0, end: 4},
	{phase: 4, start: 4, end: 8},
	{phase: 6, start: 8, end: 12},
}

// Node is a vertex of a WBS graph.
type Node struct {
	ID    string `json:"id"    yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// Edge points from a parent node to a child node.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to"   yaml:"to"`
}

// ProjectRef identifies the project a graph was built for.
type ProjectRef struct {
	ID   string `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Graph is a work breakdown tree: project root, seven phases, tasks.
type Graph struct {
	Project ProjectRef `json:"project" yaml:"project"`
	Nodes   []Node     `json:"nodes"   yaml:"nodes"`
	Edges   []Edge     `json:"edges"   yaml:"edges"`
}

// PhaseID returns the node id of the 1-based phase n.
func PhaseID(n int) string {
	return fmt.Sprintf("P%d", n)
}

// BuildWBS assembles the work breakdown for a project row. The root node id
// is the row's project_id.
func BuildWBS(row rowstore.Row) Graph {
	rootID := row.Get(FieldProjectID)
	name := row.Get(FieldName)

	label := name
	if label == "" {
		label = defaultProjectLabel
	}

	graph := Graph{
		Project: ProjectRef{ID: rootID, Name: name},
		Nodes:   []Node{{ID: rootID, Label: label}},
		Edges:   []Edge{},
	}

	for i, phase := range Phases {
		id := PhaseID(i + 1)
		graph.Nodes = append(graph.Nodes, Node{ID: id, Label: phase})
		graph.Edges = append(graph.Edges, Edge{From: rootID, To: id})
	}

	tasks := TokenizeTasks(row)

	for _, slot := range taskSlots {
		if slot.start >= len(tasks) {
			break
		}

		parent := PhaseID(slot.phase)

		for _, task := range tasks[slot.start:min(slot.end, len(tasks))] {
			graph.Nodes = append(graph.Nodes, Node{ID: task.ID, Label: task.Title})
			graph.Edges = append(graph.Edges, Edge{From: parent, To: task.ID})
		}
	}

	return graph
}
