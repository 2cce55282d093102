// Package registry implements the project registry: family and completion
// classification, task extraction, work breakdown graphs, summaries and the
// keyword index, over CSV tables kept by package rowstore.
package registry

import (
	"fmt"

	"github.com/autonomax/registryx/internal/rowstore"

	"go.uber.org/zap"
)

// Registry serves the registry operations. Every call re-reads the tables
// from disk; nothing is cached between calls.
type Registry struct {
	projects  *rowstore.Store
	team      *rowstore.Store
	indexPath string
	logger    *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a Registry over the files named in cfg.
func New(cfg *Config, opts ...Option) *Registry {
	r := &Registry{
		projects:  rowstore.New(cfg.ProjectsPath),
		team:      rowstore.New(cfg.TeamPath),
		indexPath: cfg.IndexPath,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Listing is every project row plus the rows grouped by family.
type Listing struct {
	Count  int                       `json:"count"  yaml:"count"`
	Items  []rowstore.Row            `json:"items"  yaml:"items"`
	Groups map[Family][]rowstore.Row `json:"groups" yaml:"groups"`
}

// PatchResult is returned by PatchProject.
type PatchResult struct {
	OK      bool         `json:"ok"      yaml:"ok"`
	Updated rowstore.Row `json:"updated" yaml:"updated"`
}

// BuildResult is returned by RebuildIndex.
type BuildResult struct {
	OK    bool   `json:"ok"    yaml:"ok"`
	Wrote string `json:"wrote" yaml:"wrote"`
	Count int    `json:"count" yaml:"count"`
}

// TeamListing is the team rows assigned to one project.
type TeamListing struct {
	ProjectID string         `json:"project_id" yaml:"project_id"`
	Members   []rowstore.Row `json:"members"    yaml:"members"`
}

// SearchResult is returned by SearchIndex.
type SearchResult struct {
	Query string          `json:"query" yaml:"query"`
	Count int             `json:"count" yaml:"count"`
	Items []IndexDocument `json:"items" yaml:"items"`
}

// ListProjects returns all project rows, and the same rows grouped by
// family. Every family has a group, possibly empty.
func (r *Registry) ListProjects() (Listing, error) {
	table, err := r.projects.Load()
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{
		Count:  len(table.Rows),
		Items:  nonNilRows(table.Rows),
		Groups: make(map[Family][]rowstore.Row, len(Families())),
	}

	for _, family := range Families() {
		listing.Groups[family] = []rowstore.Row{}
	}

	for _, row := range table.Rows {
		family := ClassifyFamily(row.Get(FieldName))
		listing.Groups[family] = append(listing.Groups[family], row)
	}

	return listing, nil
}

// GetProject returns the first row whose project_id is id.
func (r *Registry) GetProject(id string) (rowstore.Row, error) {
	table, err := r.projects.Load()
	if err != nil {
		return rowstore.Row{}, err
	}

	idx := table.Find(FieldProjectID, id)
	if idx < 0 {
		return rowstore.Row{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}

	return table.Rows[idx], nil
}

// PatchProject merges updates into the row whose project_id is id and
// rewrites the project table. Fields not yet in the table are appended as
// new columns. Nothing is written when the table is empty or id is absent.
func (r *Registry) PatchProject(id string, updates rowstore.Row) (PatchResult, error) {
	var updated rowstore.Row

	err := r.projects.Update(func(table *rowstore.Table) error {
		if table.Empty() {
			return ErrRegistryEmpty
		}

		idx := table.Find(FieldProjectID, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}

		table.Rows[idx].Merge(updates)
		updated = table.Rows[idx].Clone()

		return nil
	})
	if err != nil {
		return PatchResult{}, err
	}

	r.logger.Info("project patched",
		zap.String("project_id", id),
		zap.Strings("fields", updates.Keys()),
	)

	return PatchResult{OK: true, Updated: updated}, nil
}

// Summarize counts all project rows; see the package-level Summarize.
func (r *Registry) Summarize() (Summary, error) {
	table, err := r.projects.Load()
	if err != nil {
		return Summary{}, err
	}

	return Summarize(table.Rows), nil
}

// WBS builds the work breakdown graph for project id.
func (r *Registry) WBS(id string) (Graph, error) {
	row, err := r.GetProject(id)
	if err != nil {
		return Graph{}, err
	}

	return BuildWBS(row), nil
}

// RebuildIndex rebuilds the index from the project table and replaces the
// index file.
func (r *Registry) RebuildIndex() (BuildResult, error) {
	table, err := r.projects.Load()
	if err != nil {
		return BuildResult{}, err
	}

	docs, err := BuildIndex(table.Rows)
	if err != nil {
		return BuildResult{}, fmt.Errorf("%s: %w", r.projects.Path(), err)
	}

	err = WriteIndex(r.indexPath, docs)
	if err != nil {
		return BuildResult{}, err
	}

	r.logger.Info("index rebuilt",
		zap.String("path", r.indexPath),
		zap.Int("count", len(docs)),
	)

	return BuildResult{OK: true, Wrote: r.indexPath, Count: len(docs)}, nil
}

// Index returns the persisted index, or an empty one.
func (r *Registry) Index() Index {
	return ReadIndex(r.indexPath)
}

// SearchIndex searches the persisted index; see the package-level SearchIndex.
func (r *Registry) SearchIndex(query string, limit int) SearchResult {
	hits := SearchIndex(r.Index(), query, limit)

	r.logger.Debug("index searched",
		zap.String("query", query),
		zap.Int("hits", len(hits)),
	)

	return SearchResult{Query: query, Count: len(hits), Items: hits}
}

// Team returns the team rows for project id. A missing team table or an id
// with no assignments gives an empty member list.
func (r *Registry) Team(id string) (TeamListing, error) {
	table, err := r.team.Load()
	if err != nil {
		return TeamListing{}, err
	}

	return TeamListing{ProjectID: id, Members: table.Filter(FieldProjectID, id)}, nil
}

func nonNilRows(rows []rowstore.Row) []rowstore.Row {
	if rows == nil {
		return []rowstore.Row{}
	}

	return rows
}
