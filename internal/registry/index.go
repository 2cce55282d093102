package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autonomax/registryx/internal/rowstore"

	"github.com/natefinch/atomic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultSearchLimit caps SearchIndex when no limit is given.
const DefaultSearchLimit = 200

//go:embed index.schema.json
var indexSchemaSource string

var indexSchema = jsonschema.MustCompileString("index.schema.json", indexSchemaSource)

// textFields feed IndexDocument.Text, in this order.
var textFields = []string{FieldMission, FieldStrategies, FieldGoals, FieldTasks, FieldActions, FieldSteps}

// IndexDocument is a denormalized, searchable snapshot of one project row.
type IndexDocument struct {
	ProjectID       string `json:"project_id"       yaml:"project_id"`
	Name            string `json:"name"             yaml:"name"`
	Family          Family `json:"family"           yaml:"family"`
	Channel         string `json:"channel"          yaml:"channel"`
	Category        string `json:"category"         yaml:"category"`
	Status          string `json:"status"           yaml:"status"`
	PercentComplete string `json:"percent_complete" yaml:"percent_complete"`
	Mission         string `json:"mission"          yaml:"mission"`
	Strategies      string `json:"strategies"       yaml:"strategies"`
	Goals           string `json:"goals"            yaml:"goals"`
	Tasks           string `json:"tasks"            yaml:"tasks"`
	Actions         string `json:"actions"          yaml:"actions"`
	Steps           string `json:"steps"            yaml:"steps"`
	EvidenceRefs    string `json:"evidence_refs"    yaml:"evidence_refs"`
	Text            string `json:"text"             yaml:"text"`
}

// Index is the persisted index document.
type Index struct {
	Count int             `json:"count" yaml:"count"`
	Items []IndexDocument `json:"items" yaml:"items"`
}

// EmptyIndex is what readers get when no usable index exists.
func EmptyIndex() Index {
	return Index{Count: 0, Items: []IndexDocument{}}
}

// BuildIndex projects every row into an IndexDocument.
// Returns ErrRegistryEmpty when there are no rows.
func BuildIndex(rows []rowstore.Row) ([]IndexDocument, error) {
	if len(rows) == 0 {
		return nil, ErrRegistryEmpty
	}

	docs := make([]IndexDocument, 0, len(rows))

	for _, row := range rows {
		docs = append(docs, IndexDocument{
			ProjectID:       row.Get(FieldProjectID),
			Name:            row.Get(FieldName),
			Family:          ClassifyFamily(row.Get(FieldName)),
			Channel:         row.Get(FieldChannel),
			Category:        row.Get(FieldCategory),
			Status:          row.Get(FieldStatus),
			PercentComplete: row.Get(FieldPercentComplete),
			Mission:         row.Get(FieldMission),
			Strategies:      row.Get(FieldStrategies),
			Goals:           row.Get(FieldGoals),
			Tasks:           row.Get(FieldTasks),
			Actions:         row.Get(FieldActions),
			Steps:           row.Get(FieldSteps),
			EvidenceRefs:    row.Get(FieldEvidenceRefs),
			Text:            indexText(row),
		})
	}

	return docs, nil
}

func indexText(row rowstore.Row) string {
	parts := make([]string, 0, len(textFields))

	for _, field := range textFields {
		if v := row.Get(field); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, " ")
}

// WriteIndex replaces the index file at path with docs.
func WriteIndex(path string, docs []IndexDocument) error {
	if docs == nil {
		docs = []IndexDocument{}
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	err := enc.Encode(Index{Count: len(docs), Items: docs})
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}

	err = atomic.WriteFile(path, &buf)
	if err != nil {
		return fmt.Errorf("writing index: %w", err)
	}

	return nil
}

// ReadIndex loads the index at path. A missing, unreadable or malformed
// index reads as EmptyIndex.
func ReadIndex(path string) Index {
	data, err := os.ReadFile(path)
	if err != nil {
		return EmptyIndex()
	}

	var raw any

	err = json.Unmarshal(data, &raw)
	if err != nil {
		return EmptyIndex()
	}

	err = indexSchema.Validate(raw)
	if err != nil {
		return EmptyIndex()
	}

	var idx Index

	err = json.Unmarshal(data, &idx)
	if err != nil {
		return EmptyIndex()
	}

	if idx.Items == nil {
		idx.Items = []IndexDocument{}
	}

	return idx
}

// SearchIndex returns documents whose text or name contains query,
// case-insensitively, in index order. An empty query matches nothing.
// limit <= 0 means DefaultSearchLimit.
func SearchIndex(idx Index, query string, limit int) []IndexDocument {
	hits := []IndexDocument{}

	if query == "" {
		return hits
	}

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	needle := strings.ToLower(query)

	for _, doc := range idx.Items {
		if len(hits) >= limit {
			break
		}

		if strings.Contains(strings.ToLower(doc.Text), needle) ||
			strings.Contains(strings.ToLower(doc.Name), needle) {
			hits = append(hits, doc)
		}
	}

	return hits
}
