package registry

import (
	"errors"
	"fmt"
)

// Field names of the project and team tables.
const (
	FieldProjectID       = "project_id"
	FieldName            = "name"
	FieldChannel         = "channel"
	FieldCategory        = "category"
	FieldStatus          = "status"
	FieldPercentComplete = "percent_complete"
	FieldMission         = "mission"
	FieldStrategies      = "strategies"
	FieldGoals           = "goals"
	FieldTasks           = "tasks"
	FieldActions         = "actions"
	FieldSteps           = "steps"
	FieldEvidenceRefs    = "evidence_refs"

	FieldRole         = "role"
	FieldAssignee     = "assignee"
	FieldCapacityPct  = "capacity_pct"
	FieldWorkPackages = "work_packages"
	FieldNotes        = "notes"
)

// Unspecified is the label used when a grouping field is blank.
const Unspecified = "unspecified"

// ErrNotFound is matched by every lookup failure.
var ErrNotFound = errors.New("not found")

// Error variables for registry operations.
var (
	ErrRegistryEmpty      = fmt.Errorf("registry empty or missing: %w", ErrNotFound)
	ErrProjectNotFound    = fmt.Errorf("project %w", ErrNotFound)
	ErrProjectIDRequired  = errors.New("project ID is required")
	ErrUpdatesRequired    = errors.New("at least one field update is required")
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrDataDirEmpty       = errors.New("data-dir cannot be empty")
)

// errMalformedNumber marks a percent_complete that does not parse. It never
// leaves the package; ClassifyCompletion maps it to CompletionUnspecified.
var errMalformedNumber = errors.New("malformed number")
