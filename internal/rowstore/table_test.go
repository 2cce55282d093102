package rowstore_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/autonomax/registryx/internal/rowstore"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestReadTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		wantHeader []string
		wantRows   []map[string]string
	}{
		{
			name:       "empty input",
			input:      "",
			wantHeader: nil,
			wantRows:   nil,
		},
		{
			name:       "header only",
			input:      "project_id,name\n",
			wantHeader: []string{"project_id", "name"},
			wantRows:   nil,
		},
		{
			name:       "quoted multi-line cell",
			input:      "project_id,tasks\np1,\"- one\n- two\"\n",
			wantHeader: []string{"project_id", "tasks"},
			wantRows:   []map[string]string{{"project_id": "p1", "tasks": "- one\n- two"}},
		},
		{
			name:       "short row padded and long row truncated",
			input:      "a,b,c\n1\n1,2,3,4\n",
			wantHeader: []string{"a", "b", "c"},
			wantRows: []map[string]string{
				{"a": "1", "b": "", "c": ""},
				{"a": "1", "b": "2", "c": "3"},
			},
		},
		{
			name:       "byte order mark stripped",
			input:      "\ufeffproject_id,name\np1,x\n",
			wantHeader: []string{"project_id", "name"},
			wantRows:   []map[string]string{{"project_id": "p1", "name": "x"}},
		},
		{
			name:       "blank lines skipped",
			input:      "a\n\n1\n\n2\n",
			wantHeader: []string{"a"},
			wantRows:   []map[string]string{{"a": "1"}, {"a": "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := rowstore.ReadTable(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadTable: %v", err)
			}

			if diff := cmp.Diff(tt.wantHeader, table.Header); diff != "" {
				t.Errorf("header mismatch (-want +got):\n%s", diff)
			}

			var gotRows []map[string]string
			for _, row := range table.Rows {
				gotRows = append(gotRows, row.Map())
			}

			if diff := cmp.Diff(tt.wantRows, gotRows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteTableKeepsColumnOrderAndAppendsNewColumns(t *testing.T) {
	t.Parallel()

	table, err := rowstore.ReadTable(strings.NewReader("zeta,alpha,mid\n1,2,3\n4,5,6\n"))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}

	table.Rows[1].Set("alpha", "changed")
	table.Rows[1].Set("added", "new")

	var buf bytes.Buffer

	err = rowstore.WriteTable(&buf, table)
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	want := "zeta,alpha,mid,added\n1,2,3,\n4,changed,6,new\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteTable output=%q, want=%q", got, want)
	}
}

func TestWriteTableMatchesSourceLineEndings(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		input    string
		wantCRLF bool
		want     string
	}{
		{name: "lf", input: "a,b\n1,\"x\ny\"\n", want: "a,b\n1,\"x\ny\"\n"},
		{name: "crlf", input: "a,b\r\n1,\"x\r\ny\"\r\n", wantCRLF: true, want: "a,b\r\n1,\"x\r\ny\"\r\n"},
		{name: "crlf only inside a cell", input: "a,b\n1,\"x\r\ny\"\n", want: "a,b\n1,\"x\ny\"\n"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := rowstore.ReadTable(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadTable: %v", err)
			}

			if got, want := table.CRLF, tt.wantCRLF; got != want {
				t.Errorf("CRLF=%v, want=%v", got, want)
			}

			var buf bytes.Buffer

			err = rowstore.WriteTable(&buf, table)
			if err != nil {
				t.Fatalf("WriteTable: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("WriteTable output=%q, want=%q", got, tt.want)
			}
		})
	}
}

func TestTableFindAndFilter(t *testing.T) {
	t.Parallel()

	table := &rowstore.Table{
		Header: []string{"project_id", "role"},
		Rows: []rowstore.Row{
			rowstore.NewRow("project_id", "p1", "role", "lead"),
			rowstore.NewRow("project_id", "p2", "role", "editor"),
			rowstore.NewRow("project_id", "p1", "role", "writer"),
		},
	}

	if got, want := table.Find("project_id", "p2"), 1; got != want {
		t.Errorf("Find(p2)=%d, want=%d", got, want)
	}

	if got, want := table.Find("project_id", "missing"), -1; got != want {
		t.Errorf("Find(missing)=%d, want=%d", got, want)
	}

	var roles []string
	for _, row := range table.Filter("project_id", "p1") {
		roles = append(roles, row.Get("role"))
	}

	if diff := cmp.Diff([]string{"lead", "writer"}, roles); diff != "" {
		t.Errorf("Filter mismatch (-want +got):\n%s", diff)
	}

	if got := table.Filter("project_id", "none"); got == nil || len(got) != 0 {
		t.Errorf("Filter(none)=%v, want empty non-nil slice", got)
	}

	var nilTable *rowstore.Table
	if !nilTable.Empty() {
		t.Error("nil table should be empty")
	}
}

func TestRowJSONKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	row := rowstore.NewRow("project_id", "p1", "name", "<Boppin> & co", "a", "")

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"project_id":"p1","name":"<Boppin> & co","a":""}`
	if got := string(data); got != want {
		t.Errorf("Marshal=%s, want=%s", got, want)
	}

	var decoded rowstore.Row

	err = json.Unmarshal([]byte(`{"z":"1","status":"live","pct":75,"flag":true,"gone":null}`), &decoded)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if diff := cmp.Diff([]string{"z", "status", "pct", "flag", "gone"}, decoded.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	if got, want := decoded.Get("pct"), "75"; got != want {
		t.Errorf("pct=%q, want=%q", got, want)
	}

	if got, want := decoded.Get("flag"), "true"; got != want {
		t.Errorf("flag=%q, want=%q", got, want)
	}

	err = json.Unmarshal([]byte(`{"nested":{"a":"b"}}`), &decoded)
	if err == nil {
		t.Error("expected error for nested object value")
	}

	err = json.Unmarshal([]byte(`["a"]`), &decoded)
	if err == nil {
		t.Error("expected error for array input")
	}
}

func TestRowYAMLKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	row := rowstore.NewRow("name", "x", "percent_complete", "40", "channel", "")

	data, err := yaml.Marshal(row)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}

	want := "name: x\npercent_complete: \"40\"\nchannel: \"\"\n"
	if got := string(data); got != want {
		t.Errorf("yaml=%q, want=%q", got, want)
	}
}

func TestRowMergeAndClone(t *testing.T) {
	t.Parallel()

	row := rowstore.NewRow("project_id", "p1", "status", "idea")
	clone := row.Clone()

	row.Merge(rowstore.NewRow("status", "live", "owner", "sam"))

	if diff := cmp.Diff([]string{"project_id", "status", "owner"}, row.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}

	if got, want := row.Get("status"), "live"; got != want {
		t.Errorf("status=%q, want=%q", got, want)
	}

	if got, want := clone.Get("status"), "idea"; got != want {
		t.Errorf("clone status=%q, want=%q (clone must not share state)", got, want)
	}
}
