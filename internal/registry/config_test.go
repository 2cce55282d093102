package registry_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/autonomax/registryx/internal/registry"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := registry.LoadConfig(registry.LoadConfigInput{WorkDirOverride: dir, Env: map[string]string{}})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	dataDir := filepath.Join(dir, "data", "registry")

	for _, tc := range []struct{ name, got, want string }{
		{"DataDirAbs", cfg.DataDirAbs, dataDir},
		{"ProjectsPath", cfg.ProjectsPath, filepath.Join(dataDir, "Project_Registry.csv")},
		{"TeamPath", cfg.TeamPath, filepath.Join(dataDir, "Team_Assignments.csv")},
		{"IndexPath", cfg.IndexPath, filepath.Join(dataDir, "index.json")},
		{"ListenAddr", cfg.ListenAddr, "127.0.0.1:8787"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Sources.Project", cfg.Sources.Project, ""},
	} {
		if tc.got != tc.want {
			t.Errorf("%s=%q, want=%q", tc.name, tc.got, tc.want)
		}
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := filepath.Join(dir, "xdg")

	writeTestFile(t, filepath.Join(xdg, "registryx", "config.json"), `{
		// global
		"data_dir": "global-data",
		"log_level": "debug",
		"listen_addr": ":9000",
	}`)
	writeTestFile(t, filepath.Join(dir, ".registryx.json"), `{"data_dir": "project-data", "index_file": "idx.json"}`)

	env := map[string]string{"XDG_CONFIG_HOME": xdg}

	cfg, err := registry.LoadConfig(registry.LoadConfigInput{WorkDirOverride: dir, Env: env})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got, want := cfg.DataDirAbs, filepath.Join(dir, "project-data"); got != want {
		t.Errorf("DataDirAbs=%q, want=%q", got, want)
	}

	if got, want := cfg.IndexPath, filepath.Join(dir, "project-data", "idx.json"); got != want {
		t.Errorf("IndexPath=%q, want=%q", got, want)
	}

	if got, want := cfg.LogLevel, "debug"; got != want {
		t.Errorf("LogLevel=%q, want=%q (from global)", got, want)
	}

	if got, want := cfg.ListenAddr, ":9000"; got != want {
		t.Errorf("ListenAddr=%q, want=%q (from global)", got, want)
	}

	if cfg.Sources.Global == "" || cfg.Sources.Project == "" {
		t.Errorf("sources=%+v, want both set", cfg.Sources)
	}

	override, err := registry.LoadConfig(registry.LoadConfigInput{
		WorkDirOverride: dir,
		DataDirOverride: "/abs/cli-data",
		Env:             env,
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got, want := override.ProjectsPath, "/abs/cli-data/Project_Registry.csv"; got != want {
		t.Errorf("ProjectsPath=%q, want=%q", got, want)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "registry.toml"), "data_dir = \"toml-data\"\nteam_file = \"team.csv\"\n")

	cfg, err := registry.LoadConfig(registry.LoadConfigInput{
		WorkDirOverride: dir,
		ConfigPath:      "registry.toml",
		Env:             map[string]string{},
	})
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if got, want := cfg.TeamPath, filepath.Join(dir, "toml-data", "team.csv"); got != want {
		t.Errorf("TeamPath=%q, want=%q", got, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		files      map[string]string
		configPath string
		wantErr    error
	}{
		{
			name:       "explicit config missing",
			configPath: "nope.json",
			wantErr:    registry.ErrConfigFileNotFound,
		},
		{
			name:    "invalid json",
			files:   map[string]string{".registryx.json": `{"data_dir": `},
			wantErr: registry.ErrConfigInvalid,
		},
		{
			name:    "explicitly empty data dir",
			files:   map[string]string{".registryx.json": `{"data_dir": ""}`},
			wantErr: registry.ErrDataDirEmpty,
		},
		{
			name:       "explicitly empty data dir in toml",
			files:      map[string]string{"c.toml": `data_dir = ""`},
			configPath: "c.toml",
			wantErr:    registry.ErrDataDirEmpty,
		},
		{
			name:       "invalid toml",
			files:      map[string]string{"c.toml": `data_dir = `},
			configPath: "c.toml",
			wantErr:    registry.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			for name, content := range tt.files {
				writeTestFile(t, filepath.Join(dir, name), content)
			}

			_, err := registry.LoadConfig(registry.LoadConfigInput{
				WorkDirOverride: dir,
				ConfigPath:      tt.configPath,
				Env:             map[string]string{},
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig error=%v, want %v", err, tt.wantErr)
			}
		})
	}
}
