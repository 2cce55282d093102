package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/autonomax/registryx/internal/cli"
)

func Test_Bare_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	exitCode := cli.Run(nil, &stdout, &stderr, []string{"registryx"}, nil, nil)

	if got, want := exitCode, 0; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stderr.String(), ""; got != want {
		t.Errorf("stderr=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stdout.String(), "registryx - flat-file project registry")
	cli.AssertContains(t, stdout.String(), "--cwd")
	cli.AssertContains(t, stdout.String(), "patch <id> <field=value>...")
}

func Test_Main_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "long flag", args: []string{"--help"}},
		{name: "short flag", args: []string{"-h"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			stdout, stderr, exitCode := c.Run(tt.args...)

			if got, want := exitCode, 0; got != want {
				t.Errorf("exitCode=%d, want=%d", got, want)
			}

			if got, want := stderr, ""; got != want {
				t.Errorf("stderr=%q, want=%q", got, want)
			}

			for _, want := range []string{"Global flags:", "--data-dir", "ls [flags]", "wbs <id>", "serve", "shell"} {
				cli.AssertContains(t, stdout, want)
			}
		})
	}
}

func Test_No_Command_With_Flags_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--data-dir", "x")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "no command provided")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Invalid_Global_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout, stderr, exitCode := c.Run("--invalid-flag", "ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--config")
}

func Test_Empty_Data_Dir_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("--data-dir=", "ls")

	cli.AssertContains(t, stderr, "data-dir cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Unknown_Command_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "Commands:")
}

func Test_Invalid_Command_Flag_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stderr := c.MustFail("ls", "--bogus")

	cli.AssertContains(t, stderr, "unknown flag: --bogus")
	cli.AssertContains(t, stderr, "Usage: registryx ls [flags]")
}

func Test_Command_Help_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("search", "--help")

	cli.AssertContains(t, stdout, "Usage: registryx search <query>... [flags]")
	cli.AssertContains(t, stdout, "--limit")
	cli.AssertContains(t, stdout, "--output")
}

func Test_Data_Dir_Flag_Overrides_Config(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	err := os.WriteFile(filepath.Join(c.Dir, ".registryx.json"), []byte(`{"data_dir": "from-config"}`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, "data_dir="+filepath.Join(c.Dir, "from-config"))
	cli.AssertContains(t, stdout, "project_config="+filepath.Join(c.Dir, ".registryx.json"))

	stdout = c.MustRun("--data-dir", "elsewhere", "print-config")
	cli.AssertContains(t, stdout, "projects_file="+filepath.Join(c.Dir, "elsewhere", "Project_Registry.csv"))
}

func Test_Print_Config_Defaults(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "effective_cwd="+c.Dir)
	cli.AssertContains(t, stdout, "listen_addr=127.0.0.1:8787")
	cli.AssertContains(t, stdout, "log_level=info")
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Invalid_Log_Level_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	err := os.WriteFile(filepath.Join(c.Dir, ".registryx.json"), []byte(`{"log_level": "loud"}`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	stderr := c.MustFail("ls")
	cli.AssertContains(t, stderr, "invalid log level")
}

func Test_Serve_Stops_On_Signal(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	sigCh := make(chan os.Signal, 1)
	done := make(chan int, 1)

	var stdout, stderr bytes.Buffer

	go func() {
		args := []string{"registryx", "--cwd", c.Dir, "serve", "--addr", "127.0.0.1:0"}
		done <- cli.Run(nil, &stdout, &stderr, args, c.Env, sigCh)
	}()

	sigCh <- syscall.SIGTERM

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("serve exit code=%d, stderr: %s", code, stderr.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after signal")
	}
}
