package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/autonomax/registryx/internal/logging"
	"github.com/autonomax/registryx/internal/registry"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

var errNoCommand = errors.New("no command provided")

// deps is what commands are built from. Fields are nil when only help
// output is needed.
type deps struct {
	cfg    *registry.Config
	reg    *registry.Registry
	logger *zap.Logger
	stdin  io.Reader
	env    map[string]string
}

// commandSet returns fresh commands. Flag sets keep state after Parse, so
// every dispatch builds a new set.
func commandSet(d *deps) []*Command {
	return []*Command{
		LsCmd(d.reg),
		ShowCmd(d.reg),
		PatchCmd(d.reg),
		SummaryCmd(d.reg),
		WBSCmd(d.reg),
		IndexCmd(d.reg),
		SearchCmd(d.reg),
		TeamCmd(d.reg),
		ServeCmd(d.cfg, d.reg, d.logger),
		ShellCmd(d),
		PrintConfigCmd(d.cfg),
	}
}

func findCommand(commands []*Command, name string) *Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

// Run is the main entry point. Returns exit code. The context passed to
// commands is cancelled when sigCh delivers a signal.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globalFlags := flag.NewFlagSet("registryx", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.SetOutput(&strings.Builder{})
	globalFlags.BoolP("help", "h", false, "Show help")
	globalFlags.StringP("cwd", "C", "", "Run as if started in `dir`")
	globalFlags.StringP("config", "c", "", "Use specified config `file` (.json or .toml)")
	globalFlags.String("data-dir", "", "Override the registry data `dir`")

	if len(args) > 0 {
		args = args[1:]
	}

	err := globalFlags.Parse(args)
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printGlobalOptions(errOut, globalFlags)

		return 1
	}

	help, _ := globalFlags.GetBool("help")
	remaining := globalFlags.Args()

	if help || len(args) == 0 {
		printUsage(out, globalFlags)

		return 0
	}

	if len(remaining) == 0 {
		fprintln(errOut, "error:", errNoCommand)
		fprintln(errOut)
		printUsage(errOut, globalFlags)

		return 1
	}

	workDir, _ := globalFlags.GetString("cwd")
	configPath, _ := globalFlags.GetString("config")
	dataDir, _ := globalFlags.GetString("data-dir")

	if globalFlags.Changed("data-dir") && strings.TrimSpace(dataDir) == "" {
		fprintln(errOut, "error:", registry.ErrDataDirEmpty)
		fprintln(errOut)
		printGlobalOptions(errOut, globalFlags)

		return 1
	}

	cfg, err := registry.LoadConfig(registry.LoadConfigInput{
		WorkDirOverride: workDir,
		ConfigPath:      configPath,
		DataDirOverride: dataDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	logger, err := logging.New(cfg.LogLevel, errOut)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	defer func() { _ = logger.Sync() }()

	d := &deps{
		cfg:    &cfg,
		reg:    registry.New(&cfg, registry.WithLogger(logger)),
		logger: logger,
		stdin:  stdin,
		env:    env,
	}

	cmd := findCommand(commandSet(d), remaining[0])
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", remaining[0])
		fprintln(errOut)
		printUsage(errOut, globalFlags)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	return cmd.Run(ctx, NewIO(out, errOut), remaining[1:])
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printGlobalOptions(w io.Writer, globalFlags *flag.FlagSet) {
	fprintln(w, "Global flags:")
	fprintln(w, strings.TrimRight(globalFlags.FlagUsages(), "\n"))
}

func printUsage(w io.Writer, globalFlags *flag.FlagSet) {
	_, _ = fmt.Fprint(w, `registryx - flat-file project registry

Usage: registryx [global flags] <command> [args]
`+"\n")
	printGlobalOptions(w, globalFlags)
	fprintln(w)
	fprintln(w, "Commands:")

	for _, cmd := range commandSet(&deps{}) {
		fprintln(w, cmd.HelpLine())
	}

	fprintln(w)
	fprintln(w, `Run "registryx <command> --help" for command flags.`)
}
