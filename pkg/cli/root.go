// Package cli implements the vesselctl command line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vesselhq/vesselctl/pkg/cliconfig"
)

var (
	// Persistent flags available to all subcommands
	controlFlag string
	quietFlag   bool
	jsonOutput  bool
	verboseFlag bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"

	// helpShown records that usage text was printed instead of a real
	// operation being performed.
	helpShown bool
)

// rootCmd represents the base command. The URI is positional and always
// starts with "/", so subcommand names can never collide with it.
var rootCmd = &cobra.Command{
	Use:   "vesselctl [METHOD] URI",
	Short: "vesselctl issues configuration changes to a running vesseld instance",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runRoot,
	// Errors are handled in Execute() where exit codes are assigned.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and exits the process with the documented code.
func Execute() {
	err := rootCmd.Execute()
	if helpShown {
		// Showing help is never a successful operation.
		os.Exit(ExitUsage)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "vesselctl: %v\n", err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&controlFlag, "control", "", "control endpoint (host:port or unix:/path); skips instance discovery")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress the post-change log report")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output a machine-readable result envelope")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable debug logging")

	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != rootCmd {
			defaultHelp(cmd, args)
			return
		}
		printUsage(os.Stderr)
		helpShown = true
	})
}

// loadConfig merges the layered configuration with the flags set on this
// invocation. Flags win over everything.
func loadConfig(cmd *cobra.Command) *cliconfig.Config {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		cfg = cliconfig.NewDefault()
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "control":
			cfg.Control = controlFlag
		case "quiet":
			cfg.Quiet = quietFlag
		case "json":
			cfg.JSON = jsonOutput
		case "verbose":
			cfg.Verbose = verboseFlag
		default:
			return
		}
		cfg.Sources[f.Name] = cliconfig.SourceFlag
	})
	return cfg
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: vesselctl [METHOD] URI [flags]

Issue a configuration change to the running vesseld instance. The daemon's
control endpoint and log file are discovered from its runtime parameters
and cached per process id.

Arguments:
  METHOD    One of GET, PUT, POST, DELETE, INSERT (case-insensitive).
            Defaults to PUT when data is piped in, GET otherwise.
            INSERT requires the target to hold an array; the new
            element is inserted at index 0.
  URI       Absolute path into the control API, e.g. /config/listeners

Flags:
      --control   Control endpoint (host:port or unix:/path); skips
                  discovery and the resolution cache
  -q, --quiet     Suppress the post-change log report
      --json      Output a machine-readable result envelope
      --verbose   Enable debug logging
  -h, --help      Show this text and exit with a failure status

Environment:
  VESSELCTL_CONTROL   Same as --control
  VESSELCTL_LOG       Daemon log file to read (with --control)

Examples:
  # Read the listener configuration
  vesselctl /config/listeners

  # Replace the applications block
  cat apps.json | vesselctl PUT /config/applications

  # Prepend a route
  echo '{"match":{"uri":"/admin"},"action":{"pass":"applications/admin"}}' \
    | vesselctl INSERT /config/routes

  # Restart an application (GET, but still reports the log)
  vesselctl /control/applications/catalog/restart
`)
}
