package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/vesselhq/vesselctl/pkg/cache"
	"github.com/vesselhq/vesselctl/pkg/cli/internal/output"
	"github.com/vesselhq/vesselctl/pkg/cliconfig"
	"github.com/vesselhq/vesselctl/pkg/dispatch"
	"github.com/vesselhq/vesselctl/pkg/instance"
	"github.com/vesselhq/vesselctl/pkg/logging"
	"github.com/vesselhq/vesselctl/pkg/logwatch"
	"github.com/vesselhq/vesselctl/pkg/resolve"
)

// resultEnvelope is the --json output shape.
type resultEnvelope struct {
	Status int `json:"status"`
	Body   any `json:"body"`
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	logger := newLogger(cfg)

	if len(args) == 0 {
		printUsage(os.Stderr)
		return usageErrorf("no target URI given")
	}

	methodToken, uri, err := parseTarget(args)
	if err != nil {
		return err
	}

	payload, err := readPayload(os.Stdin)
	if err != nil {
		return fmt.Errorf("read payload from stdin: %w", err)
	}

	method := dispatch.DefaultMethod(payload != nil)
	if methodToken != "" {
		method, err = dispatch.ParseMethod(methodToken)
		if err != nil {
			return err
		}
	}
	logger.Debug("request parsed", "method", method.String(), "uri", uri, "payload", len(payload))

	res, err := resolveInstance(cfg, logger)
	if err != nil {
		return err
	}

	// Snapshot before dispatch so the delta contains exactly the daemon's
	// reaction to this change.
	var baseline logwatch.Baseline
	if !cfg.Quiet {
		baseline = logwatch.Snapshot(res.LogPath)
	}

	client := dispatch.NewClient(res.Endpoint)
	d := dispatch.NewDispatcher(client, logger)

	result, err := d.Dispatch(cmd.Context(), dispatch.Request{
		Method:  method,
		URI:     uri,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	if cfg.JSON {
		env := resultEnvelope{Status: result.Status}
		if val, perr := oj.Parse(result.Body); perr == nil {
			env.Body = val
		} else {
			env.Body = string(result.Body)
		}
		if err := output.JSON(env); err != nil {
			return err
		}
	} else {
		body := output.Pretty(result.Body)
		fmt.Print(body)
		if !strings.HasSuffix(body, "\n") {
			fmt.Println()
		}
	}

	if !cfg.Quiet && result.Mutating {
		if err := logwatch.Report(os.Stdout, baseline, dispatch.ReactionWait(method, uri)); err != nil {
			output.Warn("could not read daemon log: %v", err)
		}
	}

	return nil
}

// resolveInstance produces the control-plane coordinates for this
// invocation: an explicit override bypasses discovery and the cache
// entirely; otherwise the single running daemon is located and its cached
// or freshly computed resolution is used.
func resolveInstance(cfg *cliconfig.Config, logger *slog.Logger) (resolve.Resolution, error) {
	if cfg.Control != "" {
		endpoint, err := resolve.Classify(cfg.Control)
		if err != nil {
			return resolve.Resolution{}, err
		}
		logger.Debug("using explicit control endpoint",
			"endpoint", endpoint.String(), "source", cfg.Sources["control"])
		return resolve.Resolution{Endpoint: endpoint, LogPath: cfg.Log}, nil
	}

	if err := resolve.VerifyTooling([]resolve.Requirement{resolve.ProcfsRequirement("")}); err != nil {
		return resolve.Resolution{}, err
	}

	pid, err := instance.Locator{}.Locate()
	if err != nil {
		return resolve.Resolution{}, err
	}
	logger.Debug("located daemon instance", "pid", pid)

	store := &cache.Store{}
	if res, ok, err := store.Get(pid); err == nil && ok {
		logger.Debug("resolution served from cache", "resolution", res.String())
		return res, nil
	}

	resolver := &resolve.Resolver{}
	res, err := resolver.Resolve(pid)
	if err != nil {
		return resolve.Resolution{}, err
	}
	logger.Debug("resolved instance", "resolution", res.String())

	// Cache failures cost a re-resolution next time, nothing more.
	if err := store.Put(res); err != nil {
		output.Warn("could not update resolution cache: %v", err)
	}
	return res, nil
}

// parseTarget splits the positional arguments into an optional method token
// and the required URI. The URI is the argument starting with "/"; order
// does not matter.
func parseTarget(args []string) (method, uri string, err error) {
	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "/"):
			if uri != "" {
				return "", "", usageErrorf("more than one URI given: %s and %s", uri, arg)
			}
			uri = arg
		default:
			if method != "" {
				return "", "", usageErrorf("more than one method given: %s and %s", method, arg)
			}
			method = arg
		}
	}
	if uri == "" {
		return "", "", usageErrorf("no target URI given")
	}
	return method, uri, nil
}

// readPayload reads piped standard input. An interactive terminal means no
// payload, regardless of method.
func readPayload(stdin *os.File) ([]byte, error) {
	fd := stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return nil, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}

func newLogger(cfg *cliconfig.Config) *slog.Logger {
	level := logging.LevelWarn
	if cfg.Verbose {
		level = logging.LevelDebug
	}
	return logging.New(logging.Config{Level: level}).
		With("invocation", uuid.NewString()[:8])
}
