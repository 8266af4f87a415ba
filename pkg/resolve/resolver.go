package resolve

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/vesselhq/vesselctl/pkg/instance"
)

// Resolver computes a Resolution from a running daemon's PID.
//
// The daemon is not obligated to pass its defaults on the command line, so
// every value goes through an ordered chain of sources: the explicit flag in
// the recorded invocation first, then the compiled-in default reported by
// the daemon binary's own usage output.
type Resolver struct {
	// ProcRoot is the procfs root. Defaults to /proc.
	ProcRoot string

	// RunHelp invokes the daemon binary's usage output. Overridable in tests.
	// Defaults to running `<bin> --help`.
	RunHelp func(bin string) (string, error)
}

// Resolve determines the control endpoint and log path for the given PID.
func (r *Resolver) Resolve(pid int) (Resolution, error) {
	root := r.ProcRoot
	if root == "" {
		root = instance.DefaultProcRoot
	}

	cmdline, err := instance.Cmdline(root, pid)
	if err != nil {
		return Resolution{}, &UnparsableParamsError{PID: pid, Reason: err.Error()}
	}

	argv, err := parseInvocation(cmdline)
	if err != nil {
		return Resolution{}, &UnparsableParamsError{PID: pid, Reason: err.Error()}
	}

	chain := r.sourceChain(argv)

	control, err := chain.lookup("control")
	if err != nil {
		return Resolution{}, err
	}
	if control == "" {
		return Resolution{}, &UnparsableParamsError{PID: pid, Reason: "no control endpoint in parameters or daemon defaults"}
	}

	// The log path is a convenience; absence disables correlation rather
	// than failing resolution.
	logPath, err := chain.lookup("log")
	if err != nil {
		return Resolution{}, err
	}

	endpoint, err := Classify(control)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{PID: pid, Endpoint: endpoint, LogPath: logPath}, nil
}

// Classify interprets a control-endpoint token. A "unix:"-prefixed value is
// a local socket path, verified readable; anything else is a network
// address reached over plain HTTP.
func Classify(token string) (Endpoint, error) {
	if path, ok := strings.CutPrefix(token, "unix:"); ok {
		if err := socketReadable(path); err != nil {
			return Endpoint{}, &SocketUnreadableError{Path: path, Err: err}
		}
		return Endpoint{Kind: EndpointSocket, Address: path}, nil
	}
	return Endpoint{Kind: EndpointTCP, Address: token}, nil
}

// parseInvocation recovers the daemon's original argv. The main process
// rewrites its title to "vesseld: main vX.Y.Z [<argv>]"; a plain argv
// (no title rewrite) is accepted as-is.
func parseInvocation(cmdline string) ([]string, error) {
	if cmdline == "" {
		return nil, fmt.Errorf("empty command line")
	}

	if strings.HasPrefix(cmdline, instance.DefaultMarker) {
		lb := strings.Index(cmdline, "[")
		rb := strings.LastIndex(cmdline, "]")
		if lb == -1 || rb == -1 || rb < lb {
			return nil, fmt.Errorf("process title %q carries no invocation", cmdline)
		}
		inner := strings.TrimSpace(cmdline[lb+1 : rb])
		if inner == "" {
			return nil, fmt.Errorf("process title %q carries an empty invocation", cmdline)
		}
		return strings.Fields(inner), nil
	}

	return strings.Fields(cmdline), nil
}

// sourceChain is the ordered list of resolution strategies for one argv.
type sourceChain struct {
	sources []source
}

type source struct {
	name   string
	lookup func(flag string) (string, bool, error)
}

// lookup returns the first source that yields a value for --<flag>.
func (c sourceChain) lookup(flag string) (string, error) {
	for _, s := range c.sources {
		v, ok, err := s.lookup(flag)
		if err != nil {
			return "", err
		}
		if ok {
			return v, nil
		}
	}
	return "", nil
}

func (r *Resolver) sourceChain(argv []string) sourceChain {
	// The usage output is fetched at most once per resolution.
	var helpOut string
	var helpFetched bool

	return sourceChain{sources: []source{
		{
			name: "argv",
			lookup: func(flag string) (string, bool, error) {
				v, ok := argvFlag(argv, flag)
				return v, ok, nil
			},
		},
		{
			name: "default",
			lookup: func(flag string) (string, bool, error) {
				if !helpFetched {
					out, err := r.daemonUsage(argv[0])
					if err != nil {
						return "", false, err
					}
					helpOut = out
					helpFetched = true
				}
				v, ok := usageDefault(helpOut, flag)
				return v, ok, nil
			},
		},
	}}
}

// argvFlag extracts --<flag> <value> or --<flag>=<value> from an argv.
func argvFlag(argv []string, flag string) (string, bool) {
	long := "--" + flag
	for i, arg := range argv {
		if arg == long {
			if i+1 < len(argv) {
				return argv[i+1], true
			}
			return "", false
		}
		if v, ok := strings.CutPrefix(arg, long+"="); ok {
			return v, true
		}
	}
	return "", false
}

// usageDefault extracts the compiled-in default for --<flag> from the
// daemon's usage text, e.g.
//
//	--control ADDRESS   control API listen address (default: unix:/run/vessel/control.sock)
func usageDefault(usage, flag string) (string, bool) {
	re := regexp.MustCompile(`(?m)--` + regexp.QuoteMeta(flag) + `\b.*\(default:\s*([^)\s]+)\)`)
	m := re.FindStringSubmatch(usage)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// daemonUsage runs the daemon binary's help output to learn its
// compiled-in defaults.
func (r *Resolver) daemonUsage(bin string) (string, error) {
	if err := binaryUsable(bin); err != nil {
		return "", &MissingToolingError{Names: []string{bin}}
	}
	run := r.RunHelp
	if run == nil {
		run = runHelp
	}
	return run(bin)
}

func runHelp(bin string) (string, error) {
	// Help text commonly lands on stderr; usage parsing wants both streams.
	out, err := exec.Command(bin, "--help").CombinedOutput()
	if err != nil && len(out) == 0 {
		return "", fmt.Errorf("query %s --help: %w", bin, err)
	}
	return string(out), nil
}

func binaryUsable(bin string) error {
	if strings.Contains(bin, "/") {
		info, err := os.Stat(bin)
		if err != nil {
			return err
		}
		if info.Mode()&0o111 == 0 {
			return fmt.Errorf("%s is not executable", bin)
		}
		return nil
	}
	_, err := exec.LookPath(bin)
	return err
}
