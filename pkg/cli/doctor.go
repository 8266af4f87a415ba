package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vesselhq/vesselctl/pkg/cache"
	"github.com/vesselhq/vesselctl/pkg/cli/internal/output"
	"github.com/vesselhq/vesselctl/pkg/dispatch"
	"github.com/vesselhq/vesselctl/pkg/instance"
	"github.com/vesselhq/vesselctl/pkg/logwatch"
	"github.com/vesselhq/vesselctl/pkg/resolve"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose daemon discovery and control API reachability",
	Long:  `Diagnose daemon discovery and control API reachability.`,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single doctor check.
type doctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok", "fail", "info"
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctorCheck
	allPassed := true
	fail := func(name, detail string) {
		checks = append(checks, doctorCheck{Name: name, Status: "fail", Detail: detail})
		allPassed = false
	}
	ok := func(name, detail string) {
		checks = append(checks, doctorCheck{Name: name, Status: "ok", Detail: detail})
	}
	info := func(name, detail string) {
		checks = append(checks, doctorCheck{Name: name, Status: "info", Detail: detail})
	}

	// Check 1: process table
	if err := resolve.VerifyTooling([]resolve.Requirement{resolve.ProcfsRequirement("")}); err != nil {
		fail("process_table", err.Error())
	} else {
		ok("process_table", instance.DefaultProcRoot)
	}

	// Check 2: daemon instance
	var res resolve.Resolution
	var resolved bool
	pid, err := instance.Locator{}.Locate()
	if err != nil {
		fail("daemon_instance", err.Error())
	} else {
		ok("daemon_instance", fmt.Sprintf("pid %d", pid))

		// Check 3: resolution (cache first, fresh otherwise; read-only)
		store := &cache.Store{}
		if cached, hit, err := store.Get(pid); err == nil && hit {
			res, resolved = cached, true
			ok("resolution", res.Endpoint.String()+" (cached)")
		} else if fresh, err := (&resolve.Resolver{}).Resolve(pid); err != nil {
			fail("resolution", err.Error())
		} else {
			res, resolved = fresh, true
			ok("resolution", res.Endpoint.String())
		}
	}

	// Check 4: control API reachability
	if resolved {
		client := dispatch.NewClient(res.Endpoint, dispatch.WithTimeout(2*time.Second))
		if resp, err := client.Do(context.Background(), http.MethodGet, "/", nil); err != nil {
			fail("control_api", err.Error())
		} else {
			ok("control_api", fmt.Sprintf("responding (status %d)", resp.Status))
		}

		// Check 5: daemon log
		if res.LogPath == "" {
			info("daemon_log", "no log path; correlation disabled")
		} else if logwatch.Snapshot(res.LogPath).Enabled() {
			ok("daemon_log", res.LogPath)
		} else {
			info("daemon_log", fmt.Sprintf("%s not readable; correlation disabled", res.LogPath))
		}
	}

	// Check 6: resolution cache file
	cachePath := cache.DefaultPath()
	if _, err := os.Stat(cachePath); err == nil {
		ok("resolution_cache", cachePath)
	} else {
		info("resolution_cache", "not present (will be created on first use)")
	}

	if jsonOutput {
		return output.JSON(map[string]any{"checks": checks, "allPassed": allPassed})
	}

	fmt.Println("vesselctl doctor")
	fmt.Println("================")
	fmt.Println()
	for _, c := range checks {
		switch c.Status {
		case "ok":
			fmt.Printf("  ✓ %s: %s\n", c.Name, c.Detail)
		case "fail":
			fmt.Printf("  ✗ %s: %s\n", c.Name, c.Detail)
		default:
			fmt.Printf("  • %s: %s\n", c.Name, c.Detail)
		}
	}
	fmt.Println()
	if allPassed {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See above for details.")
	}
	return nil
}
