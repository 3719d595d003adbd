package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/vitals/pkg/domain/tracker"
)

const testSnapshot = `workspace: acme
records:
  - id: A
    title: Ship login
    status: done
    list: web
    space: product
    created_at: 2020-01-01T00:00:00Z
    completed_at: 2020-01-02T00:00:00Z
    assignees: [u1]
  - id: B
    title: Fix signup
    status: open
    list: web
    space: product
    created_at: 2020-01-01T00:00:00Z
    due_at: 2020-02-01T00:00:00Z
    assignees: [u2]
  - id: C
    title: Old spike
    status: open
    list: web
    space: product
    archived: true
    created_at: 2020-01-01T00:00:00Z
  - id: D
    title: Rate limits
    status: blocked
    list: api
    space: platform
    created_at: 2020-01-01T00:00:00Z
    blocked_by: [B]
team:
  - id: u1
    name: Ana
  - id: u2
    name: Ben
`

// fixtureNow places every record of testSnapshot inside the detailed window.
var fixtureNow = time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)

// writeFixture writes a snapshot and a config file pointing at it and
// returns the config path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "snapshot.yaml")
	if err := os.WriteFile(snapshot, []byte(testSnapshot), 0600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`source:
  type: file
  file:
    path: %s
  retry:
    max_attempts: 1
    initial_delay: 1ms
log:
  level: error
`, snapshot)
	if err := os.WriteFile(cfgPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func resetFlags() {
	cfgFile = ""
	analyzeSource = ""
	analyzeScopeKind = string(tracker.ScopeList)
	analyzeScope = ""
	analyzeDepth = "detailed"
	analyzeArchived = false
	analyzeJSON = false
	mcpTransport = ""
	mcpAddr = ""
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)
	now = func() time.Time { return fixtureNow }
	t.Cleanup(func() {
		now = time.Now
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
