package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/peterhq/peter/internal/cli/config"
)

const validDoc = `version: 2
kind: dashboard
slug: revenue
title: Revenue
owner: data-team
view_type: analytical
queries:
  - id: q1
    warehouse: bigquery
    sql: SELECT day, total FROM proj.sales.daily
layout:
  - id: headline
    type: kpi
    query_ref: q1
    style:
      position: {row: 0, col: 0, width: 6, height: 1}
  - id: trend
    type: chart
    chart: line
    query_ref: q1
    style:
      position: {row: 1, col: 0, width: 12, height: 2}
`

const invalidDoc = `version: 1
kind: dashboard
slug: revenue
title: Revenue
owner: data-team
queries:
  - id: q1
    warehouse: bigquery
    sql: SELECT 1
layout:
  - id: wide
    type: kpi
    query_ref: q1
    style:
      position: {row: 0, col: 8, width: 6, height: 1}
`

func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	config.ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestValidateCommand_Valid(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	out, err := executeCommand(t, NewValidateCommand(), file)
	if err != nil {
		t.Fatalf("expected success, got %v\n%s", err, out)
	}
}

func TestValidateCommand_GridBoundsError(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "broken.yaml", invalidDoc)

	out, err := executeCommand(t, NewValidateCommand(), file)
	if err == nil {
		t.Fatalf("expected validation failure\n%s", out)
	}
	if !strings.Contains(out, "col+width=14>12") {
		t.Errorf("expected grid bounds message in output, got:\n%s", out)
	}
}

func TestValidateCommand_Directory(t *testing.T) {
	dir := setupWorkspace(t)
	writeDoc(t, dir, "a.yaml", validDoc)
	writeDoc(t, dir, "b.yaml", invalidDoc)

	out, err := executeCommand(t, NewValidateCommand(), dir)
	if err == nil {
		t.Fatal("expected failure because one document is invalid")
	}
	// Both files must be reported; the run does not stop at the first.
	if !strings.Contains(out, "a.yaml") || !strings.Contains(out, "b.yaml") {
		t.Errorf("expected both files in output, got:\n%s", out)
	}
}

func TestValidateCommand_JSON(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	out, err := executeCommand(t, NewValidateCommand(), "--format", "json", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var reports []struct {
		File  string `json:"file"`
		Valid bool   `json:"valid"`
	}
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("expected valid JSON output: %v\n%s", err, out)
	}
	if len(reports) != 1 || !reports[0].Valid {
		t.Errorf("unexpected report: %+v", reports)
	}
}

func TestCompileCommand_PendingWidgets(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	out, err := executeCommand(t, NewCompileCommand(), "--format", "json", file)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	var body struct {
		Plan struct {
			Strategy string `json:"strategy"`
			Queries  []struct {
				Hash             string   `json:"hash"`
				DependentWidgets []string `json:"dependent_widgets"`
			} `json:"queries"`
		} `json:"plan"`
		Widgets []struct {
			ID    string `json:"id"`
			Kind  string `json:"kind"`
			State string `json:"state"`
		} `json:"widgets"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("expected JSON output: %v\n%s", err, out)
	}

	if body.Plan.Strategy != "parallel" {
		t.Errorf("expected parallel strategy, got %q", body.Plan.Strategy)
	}
	if len(body.Plan.Queries) != 1 || len(body.Plan.Queries[0].Hash) != 16 {
		t.Errorf("unexpected plan queries: %+v", body.Plan.Queries)
	}
	if len(body.Widgets) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(body.Widgets))
	}
	for _, w := range body.Widgets {
		if w.State != "pending" {
			t.Errorf("widget %s: expected pending without execution, got %q", w.ID, w.State)
		}
	}
	if body.Widgets[1].Kind != "line_chart" {
		t.Errorf("expected line_chart kind, got %q", body.Widgets[1].Kind)
	}
}

func TestCompileCommand_InvalidDocument(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "broken.yaml", invalidDoc)

	if _, err := executeCommand(t, NewCompileCommand(), file); err == nil {
		t.Fatal("expected compile of invalid document to fail")
	}
}

func TestLayoutCommand(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	out, err := executeCommand(t, NewLayoutCommand(), "--format", "json", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var entries []struct {
		ID       string `json:"id"`
		Geometry struct {
			Left  float64 `json:"left"`
			Width float64 `json:"width"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("expected JSON output: %v\n%s", err, out)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Geometry.Width != 600 {
		t.Errorf("expected 6/12 of 1200px = 600, got %v", entries[0].Geometry.Width)
	}
}

func TestLineageCommand(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	out, err := executeCommand(t, NewLineageCommand(), "--format", "json", file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var g struct {
		Nodes []struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"nodes"`
		Edges []struct {
			Type string `json:"type"`
		} `json:"edges"`
	}
	if err := json.Unmarshal([]byte(out), &g); err != nil {
		t.Fatalf("expected JSON output: %v\n%s", err, out)
	}
	var hasTable bool
	for _, n := range g.Nodes {
		if n.Type == "table" && n.ID == "proj.sales.daily" {
			hasTable = true
		}
	}
	if !hasTable {
		t.Errorf("expected table node extracted from SQL, got %+v", g.Nodes)
	}
}

func TestPushPullListRoundTrip(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "revenue.yaml", validDoc)

	if out, err := executeCommand(t, NewPushCommand(), file); err != nil {
		t.Fatalf("push failed: %v\n%s", err, out)
	}

	// Same version again must be refused.
	if _, err := executeCommand(t, NewPushCommand(), file); err == nil {
		t.Fatal("expected second push of the same version to fail")
	}

	out, err := executeCommand(t, NewListCommand(), "--format", "json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var revs []struct {
		Slug    string `json:"slug"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal([]byte(out), &revs); err != nil {
		t.Fatalf("expected JSON list: %v\n%s", err, out)
	}
	if len(revs) != 1 || revs[0].Slug != "revenue" || revs[0].Version != 2 {
		t.Errorf("unexpected list: %+v", revs)
	}

	pulled, err := executeCommand(t, NewPullCommand(), "revenue")
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if pulled != validDoc {
		t.Errorf("pulled document does not match pushed bytes")
	}
}

func TestPushCommand_RejectsInvalid(t *testing.T) {
	dir := setupWorkspace(t)
	file := writeDoc(t, dir, "broken.yaml", invalidDoc)

	if _, err := executeCommand(t, NewPushCommand(), file); err == nil {
		t.Fatal("expected push of invalid document to fail")
	}
}

func TestPullCommand_NotFound(t *testing.T) {
	setupWorkspace(t)

	if _, err := executeCommand(t, NewPullCommand(), "missing"); err == nil {
		t.Fatal("expected pull of unknown slug to fail")
	}
}

func TestInitCommand(t *testing.T) {
	dir := setupWorkspace(t)

	out, err := executeCommand(t, NewInitCommand(), dir, "--slug", "sales", "--owner", "me")
	if err != nil {
		t.Fatalf("init failed: %v\n%s", err, out)
	}

	if _, err := os.Stat(filepath.Join(dir, "peter.yaml")); err != nil {
		t.Error("expected peter.yaml to be created")
	}
	starter := filepath.Join(dir, "dashboards", "sales.yaml")
	if _, err := os.Stat(starter); err != nil {
		t.Fatal("expected starter dashboard to be created")
	}

	// The scaffold must validate cleanly.
	if out, err := executeCommand(t, NewValidateCommand(), starter); err != nil {
		t.Errorf("starter dashboard should validate: %v\n%s", err, out)
	}

	// Re-running must not overwrite.
	out, err = executeCommand(t, NewInitCommand(), dir, "--slug", "sales")
	if err != nil {
		t.Fatalf("re-init failed: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected skip notices, got:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, NewVersionCommand("1.2.3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("expected version in output, got %q", out)
	}
}
