package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hireflow/internal/api"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	path := filepath.Join(base, "hireflow.toml")
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n",
		filepath.Join(base, "data"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestWorkflowAndBoardCommands(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "workflow", "create", "Hiring", "--seed", "--json")
	if err != nil {
		t.Fatalf("workflow create: %v\n%s", err, out)
	}
	var wf api.Workflow
	if err := json.Unmarshal([]byte(out), &wf); err != nil {
		t.Fatalf("decode workflow: %v\n%s", err, out)
	}
	if len(wf.Stages) != 10 {
		t.Fatalf("stages = %d, want 10", len(wf.Stages))
	}

	out, err = runCommand(t, "--config", cfgPath, "application", "add", wf.ID, "cand-1", "--name", "Ada Lovelace")
	if err != nil {
		t.Fatalf("application add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Created application") {
		t.Fatalf("unexpected add output: %s", out)
	}

	out, err = runCommand(t, "--config", cfgPath, "list", wf.ID, "--json")
	if err != nil {
		t.Fatalf("list: %v\n%s", err, out)
	}
	var page api.ListResponse
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if page.Total != 1 || page.Items[0].Application.CandidateName != "Ada Lovelace" {
		t.Fatalf("unexpected page %+v", page)
	}

	out, err = runCommand(t, "--config", cfgPath, "board", wf.ID)
	if err != nil {
		t.Fatalf("board: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Leads (1)") {
		t.Fatalf("board output missing seeded column:\n%s", out)
	}
}

func TestApplicationMoveCommand(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfgPath, "workflow", "create", "Hiring", "--seed", "--json")
	if err != nil {
		t.Fatalf("workflow create: %v\n%s", err, out)
	}
	var wf api.Workflow
	if err := json.Unmarshal([]byte(out), &wf); err != nil {
		t.Fatalf("decode workflow: %v", err)
	}

	if _, err := runCommand(t, "--config", cfgPath, "application", "add", wf.ID, "cand-1"); err != nil {
		t.Fatalf("application add: %v", err)
	}
	out, err = runCommand(t, "--config", cfgPath, "list", wf.ID, "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var page api.ListResponse
	if err := json.Unmarshal([]byte(out), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	appID := page.Items[0].Application.ID
	var interview string
	for _, stage := range wf.Stages {
		if stage.Name == "Interview" {
			interview = stage.ID
		}
	}

	out, err = runCommand(t, "--config", cfgPath, "application", "move", appID, interview, "--actor", "recruiter-1", "--version", "0")
	if err != nil {
		t.Fatalf("move: %v\n%s", err, out)
	}
	if !strings.Contains(out, "version 1") {
		t.Fatalf("unexpected move output: %s", out)
	}

	// Same snapshot again: the conflict must reach the user.
	if _, err := runCommand(t, "--config", cfgPath, "application", "move", appID, interview, "--actor", "recruiter-2", "--version", "0"); err == nil {
		t.Fatal("expected stale-version error")
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}
