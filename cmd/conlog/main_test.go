package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"conlog/internal/testsupport"
)

func TestRootHelp(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "")
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	for _, sub := range []string{"demo", "pipe", "history", "applog", "sinks", "config"} {
		requireContains(t, out, sub)
	}
}

func TestSinksCommandListsRegistry(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSinks("StandardOut", "File"))
	out, _, err := runCLI(t, env, "", "sinks")
	if err != nil {
		t.Fatalf("sinks: %v", err)
	}
	for _, name := range []string{"File", "History", "Memory", "StandardOut", "Structured"} {
		requireContains(t, out, name)
	}
	if strings.Count(out, "yes") != 2 {
		t.Fatalf("expected two enabled sinks:\n%s", out)
	}
}

func TestApplogCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"tagged", []string{"applog", "myapp", "error", "disk", "full"}, "myapp Error: disk → full\n"},
		{"untagged", []string{"applog", "myapp", "hello"}, "myapp Info: hello\n"},
		{"tag alone is the message", []string{"applog", "myapp", "warning"}, "myapp Info: warning\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, env, "", tt.args...)
			if err != nil {
				t.Fatalf("applog: %v", err)
			}
			if out != tt.want {
				t.Fatalf("applog output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestApplogCommandTimesMessage(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "", "applog", "--time", "write", "myapp", "done")
	if err != nil {
		t.Fatalf("applog: %v", err)
	}
	requireContains(t, out, "myapp Info: done\n")
	requireContains(t, out, "Times: write: ")
}

func TestApplogRequiresMessage(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "", "applog", "myapp"); err == nil {
		t.Fatal("expected an error without a message")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "sample.toml")

	out, _, err := runCLI(t, nil, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, nil, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, _, err := runCLI(t, nil, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, &cliTestEnv{configPath: target}, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Sinks: StandardOut")
}

func TestConfigValidateRejectsUnknownKeys(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[logging]\nsinkz = [\"File\"]\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := runCLI(t, env, "", "config", "validate"); err == nil {
		t.Fatal("expected validation error for unknown key")
	}
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSinks("File"))
	out, _, err := runCLI(t, env, "", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[logging]")
	requireContains(t, out, "sinks = ")
	requireContains(t, out, "File")
	requireContains(t, out, env.cfg.History.Path)
}

func TestPipeLogsLinesWithProgress(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSinks("StandardOut", "File"))
	out, _, err := runCLI(t, env, "alpha\n\nbeta\n", "pipe", "--subject", "Build", "--progress", "3", "--message", "Compiling")
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	requireContains(t, out, "::: Compiling\n")
	requireContains(t, out, "Build: alpha\n")
	requireContains(t, out, "> Build: beta\n")
	requireContains(t, out, "::: [ 3 units ] ::: [ Completed in:")

	data, err := os.ReadFile(env.cfg.File.Path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	requireContains(t, string(data), "Build: alpha")
	requireContains(t, string(data), "Completed in:")
}

func TestPipeRequiresSubject(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, env, "x\n", "pipe"); err == nil {
		t.Fatal("expected an error without --subject")
	}
}

func TestHistoryListAndShow(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSinks("History"))
	if _, _, err := runCLI(t, env, "one\ntwo\n", "pipe", "--subject", "Job"); err != nil {
		t.Fatalf("pipe: %v", err)
	}

	out, _, err := runCLI(t, env, "", "history", "list", "--json")
	if err != nil {
		t.Fatalf("history list: %v", err)
	}
	var sessions []sessionView
	if err := json.Unmarshal([]byte(out), &sessions); err != nil {
		t.Fatalf("decode sessions: %v\n%s", err, out)
	}
	if len(sessions) != 1 || sessions[0].Entries != 2 || sessions[0].Logger != "conlog" || sessions[0].EndedAt == "" {
		t.Fatalf("sessions = %+v", sessions)
	}

	out, _, err = runCLI(t, env, "", "history", "show", sessions[0].ID, "--limit", "1")
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Job two")
	if strings.Contains(out, "one") {
		t.Fatalf("limit should keep only the last entry:\n%s", out)
	}

	out, _, err = runCLI(t, env, "", "history", "list")
	if err != nil {
		t.Fatalf("history list table: %v", err)
	}
	requireContains(t, out, sessions[0].ID)

	if _, _, err := runCLI(t, env, "", "history", "show", "missing"); err == nil {
		t.Fatal("expected an error for an unknown session")
	}
}
