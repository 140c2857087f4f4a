package main

import (
	"strings"
	"testing"

	"conlog/internal/testsupport"
)

func TestDemoRunsAllScenarios(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "", "demo", "--fast")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if got := strings.Count(out, "OK\n"); got != len(demoScenarios) {
		t.Fatalf("OK markers = %d, want %d:\n%s", got, len(demoScenarios), out)
	}
	for _, want := range []string{
		"just some text",
		"Subject 1: log input",
		"> Subject 1: back to subject 1",
		"> Subject 2::subtext → even more log input",
		"---> Logging test <---",
		"tests an exception in logging",
		"DEBUG A: Start data",
		"::: Logging progress..",
		"::: [ 10 units ] ::: [ Completed in:",
	} {
		requireContains(t, out, want)
	}
}

func TestDemoSelectsScenarios(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, env, "", "demo", "--fast", "more")
	if err != nil {
		t.Fatalf("demo more: %v", err)
	}
	requireContains(t, out, "Different subject: Example log output 2.1")
	if strings.Contains(out, "just some text") {
		t.Fatalf("only the selected scenario should run:\n%s", out)
	}

	if _, _, err := runCLI(t, env, "", "demo", "nope"); err == nil {
		t.Fatal("expected an error for an unknown scenario")
	}
}

func TestDemoSummaryReadsMemorySink(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithSinks("File"))
	out, _, err := runCLI(t, env, "", "demo", "--fast", "--summary", "subjects", "progress")
	if err != nil {
		t.Fatalf("demo --summary: %v", err)
	}
	requireContains(t, out, "Scenario")
	requireContains(t, out, "subjects")
	requireContains(t, out, "completed 10/10")
}

func TestSelectScenarios(t *testing.T) {
	all, err := selectScenarios(nil)
	if err != nil || len(all) != len(demoScenarios) {
		t.Fatalf("default selection = %d scenarios, err %v", len(all), err)
	}
	got, err := selectScenarios([]string{" Debug ", "progress"})
	if err != nil {
		t.Fatalf("selectScenarios: %v", err)
	}
	if len(got) != 2 || got[0].name != "debug" || got[1].name != "progress" {
		t.Fatalf("selection = %+v", got)
	}
}
