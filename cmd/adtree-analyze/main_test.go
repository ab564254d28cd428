package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-adtree/pkg/config"
	"github.com/dd0wney/cluso-adtree/pkg/logging"
	"github.com/dd0wney/cluso-adtree/pkg/metrics"
	"github.com/dd0wney/cluso-adtree/pkg/report"
)

const counteredTree = `<adtree>
  <node refinement="disjunctive">
    <label>root</label>
    <node refinement="disjunctive">
      <label>a1</label>
      <node switchRole="yes"><label>d1</label></node>
    </node>
    <node refinement="disjunctive">
      <label>a2</label>
      <node refinement="disjunctive" switchRole="yes">
        <label>defend</label>
        <node><label>d2</label></node>
        <node><label>d3</label></node>
      </node>
    </node>
  </node>
</adtree>`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "adtree.yaml", "inputs: [from-file.xml]\noutput: text\nlog_level: warn\n")

	cfg, err := parseConfig([]string{"-config", cfgPath, "-output", "json", "-pairs", "-workers", "3", "a.xml", "b.yaml"})
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Output != config.OutputJSON {
		t.Errorf("Output = %q, want json", cfg.Output)
	}
	if !cfg.ShowPairs {
		t.Error("ShowPairs not set")
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want value from file", cfg.LogLevel)
	}
	if len(cfg.Inputs) != 2 || cfg.Inputs[0] != "a.xml" {
		t.Errorf("Inputs = %v, want positional arguments", cfg.Inputs)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	if _, err := parseConfig(nil); err == nil {
		t.Error("expected error without inputs")
	}
	if _, err := parseConfig([]string{"-output", "html", "a.xml"}); err == nil {
		t.Error("expected error for unknown output format")
	}
	if _, err := parseConfig([]string{"-compress", "a.xml"}); err == nil {
		t.Error("expected error for -compress without -report-dir")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "countered.xml", counteredTree)
	bad := writeFile(t, dir, "broken.xml", "<adtree><node>")

	sink, err := report.NewFileSink(filepath.Join(dir, "reports"), false)
	if err != nil {
		t.Fatal(err)
	}
	reg := metrics.NewRegistry()

	var stdout, logs bytes.Buffer
	logger := logging.NewJSONLogger(&logs, logging.InfoLevel)
	cfg := config.Default()
	cfg.Inputs = []string{good, bad}
	cfg.ShowPairs = true

	a := &app{
		cfg:       cfg,
		stdout:    &stdout,
		logger:    logger,
		metrics:   reg,
		publisher: report.NewPublisher(logger, reg, 0, sink),
	}

	if failed := a.run(context.Background()); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	out := stdout.String()
	for _, want := range []string{"number of nodes:", "size of defense semantics:", "({a1}, {d1})", "({a2}, {d3})"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(logs.String(), `"sinks":1`) {
		t.Errorf("sink count not logged:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "tree analysis failed") {
		t.Errorf("failure not logged:\n%s", logs.String())
	}

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d stored reports, want 1", len(entries))
	}
	stored, err := report.ReadFile(filepath.Join(dir, "reports", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	if stored.Summary.DefensePairs != 3 || stored.Summary.Nodes != 7 {
		t.Errorf("stored summary = %+v", stored.Summary)
	}
}

func TestRun_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = []string{writeFile(t, dir, "countered.xml", counteredTree)}
	cfg.Output = config.OutputJSON

	var stdout bytes.Buffer
	a := &app{cfg: cfg, stdout: &stdout, logger: logging.NopLogger{}, metrics: metrics.NewRegistry()}
	if failed := a.run(context.Background()); failed != 0 {
		t.Fatalf("failed = %d", failed)
	}

	var decoded struct {
		File    string `json:"file"`
		Summary struct {
			AttackStrategies int `json:"attack_strategies"`
			DefensePairs     int `json:"defense_pairs"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if decoded.Summary.AttackStrategies != 2 || decoded.Summary.DefensePairs != 3 {
		t.Errorf("summary = %+v", decoded.Summary)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := config.Default()
	cfg.Inputs = []string{"a.xml", "b.xml"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &app{cfg: cfg, stdout: &bytes.Buffer{}, logger: logging.NopLogger{}, metrics: metrics.NewRegistry()}
	if failed := a.run(ctx); failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}
