package main

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/dilithium/internal/config"
	"github.com/vango-dev/dilithium/internal/errors"
	"github.com/vango-dev/dilithium/pkg/memdom"
)

const shuffleScene = `
initial:
  component: List
  props:
    items: [a, b, c]
steps:
  - render:
      component: List
      props:
        items: [c, a, d]
`

// project writes a config and a scene into a temp dir and returns their paths.
func project(t *testing.T, scene string) (cfgPath, scenePath string) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.New()
	cfg.Log.Level = "error"
	cfg.Snapshot.Dir = "out"
	cfgPath = filepath.Join(dir, config.ConfigFileName)
	if err := cfg.SaveTo(cfgPath); err != nil {
		t.Fatal(err)
	}

	scenePath = filepath.Join(dir, "shuffle.yaml")
	if err := os.WriteFile(scenePath, []byte(scene), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, scenePath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	cfgPath, scenePath := project(t, shuffleScene)

	out, err := execute(t, "render", "--config", cfgPath, scenePath)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}

	want := []string{
		"scene shuffle: 1 steps",
		"initial: 5 mounted, 0 unmounted, 0 ops",
		"step 1: 1 mounted, 1 unmounted, 3 ops",
		"  MOVE .$a 0->1",
		"  INSERT .$d at 2",
		"  REMOVE .$b from 1",
		"<ul><li>c</li><li>a</li><li>d</li></ul>",
	}
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestRenderSnapshot(t *testing.T) {
	cfgPath, scenePath := project(t, shuffleScene)

	out, err := execute(t, "render", "--config", cfgPath, "--save", scenePath)
	if err != nil {
		t.Fatalf("render error = %v", err)
	}
	path := filepath.Join(filepath.Dir(cfgPath), "out", "shuffle.html")
	if !strings.Contains(out, "snapshot: "+path) {
		t.Errorf("output missing snapshot path %s:\n%s", path, out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	if string(data) != "<ul><li>c</li><li>a</li><li>d</li></ul>" {
		t.Errorf("snapshot = %s", data)
	}

	dir := t.TempDir()
	if _, err := execute(t, "render", "--config", cfgPath, "--snapshot", dir, "--format", "msgpack", scenePath); err != nil {
		t.Fatalf("render msgpack error = %v", err)
	}
	data, err = os.ReadFile(filepath.Join(dir, "shuffle.msgpack"))
	if err != nil {
		t.Fatal(err)
	}
	n, err := memdom.UnmarshalMsgpack(data)
	if err != nil {
		t.Fatalf("UnmarshalMsgpack() error = %v", err)
	}
	if n.Tag != "ul" || len(n.Children) != 3 {
		t.Errorf("snapshot root = %v", n)
	}
}

func TestRenderErrors(t *testing.T) {
	cfgPath, scenePath := project(t, shuffleScene)
	_, badScene := project(t, "initial: {component: Nope}\n")

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing argument", []string{"render", "--config", cfgPath}, "E140"},
		{"missing scene", []string{"render", "--config", cfgPath, "nope.yaml"}, "E020"},
		{"unknown component", []string{"render", "--config", cfgPath, badScene}, "E022"},
		{"bad format", []string{"render", "--config", cfgPath, "--format", "pdf", scenePath}, "E061"},
		{"missing config", []string{"render", "--config", filepath.Join(t.TempDir(), "x.json"), scenePath}, "E141"},
		{"bad log level", []string{"render", "--config", cfgPath, "--log-level", "loud", scenePath}, "E121"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Classify(err, "E143").Code; got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestApplyServeFlags(t *testing.T) {
	cfg := config.New()
	err := applyServeFlags(cfg, serveOptions{host: "0.0.0.0", port: 9000, interval: 250 * time.Millisecond})
	if err != nil {
		t.Fatalf("applyServeFlags() error = %v", err)
	}
	if cfg.Address() != "0.0.0.0:9000" || cfg.StepDuration() != 250*time.Millisecond {
		t.Errorf("config = %+v", cfg.Server)
	}

	err = applyServeFlags(config.New(), serveOptions{port: 70000})
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E122" {
		t.Errorf("bad port error = %v, want E122", err)
	}
}

func TestPreviewOptions(t *testing.T) {
	g := &globals{cfg: config.New()}
	g.cfg.Tracing.Enabled = true

	opts := previewOptions(g, nil)
	if opts.Metrics == nil || opts.Gatherer == nil {
		t.Error("metrics should be wired when enabled")
	}
	if opts.Tracer == nil {
		t.Error("tracer should be wired when enabled")
	}
	if opts.StepInterval != time.Second {
		t.Errorf("StepInterval = %v", opts.StepInterval)
	}

	g.cfg.Metrics.Enabled = false
	if opts := previewOptions(g, nil); opts.Metrics != nil || opts.Gatherer != nil {
		t.Error("metrics should be off when disabled")
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q, want %q", out, version)
	}
}
