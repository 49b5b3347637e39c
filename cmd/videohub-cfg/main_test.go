package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/muurk/videohub/internal/config"
	"github.com/muurk/videohub/internal/hubtest"
	"github.com/muurk/videohub/internal/preset"
)

type cli struct {
	t         *testing.T
	config    string
	presetDir string
	srv       *hubtest.Server
}

func newCLI(t *testing.T, srv *hubtest.Server) *cli {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"HOST", "PORT", "HUB", "PRESET_DIR", "STRICT", "LOG_LEVEL"} {
		t.Setenv(config.EnvPrefix+"_"+key, "")
	}
	t.Setenv(config.ConfigDirEnvVar, dir)
	return &cli{
		t:         t,
		config:    filepath.Join(dir, "config.yaml"),
		presetDir: filepath.Join(dir, "presets"),
		srv:       srv,
	}
}

// run executes one command line with stdin and returns everything printed
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	full := []string{
		"--config", c.config,
		"--preset-dir", c.presetDir,
		"--fetch-timeout", "150ms",
		"--initial-timeout", "100ms",
		"--followup-timeout", "40ms",
	}
	if c.srv != nil {
		full = append(full, "--host", c.srv.Host(), "--port", strconv.Itoa(c.srv.Port()))
	}
	full = append(full, args...)

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRead(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, srv)

	out, err := c.run("", "read", "--full")
	if err != nil {
		t.Fatalf("read error = %v\n%s", err, out)
	}
	for _, want := range []string{"Device Information", "CAM1", "PLAYOUT", "Routing:"} {
		if !strings.Contains(out, want) {
			t.Errorf("read output missing %q:\n%s", want, out)
		}
	}
}

func TestRead_JSON(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, srv)

	out, err := c.run("", "read", "--format", "json")
	if err != nil {
		t.Fatalf("read error = %v", err)
	}

	s, err := preset.Decode([]byte(out))
	if err != nil {
		t.Fatalf("read --format json is not a valid preset: %v\n%s", err, out)
	}
	if !s.Equal(hubtest.SampleState()) {
		t.Errorf("decoded state = %+v", s)
	}
}

func TestRead_NoTarget(t *testing.T) {
	c := newCLI(t, nil)

	if _, err := c.run("", "read"); err == nil || !strings.Contains(err.Error(), "no hub address") {
		t.Errorf("read without target error = %v", err)
	}
}

func TestRead_BadFormat(t *testing.T) {
	c := newCLI(t, nil)

	if _, err := c.run("", "read", "--format", "xml"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestRead_Unreachable(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	c := newCLI(t, srv)
	srv.Close()

	out, err := c.run("", "read")
	var reported reportedError
	if !errors.As(err, &reported) {
		t.Fatalf("read error = %v, want reported error", err)
	}
	if !strings.Contains(out, "Read failed") {
		t.Errorf("output should contain the failure box:\n%s", out)
	}
}

func TestSaveShowAndDelete(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, srv)

	out, err := c.run("", "save", "studio", "--description", "Morning show")
	if err != nil {
		t.Fatalf("save error = %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(c.presetDir, "studio.json")); err != nil {
		t.Fatalf("preset file not written: %v", err)
	}

	// Declining the overwrite prompt leaves the file alone
	if _, err := c.run("n\n", "save", "studio", "--description", "changed"); err != nil {
		t.Fatalf("save (declined) error = %v", err)
	}

	out, err = c.run("", "presets")
	if err != nil || !strings.Contains(out, "studio") || !strings.Contains(out, "Morning show") {
		t.Errorf("presets = %q, %v", out, err)
	}

	out, err = c.run("", "show-preset", "studio", "--format", "compact")
	if err != nil {
		t.Fatalf("show-preset error = %v", err)
	}
	if !strings.Contains(out, "Description: Morning show") || !strings.Contains(out, "1 <- 1  (PGM <- CAM1)") {
		t.Errorf("show-preset output:\n%s", out)
	}

	if _, err := c.run("", "delete-preset", "studio", "--yes"); err != nil {
		t.Fatalf("delete-preset error = %v", err)
	}
	if _, err := c.run("", "delete-preset", "studio", "--yes"); !errors.Is(err, preset.ErrPresetNotFound) {
		t.Errorf("second delete error = %v, want ErrPresetNotFound", err)
	}
}

func TestApplyAndCompare(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, srv)

	p := hubtest.SampleState()
	p.Routing[0] = 3
	p.Routing[1] = 2
	if _, err := preset.NewStore(c.presetDir).Save("swap", p, false); err != nil {
		t.Fatal(err)
	}

	out, err := c.run("", "compare", "swap")
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if !strings.Contains(out, "2 of 4 outputs differ") {
		t.Errorf("compare output:\n%s", out)
	}

	// Declined: nothing sent
	if _, err := c.run("no\n", "apply", "swap"); err != nil {
		t.Fatalf("apply (declined) error = %v", err)
	}
	if len(srv.Routes()) != 0 {
		t.Fatalf("declined apply sent %d routes", len(srv.Routes()))
	}

	out, err = c.run("", "apply", "swap", "--yes")
	if err != nil {
		t.Fatalf("apply error = %v\n%s", err, out)
	}
	if got := srv.State().Routing; got[0] != 3 || got[1] != 2 {
		t.Errorf("hub routing = %v", got)
	}
	if !strings.Contains(out, "Output 1 (PGM) <- Input 4 (PLAYOUT)") {
		t.Errorf("apply output:\n%s", out)
	}

	out, err = c.run("", "compare", "swap")
	if err != nil || !strings.Contains(out, "Hub matches preset") {
		t.Errorf("compare after apply = %q, %v", out, err)
	}

	out, err = c.run("", "compare", "swap", "--plain")
	if err != nil || !strings.Contains(out, "0 of 4 outputs differ") {
		t.Errorf("compare --plain = %q, %v", out, err)
	}
}

func TestApply_MissingPreset(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, srv)

	if _, err := c.run("", "apply", "nope", "--yes"); !errors.Is(err, preset.ErrPresetNotFound) {
		t.Errorf("apply error = %v, want ErrPresetNotFound", err)
	}
}

func TestHubs(t *testing.T) {
	srv := hubtest.NewServer(hubtest.SampleState())
	defer srv.Close()
	c := newCLI(t, nil)

	if _, err := c.run("", "hubs", "add", "studio", srv.Host(), "--port", strconv.Itoa(srv.Port()), "--default"); err != nil {
		t.Fatalf("hubs add error = %v", err)
	}

	out, err := c.run("", "hubs", "list")
	if err != nil || !strings.Contains(out, "studio") || !strings.Contains(out, "*") {
		t.Errorf("hubs list = %q, %v", out, err)
	}

	// The default hub is used when no address is given, and learns its size
	if _, err := c.run("", "read", "--format", "compact"); err != nil {
		t.Fatalf("read via default hub error = %v", err)
	}
	reg, err := config.LoadRegistryFrom(c.config)
	if err != nil {
		t.Fatal(err)
	}
	if h := reg.GetHub("studio"); h.Inputs != 4 || h.LastSeen.IsZero() {
		t.Errorf("registry hub after read = %+v", h)
	}

	if _, err := c.run("", "hubs", "remove", "studio"); err != nil {
		t.Fatalf("hubs remove error = %v", err)
	}
	if _, err := c.run("", "hubs", "remove", "studio"); err == nil {
		t.Error("removing an unknown hub should fail")
	}
}

func TestHubsInit(t *testing.T) {
	c := newCLI(t, nil)

	if _, err := c.run("", "hubs", "init"); err != nil {
		t.Fatalf("hubs init error = %v", err)
	}
	if _, err := c.run("", "hubs", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err := c.run("", "status")
	if err != nil {
		t.Fatalf("status error = %v", err)
	}
	if !strings.Contains(out, "172.20.5.247:9990 (universal-40x40)") {
		t.Errorf("status output:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	c := newCLI(t, nil)

	out, err := c.run("", "version")
	if err != nil || !strings.HasPrefix(out, "videohub-cfg ") {
		t.Errorf("version = %q, %v", out, err)
	}
}
