package list

import (
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/config"
	"github.com/indaco/monopub/internal/printer"
	"github.com/indaco/monopub/internal/testutils"
)

func TestList(t *testing.T) {
	root := t.TempDir()
	testutils.WriteManifest(t, root, "packages/a", `{"name": "a", "version": "1.0.0"}`)
	testutils.WriteManifest(t, root, "packages/b", `{"name": "b", "version": "2.0.0", "dependencies": {"a": "1.0.0", "left-pad": "1.3.0"}}`)
	testutils.WriteManifest(t, root, "packages/c", `{"name": "c", "version": "0.3.0", "devDependencies": {"a": "1.0.0"}}`)
	testutils.WriteManifest(t, root, "packages/node_modules/x", `{"name": "x", "version": "9.9.9"}`)

	cfg := &config.Config{Root: root, PublishBlacklist: []string{"c"}}
	cfg.ApplyDefaults()

	printer.SetNoColor(true)
	app := testutils.BuildCLIForTests([]*cli.Command{Run(cfg)})
	out, err := testutils.CaptureStdout(func() {
		testutils.RunCLI(t, app, []string{"monopub", "list"})
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"a 1.0.0", "b 2.0.0", "c 0.3.0", "(blacklisted)", "dependents: b, c"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "left-pad") || strings.Contains(out, "9.9.9") {
		t.Errorf("external or skipped package listed:\n%s", out)
	}
}

func TestList_Empty(t *testing.T) {
	cfg := &config.Config{Root: t.TempDir()}
	cfg.ApplyDefaults()

	printer.SetNoColor(true)
	app := testutils.BuildCLIForTests([]*cli.Command{Run(cfg)})
	var runErr error
	out, err := testutils.CaptureStdout(func() {
		runErr = app.Run(context.Background(), []string{"monopub", "ls"})
	})
	if err != nil || runErr != nil {
		t.Fatalf("unexpected error: %v %v", err, runErr)
	}
	if !strings.Contains(out, "No packages found") {
		t.Errorf("got %q", out)
	}
}
