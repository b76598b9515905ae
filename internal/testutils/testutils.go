// Package testutils holds helpers shared by command tests.
package testutils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/urfave/cli/v3"

	"github.com/indaco/monopub/internal/core"
)

// CaptureStdout runs fn and returns what it wrote to os.Stdout.
func CaptureStdout(fn func()) (string, error) {
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	var copyErr error
	go func() {
		_, copyErr = io.Copy(&buf, r)
		close(done)
	}()

	fn()

	_ = w.Close()
	os.Stdout = old
	<-done
	_ = r.Close()
	return buf.String(), copyErr
}

// BuildCLIForTests returns a root command named monopub with the global
// flags of the real CLI and the given subcommands.
func BuildCLIForTests(commands []*cli.Command) *cli.Command {
	return &cli.Command{
		Name: "monopub",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose"},
			&cli.BoolFlag{Name: "no-color"},
		},
		Commands: commands,
	}
}

// RunCLI runs app with args and fails the test on error.
func RunCLI(t *testing.T, app *cli.Command, args []string) {
	t.Helper()
	if err := app.Run(context.Background(), args); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

// WriteManifest writes manifest content to root/dir/package.json.
func WriteManifest(t *testing.T, root, dir, content string) string {
	t.Helper()
	pkgDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(pkgDir, "package.json")
	if err := os.WriteFile(path, []byte(content), core.PermPublicRead); err != nil {
		t.Fatal(err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// WriteFileForTest writes content to path, creating parent directories.
func WriteFileForTest(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), core.PermPublicRead); err != nil {
		t.Fatal(err)
	}
}

// InitRepo turns dir into a git repository with one empty commit on the
// default branch (master).
func InitRepo(t *testing.T, dir string) {
	t.Helper()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author:            &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
		AllowEmptyCommits: true,
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
}
