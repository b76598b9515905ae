package release

import (
	"context"
	"fmt"
	"testing"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/manifest"
	"github.com/indaco/monopub/internal/semver"
	"github.com/indaco/monopub/internal/workspace"
)

// fakeRegistry records publishes and fails for the names in failOn.
type fakeRegistry struct {
	published []string
	failOn    map[string]error
}

func (r *fakeRegistry) Publish(_ context.Context, pkg workspace.PackageInfo, version string) error {
	if err := r.failOn[pkg.Name]; err != nil {
		return err
	}
	r.published = append(r.published, pkg.Name+"@"+version)
	return nil
}

// recordingEditor remembers every rewrite keyed by package directory.
type recordingEditor struct {
	own     map[string]string
	deps    map[string][]string
	failDep error
}

func newRecordingEditor() *recordingEditor {
	return &recordingEditor{own: make(map[string]string), deps: make(map[string][]string)}
}

func (e *recordingEditor) SetOwnVersion(_ context.Context, dir, version string) error {
	e.own[dir] = version
	return nil
}

func (e *recordingEditor) SetDependencyVersion(_ context.Context, dir, dependency, version string) error {
	if e.failDep != nil {
		return e.failDep
	}
	e.deps[dir] = append(e.deps[dir], dependency+"@"+version)
	return nil
}

// fakeSCM records git invocations.
type fakeSCM struct {
	calls     []string
	message   string
	stageErr  error
	commitErr error
	tagErr    error
	pushErr   error
}

func (s *fakeSCM) StageAll(context.Context) error {
	s.calls = append(s.calls, "add")
	return s.stageErr
}

func (s *fakeSCM) Commit(_ context.Context, message string) error {
	s.calls = append(s.calls, "commit")
	s.message = message
	return s.commitErr
}

func (s *fakeSCM) Tag(_ context.Context, name, _ string) error {
	s.calls = append(s.calls, "tag "+name)
	return s.tagErr
}

func (s *fakeSCM) Push(_ context.Context, remote, refspec string) error {
	s.calls = append(s.calls, "push "+remote+" "+refspec)
	return s.pushErr
}

type testPackage struct {
	name    string
	version string
	deps    []string
}

// newTestWorkspace writes a package.json per package under /repo/<name>
// and returns the filesystem and index.
func newTestWorkspace(t *testing.T, pkgs ...testPackage) (*core.MockFileSystem, *workspace.Index) {
	t.Helper()
	fs := core.NewMockFileSystem()
	var indexed []workspace.Package
	for _, p := range pkgs {
		dir := "/repo/" + p.name
		fs.SetFile(dir+"/package.json", []byte(manifestJSON(p)))
		indexed = append(indexed, workspace.Package{
			PackageInfo:  workspace.PackageInfo{Name: p.name, Version: p.version, Path: dir},
			Dependencies: p.deps,
		})
	}
	idx, err := workspace.NewIndex(indexed)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return fs, idx
}

func manifestJSON(p testPackage) string {
	deps := ""
	for i, d := range p.deps {
		if i > 0 {
			deps += ", "
		}
		deps += fmt.Sprintf("%q: %q", d, "0.0.0")
	}
	return fmt.Sprintf(`{"name": %q, "version": %q, "dependencies": {%s}}`, p.name, p.version, deps)
}

func readPackage(t *testing.T, fs *core.MockFileSystem, name string) *manifest.Manifest {
	t.Helper()
	data, ok := fs.GetFile("/repo/" + name + "/package.json")
	if !ok {
		t.Fatalf("manifest for %s missing", name)
	}
	m, err := manifest.Parse(name, data)
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return m
}

func manifestBytes(t *testing.T, fs *core.MockFileSystem, name string) string {
	t.Helper()
	data, _ := fs.GetFile("/repo/" + name + "/package.json")
	return string(data)
}

// newTestOrchestrator wires a patch-policy orchestrator over fs.
func newTestOrchestrator(fs core.FileSystem, registry Registry, opts Options) *Orchestrator {
	editor := manifest.NewEditor(fs, manifest.Options{}, nil)
	calc := semver.NewCalculator(semver.Patch, nil, nil)
	return NewOrchestrator(NewPublisher(calc, editor, registry, nil), editor, opts, nil)
}

func resolve(t *testing.T, idx *workspace.Index, names ...string) []workspace.ChangedPackage {
	t.Helper()
	changed, err := workspace.ResolveChanged(idx, names)
	if err != nil {
		t.Fatalf("ResolveChanged: %v", err)
	}
	return changed
}

func trailNames(trail *Trail) []string {
	var out []string
	for _, rec := range trail.Records() {
		out = append(out, rec.Name)
	}
	return out
}
