package release

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/indaco/monopub/internal/core"
	"github.com/indaco/monopub/internal/semver"
	"github.com/indaco/monopub/internal/workspace"
	"pgregory.net/rapid"
)

func TestOrchestrator_CascadeToDependent(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "a 1.0.0 => 1.0.1\nb 2.0.0 => 2.0.1"
	if got := trail.Report(); got != want {
		t.Errorf("got report %q, want %q", got, want)
	}

	b := readPackage(t, fs, "b")
	if b.Version != "2.0.1" {
		t.Errorf("got b version %q, want %q", b.Version, "2.0.1")
	}
	data, _ := fs.GetFile("/repo/b/package.json")
	if want := `{"name": "b", "version": "2.0.1", "dependencies": {"a": "1.0.1"}}`; string(data) != want {
		t.Errorf("got b manifest %s, want %s", data, want)
	}

	if !slices.Equal(registry.published, []string{"a@1.0.1", "b@2.0.1"}) {
		t.Errorf("got publishes %q", registry.published)
	}

	records := trail.Records()
	if records[0].Cascade || !records[1].Cascade {
		t.Errorf("unexpected cascade flags: %+v", records)
	}
	if rw := trail.Rewrites(); len(rw) != 1 || rw[0] != (DependencyRewrite{Package: "b", Path: "/repo/b", Dependency: "a", Version: "1.0.1"}) {
		t.Errorf("unexpected rewrites: %+v", rw)
	}
}

func TestOrchestrator_BlacklistedDependent(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	before := manifestBytes(t, fs, "b")
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true, Blacklist: []string{"b"}})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := trail.Report(); got != "a 1.0.0 => 1.0.1" {
		t.Errorf("got report %q", got)
	}
	if after := manifestBytes(t, fs, "b"); after != before {
		t.Errorf("blacklisted manifest modified:\n%s", after)
	}
	if skipped := trail.Skipped(); len(skipped) != 1 || skipped[0] != (Skip{Name: "b", DependentOf: "a"}) {
		t.Errorf("unexpected skips: %+v", skipped)
	}
}

func TestOrchestrator_DependentAlsoChanged(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a", "b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := trailNames(trail); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got trail %q, want [a b]", got)
	}
	if trail.Records()[1].Cascade {
		t.Error("b was published by its own entry, not the cascade")
	}
	if want := `{"name": "b", "version": "2.0.1", "dependencies": {"a": "1.0.1"}}`; manifestBytes(t, fs, "b") != want {
		t.Errorf("got b manifest %s, want %s", manifestBytes(t, fs, "b"), want)
	}
}

func TestOrchestrator_DependentChangedLater(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	orch := newTestOrchestrator(fs, &fakeRegistry{}, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "b", "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := trailNames(trail); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("got trail %q, want [b a]", got)
	}
	if want := `{"name": "b", "version": "2.0.1", "dependencies": {"a": "1.0.1"}}`; manifestBytes(t, fs, "b") != want {
		t.Errorf("got b manifest %s, want %s", manifestBytes(t, fs, "b"), want)
	}
}

func TestOrchestrator_SharedDependentPublishedOnce(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a", "c"}},
		testPackage{name: "c", version: "3.0.0"},
	)
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := trailNames(trail); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("got trail %q, want [a b c]", got)
	}
	if want := `{"name": "b", "version": "2.0.1", "dependencies": {"a": "1.0.1", "c": "3.0.1"}}`; manifestBytes(t, fs, "b") != want {
		t.Errorf("got b manifest %s, want %s", manifestBytes(t, fs, "b"), want)
	}
	if len(trail.Rewrites()) != 2 {
		t.Errorf("got %d rewrites, want 2", len(trail.Rewrites()))
	}
}

func TestOrchestrator_NoCascade(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	before := manifestBytes(t, fs, "b")
	orch := newTestOrchestrator(fs, &fakeRegistry{}, Options{Cascade: false})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := trail.Report(); got != "a 1.0.0 => 1.0.1" {
		t.Errorf("got report %q", got)
	}
	if after := manifestBytes(t, fs, "b"); after != before {
		t.Errorf("dependent modified without cascade:\n%s", after)
	}
}

func TestOrchestrator_BlacklistedChangedPackage(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
	)
	before := manifestBytes(t, fs, "a")
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true, Blacklist: []string{"a"}})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trail.Len() != 0 || len(registry.published) != 0 {
		t.Errorf("blacklisted package published: %q", registry.published)
	}
	if manifestBytes(t, fs, "a") != before {
		t.Error("blacklisted package manifest modified")
	}
	if skipped := trail.Skipped(); len(skipped) != 1 || skipped[0] != (Skip{Name: "a"}) {
		t.Errorf("unexpected skips: %+v", skipped)
	}
}

func TestOrchestrator_DependentsUseSnapshotVersion(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
		testPackage{name: "c", version: "3.0.0", deps: []string{"b"}},
	)
	registry := &fakeRegistry{}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One hop only: c depends on b, which was published by the cascade.
	if got := trailNames(trail); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got trail %q, want [a b]", got)
	}
	if got := readPackage(t, fs, "c").Version; got != "3.0.0" {
		t.Errorf("got c version %q, want untouched 3.0.0", got)
	}
}

func TestOrchestrator_PublishFailureKeepsPartialTrail(t *testing.T) {
	fs, idx := newTestWorkspace(t,
		testPackage{name: "a", version: "1.0.0"},
		testPackage{name: "b", version: "2.0.0", deps: []string{"a"}},
		testPackage{name: "c", version: "3.0.0"},
	)
	registry := &fakeRegistry{failOn: map[string]error{"b": fmt.Errorf("%w: npm exited 1", core.ErrExternalOperation)}}
	orch := newTestOrchestrator(fs, registry, Options{Cascade: true})

	trail, err := orch.Run(context.Background(), resolve(t, idx, "a", "c"))
	if !errors.Is(err, core.ErrExternalOperation) {
		t.Fatalf("expected ErrExternalOperation, got %v", err)
	}

	re, ok := core.AsReleaseError(err)
	if !ok || re.Package != "b" || re.Op != "publish" {
		t.Errorf("unexpected release error: %+v", re)
	}
	if got := trailNames(trail); !slices.Equal(got, []string{"a"}) {
		t.Errorf("got partial trail %q, want [a]", got)
	}
	if !slices.Equal(registry.published, []string{"a@1.0.1"}) {
		t.Errorf("run continued after failure: %q", registry.published)
	}
}

func TestOrchestrator_RewriteFailure(t *testing.T) {
	editor := newRecordingEditor()
	editor.failDep = fmt.Errorf("%w: field missing", core.ErrManifestParse)
	orch := NewOrchestrator(
		NewPublisher(semver.NewCalculator(semver.Patch, nil, nil), editor, &fakeRegistry{}, nil),
		editor,
		Options{Cascade: true},
		nil,
	)

	changed := []workspace.ChangedPackage{{
		PackageInfo: workspace.PackageInfo{Name: "a", Version: "1.0.0", Path: "/a"},
		Dependents:  []workspace.PackageInfo{{Name: "b", Version: "2.0.0", Path: "/b"}},
	}}

	trail, err := orch.Run(context.Background(), changed)
	if !errors.Is(err, core.ErrManifestParse) {
		t.Fatalf("expected ErrManifestParse, got %v", err)
	}
	if re, ok := core.AsReleaseError(err); !ok || re.Package != "b" || re.Path != "/b" {
		t.Errorf("unexpected release error: %v", err)
	}
	if trail.Len() != 1 {
		t.Errorf("got trail length %d, want 1", trail.Len())
	}
}

func TestOrchestrator_ContextCancelled(t *testing.T) {
	fs, idx := newTestWorkspace(t, testPackage{name: "a", version: "1.0.0"})
	orch := newTestOrchestrator(fs, &fakeRegistry{}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trail, err := orch.Run(ctx, resolve(t, idx, "a"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if trail.Len() != 0 {
		t.Errorf("got trail length %d, want 0", trail.Len())
	}
}

func TestProperty_OrchestratorInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 7).Draw(t, "n")
		pkgs := make([]workspace.Package, n)
		blacklist := make(map[string]bool)
		var blacklistNames []string

		for i := range n {
			name := fmt.Sprintf("p%d", i)
			var deps []string
			for j := range n {
				if j != i && rapid.Bool().Draw(t, fmt.Sprintf("dep-%d-%d", i, j)) {
					deps = append(deps, fmt.Sprintf("p%d", j))
				}
			}
			pkgs[i] = workspace.Package{
				PackageInfo:  workspace.PackageInfo{Name: name, Version: fmt.Sprintf("%d.0.0", i+1), Path: "/" + name},
				Dependencies: deps,
			}
			if rapid.Bool().Draw(t, "blacklisted-"+name) {
				blacklist[name] = true
				blacklistNames = append(blacklistNames, name)
			}
		}

		idx, err := workspace.NewIndex(pkgs)
		if err != nil {
			t.Fatalf("NewIndex: %v", err)
		}

		order := rapid.SliceOfNDistinct(rapid.IntRange(0, n-1), 1, n, rapid.ID[int]).Draw(t, "changed")
		var changedNames []string
		for _, i := range order {
			changedNames = append(changedNames, fmt.Sprintf("p%d", i))
		}
		changed, err := workspace.ResolveChanged(idx, changedNames)
		if err != nil {
			t.Fatalf("ResolveChanged: %v", err)
		}

		cascade := rapid.Bool().Draw(t, "cascade")
		editor := newRecordingEditor()
		registry := &fakeRegistry{}
		orch := NewOrchestrator(
			NewPublisher(semver.NewCalculator(semver.Patch, nil, nil), editor, registry, nil),
			editor,
			Options{Cascade: cascade, Blacklist: blacklistNames},
			nil,
		)

		trail, err := orch.Run(context.Background(), changed)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		expected := make(map[string]bool)
		for _, entry := range changed {
			if blacklist[entry.Name] {
				continue
			}
			expected[entry.Name] = true
			if !cascade {
				continue
			}
			for _, dep := range entry.Dependents {
				if !blacklist[dep.Name] {
					expected[dep.Name] = true
				}
			}
		}

		seen := make(map[string]bool)
		for _, rec := range trail.Records() {
			if seen[rec.Name] {
				t.Fatalf("%s published twice", rec.Name)
			}
			seen[rec.Name] = true
			if blacklist[rec.Name] {
				t.Fatalf("blacklisted %s published", rec.Name)
			}
			if !expected[rec.Name] {
				t.Fatalf("%s published unexpectedly", rec.Name)
			}
		}
		if len(seen) != len(expected) {
			t.Fatalf("published %d packages, want %d", len(seen), len(expected))
		}

		for name := range blacklist {
			if _, ok := editor.own["/"+name]; ok {
				t.Fatalf("blacklisted %s had its version rewritten", name)
			}
			if _, ok := editor.deps["/"+name]; ok {
				t.Fatalf("blacklisted %s had a dependency rewritten", name)
			}
		}

		if !cascade && len(editor.deps) != 0 {
			t.Fatalf("dependency rewrites without cascade: %v", editor.deps)
		}
	})
}
