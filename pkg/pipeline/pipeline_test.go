package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/juruladenbam/bam-sub000/pkg/cache"
	errs "github.com/juruladenbam/bam-sub000/pkg/errors"
	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/kinship"
	"github.com/juruladenbam/bam-sub000/pkg/observability"
	"github.com/juruladenbam/bam-sub000/pkg/store"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// twoClans has Bani Harjo (branch 1) and Bani Karto (branch 2). Budi of
// Harjo married Sari of Karto; Sumi married in from outside.
func twoClans() *family.Dataset {
	id := func(v family.ID) *family.ID { return &v }
	return &family.Dataset{
		Branches: []family.Branch{
			{ID: 99, Name: "Menantu", Order: 99},
			{ID: 2, Name: "Bani Karto", Order: 2},
			{ID: 1, Name: "Bani Harjo", Order: 1},
		},
		Persons: []family.Person{
			{ID: 1, FullName: "Harjo", Gender: family.Male, BranchID: 1},
			{ID: 2, FullName: "Sumi", Gender: family.Female, BranchID: 99},
			{ID: 3, FullName: "Budi", Gender: family.Male, BranchID: 1, Generation: 1, IsAlive: true},
			{ID: 4, FullName: "Sari", Gender: family.Female, BranchID: 2, Generation: 1, IsAlive: true},
			{ID: 5, FullName: "Dewi", Gender: family.Female, BranchID: 1, Generation: 2, IsAlive: true},
			{ID: 6, FullName: "Karto", Gender: family.Male, BranchID: 2},
		},
		Marriages: []family.Marriage{
			{ID: 10, HusbandID: 1, WifeID: 2, IsActive: true},
			{ID: 11, HusbandID: 3, WifeID: 4, IsActive: true},
		},
		Links: []family.ParentChildLink{
			{ChildID: 3, MarriageID: id(10)},
			{ChildID: 4, FatherID: id(6)},
			{ChildID: 5, MarriageID: id(11)},
		},
	}
}

func newTestRunner(t *testing.T, ds *family.Dataset) *Runner {
	t.Helper()
	c, err := cache.NewLRUCache(64)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(store.NewMemoryStore(ds), c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func personIDs(persons []family.Person) []family.ID {
	out := make([]family.ID, len(persons))
	for i, p := range persons {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []family.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// Validation
// =============================================================================

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"pdf", false},
		{"png", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errs.Is(err, errs.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errs.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

// =============================================================================
// Branch Selection
// =============================================================================

func TestSelectBranch(t *testing.T) {
	ds := twoClans()
	tests := []struct {
		branch     family.ID
		persons    []family.ID
		ghosts     []family.ID
		marriages  int
		links      int
		wantBranch string
	}{
		{branch: 1, persons: []family.ID{1, 2, 3, 4, 5}, ghosts: []family.ID{4}, marriages: 2, links: 3, wantBranch: "Bani Harjo"},
		{branch: 2, persons: []family.ID{3, 4, 6}, ghosts: []family.ID{3}, marriages: 1, links: 2, wantBranch: "Bani Karto"},
	}
	for _, tt := range tests {
		sel, err := SelectBranch(ds, tt.branch)
		if err != nil {
			t.Fatalf("SelectBranch(%d): %v", tt.branch, err)
		}
		if got := personIDs(sel.Persons); !equalIDs(got, tt.persons) {
			t.Errorf("branch %d persons = %v, want %v", tt.branch, got, tt.persons)
		}
		if !equalIDs(sel.Ghosts, tt.ghosts) {
			t.Errorf("branch %d ghosts = %v, want %v", tt.branch, sel.Ghosts, tt.ghosts)
		}
		if len(sel.Marriages) != tt.marriages || len(sel.Links) != tt.links {
			t.Errorf("branch %d: %d marriages, %d links", tt.branch, len(sel.Marriages), len(sel.Links))
		}
		if sel.Branch.Name != tt.wantBranch {
			t.Errorf("branch %d name = %q", tt.branch, sel.Branch.Name)
		}
	}
}

func TestSelectBranchErrors(t *testing.T) {
	ds := twoClans()
	if _, err := SelectBranch(ds, 42); !errs.Is(err, errs.ErrCodeBranchNotFound) {
		t.Errorf("unknown branch error = %v", err)
	}
	if _, err := SelectBranch(ds, 99); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("external branch error = %v", err)
	}
}

func TestSelectBranchWithoutBranchRecords(t *testing.T) {
	ds := twoClans()
	ds.Branches = nil
	sel, err := SelectBranch(ds, 1)
	if err != nil {
		t.Fatalf("SelectBranch: %v", err)
	}
	// Without branch records no branch is external, so Sumi (99) is a ghost.
	if !equalIDs(sel.Ghosts, []family.ID{2, 4}) {
		t.Errorf("ghosts = %v", sel.Ghosts)
	}
}

// =============================================================================
// Runner
// =============================================================================

func TestRunnerBranches(t *testing.T) {
	r := newTestRunner(t, twoClans())
	got, err := r.Branches(context.Background())
	if err != nil {
		t.Fatalf("Branches: %v", err)
	}
	want := []BranchSummary{
		{ID: 1, Name: "Bani Harjo", Order: 1, Persons: 3},
		{ID: 2, Name: "Bani Karto", Order: 2, Persons: 2},
		{ID: 99, Name: "Menantu", Order: 99, External: true, Persons: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("Branches = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Branches[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRunnerLayout(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, twoClans())

	first, err := r.Layout(ctx, LayoutOptions{BranchID: 1})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if first.CacheHit {
		t.Error("first layout should miss the cache")
	}
	if n := first.Layout.PersonCount(); n != 5 {
		t.Errorf("PersonCount = %d, want 5", n)
	}
	node, ok := first.Layout.PersonNode(4)
	if !ok {
		t.Fatal("ghost spouse missing from layout")
	}
	if p, _ := node.Person(); !p.Ghost {
		t.Error("spouse from another clan should be a ghost")
	}
	inLaw, _ := first.Layout.PersonNode(2)
	if p, _ := inLaw.Person(); p.Ghost {
		t.Error("in-law should not be a ghost")
	}

	second, err := r.Layout(ctx, LayoutOptions{BranchID: 1})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if !second.CacheHit {
		t.Error("second layout should hit the cache")
	}
	if second.Hash != first.Hash {
		t.Error("cached layout should hash identically")
	}
	if len(second.Layout.Nodes) != len(first.Layout.Nodes) {
		t.Errorf("cached layout has %d nodes, want %d", len(second.Layout.Nodes), len(first.Layout.Nodes))
	}

	refreshed, err := r.Layout(ctx, LayoutOptions{BranchID: 1, Refresh: true})
	if err != nil || refreshed.CacheHit {
		t.Errorf("refresh: hit=%v err=%v", refreshed.CacheHit, err)
	}

	wide := treelayout.DefaultOptions()
	wide.NodeWidth = 300
	other, err := r.Layout(ctx, LayoutOptions{BranchID: 1, Geometry: &wide})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if other.CacheHit {
		t.Error("different geometry should not share a cache entry")
	}
	if n, _ := other.Layout.PersonNode(1); n.Width != 300 {
		t.Errorf("node width = %v, want 300", n.Width)
	}
}

func TestRunnerLayoutUnknownBranch(t *testing.T) {
	r := newTestRunner(t, twoClans())
	_, err := r.Layout(context.Background(), LayoutOptions{BranchID: 42})
	if !errs.Is(err, errs.ErrCodeBranchNotFound) {
		t.Errorf("error = %v, want BRANCH_NOT_FOUND", err)
	}
}

func TestRunnerRelationship(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, twoClans())

	rel, err := r.Relationship(ctx, 5, 1)
	if err != nil {
		t.Fatalf("Relationship: %v", err)
	}
	if rel.Kind != kinship.KindGrandchild {
		t.Errorf("Kind = %s, want grandchild", rel.Kind)
	}
	if rel.PersonA.FullName != "Dewi" || rel.PersonB.FullName != "Harjo" {
		t.Errorf("persons = %+v / %+v", rel.PersonA, rel.PersonB)
	}
	if rel.CacheHit {
		t.Error("first call should miss the cache")
	}

	again, err := r.Relationship(ctx, 5, 1)
	if err != nil {
		t.Fatalf("Relationship: %v", err)
	}
	if !again.CacheHit || again.Kind != rel.Kind || again.Label != rel.Label {
		t.Errorf("cached relationship = %+v", again)
	}

	// Different clans connected only by marriage.
	inLaw, err := r.Relationship(ctx, 6, 1)
	if err != nil {
		t.Fatalf("Relationship: %v", err)
	}
	if inLaw.Kind != kinship.KindUnknown || inLaw.DistanceA != kinship.Unreachable {
		t.Errorf("unrelated = %s %d", inLaw.Kind, inLaw.DistanceA)
	}
}

func TestRunnerRelationshipMissingPerson(t *testing.T) {
	r := newTestRunner(t, twoClans())
	_, err := r.Relationship(context.Background(), 5, 404)
	if !errs.Is(err, errs.ErrCodePersonNotFound) {
		t.Errorf("error = %v, want PERSON_NOT_FOUND", err)
	}
}

func TestRunnerRender(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t, twoClans())
	lr, err := r.Layout(ctx, LayoutOptions{BranchID: 1})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := r.Render(ctx, lr, RenderOptions{Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	decoded, err := treelayout.Decode(artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(decoded.Nodes) != len(lr.Layout.Nodes) {
		t.Errorf("json artifact has %d nodes", len(decoded.Nodes))
	}
	dot := string(artifacts[FormatDOT])
	if !strings.HasPrefix(dot, "graph G {") || !strings.Contains(dot, `"person-4"`) {
		t.Errorf("dot artifact:\n%s", dot)
	}

	if _, err := r.Render(ctx, lr, RenderOptions{Formats: []string{"gif"}}); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("invalid format error = %v", err)
	}
}

type failingStore struct{ err error }

func (s failingStore) Snapshot(context.Context) (*family.Dataset, error) { return nil, s.err }
func (s failingStore) Close() error                                     { return nil }

func TestRunnerSnapshotErrors(t *testing.T) {
	ctx := context.Background()

	r := NewRunner(nil, nil, nil, nil)
	if _, err := r.Snapshot(ctx); !errs.Is(err, errs.ErrCodeStoreUnavailable) {
		t.Errorf("nil store error = %v", err)
	}

	boom := errors.New("connection refused")
	r = NewRunner(failingStore{boom}, nil, nil, nil)
	_, err := r.Branches(ctx)
	if !errs.Is(err, errs.ErrCodeStoreUnavailable) || !errors.Is(err, boom) {
		t.Errorf("plain store error = %v", err)
	}

	coded := errs.New(errs.ErrCodeFileNotFound, "missing")
	r = NewRunner(failingStore{coded}, nil, nil, nil)
	if _, err := r.Snapshot(ctx); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("coded store error = %v", err)
	}
}

func TestSnapshotHashIgnoresOrder(t *testing.T) {
	ctx := context.Background()
	a := twoClans()
	b := twoClans()
	b.Persons[0], b.Persons[5] = b.Persons[5], b.Persons[0]

	sa, err := NewRunner(store.NewMemoryStore(a), nil, nil, nil).Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sb, err := NewRunner(store.NewMemoryStore(b), nil, nil, nil).Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sa.Hash != sb.Hash {
		t.Error("record order should not change the snapshot hash")
	}
}

// =============================================================================
// Observability
// =============================================================================

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	layouts []int
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _ int64, nodes int, _ time.Duration, _ error) {
	h.mu.Lock()
	h.layouts = append(h.layouts, nodes)
	h.mu.Unlock()
}

func TestRunnerEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := newTestRunner(t, twoClans())
	lr, err := r.Layout(context.Background(), LayoutOptions{BranchID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(hooks.layouts) != 1 || hooks.layouts[0] != len(lr.Layout.Nodes) {
		t.Errorf("layout hooks = %v", hooks.layouts)
	}
}
