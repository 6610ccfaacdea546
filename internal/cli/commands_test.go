package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juruladenbam/bam-sub000/pkg/family"
	"github.com/juruladenbam/bam-sub000/pkg/treelayout"
)

// writeFamily stores a small two-generation family and returns its path.
func writeFamily(t *testing.T) string {
	t.Helper()
	id := func(v family.ID) *family.ID { return &v }
	ds := &family.Dataset{
		Branches: []family.Branch{
			{ID: 1, Name: "Bani Harjo", Order: 1},
			{ID: 99, Name: "Menantu", Order: 99},
		},
		Persons: []family.Person{
			{ID: 1, FullName: "Harjo", Gender: family.Male, BranchID: 1},
			{ID: 2, FullName: "Sumi", Gender: family.Female, BranchID: 99},
			{ID: 3, FullName: "Budi", Gender: family.Male, BranchID: 1, Generation: 1, IsAlive: true},
			{ID: 4, FullName: "Wati", Gender: family.Female, BranchID: 1, Generation: 1, IsAlive: true},
		},
		Marriages: []family.Marriage{{ID: 10, HusbandID: 1, WifeID: 2, IsActive: true}},
		Links: []family.ParentChildLink{
			{ChildID: 3, MarriageID: id(10)},
			{ChildID: 4, MarriageID: id(10)},
		},
	}
	path := filepath.Join(t.TempDir(), "family.json")
	if err := family.WriteDatasetFile(ds, path); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.Execute()
	return out.String(), err
}

func TestRelateCommand(t *testing.T) {
	data := writeFamily(t)

	out, err := execute(t, "relate", "3", "1", "--data", data, "--json")
	if err != nil {
		t.Fatalf("relate: %v", err)
	}
	var got struct {
		Relationship string `json:"relationship"`
		Label        string `json:"label"`
		DistanceA    int    `json:"distance_a"`
		DistanceB    int    `json:"distance_b"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Relationship != "child" || got.Label != "Anak laki-laki" {
		t.Errorf("relationship = %+v", got)
	}
	if got.DistanceA != 1 || got.DistanceB != 0 {
		t.Errorf("distances = %d/%d, want 1/0", got.DistanceA, got.DistanceB)
	}
}

func TestRelateCommandTable(t *testing.T) {
	out, err := execute(t, "relate", "4", "3", "--data", writeFamily(t))
	if err != nil {
		t.Fatalf("relate: %v", err)
	}
	for _, want := range []string{"Wati (#4)", "Budi (#3)", "sibling"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRelateCommandErrors(t *testing.T) {
	data := writeFamily(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing person", []string{"relate", "3", "404", "--data", data}},
		{"bad id", []string{"relate", "x", "1", "--data", data}},
		{"wrong arg count", []string{"relate", "3", "--data", data}},
		{"missing data file", []string{"relate", "1", "3", "--data", filepath.Join(t.TempDir(), "none.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLayoutCommand(t *testing.T) {
	data := writeFamily(t)
	output := filepath.Join(t.TempDir(), "harjo.json")

	if _, err := execute(t, "layout", "1", "--data", data, "-o", output); err != nil {
		t.Fatalf("layout: %v", err)
	}
	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	res, err := treelayout.Decode(raw)
	if err != nil {
		t.Fatalf("decode layout: %v", err)
	}
	if res.PersonCount() != 4 {
		t.Errorf("persons = %d, want 4", res.PersonCount())
	}
	if _, ok := res.Node(treelayout.MarriageNodeID(1, 2)); !ok {
		t.Error("marriage node of Harjo and Sumi missing")
	}
}

func TestLayoutCommandStdout(t *testing.T) {
	out, err := execute(t, "layout", "1", "--data", writeFamily(t), "-o", "-")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, `"person-3"`) {
		t.Errorf("stdout layout missing person-3: %.120s", out)
	}
}

func TestLayoutCommandUnknownBranch(t *testing.T) {
	if _, err := execute(t, "layout", "7", "--data", writeFamily(t), "-o", "-"); err == nil {
		t.Error("expected error for unknown branch")
	}
}

func TestRenderCommand(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "harjo")
	if _, err := execute(t, "render", "1", "--data", writeFamily(t), "-f", "dot,json", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"person-1"`) {
		t.Errorf("dot missing person-1:\n%s", dot)
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json output: %v", err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	if _, err := execute(t, "render", "1", "--data", writeFamily(t), "-f", "gif"); err == nil {
		t.Error("expected error for gif")
	}
}

func TestBranchesCommand(t *testing.T) {
	out, err := execute(t, "branches", "--data", writeFamily(t), "--json")
	if err != nil {
		t.Fatalf("branches: %v", err)
	}
	var got []struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		External bool   `json:"external"`
		Persons  int    `json:"persons"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 2 {
		t.Fatalf("branches = %+v", got)
	}
	if got[0].Name != "Bani Harjo" || got[0].Persons != 3 || got[0].External {
		t.Errorf("first branch = %+v", got[0])
	}
	if !got[1].External {
		t.Errorf("Menantu should be external: %+v", got[1])
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestConfigFlag(t *testing.T) {
	data := writeFamily(t)
	cfg := filepath.Join(t.TempDir(), "silsilah.toml")
	body := "[store]\ndriver = \"json\"\npath = " + strconvQuote(data) + "\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfg, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "relate", "1", "3", "--config", cfg, "--json")
	if err != nil {
		t.Fatalf("relate: %v", err)
	}
	if !strings.Contains(out, `"relationship": "parent"`) {
		t.Errorf("relate via config = %s", out)
	}
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
