package loader

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProofs_Testdata(t *testing.T) {
	m, err := LoadProofs(filepath.Join("testdata", "proofs", "manifest.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(m.Items))
	}

	it, ok := m.FindItem("LimitUniqueness")
	if !ok {
		t.Fatal("LimitUniqueness not found")
	}
	if it.Title() != "Uniqueness of Limits" {
		t.Errorf("title: %q", it.Title())
	}
	if len(it.Sections) != 4 || len(it.Proof.Steps) != 3 {
		t.Fatalf("shape: %d sections, %d steps", len(it.Sections), len(it.Proof.Steps))
	}
	if it.Proof.Steps[1].Insight == "" {
		t.Error("step insight lost in parsing")
	}
	if it.Proof.ActiveClaimID != "main" || len(it.Proof.Claims) != 2 {
		t.Fatalf("claims: active=%q n=%d", it.Proof.ActiveClaimID, len(it.Proof.Claims))
	}
	if got := it.Proof.Claims[1].TargetProofID(it.ID()); got != "LimitUniquenessEng" {
		t.Errorf("claim target: %q", got)
	}
	if got := it.Tags.Chips(); len(got) != 3 || got[0] != "3.1" || got[1] != "Ch. 3" {
		t.Errorf("chips: %v", got)
	}
}

func TestLoadProofs_NumericTags(t *testing.T) {
	m, err := LoadProofs(filepath.Join("testdata", "proofs", "manifest.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	it, ok := m.FindItem("DeMorganProof")
	if !ok {
		t.Fatal("DeMorganProof not found")
	}
	// Chapter is authored as a string, number as a bare float.
	if it.Tags.Chapter.String() != "1" {
		t.Errorf("chapter: %q", it.Tags.Chapter)
	}
	if it.Tags.Number.String() != "1.4" {
		t.Errorf("number: %q", it.Tags.Number)
	}
	if len(it.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(it.Sections))
	}
}

func TestLoadDefinitions_Testdata(t *testing.T) {
	m, err := LoadDefinitions(filepath.Join("testdata", "definitions", "manifest.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(m.Items) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(m.Items))
	}
	if m.Items[0].Term != "Limit of a sequence" {
		t.Errorf("term: %q", m.Items[0].Term)
	}
	if m.Items[1].Animation == nil || m.Items[1].Animation.File == "" {
		t.Errorf("animation lost: %+v", m.Items[1].Animation)
	}
}

func TestFindManifest_LookupOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := FindManifest(dir, ProofsManifestNames); err == nil {
		t.Fatal("expected error for empty dir")
	}

	write("manifest.json", `{"items":[]}`)
	got, err := FindManifest(dir, ProofsManifestNames)
	if err != nil || filepath.Base(got) != "manifest.json" {
		t.Fatalf("flat layout: %q err=%v", got, err)
	}

	// The nested layout wins over the flat fallback.
	write(filepath.Join("proofs", "manifest.json"), `{"items":[]}`)
	got, err = FindManifest(dir, ProofsManifestNames)
	if err != nil || got != filepath.Join(dir, "proofs", "manifest.json") {
		t.Fatalf("nested layout: %q err=%v", got, err)
	}

	// Empty files are skipped.
	empty := t.TempDir()
	write2 := filepath.Join(empty, "manifest.json")
	if err := os.WriteFile(write2, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindManifest(empty, ProofsManifestNames); err == nil {
		t.Fatal("empty manifest file should not resolve")
	}
}

func TestLoadCatalog(t *testing.T) {
	cat, err := LoadCatalog("testdata")
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(cat.Proofs.Items) != 3 || len(cat.Definitions.Items) != 2 {
		t.Fatalf("catalog shape: %d proofs, %d definitions",
			len(cat.Proofs.Items), len(cat.Definitions.Items))
	}
	if cat.ProofsPath != filepath.Join("testdata", "proofs", "manifest.json") {
		t.Errorf("proofs path: %q", cat.ProofsPath)
	}
}

func TestLoadCatalog_MissingProofs(t *testing.T) {
	if _, err := LoadCatalog(t.TempDir()); err == nil {
		t.Fatal("expected error without a proofs manifest")
	}
}

func TestLoadProofs_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProofs(path); err == nil {
		t.Fatal("expected parse error")
	}
}
