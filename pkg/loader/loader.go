// Package loader locates and parses the proofs and definitions manifests
// written by the render pipeline.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/proofdeck/proofdeck/pkg/debug"
	"github.com/proofdeck/proofdeck/pkg/model"
)

// ProofsManifestNames defines the lookup order for the proofs manifest
// inside the data directory.
var ProofsManifestNames = []string{
	filepath.Join("proofs", "manifest.json"),
	"proofs.json",
	"manifest.json",
}

// DefinitionsManifestNames defines the lookup order for the definitions
// manifest inside the data directory.
var DefinitionsManifestNames = []string{
	filepath.Join("definitions", "manifest.json"),
	"definitions.json",
}

// Catalog is everything the viewer loads at startup.
type Catalog struct {
	Proofs      model.Manifest
	Definitions model.DefinitionsManifest
	// ProofsPath is the resolved manifest file, for the live-reload watcher.
	ProofsPath string
}

// FindManifest resolves the first existing, non-empty candidate under dir.
func FindManifest(dir string, candidates []string) (string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() && info.Size() > 0 {
			return path, nil
		}
	}
	return "", fmt.Errorf("no manifest found in %s", dir)
}

// LoadProofs reads and parses the proofs manifest at path. Sections keep
// manifest order here; the aligner orders them by index. Claims are
// normalized the way the pipeline would.
func LoadProofs(path string) (model.Manifest, error) {
	start := time.Now()
	defer func() { debug.LogTiming("loader.LoadProofs", time.Since(start)) }()

	data, err := os.ReadFile(path)
	if err != nil {
		return model.Manifest{}, fmt.Errorf("cannot read proofs manifest: %w", err)
	}
	var m model.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Manifest{}, fmt.Errorf("cannot parse proofs manifest %s: %w", path, err)
	}
	for i := range m.Items {
		m.Items[i].Proof.Claims = model.NormalizeClaims(m.Items[i].Proof.Claims)
	}
	return m, nil
}

// LoadDefinitions reads and parses the definitions manifest at path.
func LoadDefinitions(path string) (model.DefinitionsManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.DefinitionsManifest{}, fmt.Errorf("cannot read definitions manifest: %w", err)
	}
	var m model.DefinitionsManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return model.DefinitionsManifest{}, fmt.Errorf("cannot parse definitions manifest %s: %w", path, err)
	}
	return m, nil
}

// LoadCatalog loads both manifests from the data directory, in parallel.
// A missing or broken definitions manifest is not fatal: the glossary pane
// just stays empty. A missing proofs manifest is reported as the error
// string the viewer shows; the returned catalog is still usable as the
// empty nothing-to-play state.
func LoadCatalog(dataDir string) (Catalog, error) {
	var cat Catalog

	proofsPath, err := FindManifest(dataDir, ProofsManifestNames)
	if err != nil {
		return cat, fmt.Errorf("proofs manifest: %w", err)
	}
	cat.ProofsPath = proofsPath

	var g errgroup.Group
	g.Go(func() error {
		m, err := LoadProofs(proofsPath)
		if err != nil {
			return err
		}
		cat.Proofs = m
		return nil
	})
	g.Go(func() error {
		path, err := FindManifest(dataDir, DefinitionsManifestNames)
		if err != nil {
			debug.Log("loader: %v", err)
			return nil
		}
		m, err := LoadDefinitions(path)
		if err != nil {
			debug.Log("loader: %v", err)
			return nil
		}
		cat.Definitions = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return Catalog{ProofsPath: proofsPath}, err
	}
	return cat, nil
}
