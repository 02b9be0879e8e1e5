// Command pv is a terminal viewer for pre-rendered proof walkthroughs.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/proofdeck/proofdeck/internal/history"
	"github.com/proofdeck/proofdeck/pkg/align"
	"github.com/proofdeck/proofdeck/pkg/config"
	"github.com/proofdeck/proofdeck/pkg/debug"
	"github.com/proofdeck/proofdeck/pkg/export"
	"github.com/proofdeck/proofdeck/pkg/loader"
	"github.com/proofdeck/proofdeck/pkg/route"
	"github.com/proofdeck/proofdeck/pkg/ui"
	"github.com/proofdeck/proofdeck/pkg/version"
	"github.com/proofdeck/proofdeck/pkg/watcher"
)

func main() {
	dataDir := flag.String("data", "", "Data directory holding the proofs and definitions manifests")
	proofID := flag.String("proof", "", "Open this proof directly (deep link)")
	step := flag.Int("step", 0, "1-based step to open at (with --proof)")
	autoplay := flag.Bool("autoplay", false, "Start autoplaying immediately")
	noHistory := flag.Bool("no-history", false, "Do not persist navigation history")
	robotList := flag.Bool("robot-list", false, "Print the proof catalog as plain text and exit")
	robotShow := flag.String("robot-show", "", "Print one proof's steps as plain text and exit")
	robotLint := flag.Bool("robot-lint", false, "Report authoring problems in the manifest and exit")
	exportOutline := flag.String("export-outline", "", "Write an SVG outline card for the given proof and exit")
	outPath := flag.String("o", "", "Output path for --export-outline (default <proof>.svg)")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Println("pv", version.Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *autoplay {
		cfg.Playback.Autoplay = true
	}

	cat, loadErr := loader.LoadCatalog(cfg.ResolveDataDir())

	switch {
	case *robotList:
		exitOn(loadErr)
		robotListProofs(cat)
		return
	case *robotShow != "":
		exitOn(loadErr)
		exitOn(robotShowProof(cat, *robotShow))
		return
	case *robotLint:
		exitOn(loadErr)
		os.Exit(lintCatalog(cat))
	case *exportOutline != "":
		exitOn(loadErr)
		exitOn(writeOutline(cat, *exportOutline, *outPath))
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "pv: stdout is not a terminal (use --robot-list or --robot-show for scripted output)")
		os.Exit(1)
	}

	var store route.Store
	if !*noHistory {
		if hs, err := history.Open(config.HistoryPath()); err == nil {
			defer hs.Close()
			store = hs
		} else {
			debug.Log("main: history unavailable: %v", err)
		}
	}
	if store == nil {
		store = route.NewMemoryStore()
	}

	var w *watcher.Watcher
	if cat.ProofsPath != "" {
		if w, err = watcher.New(cat.ProofsPath); err == nil {
			if err := w.Start(); err != nil {
				debug.Log("main: watcher: %v", err)
				w = nil
			}
		}
	}

	opts := ui.Options{
		Config:  cfg,
		Catalog: cat,
		Store:   store,
		Watcher: w,
	}
	if loadErr != nil {
		opts.LoadErr = loadErr.Error()
	}
	if *proofID != "" {
		opts.InitialRoute = route.Route{ProofID: *proofID, Step: *step}
	}

	p := tea.NewProgram(ui.NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func robotListProofs(cat loader.Catalog) {
	for _, it := range cat.Proofs.Items {
		al := align.Align(it.Proof.Steps, it.Sections)
		line := fmt.Sprintf("%s\t%s\t%d steps", it.ID(), it.Title(), al.EffectiveStepCount)
		if chips := it.Tags.Chips(); len(chips) > 0 {
			line += "\t" + strings.Join(chips, ",")
		}
		fmt.Println(line)
	}
}

func robotShowProof(cat loader.Catalog, id string) error {
	it, ok := cat.Proofs.FindItem(id)
	if !ok {
		return fmt.Errorf("proof %q not found", id)
	}
	fmt.Println(it.Title())
	if s := strings.TrimSpace(it.Proof.Statement); s != "" {
		fmt.Println(s)
	}
	fmt.Println()
	for i, step := range it.Proof.Steps {
		title := step.Title
		if title != "" {
			title = " " + title
		}
		fmt.Printf("%d.%s\n", i+1, title)
		fmt.Println("   " + strings.Join(strings.Fields(step.Statement), " "))
		if step.Justification != "" {
			fmt.Println("   [" + step.Justification + "]")
		}
	}
	return nil
}

// lintCatalog reports authoring problems the viewer otherwise papers over:
// step/section length mismatches (playback silently clamps to the shorter
// sequence) and proofs with nothing to play. Returns a non-zero exit code
// when any problem is found.
func lintCatalog(cat loader.Catalog) int {
	problems := 0
	for _, it := range cat.Proofs.Items {
		al := align.Align(it.Proof.Steps, it.Sections)
		if align.Truncated(it.Proof.Steps, al) {
			fmt.Printf("%s: %d steps vs %d playable sections (tail unreachable)\n",
				it.ID(), len(it.Proof.Steps), len(al.Playable))
			problems++
		}
		if al.EffectiveStepCount == 0 {
			fmt.Printf("%s: nothing to play (no steps and no sections)\n", it.ID())
			problems++
		}
		for _, c := range it.Proof.Claims {
			target := c.TargetProofID(it.ID())
			if _, ok := cat.Proofs.FindItem(target); !ok {
				fmt.Printf("%s: claim %s targets unknown proof %q\n", it.ID(), c.ID, target)
				problems++
			}
		}
	}
	if problems > 0 {
		return 1
	}
	return 0
}

func writeOutline(cat loader.Catalog, id, out string) error {
	it, ok := cat.Proofs.FindItem(id)
	if !ok {
		return fmt.Errorf("proof %q not found", id)
	}
	if out == "" {
		out = it.ID() + ".svg"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", out, err)
	}
	defer f.Close()
	if err := export.WriteOutline(f, it); err != nil {
		return err
	}
	fmt.Println("wrote", out)
	return nil
}
