// Package ui is the Bubble Tea front end for pv: a proof picker, the
// walkthrough viewer, and a definitions browser. All playback semantics
// live in pkg/playback; this package renders projections and translates
// key presses into state operations.
package ui

import (
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/proofdeck/proofdeck/pkg/align"
	"github.com/proofdeck/proofdeck/pkg/config"
	"github.com/proofdeck/proofdeck/pkg/debug"
	"github.com/proofdeck/proofdeck/pkg/loader"
	"github.com/proofdeck/proofdeck/pkg/model"
	"github.com/proofdeck/proofdeck/pkg/playback"
	"github.com/proofdeck/proofdeck/pkg/player"
	"github.com/proofdeck/proofdeck/pkg/route"
	"github.com/proofdeck/proofdeck/pkg/watcher"
)

// focus represents which surface has keyboard focus.
type focus int

const (
	focusPicker focus = iota
	focusViewer
	focusDefs
)

// PlaybackChangedMsg is sent when the playback state emits a step change.
type PlaybackChangedMsg struct {
	Change playback.Change
}

// ClaimNavMsg is sent when a selected claim is backed by a different proof.
type ClaimNavMsg struct {
	TargetProofID string
}

// ManifestChangedMsg is sent when the proofs manifest changes on disk.
type ManifestChangedMsg struct{}

// session owns the playback machinery for one open proof. Opening another
// proof (or returning to the picker) discards the whole session: state,
// scheduler bindings, and the running clip.
type session struct {
	item   model.Item
	al     align.Alignment
	st     *playback.State
	sched  *playback.Scheduler
	bridge *route.Bridge
	handle *player.Handle
	navCh  chan string
}

// source adapts the handle for the scheduler. The nil handle must become an
// untyped nil so the scheduler's no-source check sees it and arms the dwell
// timer instead of dereferencing.
func (s *session) source() playback.Source {
	if s.handle == nil {
		return nil
	}
	return s.handle
}

// teardown stops autoplay and the running clip. Must leave no timer or
// listener behind; a late callback from a dead session must be a no-op.
func (s *session) teardown() {
	if s == nil {
		return
	}
	s.sched.Stop()
	if s.handle != nil {
		s.handle.Release()
		s.handle = nil
	}
}

// Model is the main Bubble Tea model for pv.
type Model struct {
	cfg     config.Config
	dataDir string
	catalog loader.Catalog
	store   route.Store
	watcher *watcher.Watcher
	loadErr string

	picker   list.Model
	defs     list.Model
	viewport viewport.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
	md       *MarkdownRenderer

	sess    *session
	focused focus
	width   int
	height  int
	ready   bool
	status  string
}

// Options configures the initial Model.
type Options struct {
	Config  config.Config
	Catalog loader.Catalog
	// LoadErr is a display-only manifest load error; the viewer still runs
	// with an empty catalog.
	LoadErr string
	Store   route.Store
	Watcher *watcher.Watcher
	// InitialRoute deep-links straight into a proof. Zero means start on
	// the picker, resuming the persisted route when one exists.
	InitialRoute route.Route
}

// NewModel builds the viewer model.
func NewModel(opts Options) Model {
	m := Model{
		cfg:      opts.Config,
		dataDir:  opts.Config.ResolveDataDir(),
		catalog:  opts.Catalog,
		store:    opts.Store,
		watcher:  opts.Watcher,
		loadErr:  opts.LoadErr,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     defaultKeyMap(),
		md:       NewMarkdownRenderer(opts.Config.UI.WordWrap),
	}
	if m.store == nil {
		m.store = route.NewMemoryStore()
	}

	m.picker = newPickerList("Proofs", proofItems(m.catalog.Proofs))
	m.defs = newPickerList("Definitions", definitionItems(m.catalog.Definitions))

	start := opts.InitialRoute
	if start.IsZero() {
		// Resume where the last session left off.
		if r, ok, err := m.store.Current(); err == nil && ok {
			start = r
		}
	}
	if !start.IsZero() {
		m.openProof(start.ProofID, start.Step)
	}
	return m
}

func newPickerList(title string, items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	return l
}

func proofItems(m model.Manifest) []list.Item {
	items := make([]list.Item, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, ProofItem{Item: it})
	}
	return items
}

func definitionItems(m model.DefinitionsManifest) []list.Item {
	items := make([]list.Item, 0, len(m.Items))
	for _, d := range m.Items {
		items = append(items, DefinitionItem{Def: d})
	}
	return items
}

// Session returns the active session's state, or nil. Exposed for tests.
func (m *Model) Session() *playback.State {
	if m.sess == nil {
		return nil
	}
	return m.sess.st
}

// openProof builds a fresh session for the proof, discarding any previous
// one. step is the 1-based deep-link step; 0 opens on the intro screen.
func (m *Model) openProof(proofID string, step int) bool {
	item, found := m.catalog.Proofs.FindItem(proofID)
	if !found {
		debug.Log("ui: proof %q not in manifest", proofID)
		return false
	}

	m.sess.teardown()

	al := align.Align(item.Proof.Steps, item.Sections)
	st := playback.New(item.ID())
	st.SetCount(al.EffectiveStepCount)

	targets := make(map[string]string, len(item.Proof.Claims))
	for _, c := range item.Proof.Claims {
		targets[c.ID] = c.TargetProofID(item.ID())
	}
	st.SetClaims(item.Proof.ActiveClaimID, targets)

	sess := &session{
		item:  item,
		al:    al,
		st:    st,
		navCh: make(chan string, 1),
	}
	sess.sched = playback.NewScheduler(st, playback.WithDwell(m.cfg.Dwell()))
	sess.bridge = route.NewBridge(m.store, st)
	st.SetClaimNav(func(target string) {
		select {
		case sess.navCh <- target:
		default:
		}
	})

	if step > 0 {
		st.SetPending(step - 1)
		sess.bridge.DataLoaded()
	}

	m.sess = sess
	m.focused = focusViewer
	m.refreshViewer()
	m.refreshClip()
	return true
}

// closeSession returns to the picker, discarding the playback session.
func (m *Model) closeSession() {
	m.sess.teardown()
	m.sess = nil
	m.focused = focusPicker
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watcher != nil {
		cmds = append(cmds, watchManifestCmd(m.watcher))
	}
	if m.sess != nil {
		cmds = append(cmds, waitPlaybackCmd(m.sess), waitClaimNavCmd(m.sess))
		if m.cfg.Playback.Autoplay {
			if m.sess.sched.Start() {
				m.sess.sched.Bind(m.sess.source())
			}
		}
	}
	return tea.Batch(cmds...)
}

// watchManifestCmd waits for a manifest change notification.
func watchManifestCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return ManifestChangedMsg{}
	}
}

// waitPlaybackCmd waits for the next step-change notification of a session.
func waitPlaybackCmd(s *session) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-s.st.Changes()
		if !ok {
			return nil
		}
		return PlaybackChangedMsg{Change: c}
	}
}

// waitClaimNavCmd waits for a cross-proof claim navigation request.
func waitClaimNavCmd(s *session) tea.Cmd {
	return func() tea.Msg {
		target, ok := <-s.navCh
		if !ok {
			return nil
		}
		return ClaimNavMsg{TargetProofID: target}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case PlaybackChangedMsg:
		if m.sess == nil {
			return m, nil
		}
		m.refreshViewer()
		m.refreshClip()
		return m, waitPlaybackCmd(m.sess)

	case ClaimNavMsg:
		return m.handleClaimNav(msg.TargetProofID)

	case ManifestChangedMsg:
		m.reloadCatalog()
		var cmd tea.Cmd
		if m.watcher != nil {
			cmd = watchManifestCmd(m.watcher)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focused {
	case focusPicker:
		m.picker, cmd = m.picker.Update(msg)
	case focusDefs:
		m.defs, cmd = m.defs.Update(msg)
	case focusViewer:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filtering lists swallow everything except escape.
	if m.focused == focusPicker && m.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	if m.focused == focusDefs && m.defs.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.defs, cmd = m.defs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.sess.teardown()
		if m.watcher != nil {
			m.watcher.Stop()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.focused {
	case focusPicker:
		return m.handlePickerKey(msg)
	case focusDefs:
		return m.handleDefsKey(msg)
	default:
		return m.handleViewerKey(msg)
	}
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Start):
		if it, ok := m.picker.SelectedItem().(ProofItem); ok {
			if m.openProof(it.Item.ID(), 0) {
				return m, tea.Batch(waitPlaybackCmd(m.sess), waitClaimNavCmd(m.sess))
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Defs):
		if len(m.catalog.Definitions.Items) > 0 {
			m.focused = focusDefs
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleDefsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Defs) {
		m.focused = focusPicker
		return m, nil
	}
	var cmd tea.Cmd
	m.defs, cmd = m.defs.Update(msg)
	return m, cmd
}

func (m Model) handleViewerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		m.focused = focusPicker
		return m, nil
	}
	s := m.sess

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.closeSession()
		return m, nil

	case key.Matches(msg, m.keys.Start):
		s.sched.Stop()
		if !s.st.Started() {
			s.st.Start(0)
		} else {
			s.st.StepBy(1)
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		s.sched.Stop()
		s.st.StepBy(1)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		s.sched.Stop()
		s.st.StepBy(-1)
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		s.sched.Stop()
		s.st.Restart()
		return m, nil

	case key.Matches(msg, m.keys.Autoplay):
		if s.sched.Running() {
			s.sched.Stop()
		} else if s.sched.Start() {
			s.sched.Bind(s.source())
		}
		return m, nil

	case key.Matches(msg, m.keys.Claim):
		m.cycleClaim()
		return m, nil

	case key.Matches(msg, m.keys.CopyLink):
		link := DeepLink(s.st.ProofID(), s.st.Index(), s.st.Started())
		if err := clipboard.WriteAll(link); err != nil {
			m.status = "clipboard unavailable"
		} else {
			m.status = "copied: " + link
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if r, ok, err := m.store.Back(); err == nil && ok {
			m.applyExternalRoute(r)
		}
		return m, nil

	case key.Matches(msg, m.keys.Forward):
		if r, ok, err := m.store.Forward(); err == nil && ok {
			m.applyExternalRoute(r)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// cycleClaim activates the next claim in manifest order. A claim backed by
// another proof triggers ClaimNavMsg via the session's nav channel.
func (m *Model) cycleClaim() {
	s := m.sess
	claims := s.item.Proof.Claims
	if len(claims) < 2 {
		return
	}
	active := s.st.ActiveClaimID()
	next := claims[0]
	for i, c := range claims {
		if c.ID == active {
			next = claims[(i+1)%len(claims)]
			break
		}
	}
	s.st.SelectClaim(next.ID)
	m.refreshViewer()
}

// handleClaimNav loads the proof backing the selected claim and restarts
// playback there at the first step. The navigation is published before the
// switch so back returns to the proof the claim was chosen from.
func (m Model) handleClaimNav(target string) (tea.Model, tea.Cmd) {
	if m.sess == nil {
		return m, nil
	}
	m.sess.bridge.PublishClaimNav(target)
	if !m.openProof(target, 1) {
		m.status = fmt.Sprintf("claim target %q not found", target)
		return m, nil
	}
	m.sess.st.Start(0)
	return m, tea.Batch(waitPlaybackCmd(m.sess), waitClaimNavCmd(m.sess))
}

// applyExternalRoute feeds a back/forward route into the session. External
// values apply silently, so no Changes notification arrives; refresh
// explicitly.
func (m *Model) applyExternalRoute(r route.Route) {
	if m.sess == nil || r.ProofID != m.sess.st.ProofID() {
		m.sess.teardown()
		if !m.openProof(r.ProofID, r.Step) {
			m.closeSession()
		}
		return
	}
	m.sess.sched.Stop()
	m.sess.bridge.ApplyExternal(r)
	m.refreshViewer()
	m.refreshClip()
}

// reloadCatalog re-reads both manifests after a change on disk. The open
// session survives when its proof still exists; alignment and step count
// are recomputed and the position re-clamped.
func (m *Model) reloadCatalog() {
	cat, err := loader.LoadCatalog(m.dataDir)
	if err != nil {
		m.loadErr = err.Error()
		return
	}
	m.loadErr = ""
	m.catalog = cat
	m.picker.SetItems(proofItems(cat.Proofs))
	m.defs.SetItems(definitionItems(cat.Definitions))

	if m.sess == nil {
		return
	}
	item, found := cat.Proofs.FindItem(m.sess.st.ProofID())
	if !found {
		m.closeSession()
		return
	}
	m.sess.item = item
	m.sess.al = align.Align(item.Proof.Steps, item.Sections)
	m.sess.st.SetCount(m.sess.al.EffectiveStepCount)
	m.refreshViewer()
}

// refreshClip restarts the external player for the active section and
// rebinds the scheduler. The old handle is always released first; its
// ended signal must not advance the new clip.
func (m *Model) refreshClip() {
	s := m.sess
	if s == nil {
		return
	}
	if s.handle != nil {
		s.handle.Release()
		s.handle = nil
	}

	v := playback.Project(s.st, s.item.Proof, s.al)
	if v.ActiveSection != nil && s.st.Started() {
		if media := v.ActiveSection.MediaPath(); media != "" {
			path := filepath.Join(m.dataDir, media)
			s.handle = player.New(m.cfg.Player.Command, path)
			if err := s.handle.Play(); err != nil {
				// Playback start failure is not fatal; autoplay falls back
				// to the dwell timer.
				debug.Log("ui: %v", err)
			}
		}
	}
	s.sched.Bind(s.source())
}

// DeepLink renders the shareable command line reproducing a position.
func DeepLink(proofID string, index int, started bool) string {
	if !started {
		return fmt.Sprintf("pv --proof %s", proofID)
	}
	return fmt.Sprintf("pv --proof %s --step %d", proofID, index+1)
}
