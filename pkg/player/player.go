// Package player runs section clips through an external video player and
// adapts the player process to the scheduler's playback-source handle:
// process exit is the clip-ended signal.
package player

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/proofdeck/proofdeck/pkg/debug"
	"github.com/proofdeck/proofdeck/pkg/playback"
)

// Handle plays one clip through an external player process. A Handle is
// created per section render and released when the section changes; it
// implements playback.Source.
type Handle struct {
	command []string
	media   string

	mu      sync.Mutex
	cmd     *exec.Cmd
	started bool
	ended   bool
	nextID  int
	waiters map[int]func()
}

var _ playback.Source = (*Handle)(nil)

// New creates a handle for one clip. command is the player argv prefix
// (e.g. ["mpv", "--really-quiet"]); the media path is appended.
func New(command []string, media string) *Handle {
	return &Handle{
		command: command,
		media:   media,
		waiters: make(map[int]func()),
	}
}

// Media returns the clip path this handle plays.
func (h *Handle) Media() string {
	return h.media
}

// Available reports whether the configured player binary exists on PATH.
func (h *Handle) Available() bool {
	if len(h.command) == 0 {
		return false
	}
	_, err := exec.LookPath(h.command[0])
	return err == nil
}

// Play starts the player process. Starting an already-running or finished
// clip is a no-op. Spawn failures are returned but callers are expected to
// swallow them; the dwell timer covers a clip that never starts.
func (h *Handle) Play() error {
	h.mu.Lock()
	if h.started || h.ended {
		h.mu.Unlock()
		return nil
	}
	if len(h.command) == 0 || h.media == "" {
		h.mu.Unlock()
		// Ends through finish so already-registered listeners still fire.
		h.finish()
		return fmt.Errorf("no player configured")
	}

	args := append(append([]string{}, h.command[1:]...), h.media)
	cmd := exec.Command(h.command[0], args...)
	if err := cmd.Start(); err != nil {
		h.mu.Unlock()
		h.finish()
		return fmt.Errorf("cannot start player: %w", err)
	}
	h.cmd = cmd
	h.started = true
	h.mu.Unlock()

	debug.Log("player: playing %s", h.media)
	go func() {
		err := cmd.Wait()
		if err != nil {
			debug.Log("player: %s: %v", h.media, err)
		}
		h.finish()
	}()
	return nil
}

// Playing reports whether the clip is currently running.
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started && !h.ended
}

// Ended reports whether the clip has finished (or could never start).
func (h *Handle) Ended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ended
}

// OnEnded registers fn to run once when the clip finishes. If the clip has
// already ended, fn runs immediately. The returned cancel detaches the
// listener and is safe to call after the signal fired.
func (h *Handle) OnEnded(fn func()) (cancel func()) {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		fn()
		return func() {}
	}
	id := h.nextID
	h.nextID++
	h.waiters[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.waiters, id)
		h.mu.Unlock()
	}
}

// Release stops the player process if it is still running and drops all
// listeners without firing them. Called when the owning section is replaced
// or the viewer is torn down.
func (h *Handle) Release() {
	h.mu.Lock()
	h.waiters = make(map[int]func())
	cmd := h.cmd
	running := h.started && !h.ended
	h.mu.Unlock()

	if running && cmd != nil && cmd.Process != nil {
		if err := cmd.Process.Kill(); err != nil {
			debug.Log("player: kill: %v", err)
		}
	}
}

// finish marks the clip ended and fires the registered listeners exactly
// once each.
func (h *Handle) finish() {
	h.mu.Lock()
	if h.ended {
		h.mu.Unlock()
		return
	}
	h.ended = true
	fns := make([]func(), 0, len(h.waiters))
	for _, fn := range h.waiters {
		fns = append(fns, fn)
	}
	h.waiters = make(map[int]func())
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
