package editor

import (
	"strings"
	"sync"
)

// Workspace keeps one Editor per operator address. A draft outlives the
// session it was started in, so signing in again picks it back up.
type Workspace struct {
	mu      sync.Mutex
	deps    Deps
	editors map[string]*Editor
}

func NewWorkspace(deps Deps) *Workspace {
	return &Workspace{deps: deps, editors: map[string]*Editor{}}
}

func ownerKey(owner string) string {
	return strings.ToLower(strings.TrimSpace(owner))
}

// For returns the operator's editor, creating it on first use.
func (w *Workspace) For(owner string) *Editor {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := ownerKey(owner)
	e, ok := w.editors[key]
	if !ok {
		e = New(w.deps)
		w.editors[key] = e
	}
	return e
}

// Drop discards an operator's editor and its draft.
func (w *Workspace) Drop(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := ownerKey(owner)
	if e, ok := w.editors[key]; ok {
		e.Cancel()
		delete(w.editors, key)
	}
}

func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.editors)
}
