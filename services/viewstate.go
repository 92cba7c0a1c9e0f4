package services

import (
	"sync"
	"time"
)

// Confirmer is the synchronous yes/no guard asked before destructive
// actions. The browser dialog, a terminal prompt and test fakes all fit
// behind it.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (confirm ConfirmFunc) Confirm(prompt string) bool {
	return confirm(prompt)
}

// viewState is the bookkeeping both dashboard views share: the
// pending-request counter, the persistent error, the transient success
// notice with its auto-clear timer, and the refresh sequence guard that
// keeps a slow response from overwriting a newer snapshot.
//
// mu also guards the embedding view's snapshot. State-changing helpers
// take the lock themselves and fire onChange after releasing it.
type viewState struct {
	mu sync.Mutex

	pending   int
	lastError string

	notice      string
	noticeGen   int
	noticeTimer *time.Timer
	noticeTTL   time.Duration

	nextSeq    uint64
	appliedSeq uint64

	onChange func()
}

func (state *viewState) changed() {
	if state.onChange != nil {
		state.onChange()
	}
}

func (state *viewState) beginRequest() {
	state.mu.Lock()
	state.pending++
	state.mu.Unlock()
	state.changed()
}

func (state *viewState) endRequest() {
	state.mu.Lock()
	state.pending--
	state.mu.Unlock()
	state.changed()
}

func (state *viewState) fail(message string) {
	state.mu.Lock()
	state.lastError = message
	state.mu.Unlock()
	state.changed()
}

func (state *viewState) nextRefreshSeq() uint64 {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.nextSeq++
	return state.nextSeq
}

// tryApply reports whether the response carrying seq is still the freshest
// one seen. Must be called with mu held, atomically with the snapshot
// replacement it guards.
func (state *viewState) tryApply(seq uint64) bool {
	if seq < state.appliedSeq {
		return false
	}

	state.appliedSeq = seq
	return true
}

// setNotice shows a transient success notice and arms its auto-clear
// timer. A newer notice supersedes the old one together with its timer.
func (state *viewState) setNotice(message string) {
	state.mu.Lock()

	state.notice = message
	state.noticeGen++
	generation := state.noticeGen

	if state.noticeTimer != nil {
		state.noticeTimer.Stop()
	}
	state.noticeTimer = time.AfterFunc(state.noticeTTL, func() {
		state.expireNotice(generation)
	})

	state.mu.Unlock()
	state.changed()
}

func (state *viewState) expireNotice(generation int) {
	state.mu.Lock()
	if generation != state.noticeGen {
		state.mu.Unlock()
		return
	}

	state.notice = ""
	state.mu.Unlock()
	state.changed()
}

// stop cancels the notice timer. Called when the owning view is torn down.
func (state *viewState) stop() {
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.noticeTimer != nil {
		state.noticeTimer.Stop()
		state.noticeTimer = nil
	}
}
