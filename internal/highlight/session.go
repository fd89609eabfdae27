package highlight

import (
	"context"
	"sync"
)

// Session tracks the document currently on display and upgrades its code
// blocks in the background. Mounting a new document invalidates the pending
// upgrade of the previous one: its work may still finish, but the result is
// dropped instead of being applied to content that is no longer shown.
type Session struct {
	highlighter *Highlighter
	run         func(context.Context, string) (string, error)

	mu      sync.Mutex
	token   uint64
	current string
	wg      sync.WaitGroup
}

// Upgrade is the handle for one background highlight pass.
type Upgrade struct {
	DocID string

	done    chan struct{}
	applied bool
	err     error
}

// NewSession creates a session bound to h.
func NewSession(h *Highlighter) *Session {
	return &Session{highlighter: h, run: h.Highlight}
}

// Mount records docID as the visible document and starts highlighting
// fragment. apply receives the upgraded markup only if docID is still
// mounted and ctx is not done when highlighting finishes. apply runs while
// the session lock is held and must not call back into the session.
func (s *Session) Mount(ctx context.Context, docID, fragment string, apply func(string)) *Upgrade {
	return s.start(ctx, docID, fragment, s.begin(docID), apply)
}

// Show mounts docID, hands fragment to apply as is, then upgrades it in the
// background like Mount. The previous document's pending upgrade is
// invalidated before apply sees the plain markup, so it can never land on
// top of docID. The plain apply runs without the session lock.
func (s *Session) Show(ctx context.Context, docID, fragment string, apply func(string)) *Upgrade {
	token := s.begin(docID)
	apply(fragment)
	return s.start(ctx, docID, fragment, token, apply)
}

func (s *Session) begin(docID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.current = docID
	return s.token
}

func (s *Session) start(ctx context.Context, docID, fragment string, token uint64, apply func(string)) *Upgrade {
	upgrade := &Upgrade{DocID: docID, done: make(chan struct{})}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(upgrade.done)

		out, err := s.run(ctx, fragment)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			upgrade.err = err
			return
		}
		if token != s.token || ctx.Err() != nil {
			s.highlighter.logger.Debug("highlight.upgrade_stale", "blog_id", docID)
			return
		}
		apply(out)
		upgrade.applied = true
	}()
	return upgrade
}

// Current returns the mounted document id.
func (s *Session) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Unmount invalidates any pending upgrade without mounting a new document.
func (s *Session) Unmount() {
	s.mu.Lock()
	s.token++
	s.current = ""
	s.mu.Unlock()
}

// Close unmounts and waits for in-flight upgrades to finish.
func (s *Session) Close() {
	s.Unmount()
	s.wg.Wait()
}

// Done is closed once the upgrade has finished, applied or not.
func (u *Upgrade) Done() <-chan struct{} {
	return u.done
}

// Wait blocks until the upgrade finishes and reports whether it was applied.
func (u *Upgrade) Wait() (bool, error) {
	<-u.done
	return u.applied, u.err
}
