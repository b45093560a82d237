package service

import (
	"context"
	"sync"

	perr "walletsync/internal/platform/errors"
	dom "walletsync/internal/services/auth/domain"

	"github.com/google/uuid"
)

const defaultKeepFinished = 512

// Registry keeps live attempts by id and the final view of recently finished ones
type Registry struct {
	o    Options
	base context.Context
	stop context.CancelFunc
	keep int

	mu       sync.Mutex
	live     map[string]*Handshake
	finished map[string]dom.AttemptView
	order    []string
	sessions map[string]string
}

var _ dom.AuthPort = (*Registry)(nil)

// NewRegistry builds an empty registry, Close cancels every live attempt
func NewRegistry(o Options) *Registry {
	base, stop := context.WithCancel(context.Background())
	return &Registry{
		o:        o.withDefaults(),
		base:     base,
		stop:     stop,
		keep:     defaultKeepFinished,
		live:     map[string]*Handshake{},
		finished: map[string]dom.AttemptView{},
		sessions: map[string]string{},
	}
}

// Start opens an attempt and runs it until it finishes or waits on a second factor
func (r *Registry) Start(_ context.Context, in dom.StartInput) (dom.AttemptView, error) {
	if in.GUID == "" || in.Password == "" {
		return dom.AttemptView{}, perr.InvalidArgf("guid and password are required")
	}
	id := uuid.NewString()

	r.mu.Lock()
	sid := r.sessions[in.GUID]
	delete(r.sessions, in.GUID)
	h := NewHandshake(r.base, id, in.GUID, in.Password, sid, r.o)
	h.onDone = r.retire
	r.live[id] = h
	r.mu.Unlock()

	if err := h.VerifyPassword(); err != nil {
		return dom.AttemptView{}, err
	}
	return r.view(id, h), nil
}

// Attempt returns the current view of an attempt
func (r *Registry) Attempt(_ context.Context, id string) (dom.AttemptView, error) {
	h, view, err := r.lookup(id)
	if err != nil {
		return dom.AttemptView{}, err
	}
	if h == nil {
		return view, nil
	}
	return h.Snapshot(), nil
}

// SubmitSecondFactor hands a typed code to a pending attempt
func (r *Registry) SubmitSecondFactor(_ context.Context, id, code string) (dom.AttemptView, error) {
	h, _, err := r.lookup(id)
	if err != nil {
		return dom.AttemptView{}, err
	}
	if h == nil {
		return dom.AttemptView{}, perr.Conflictf("attempt %s is finished", id)
	}
	if err := h.SubmitSecondFactor(code); err != nil {
		return dom.AttemptView{}, err
	}
	return r.view(id, h), nil
}

// Cancel aborts an attempt, cancelling a finished attempt returns its final view
func (r *Registry) Cancel(_ context.Context, id string) (dom.AttemptView, error) {
	h, view, err := r.lookup(id)
	if err != nil {
		return dom.AttemptView{}, err
	}
	if h == nil {
		return view, nil
	}
	h.Cancel()
	return r.view(id, h), nil
}

// Live returns the number of attempts in flight
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Close cancels every live attempt and waits for their background work
func (r *Registry) Close() {
	r.mu.Lock()
	hs := make([]*Handshake, 0, len(r.live))
	for _, h := range r.live {
		hs = append(hs, h)
	}
	r.mu.Unlock()

	for _, h := range hs {
		h.Cancel()
	}
	r.stop()
	for _, h := range hs {
		h.Wait()
	}
}

func (r *Registry) lookup(id string) (*Handshake, dom.AttemptView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.live[id]; ok {
		return h, dom.AttemptView{}, nil
	}
	if v, ok := r.finished[id]; ok {
		return nil, v, nil
	}
	return nil, dom.AttemptView{}, perr.NotFoundf("attempt %s not found", id)
}

// view prefers the retired view so a finished attempt reads the same from every call
func (r *Registry) view(id string, h *Handshake) dom.AttemptView {
	r.mu.Lock()
	v, ok := r.finished[id]
	r.mu.Unlock()
	if ok {
		return v
	}
	return h.Snapshot()
}

// retire moves a finished attempt out of the live set
// a session survives only a failure the user can fix by retyping
func (r *Registry) retire(h *Handshake) {
	view := h.Snapshot()
	reason, sid := h.outcome()

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, h.id)
	if reason.Recoverable() && sid != "" {
		r.sessions[h.guid] = sid
	} else {
		delete(r.sessions, h.guid)
	}
	r.finished[h.id] = view
	r.order = append(r.order, h.id)
	for len(r.order) > r.keep {
		delete(r.finished, r.order[0])
		r.order = r.order[1:]
	}
}
