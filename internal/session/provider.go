package session

import (
	"context"
	"sync"
)

// Provider owns the single Session of a process. The Session is built on
// first use and restored at most once; every later caller gets the same
// instance.
type Provider struct {
	build func() (*Session, error)

	buildOnce   sync.Once
	restoreOnce sync.Once
	session     *Session
	err         error
}

// NewProvider creates a Provider that constructs its Session with build.
func NewProvider(build func() (*Session, error)) *Provider {
	return &Provider{build: build}
}

// Session returns the process Session, building it and running Restore the
// first time it is called. ctx bounds only that first restore.
func (p *Provider) Session(ctx context.Context) (*Session, error) {
	s, err := p.get()
	if err != nil {
		return nil, err
	}
	p.restoreOnce.Do(func() { s.Restore(ctx) })
	return s, nil
}

// SessionWithoutRestore returns the process Session without revalidating the
// stored token, for callers that are about to replace or discard it. A later
// call to Session does not restore either.
func (p *Provider) SessionWithoutRestore() (*Session, error) {
	s, err := p.get()
	if err != nil {
		return nil, err
	}
	p.restoreOnce.Do(func() {})
	return s, nil
}

func (p *Provider) get() (*Session, error) {
	p.buildOnce.Do(func() {
		p.session, p.err = p.build()
	})
	return p.session, p.err
}

type providerKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the Provider stored in ctx, if any.
func FromContext(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	return p, ok
}
