package graphdoc

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// Snapshot is an immutable view of one loaded document. Lookups hold on to
// a snapshot for their whole duration; a reload installs a new one.
type Snapshot struct {
	Document *chemical.GraphDocument
	Entities []*chemical.Entity
	Version  uint64
	LoadedAt time.Time
}

// Chemicals counts the chemical entities of the snapshot.
func (s *Snapshot) Chemicals() int {
	n := 0
	for _, e := range s.Entities {
		if e.IsChemical() {
			n++
		}
	}
	return n
}

// Provider owns the current Snapshot. It also satisfies
// chemical.DocumentSource by handing out the current document, loading it on
// first use.
type Provider struct {
	source  chemical.DocumentSource
	timeout time.Duration
	logger  logging.Logger

	snap    atomic.Pointer[Snapshot]
	version atomic.Uint64
	group   singleflight.Group

	subMu sync.RWMutex
	subs  []func(*Snapshot)
}

// NewProvider creates a Provider reading from source. A zero timeout means
// loads are bounded only by the caller's context.
func NewProvider(source chemical.DocumentSource, timeout time.Duration, logger logging.Logger) *Provider {
	return &Provider{
		source:  source,
		timeout: timeout,
		logger:  logging.OrNop(logger).Named("graphdoc"),
	}
}

// Name implements chemical.DocumentSource.
func (p *Provider) Name() string { return p.source.Name() }

// Load implements chemical.DocumentSource. It returns the installed
// document, or refreshes once when nothing is installed yet.
func (p *Provider) Load(ctx context.Context) (*chemical.GraphDocument, error) {
	if s := p.snap.Load(); s != nil {
		return s.Document, nil
	}
	s, err := p.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return s.Document, nil
}

// Fetch reads a fresh document from the source without installing it.
func (p *Provider) Fetch(ctx context.Context) (*chemical.GraphDocument, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	doc, err := p.source.Load(ctx)
	if err != nil {
		code := errors.GetCode(err)
		if code == errors.CodeUnknown {
			code = errors.ErrCodeGraphUnavailable
		}
		return nil, errors.Wrap(err, code, "fetch graph document").WithDetail("source=" + p.source.Name())
	}
	p.logger.Debug("graph document fetched",
		logging.String("source", p.source.Name()),
		logging.Int("nodes", len(doc.Nodes)),
		logging.Duration("took", time.Since(start)))
	return doc, nil
}

// Install converts doc into a new snapshot, swaps it in and notifies
// subscribers.
func (p *Provider) Install(doc *chemical.GraphDocument) *Snapshot {
	s := &Snapshot{
		Document: doc,
		Entities: doc.Entities(),
		Version:  p.version.Add(1),
		LoadedAt: time.Now().UTC(),
	}
	p.snap.Store(s)
	p.logger.Info("graph snapshot installed",
		logging.Int64("version", int64(s.Version)),
		logging.Int("entities", len(s.Entities)),
		logging.Int("chemicals", s.Chemicals()))

	p.subMu.RLock()
	subs := append(([]func(*Snapshot))(nil), p.subs...)
	p.subMu.RUnlock()
	for _, fn := range subs {
		fn(s)
	}
	return s
}

// Refresh fetches and installs a new snapshot. Concurrent calls share one
// fetch. On failure the current snapshot stays installed.
func (p *Provider) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := p.group.Do("refresh", func() (interface{}, error) {
		doc, err := p.Fetch(ctx)
		if err != nil {
			p.logger.Error("graph refresh failed", logging.Err(err))
			return nil, err
		}
		return p.Install(doc), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Snapshot returns the installed snapshot, or nil before the first load.
func (p *Provider) Snapshot() *Snapshot { return p.snap.Load() }

// Entities returns the entities of the installed snapshot.
func (p *Provider) Entities() []*chemical.Entity {
	if s := p.snap.Load(); s != nil {
		return s.Entities
	}
	return nil
}

// Ready reports whether a snapshot is installed.
func (p *Provider) Ready() bool { return p.snap.Load() != nil }

// Subscribe registers fn to be called after each install.
func (p *Provider) Subscribe(fn func(*Snapshot)) {
	p.subMu.Lock()
	p.subs = append(p.subs, fn)
	p.subMu.Unlock()
}
