// Package alias resolves chemical names to their canonical ("main") name and
// expands a name into every spelling it is known by. It merges the built-in
// alias table with owl:sameAs assertions mined from the bundled graph
// document, persists the merged rows to an AliasStore, and serves reads from
// an immutable snapshot swapped in only after a rebuild fully succeeds.
package alias

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// Config tunes the resolver.
type Config struct {
	// LoadTimeout bounds a single document load. Zero means no timeout.
	LoadTimeout time.Duration `mapstructure:"load_timeout" yaml:"load_timeout" json:"load_timeout"`

	// MineGraph enables owl:sameAs mining. When false only built-in rows
	// are used.
	MineGraph bool `mapstructure:"mine_graph" yaml:"mine_graph" json:"mine_graph"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		LoadTimeout: 30 * time.Second,
		MineGraph:   true,
	}
}

// Observer receives rebuild outcomes, typically for metrics.
type Observer interface {
	ObserveAliasRebuild(success bool, duration time.Duration, rows int)
}

// Stats describes the live snapshot.
type Stats struct {
	Rows         int       `json:"rows"`
	BuiltinRows  int       `json:"builtin_rows"`
	GraphRows    int       `json:"graph_rows"`
	BuiltAt      time.Time `json:"built_at"`
	Initialized  bool      `json:"initialized"`
	LastError    string    `json:"last_error,omitempty"`
	LastReloadAt time.Time `json:"last_reload_at,omitempty"`
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Resolver) { r.logger = logging.OrNop(l) }
}

// WithObserver sets the rebuild observer.
func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

// Resolver owns the alias snapshot. Reads are lock-free against the current
// snapshot; rebuilds are serialised and swap the snapshot on success only.
type Resolver struct {
	store    chemical.AliasStore
	source   chemical.DocumentSource
	cfg      Config
	logger   logging.Logger
	observer Observer

	snap    atomic.Pointer[index]
	writeMu sync.Mutex
	group   singleflight.Group

	statusMu     sync.RWMutex
	lastErr      error
	lastReloadAt time.Time
}

// NewResolver builds a resolver over store (a MemoryStore when nil) and
// source (built-in rows only when nil). Call Init before serving reads.
func NewResolver(store chemical.AliasStore, source chemical.DocumentSource, cfg Config, opts ...Option) *Resolver {
	if store == nil {
		store = NewMemoryStore()
	}
	r := &Resolver{
		store:  store,
		source: source,
		cfg:    cfg,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("alias")
	return r
}

// Init loads the cached rows, or builds them from the built-in table and the
// graph document when the cache is empty. A missing or unreadable document
// is logged and the resolver carries on with built-in rows.
func (r *Resolver) Init(ctx context.Context) error {
	rows, err := r.store.LoadAll(ctx)
	if err != nil {
		r.logger.Warn("alias cache unreadable, rebuilding", logging.Err(err))
	}
	if len(rows) > 0 {
		kept, dropped := dedupe(rows)
		r.install(kept)
		r.logger.Info("alias cache loaded", logging.Int("rows", len(kept)), logging.Int("dropped", dropped))
		return nil
	}

	var doc *chemical.GraphDocument
	if r.source != nil && r.cfg.MineGraph {
		doc, err = r.loadDocument(ctx)
		if err != nil {
			r.logger.Warn("graph document unavailable, using built-in aliases only",
				logging.String("source", r.source.Name()), logging.Err(err))
			doc = nil
		}
	}

	if err := r.Rebuild(ctx, doc); err != nil {
		// The cache is an index only; serve from memory even if it could
		// not be written.
		kept, _ := dedupe(r.collect(doc))
		r.install(kept)
		r.logger.Warn("alias cache not persisted", logging.Err(err))
	}
	return ctx.Err()
}

// Reload rebuilds the alias rows from the built-in table and a fresh read of
// the graph document. Concurrent calls share one rebuild. On failure the
// previous snapshot and cache contents stay authoritative.
func (r *Resolver) Reload(ctx context.Context) error {
	_, err, shared := r.group.Do("reload", func() (interface{}, error) {
		var doc *chemical.GraphDocument
		if r.source != nil && r.cfg.MineGraph {
			d, err := r.loadDocument(ctx)
			if err != nil {
				wrapped := errors.Wrap(err, errors.ErrCodeReloadFailed, "load graph document").
					WithDetail("source=" + r.source.Name())
				r.recordReload(wrapped)
				return nil, wrapped
			}
			doc = d
		}
		return nil, r.Rebuild(ctx, doc)
	})
	if shared {
		r.logger.Debug("alias reload coalesced")
	}
	return err
}

// Rebuild replaces the alias rows with the built-in rows plus those mined
// from doc (nil for none). It persists first and swaps the in-memory
// snapshot only when persistence succeeded.
func (r *Resolver) Rebuild(ctx context.Context, doc *chemical.GraphDocument) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	start := time.Now()
	rows, dropped := dedupe(r.collect(doc))

	if err := ctx.Err(); err != nil {
		wrapped := errors.Wrap(err, errors.ErrCodeReloadFailed, "alias rebuild cancelled")
		r.finish(start, rows, wrapped)
		return wrapped
	}
	if err := r.store.ReplaceAll(ctx, rows); err != nil {
		wrapped := errors.Wrap(err, errors.ErrCodeReloadFailed, "replace alias cache")
		r.finish(start, rows, wrapped)
		return wrapped
	}

	r.install(rows)
	r.finish(start, rows, nil)
	r.logger.Info("alias snapshot rebuilt",
		logging.Int("rows", len(rows)),
		logging.Int("dropped", dropped),
		logging.Duration("took", time.Since(start)))
	return nil
}

// Close drops the snapshot. Reads afterwards fall back to the built-in table.
func (r *Resolver) Close() {
	r.snap.Store(nil)
}

// GetMainName returns the canonical name for name, or name unchanged when
// no tier matches. Tiers: exact case-insensitive main name, exact
// case-insensitive alias, normalized match against the cached rows,
// normalized match against the built-in table.
func (r *Resolver) GetMainName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return name
	}
	cached := r.snap.Load()

	if cached != nil {
		if m, ok := cached.exactMain(trimmed); ok {
			return m
		}
	}
	if m, ok := builtinIndex.exactMain(trimmed); ok {
		return m
	}
	if cached != nil {
		if m, ok := cached.exactAlias(trimmed); ok {
			return m
		}
	}
	if m, ok := builtinIndex.exactAlias(trimmed); ok {
		return m
	}
	if cached != nil {
		if m, ok := cached.normalized(trimmed); ok {
			return m
		}
	}
	if m, ok := builtinIndex.normalized(trimmed); ok {
		return m
	}
	return name
}

// GetAllPossibleNames returns, in order and without duplicates: the main
// name, its cached aliases, its built-in aliases, and formatting variations
// of name. The result always contains at least one element.
func (r *Resolver) GetAllPossibleNames(name string) []string {
	names := orderedmap.New[string, struct{}]()
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			names.Set(s, struct{}{})
		}
	}

	mainName := r.GetMainName(name)
	add(mainName)

	if cached := r.snap.Load(); cached != nil {
		for _, a := range cached.aliasesByLower[strings.ToLower(mainName)] {
			add(a)
		}
	}
	if n := chemical.Normalize(mainName); n != "" {
		for _, a := range builtinIndex.aliasesByNorm[n] {
			add(a)
		}
	}
	for _, v := range FormattingVariations(name) {
		add(v)
	}

	if names.Len() == 0 {
		return []string{name}
	}
	out := make([]string, 0, names.Len())
	for pair := names.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Aliases returns a copy of the rows in the live snapshot.
func (r *Resolver) Aliases() []chemical.ChemicalAlias {
	cached := r.snap.Load()
	if cached == nil {
		return nil
	}
	return append([]chemical.ChemicalAlias(nil), cached.rows...)
}

// Stats describes the live snapshot and the last reload outcome.
func (r *Resolver) Stats() Stats {
	st := Stats{}
	if cached := r.snap.Load(); cached != nil {
		st.Initialized = true
		st.Rows = len(cached.rows)
		st.BuiltAt = cached.builtAt
		for _, row := range cached.rows {
			switch row.Source {
			case chemical.AliasSourceBuiltin:
				st.BuiltinRows++
			case chemical.AliasSourceGraph:
				st.GraphRows++
			}
		}
	}
	r.statusMu.RLock()
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
	}
	st.LastReloadAt = r.lastReloadAt
	r.statusMu.RUnlock()
	return st
}

// CheckFreshness compares the graph-mined rows of the live snapshot with the
// rows doc asserts. missing counts rows doc implies that the snapshot lacks;
// extra counts snapshot rows doc no longer asserts. Any difference is logged,
// since a cache-hit Init never reads the document.
func (r *Resolver) CheckFreshness(doc *chemical.GraphDocument) (missing, extra int) {
	cached := r.snap.Load()
	if doc == nil || cached == nil || !r.cfg.MineGraph {
		return 0, 0
	}
	want, _ := dedupe(r.collect(doc))
	wantKeys := graphKeys(want)
	haveKeys := graphKeys(cached.rows)
	for k := range wantKeys {
		if _, ok := haveKeys[k]; !ok {
			missing++
		}
	}
	for k := range haveKeys {
		if _, ok := wantKeys[k]; !ok {
			extra++
		}
	}
	if missing > 0 || extra > 0 {
		r.logger.Warn("alias cache is older than the graph snapshot, reload to refresh it",
			logging.Int("missing", missing),
			logging.Int("extra", extra))
	}
	return missing, extra
}

func graphKeys(rows []chemical.ChemicalAlias) map[string]struct{} {
	keys := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.Source == chemical.AliasSourceGraph {
			keys[row.Key()] = struct{}{}
		}
	}
	return keys
}

func (r *Resolver) collect(doc *chemical.GraphDocument) []chemical.ChemicalAlias {
	rows := BuiltinAliases()
	if doc != nil {
		rows = append(rows, MineEquivalences(doc)...)
	}
	return rows
}

func (r *Resolver) install(rows []chemical.ChemicalAlias) {
	r.snap.Store(newIndex(nil, rows))
}

func (r *Resolver) loadDocument(ctx context.Context) (*chemical.GraphDocument, error) {
	if r.cfg.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.LoadTimeout)
		defer cancel()
	}
	return r.source.Load(ctx)
}

func (r *Resolver) finish(start time.Time, rows []chemical.ChemicalAlias, err error) {
	r.recordReload(err)
	if r.observer != nil {
		r.observer.ObserveAliasRebuild(err == nil, time.Since(start), len(rows))
	}
	if err != nil {
		r.logger.Error("alias rebuild failed, keeping previous snapshot", logging.Err(err))
	}
}

func (r *Resolver) recordReload(err error) {
	r.statusMu.Lock()
	r.lastErr = err
	r.lastReloadAt = time.Now()
	r.statusMu.Unlock()
}
