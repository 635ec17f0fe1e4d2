// Package lookup is the application facade of the chemical-safety lookup. It
// ties the graph snapshot, the alias resolver, the matcher and the
// extractor together for the HTTP and CLI surfaces.
package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
	"github.com/turtacn/chemsafe/internal/infrastructure/graphdoc"
	"github.com/turtacn/chemsafe/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsafe/internal/intelligence/alias"
	"github.com/turtacn/chemsafe/internal/intelligence/extractor"
	"github.com/turtacn/chemsafe/internal/intelligence/matcher"
	"github.com/turtacn/chemsafe/pkg/errors"
)

// Service defines the lookup operations.
type Service interface {
	// Init loads the graph snapshot and the alias rows. A graph that cannot
	// be read is logged; the service then answers from built-in aliases
	// and an empty graph until a reload succeeds.
	Init(ctx context.Context) error

	ResolveChemical(ctx context.Context, name, id string) *chemical.Entity
	Match(ctx context.Context, name, id string) matcher.Result
	GetSections(entity *chemical.Entity) []chemical.Section
	GetProcedures(entity *chemical.Entity, emergencyType string) []chemical.StepGroup
	GetMainName(name string) string
	GetAllPossibleNames(name string) []string
	Reload(ctx context.Context) error

	// Lookup resolves name and extracts everything shown for it. It fails
	// with ErrCodeChemicalNotFound when no entity matches and with
	// ErrCodeUnknownEmergencyType for an unrecognised filter.
	Lookup(ctx context.Context, q Query) (*ChemicalReport, error)

	// HandleReloadEvent reloads in response to another instance's reload.
	HandleReloadEvent(ctx context.Context, ev chemical.ReloadEvent) error

	Status() Status
}

// GraphProvider supplies entity snapshots. *graphdoc.Provider implements it.
type GraphProvider interface {
	Entities() []*chemical.Entity
	Snapshot() *graphdoc.Snapshot
	Refresh(ctx context.Context) (*graphdoc.Snapshot, error)
	Fetch(ctx context.Context) (*chemical.GraphDocument, error)
	Install(doc *chemical.GraphDocument) *graphdoc.Snapshot
}

// AliasResolver is the part of *alias.Resolver the service uses.
type AliasResolver interface {
	Init(ctx context.Context) error
	GetMainName(name string) string
	GetAllPossibleNames(name string) []string
	Rebuild(ctx context.Context, doc *chemical.GraphDocument) error
	CheckFreshness(doc *chemical.GraphDocument) (missing, extra int)
	Stats() alias.Stats
}

// ReloadPublisher announces reloads to other instances.
type ReloadPublisher interface {
	PublishReload(ctx context.Context, ev chemical.ReloadEvent) error
}

// Recorder receives lookup and reload measurements.
type Recorder interface {
	ObserveLookup(tier string, found bool, d time.Duration)
	ObserveReload(success bool, d time.Duration)
}

// Query is one lookup request.
type Query struct {
	Name          string `json:"name"`
	ID            string `json:"id,omitempty"`
	EmergencyType string `json:"emergency_type,omitempty"`
}

// ChemicalReport is everything displayed for one chemical.
type ChemicalReport struct {
	Query       string               `json:"query"`
	MainName    string               `json:"main_name"`
	DisplayName string               `json:"display_name"`
	EntityID    string               `json:"entity_id"`
	MatchTier   string               `json:"match_tier"`
	MatchedName string               `json:"matched_name"`
	Sections    []chemical.Section   `json:"sections"`
	Procedures  []chemical.StepGroup `json:"procedures"`
	Entity      *chemical.Entity     `json:"entity,omitempty"`
}

// Status summarises the live state for readiness checks and the CLI.
type Status struct {
	InstanceID      string      `json:"instance_id"`
	GraphReady      bool        `json:"graph_ready"`
	GraphSource     string      `json:"graph_source,omitempty"`
	SnapshotVersion uint64      `json:"snapshot_version"`
	Entities        int         `json:"entities"`
	Chemicals       int         `json:"chemicals"`
	LoadedAt        time.Time   `json:"loaded_at,omitempty"`
	Aliases         alias.Stats `json:"aliases"`
}

// Option customises the service.
type Option func(*serviceImpl)

// WithPublisher announces successful reloads through p.
func WithPublisher(p ReloadPublisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

// WithRecorder records measurements through r.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) { s.recorder = r }
}

// WithInstanceID overrides the generated instance identifier carried in
// reload events.
func WithInstanceID(id string) Option {
	return func(s *serviceImpl) { s.instanceID = id }
}

// WithIncludeEntity embeds the raw entity in every report.
func WithIncludeEntity(include bool) Option {
	return func(s *serviceImpl) { s.includeEntity = include }
}

type serviceImpl struct {
	graph         GraphProvider
	aliases       AliasResolver
	matcher       *matcher.Matcher
	publisher     ReloadPublisher
	recorder      Recorder
	logger        logging.Logger
	instanceID    string
	includeEntity bool

	group singleflight.Group
}

// NewService creates the lookup service.
func NewService(graph GraphProvider, aliases AliasResolver, logger logging.Logger, opts ...Option) Service {
	logger = logging.OrNop(logger).Named("lookup")
	s := &serviceImpl{
		graph:      graph,
		aliases:    aliases,
		matcher:    matcher.New(aliases, logger),
		logger:     logger,
		instanceID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *serviceImpl) Init(ctx context.Context) error {
	if _, err := s.graph.Refresh(ctx); err != nil {
		s.logger.Warn("graph snapshot not loaded at startup", logging.Err(err))
	}
	if err := s.aliases.Init(ctx); err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "initialise alias resolver")
	}
	if snap := s.graph.Snapshot(); snap != nil && snap.Document != nil {
		s.aliases.CheckFreshness(snap.Document)
	}
	st := s.Status()
	s.logger.Info("lookup service ready",
		logging.Bool("graph_ready", st.GraphReady),
		logging.Int("chemicals", st.Chemicals),
		logging.Int("alias_rows", st.Aliases.Rows))
	return nil
}

func (s *serviceImpl) ResolveChemical(ctx context.Context, name, id string) *chemical.Entity {
	return s.Match(ctx, name, id).Entity
}

func (s *serviceImpl) Match(ctx context.Context, name, id string) matcher.Result {
	start := time.Now()
	res := s.matcher.Match(s.graph.Entities(), name, id)
	if s.recorder != nil {
		s.recorder.ObserveLookup(res.Tier.String(), res.Found(), time.Since(start))
	}
	return res
}

func (s *serviceImpl) GetSections(entity *chemical.Entity) []chemical.Section {
	if entity == nil {
		return []chemical.Section{}
	}
	return extractor.ExtractProfile(entity.Data)
}

func (s *serviceImpl) GetProcedures(entity *chemical.Entity, emergencyType string) []chemical.StepGroup {
	if entity == nil {
		return []chemical.StepGroup{}
	}
	return extractor.ExtractProcedures(entity.Data, emergencyType)
}

func (s *serviceImpl) GetMainName(name string) string {
	return s.aliases.GetMainName(name)
}

func (s *serviceImpl) GetAllPossibleNames(name string) []string {
	return s.aliases.GetAllPossibleNames(name)
}

func (s *serviceImpl) Lookup(ctx context.Context, q Query) (*ChemicalReport, error) {
	name := strings.TrimSpace(q.Name)
	if name == "" && strings.TrimSpace(q.ID) == "" {
		return nil, errors.InvalidParam("chemical name or id is required")
	}
	if q.EmergencyType != "" && !extractor.IsEmergencyType(q.EmergencyType) {
		return nil, errors.New(errors.ErrCodeUnknownEmergencyType, "unknown emergency type").
			WithDetail("type=" + q.EmergencyType + "; accepted=" + strings.Join(extractor.EmergencyTypes(), ","))
	}

	res := s.Match(ctx, name, q.ID)
	if !res.Found() {
		return nil, errors.New(errors.ErrCodeChemicalNotFound, "no data available for chemical").
			WithDetail("name=" + q.Name)
	}

	report := &ChemicalReport{
		Query:       q.Name,
		MainName:    s.aliases.GetMainName(name),
		DisplayName: res.Entity.DisplayName(),
		EntityID:    res.Entity.ID,
		MatchTier:   res.Tier.String(),
		MatchedName: res.MatchedName,
		Sections:    s.GetSections(res.Entity),
		Procedures:  s.GetProcedures(res.Entity, q.EmergencyType),
	}
	if s.includeEntity {
		report.Entity = res.Entity
	}
	return report, nil
}

// Reload fetches the graph document, rebuilds the alias rows from it and
// only then installs the new graph snapshot, so a failure at any step
// leaves both the graph and the aliases as they were. Concurrent calls
// share one reload.
func (s *serviceImpl) Reload(ctx context.Context) error {
	_, err, shared := s.group.Do("reload", func() (interface{}, error) {
		return nil, s.reload(ctx, true)
	})
	if shared {
		s.logger.Debug("reload coalesced")
	}
	return err
}

func (s *serviceImpl) HandleReloadEvent(ctx context.Context, ev chemical.ReloadEvent) error {
	if ev.Origin == s.instanceID {
		return nil
	}
	s.logger.Info("reloading on peer event",
		logging.String("origin", ev.Origin),
		logging.String("event_id", ev.EventID))
	_, err, _ := s.group.Do("reload", func() (interface{}, error) {
		return nil, s.reload(ctx, false)
	})
	return err
}

func (s *serviceImpl) reload(ctx context.Context, announce bool) (err error) {
	start := time.Now()
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveReload(err == nil, time.Since(start))
		}
	}()

	doc, err := s.graph.Fetch(ctx)
	if err != nil {
		s.logger.Error("reload aborted, graph document unavailable", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeReloadFailed, "reload graph document")
	}
	if err := s.aliases.Rebuild(ctx, doc); err != nil {
		return errors.Wrap(err, errors.ErrCodeReloadFailed, "rebuild aliases")
	}
	snap := s.graph.Install(doc)

	s.logger.Info("reload complete",
		logging.Int64("snapshot_version", int64(snap.Version)),
		logging.Int("entities", len(snap.Entities)),
		logging.Duration("took", time.Since(start)))

	if announce && s.publisher != nil {
		ev := chemical.ReloadEvent{
			EventID:         uuid.NewString(),
			Origin:          s.instanceID,
			Source:          doc.Source,
			SnapshotVersion: snap.Version,
			Entities:        len(snap.Entities),
			AliasRows:       s.aliases.Stats().Rows,
			OccurredAt:      time.Now().UTC(),
		}
		// Peers catch up on their next reload if the announcement is lost.
		if perr := s.publisher.PublishReload(ctx, ev); perr != nil {
			s.logger.Warn("reload event not published", logging.Err(perr))
		}
	}
	return nil
}

func (s *serviceImpl) Status() Status {
	st := Status{
		InstanceID: s.instanceID,
		Aliases:    s.aliases.Stats(),
	}
	if snap := s.graph.Snapshot(); snap != nil {
		st.GraphReady = true
		st.SnapshotVersion = snap.Version
		st.Entities = len(snap.Entities)
		st.Chemicals = snap.Chemicals()
		st.LoadedAt = snap.LoadedAt
		if snap.Document != nil {
			st.GraphSource = snap.Document.Source
		}
	}
	return st
}
