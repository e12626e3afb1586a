package engine

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/bob-go/internal/domain/added"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/scaling"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
	"github.com/andrescamacho/bob-go/internal/domain/variation"
)

// Engine is the replacement-resolution aggregate. It owns one set of tier
// stores and one handler registry per parent kind, the pack library, the
// scaling store and the random prefab library.
//
// The engine is not safe for concurrent use: all calls are expected from the
// single thread driving the host's simulation and UI.
type Engine struct {
	host     prefab.Host
	kinds    map[prefab.Kind]*kindStores
	packs    *pack.Library
	scaling  *scaling.Store
	randoms  *variation.Library
	metrics  MetricsRecorder
	validate *validator.Validate

	// recovering enables baseline recovery from stored records while
	// importing onto live data that already carries replacements
	recovering bool
	// livePacks names the packs a live-applied document marks as applied
	livePacks []string
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics installs a metrics recorder
func WithMetrics(recorder MetricsRecorder) Option {
	return func(e *Engine) {
		if recorder != nil {
			e.metrics = recorder
		}
	}
}

// New creates an engine bound to host
func New(host prefab.Host, opts ...Option) *Engine {
	e := &Engine{
		host:     host,
		kinds:    make(map[prefab.Kind]*kindStores),
		packs:    pack.NewLibrary(),
		scaling:  scaling.NewStore(host),
		randoms:  variation.NewLibrary(),
		metrics:  noOpRecorder{},
		validate: validator.New(),
	}
	for _, kind := range prefab.ParentKinds() {
		e.kinds[kind] = newKindStores(kind)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PackLibrary returns the pack library
func (e *Engine) PackLibrary() *pack.Library {
	return e.packs
}

// Scaling returns the scaling store
func (e *Engine) Scaling() *scaling.Store {
	return e.scaling
}

// Randoms returns the random prefab library
func (e *Engine) Randoms() *variation.Library {
	return e.randoms
}

// Records returns every stored record of one parent kind and tier
func (e *Engine) Records(kind prefab.Kind, tier replacement.Tier) []*replacement.Record {
	ks, err := e.stores(kind)
	if err != nil {
		return nil
	}
	return ks.records(tier)
}

// HandlerCount returns the number of touched slots of one parent kind
func (e *Engine) HandlerCount(kind prefab.Kind) int {
	ks, err := e.stores(kind)
	if err != nil {
		return 0
	}
	return ks.handlers.Len()
}

// kindStores bundles the per-parent-kind registries
type kindStores struct {
	kind       prefab.Kind
	handlers   *replacement.Registry
	individual *replacement.Store[replacement.IndividualKey]
	grouped    *replacement.Store[replacement.GroupedKey]
	pack       *replacement.Store[prefab.Ref]
	all        *replacement.Store[prefab.Ref]
	added      *added.Registry

	// pendingAdded holds added records whose prefab is not loaded; they
	// have no live slot until they resolve
	pendingAdded []*replacement.Record

	// stale names parents whose handlers were invalidated
	stale map[string]struct{}
}

func newKindStores(kind prefab.Kind) *kindStores {
	ks := &kindStores{
		kind:       kind,
		handlers:   replacement.NewRegistry(),
		individual: replacement.NewStore[replacement.IndividualKey](replacement.TierIndividual),
		grouped:    replacement.NewStore[replacement.GroupedKey](replacement.TierGrouped),
		all:        replacement.NewStore[prefab.Ref](replacement.TierAll),
		added:      added.NewRegistry(),
		stale:      make(map[string]struct{}),
	}
	// Packs are network-only
	if kind == prefab.KindNetwork {
		ks.pack = replacement.NewStore[prefab.Ref](replacement.TierPack)
	}
	return ks
}

// stores is the dispatch table lookup for a parent kind
func (e *Engine) stores(kind prefab.Kind) (*kindStores, error) {
	ks, ok := e.kinds[kind]
	if !ok {
		return nil, shared.NewValidationError("parent_kind", fmt.Sprintf("%s prefabs do not carry props or trees", kind))
	}
	return ks, nil
}

func (ks *kindStores) supports(tier replacement.Tier) bool {
	switch tier {
	case replacement.TierIndividual, replacement.TierGrouped, replacement.TierAll:
		return true
	case replacement.TierPack:
		return ks.pack != nil
	default:
		return false
	}
}

// lookup returns the record stored at r's key
func (ks *kindStores) lookup(r *replacement.Record) *replacement.Record {
	switch r.Tier {
	case replacement.TierIndividual:
		return ks.individual.Get(replacement.IndividualKeyOf(r))
	case replacement.TierGrouped:
		return ks.grouped.Get(replacement.GroupedKeyOf(r))
	case replacement.TierPack:
		if ks.pack == nil {
			return nil
		}
		return ks.pack.Get(r.Target)
	case replacement.TierAll:
		return ks.all.Get(r.Target)
	default:
		return nil
	}
}

// put stores r at its key and returns the displaced record
func (ks *kindStores) put(r *replacement.Record) *replacement.Record {
	switch r.Tier {
	case replacement.TierIndividual:
		return ks.individual.Put(replacement.IndividualKeyOf(r), r)
	case replacement.TierGrouped:
		return ks.grouped.Put(replacement.GroupedKeyOf(r), r)
	case replacement.TierPack:
		return ks.pack.Put(r.Target, r)
	case replacement.TierAll:
		return ks.all.Put(r.Target, r)
	default:
		return nil
	}
}

// remove deletes r if it is the record stored at its key
func (ks *kindStores) remove(r *replacement.Record) bool {
	switch r.Tier {
	case replacement.TierIndividual:
		return ks.individual.Delete(replacement.IndividualKeyOf(r), r)
	case replacement.TierGrouped:
		return ks.grouped.Delete(replacement.GroupedKeyOf(r), r)
	case replacement.TierPack:
		return ks.pack != nil && ks.pack.Delete(r.Target, r)
	case replacement.TierAll:
		return ks.all.Delete(r.Target, r)
	default:
		return false
	}
}

func (ks *kindStores) records(tier replacement.Tier) []*replacement.Record {
	switch tier {
	case replacement.TierIndividual:
		return ks.individual.Records()
	case replacement.TierGrouped:
		return ks.grouped.Records()
	case replacement.TierPack:
		if ks.pack == nil {
			return nil
		}
		return ks.pack.Records()
	case replacement.TierAll:
		return ks.all.Records()
	case replacement.TierAdded:
		return append(ks.added.Records(), ks.pendingAdded...)
	default:
		return nil
	}
}

func (ks *kindStores) clear() {
	ks.handlers.Clear()
	ks.individual.Clear()
	ks.grouped.Clear()
	if ks.pack != nil {
		ks.pack.Clear()
	}
	ks.all.Clear()
	ks.added.Clear()
	ks.pendingAdded = nil
	ks.stale = make(map[string]struct{})
}

func (ks *kindStores) isStale(parent string) bool {
	_, ok := ks.stale[parent]
	return ok
}

// FindRecord returns the stored record with id, searching every tier and
// the added props of one parent kind
func (e *Engine) FindRecord(kind prefab.Kind, id string) *replacement.Record {
	ks, err := e.stores(kind)
	if err != nil {
		return nil
	}
	for _, tier := range append(replacement.PriorityOrder(), replacement.TierAdded) {
		for _, r := range ks.records(tier) {
			if r.ID == id {
				return r
			}
		}
	}
	return nil
}
