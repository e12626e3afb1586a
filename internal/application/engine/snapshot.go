package engine

import (
	"context"
	"sort"

	"github.com/andrescamacho/bob-go/internal/application/common"
	"github.com/andrescamacho/bob-go/internal/domain/added"
	"github.com/andrescamacho/bob-go/internal/domain/configuration"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
	"github.com/andrescamacho/bob-go/internal/domain/variation"
	"github.com/andrescamacho/bob-go/pkg/utils"
)

// ImportOptions controls how a configuration document is applied
type ImportOptions struct {
	// LiveApplied means the host's live slots already render the document's
	// replacements and added props, as after a hot reload. Baselines are then
	// recovered from the records instead of read as-is.
	LiveApplied bool
}

// ImportResult summarizes an import
type ImportResult struct {
	Records    int
	Added      int
	Packs      int
	Scales     int
	Skipped    int
	Unresolved []string
}

// Export captures the committed state as a configuration document. Previews
// are never exported.
func (e *Engine) Export() *configuration.Document {
	doc := configuration.New()
	doc.Buildings = e.exportSection(e.kinds[prefab.KindBuilding])
	doc.Networks = e.exportSection(e.kinds[prefab.KindNetwork])

	for _, p := range e.packs.Packs() {
		def := configuration.PackDef{Name: p.Name, Applied: e.packs.IsApplied(p.Name)}
		for _, r := range p.Records {
			def.Records = append(def.Records, toDef(r))
		}
		doc.Packs = append(doc.Packs, def)
	}
	for _, o := range e.scaling.Overrides() {
		doc.Scales = append(doc.Scales, configuration.ScaleDef{
			Prefab: o.Prefab.Name,
			IsTree: o.Prefab.Kind == prefab.KindTree,
			Min:    o.Min,
			Max:    o.Max,
		})
	}
	for _, r := range e.randoms.Randoms() {
		def := configuration.RandomDef{Name: r.Name, IsTree: r.Kind == prefab.KindTree}
		for _, v := range r.Variations {
			def.Variations = append(def.Variations, configuration.VariationDef{
				Prefab:      v.Prefab.Name,
				Probability: v.Probability,
				Locked:      v.Locked,
			})
		}
		doc.Randoms = append(doc.Randoms, def)
	}
	return doc
}

func (e *Engine) exportSection(ks *kindStores) configuration.Section {
	return configuration.Section{
		Individual: byParent(ks.individual.Records()),
		Grouped:    byParent(ks.grouped.Records()),
		All:        defs(ks.all.Records()),
		Added:      byParent(ks.records(replacement.TierAdded)),
	}
}

func byParent(records []*replacement.Record) []configuration.ParentRecords {
	grouped := make(map[string][]configuration.RecordDef)
	for _, r := range records {
		grouped[r.Parent] = append(grouped[r.Parent], toDef(r))
	}
	parents := make([]string, 0, len(grouped))
	for p := range grouped {
		parents = append(parents, p)
	}
	sort.Strings(parents)

	var out []configuration.ParentRecords
	for _, p := range parents {
		out = append(out, configuration.ParentRecords{Parent: p, Records: grouped[p]})
	}
	return out
}

func defs(records []*replacement.Record) []configuration.RecordDef {
	var out []configuration.RecordDef
	for _, r := range records {
		out = append(out, toDef(r))
	}
	return out
}

func toDef(r *replacement.Record) configuration.RecordDef {
	return configuration.RecordDef{
		ID:             r.ID,
		Target:         r.Target.Name,
		Replacement:    r.Replacement.Name,
		IsTree:         r.IsTree(),
		Lane:           r.Lane,
		Slot:           r.Slot,
		Angle:          r.Angle,
		OffsetX:        r.Offset.X,
		OffsetY:        r.Offset.Y,
		OffsetZ:        r.Offset.Z,
		Probability:    r.Probability,
		RepeatDistance: r.RepeatDistance,
		CustomHeight:   r.CustomHeight,
	}
}

func contentRef(name string, isTree bool) prefab.Ref {
	if isTree {
		return prefab.NewRef(prefab.KindTree, name)
	}
	return prefab.NewRef(prefab.KindProp, name)
}

// fromDef rebuilds a record; names that do not resolve leave it inert
func (e *Engine) fromDef(kind prefab.Kind, tier replacement.Tier, parent string, def configuration.RecordDef) *replacement.Record {
	id := def.ID
	if id == "" {
		id = utils.GenerateRecordID(tier.String())
	}
	rec := &replacement.Record{
		ID:             id,
		Tier:           tier,
		ParentKind:     kind,
		Parent:         parent,
		Lane:           def.Lane,
		Slot:           def.Slot,
		Target:         contentRef(def.Target, def.IsTree),
		Replacement:    contentRef(def.Replacement, def.IsTree),
		Angle:          def.Angle,
		Offset:         prefab.Vector3{X: def.OffsetX, Y: def.OffsetY, Z: def.OffsetZ},
		Probability:    def.Probability,
		RepeatDistance: def.RepeatDistance,
		CustomHeight:   def.CustomHeight,
	}
	if kind == prefab.KindBuilding {
		rec.Lane = prefab.NoLane
	}
	if tier != replacement.TierIndividual && tier != replacement.TierAdded {
		rec.Lane, rec.Slot = prefab.NoLane, -1
	}
	rec.Unresolved = !e.resolvable(rec.Target) || !e.resolvable(rec.Replacement)
	return rec
}

// Import applies a configuration document on top of the current state.
// Records whose prefabs are not loaded are kept inert, never dropped;
// records whose slots cannot be found stay stored but unapplied.
func (e *Engine) Import(ctx context.Context, doc *configuration.Document, opts ImportOptions) (*ImportResult, error) {
	logger := common.LoggerFromContext(ctx)
	if doc == nil {
		return nil, shared.NewValidationError("document", "document is required")
	}
	if doc.Version > configuration.CurrentVersion {
		logger.Log(common.LevelWarn, "Configuration document is newer than this engine", map[string]interface{}{
			"version":   doc.Version,
			"supported": configuration.CurrentVersion,
		})
	}

	e.recovering = opts.LiveApplied
	if opts.LiveApplied {
		for _, def := range doc.Packs {
			if def.Applied {
				e.livePacks = append(e.livePacks, def.Name)
			}
		}
	}
	defer func() {
		e.recovering = false
		e.livePacks = nil
	}()

	result := &ImportResult{}
	unresolved := make(map[string]struct{})
	noteUnresolved := func(names ...prefab.Ref) {
		for _, n := range names {
			if !e.resolvable(n) {
				unresolved[n.Name] = struct{}{}
			}
		}
	}

	for _, def := range doc.Randoms {
		random := &variation.Random{Name: def.Name, Kind: contentRef(def.Name, def.IsTree).Kind}
		for _, v := range def.Variations {
			ref := contentRef(v.Prefab, def.IsTree)
			random.Variations = append(random.Variations, &variation.Variation{
				Prefab:      ref,
				Probability: v.Probability,
				Locked:      v.Locked,
				Unresolved:  !e.resolvable(ref),
			})
			noteUnresolved(ref)
		}
		if err := e.randoms.Register(random); err != nil {
			logger.Log(common.LevelWarn, "Skipping random prefab", map[string]interface{}{"name": def.Name, "error": err.Error()})
		}
	}

	// Stores are filled before any scope is resolved so live-applied
	// recovery can see every record
	queued := make([]struct {
		ks  *kindStores
		rec *replacement.Record
	}, 0)
	sections := []struct {
		kind    prefab.Kind
		section configuration.Section
	}{
		{prefab.KindBuilding, doc.Buildings},
		{prefab.KindNetwork, doc.Networks},
	}
	for _, s := range sections {
		ks := e.kinds[s.kind]
		records := make([]*replacement.Record, 0)
		for _, pr := range s.section.Individual {
			for _, def := range pr.Records {
				records = append(records, e.fromDef(s.kind, replacement.TierIndividual, pr.Parent, def))
			}
		}
		for _, pr := range s.section.Grouped {
			for _, def := range pr.Records {
				records = append(records, e.fromDef(s.kind, replacement.TierGrouped, pr.Parent, def))
			}
		}
		for _, def := range s.section.All {
			records = append(records, e.fromDef(s.kind, replacement.TierAll, "", def))
		}

		for _, rec := range records {
			noteUnresolved(rec.Target, rec.Replacement)
			if occupant := ks.lookup(rec); occupant != nil {
				dup := shared.NewDuplicateActiveRecordError(rec.Tier.String(), e.keyString(rec))
				logger.Log(common.LevelWarn, "Duplicate replacement in document, keeping the first", withError(rec.Metadata(), dup))
				result.Skipped++
				continue
			}
			ks.put(rec)
			queued = append(queued, struct {
				ks  *kindStores
				rec *replacement.Record
			}{ks, rec})
			result.Records++
		}

		for _, pr := range s.section.Added {
			n, err := e.importAdded(ctx, ks, pr, opts.LiveApplied)
			if err != nil {
				return nil, err
			}
			result.Added += n
			for _, def := range pr.Records {
				noteUnresolved(contentRef(def.Replacement, def.IsTree))
			}
		}
	}

	for _, q := range queued {
		refs, err := e.scope(ctx, q.ks, q.rec)
		if err != nil {
			msg := "Stored replacement not applied"
			if isInvalidSlot(err) {
				msg = "Stored replacement points at a missing slot"
			}
			logger.Log(common.LevelWarn, msg, withError(q.rec.Metadata(), err))
			result.Skipped++
			continue
		}
		if err := e.install(ctx, q.ks, q.rec, refs); err != nil {
			return nil, err
		}
	}

	for _, def := range doc.Scales {
		ref := contentRef(def.Prefab, def.IsTree)
		if _, err := e.scaling.Set(ref, def.Min, def.Max); err != nil {
			logger.Log(common.LevelWarn, "Skipping scale override", map[string]interface{}{"prefab": def.Prefab, "error": err.Error()})
			continue
		}
		result.Scales++
	}

	for _, def := range doc.Packs {
		records := make([]*replacement.Record, 0, len(def.Records))
		for _, rd := range def.Records {
			rec := e.fromDef(prefab.KindNetwork, replacement.TierPack, "", rd)
			noteUnresolved(rec.Target, rec.Replacement)
			records = append(records, rec)
		}
		if err := e.RegisterPack(pack.NewPack(def.Name, records)); err != nil {
			logger.Log(common.LevelWarn, "Skipping pack", map[string]interface{}{"pack": def.Name, "error": err.Error()})
			continue
		}
		result.Packs++
		if def.Applied {
			if err := e.SetPackStatus(ctx, def.Name, true); err != nil {
				return nil, err
			}
		}
	}

	for name := range unresolved {
		result.Unresolved = append(result.Unresolved, name)
	}
	sort.Strings(result.Unresolved)

	logger.Log(common.LevelInfo, "Configuration imported", map[string]interface{}{
		"records":      result.Records,
		"added":        result.Added,
		"packs":        result.Packs,
		"scales":       result.Scales,
		"skipped":      result.Skipped,
		"unresolved":   len(result.Unresolved),
		"live_applied": opts.LiveApplied,
	})
	return result, nil
}

// importAdded restores the added props of one parent. With live data already
// carrying them, slots holding the expected prefab are adopted in place.
func (e *Engine) importAdded(ctx context.Context, ks *kindStores, pr configuration.ParentRecords, liveApplied bool) (int, error) {
	defs := make([]configuration.RecordDef, len(pr.Records))
	copy(defs, pr.Records)
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Lane != defs[j].Lane {
			return defs[i].Lane < defs[j].Lane
		}
		return defs[i].Slot < defs[j].Slot
	})

	count := 0
	for _, def := range defs {
		rec := e.fromDef(ks.kind, replacement.TierAdded, pr.Parent, def)
		rec.Replacement = rec.Target
		if liveApplied && e.adopt(ks, rec) {
			count++
			continue
		}
		_, _, err := e.AddNew(ctx, AddParams{
			ParentKind:     ks.kind,
			Parent:         pr.Parent,
			Lane:           rec.Lane,
			Prefab:         rec.Replacement,
			Angle:          rec.Angle,
			Position:       rec.Offset,
			Probability:    rec.Probability,
			RepeatDistance: rec.RepeatDistance,
			CustomHeight:   rec.CustomHeight,
			ID:             rec.ID,
		})
		if err != nil {
			common.LoggerFromContext(ctx).Log(common.LevelWarn, "Skipping added prop", withError(rec.Metadata(), err))
			continue
		}
		count++
	}
	return count, nil
}

// adopt registers an added record whose slot is already present live
func (e *Engine) adopt(ks *kindStores, rec *replacement.Record) bool {
	if rec.Unresolved || rec.Slot < 0 {
		return false
	}
	ref := prefab.InstanceRef{Parent: prefab.NewRef(ks.kind, rec.Parent), Lane: rec.Lane, Slot: rec.Slot}
	count, err := e.host.SlotCount(ref.Parent, ref.Lane)
	if err != nil || rec.Slot >= count {
		return false
	}
	live, err := e.host.Slot(ref)
	if err != nil || live.Prefab != rec.Replacement {
		return false
	}
	ks.added.Add(added.Key{Parent: rec.Parent, Lane: rec.Lane}, rec.Slot, rec)
	return true
}
