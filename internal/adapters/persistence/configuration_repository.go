package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/bob-go/internal/domain/configuration"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
)

const (
	sectionBuilding = "building"
	sectionNetwork  = "network"

	tierIndividual = "individual"
	tierGrouped    = "grouped"
	tierPack       = "pack"
	tierAll        = "all"
	tierAdded      = "added"
)

// GormConfigurationRepository stores configuration documents as relational
// rows, one profile per document
type GormConfigurationRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormConfigurationRepository creates a new configuration repository.
// If clock is nil, uses RealClock.
func NewGormConfigurationRepository(db *gorm.DB, clock shared.Clock) *GormConfigurationRepository {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormConfigurationRepository{db: db, clock: clock}
}

// Save replaces the document stored under profile
func (r *GormConfigurationRepository) Save(ctx context.Context, profile string, doc *configuration.Document) error {
	if profile == "" {
		return fmt.Errorf("profile name is required")
	}
	if doc == nil {
		return fmt.Errorf("document is required")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.clock.Now()
		var model ConfigurationProfileModel
		err := tx.Where("name = ?", profile).First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = ConfigurationProfileModel{Name: profile, Version: doc.Version, CreatedAt: now, UpdatedAt: now}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create profile: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to find profile: %w", err)
		default:
			model.Version = doc.Version
			model.UpdatedAt = now
			if err := tx.Save(&model).Error; err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
		}

		if err := deleteProfileRows(tx, model.ID); err != nil {
			return err
		}

		records := recordModels(model.ID, doc)
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, 200).Error; err != nil {
				return fmt.Errorf("failed to save replacement records: %w", err)
			}
		}

		packs := make([]ReplacementPackModel, 0, len(doc.Packs))
		for i, p := range doc.Packs {
			packs = append(packs, ReplacementPackModel{ProfileID: model.ID, Position: i, Name: p.Name, Applied: p.Applied})
		}
		if len(packs) > 0 {
			if err := tx.Create(&packs).Error; err != nil {
				return fmt.Errorf("failed to save packs: %w", err)
			}
		}

		scales := make([]ScaleOverrideModel, 0, len(doc.Scales))
		for i, s := range doc.Scales {
			scales = append(scales, ScaleOverrideModel{ProfileID: model.ID, Position: i, Prefab: s.Prefab, IsTree: s.IsTree, Min: s.Min, Max: s.Max})
		}
		if len(scales) > 0 {
			if err := tx.Create(&scales).Error; err != nil {
				return fmt.Errorf("failed to save scale overrides: %w", err)
			}
		}

		randoms := make([]RandomPrefabModel, 0, len(doc.Randoms))
		for i, rd := range doc.Randoms {
			variations, err := json.Marshal(rd.Variations)
			if err != nil {
				return fmt.Errorf("failed to marshal variations of %s: %w", rd.Name, err)
			}
			randoms = append(randoms, RandomPrefabModel{ProfileID: model.ID, Position: i, Name: rd.Name, IsTree: rd.IsTree, Variations: string(variations)})
		}
		if len(randoms) > 0 {
			if err := tx.Create(&randoms).Error; err != nil {
				return fmt.Errorf("failed to save random prefabs: %w", err)
			}
		}
		return nil
	})
}

// Load rebuilds the document stored under profile
func (r *GormConfigurationRepository) Load(ctx context.Context, profile string) (*configuration.Document, error) {
	db := r.db.WithContext(ctx)

	var model ConfigurationProfileModel
	if err := db.Where("name = ?", profile).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", configuration.ErrProfileNotFound, profile)
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	doc := configuration.New()
	doc.Version = model.Version

	var packs []ReplacementPackModel
	if err := db.Where("profile_id = ?", model.ID).Order("position").Find(&packs).Error; err != nil {
		return nil, fmt.Errorf("failed to load packs: %w", err)
	}
	packIndex := make(map[string]int, len(packs))
	for i, p := range packs {
		packIndex[p.Name] = i
		doc.Packs = append(doc.Packs, configuration.PackDef{Name: p.Name, Applied: p.Applied})
	}

	var records []ReplacementRecordModel
	if err := db.Where("profile_id = ?", model.ID).Order("position").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load replacement records: %w", err)
	}
	building := newSectionBuilder()
	network := newSectionBuilder()
	for _, m := range records {
		def := recordDef(m)
		if m.Tier == tierPack {
			i, ok := packIndex[m.PackName]
			if !ok {
				return nil, fmt.Errorf("record %s references unknown pack %s", m.RecordID, m.PackName)
			}
			doc.Packs[i].Records = append(doc.Packs[i].Records, def)
			continue
		}
		builder := building
		if m.ParentKind == sectionNetwork {
			builder = network
		}
		if err := builder.add(m.Tier, m.Parent, def); err != nil {
			return nil, err
		}
	}
	doc.Buildings = building.section
	doc.Networks = network.section

	var scales []ScaleOverrideModel
	if err := db.Where("profile_id = ?", model.ID).Order("position").Find(&scales).Error; err != nil {
		return nil, fmt.Errorf("failed to load scale overrides: %w", err)
	}
	for _, s := range scales {
		doc.Scales = append(doc.Scales, configuration.ScaleDef{Prefab: s.Prefab, IsTree: s.IsTree, Min: s.Min, Max: s.Max})
	}

	var randoms []RandomPrefabModel
	if err := db.Where("profile_id = ?", model.ID).Order("position").Find(&randoms).Error; err != nil {
		return nil, fmt.Errorf("failed to load random prefabs: %w", err)
	}
	for _, rm := range randoms {
		def := configuration.RandomDef{Name: rm.Name, IsTree: rm.IsTree}
		if rm.Variations != "" {
			if err := json.Unmarshal([]byte(rm.Variations), &def.Variations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal variations of %s: %w", rm.Name, err)
			}
		}
		doc.Randoms = append(doc.Randoms, def)
	}
	return doc, nil
}

// List returns every stored profile name
func (r *GormConfigurationRepository) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&ConfigurationProfileModel{}).Order("name").Pluck("name", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return names, nil
}

// Delete removes a profile and all of its rows
func (r *GormConfigurationRepository) Delete(ctx context.Context, profile string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model ConfigurationProfileModel
		if err := tx.Where("name = ?", profile).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", configuration.ErrProfileNotFound, profile)
			}
			return err
		}
		if err := deleteProfileRows(tx, model.ID); err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
}

func deleteProfileRows(tx *gorm.DB, profileID int) error {
	for _, m := range []interface{}{&ReplacementRecordModel{}, &ReplacementPackModel{}, &ScaleOverrideModel{}, &RandomPrefabModel{}} {
		if err := tx.Where("profile_id = ?", profileID).Delete(m).Error; err != nil {
			return fmt.Errorf("failed to clear profile rows: %w", err)
		}
	}
	return nil
}

// recordModels flattens every record of doc in document order
func recordModels(profileID int, doc *configuration.Document) []ReplacementRecordModel {
	models := make([]ReplacementRecordModel, 0, doc.RecordCount())
	add := func(kind, tier, parent, pack string, def configuration.RecordDef) {
		models = append(models, ReplacementRecordModel{
			ProfileID:      profileID,
			Position:       len(models),
			RecordID:       def.ID,
			ParentKind:     kind,
			Tier:           tier,
			Parent:         parent,
			PackName:       pack,
			Target:         def.Target,
			Replacement:    def.Replacement,
			IsTree:         def.IsTree,
			Lane:           def.Lane,
			Slot:           def.Slot,
			Angle:          def.Angle,
			OffsetX:        def.OffsetX,
			OffsetY:        def.OffsetY,
			OffsetZ:        def.OffsetZ,
			Probability:    def.Probability,
			RepeatDistance: def.RepeatDistance,
			CustomHeight:   def.CustomHeight,
		})
	}
	addSection := func(kind string, s configuration.Section) {
		for _, pr := range s.Individual {
			for _, def := range pr.Records {
				add(kind, tierIndividual, pr.Parent, "", def)
			}
		}
		for _, pr := range s.Grouped {
			for _, def := range pr.Records {
				add(kind, tierGrouped, pr.Parent, "", def)
			}
		}
		for _, def := range s.All {
			add(kind, tierAll, "", "", def)
		}
		for _, pr := range s.Added {
			for _, def := range pr.Records {
				add(kind, tierAdded, pr.Parent, "", def)
			}
		}
	}
	addSection(sectionBuilding, doc.Buildings)
	addSection(sectionNetwork, doc.Networks)
	for _, p := range doc.Packs {
		for _, def := range p.Records {
			add(sectionNetwork, tierPack, "", p.Name, def)
		}
	}
	return models
}

func recordDef(m ReplacementRecordModel) configuration.RecordDef {
	return configuration.RecordDef{
		ID:             m.RecordID,
		Target:         m.Target,
		Replacement:    m.Replacement,
		IsTree:         m.IsTree,
		Lane:           m.Lane,
		Slot:           m.Slot,
		Angle:          m.Angle,
		OffsetX:        m.OffsetX,
		OffsetY:        m.OffsetY,
		OffsetZ:        m.OffsetZ,
		Probability:    m.Probability,
		RepeatDistance: m.RepeatDistance,
		CustomHeight:   m.CustomHeight,
	}
}

// sectionBuilder regroups flat rows by tier and parent, keeping row order
type sectionBuilder struct {
	section configuration.Section
	index   map[string]int
}

func newSectionBuilder() *sectionBuilder {
	return &sectionBuilder{index: make(map[string]int)}
}

func (b *sectionBuilder) add(tier, parent string, def configuration.RecordDef) error {
	var list *[]configuration.ParentRecords
	switch tier {
	case tierAll:
		b.section.All = append(b.section.All, def)
		return nil
	case tierIndividual:
		list = &b.section.Individual
	case tierGrouped:
		list = &b.section.Grouped
	case tierAdded:
		list = &b.section.Added
	default:
		return fmt.Errorf("unknown record tier %q", tier)
	}

	key := tier + "|" + parent
	i, ok := b.index[key]
	if !ok {
		*list = append(*list, configuration.ParentRecords{Parent: parent})
		i = len(*list) - 1
		b.index[key] = i
	}
	(*list)[i].Records = append((*list)[i].Records, def)
	return nil
}
