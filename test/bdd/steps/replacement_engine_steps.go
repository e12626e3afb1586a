package steps

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/andrescamacho/bob-go/internal/adapters/host"
	"github.com/andrescamacho/bob-go/internal/adapters/persistence"
	"github.com/andrescamacho/bob-go/internal/application/engine"
	"github.com/andrescamacho/bob-go/internal/domain/configuration"
	"github.com/andrescamacho/bob-go/internal/domain/pack"
	"github.com/andrescamacho/bob-go/internal/domain/prefab"
	"github.com/andrescamacho/bob-go/internal/domain/replacement"
	"github.com/andrescamacho/bob-go/internal/domain/shared"
	"github.com/andrescamacho/bob-go/internal/infrastructure/database"
	"github.com/andrescamacho/bob-go/test/helpers"
)

type replacementEngineContext struct {
	ctx     context.Context
	scene   *helpers.SceneBuilder
	host    *host.MemoryHost
	engine  *engine.Engine
	records map[string]*replacement.Record
	added   map[string]int
	err     error

	doc    *configuration.Document
	result *engine.ImportResult

	db   *gorm.DB
	repo configuration.Repository
}

func (c *replacementEngineContext) reset() {
	if c.db != nil {
		_ = database.Close(c.db)
	}
	c.ctx = context.Background()
	c.scene = helpers.NewSceneBuilder()
	c.host = nil
	c.engine = nil
	c.records = make(map[string]*replacement.Record)
	c.added = make(map[string]int)
	c.err = nil
	c.doc = nil
	c.result = nil
	c.db = nil
	c.repo = nil
}

// running builds the host and engine on first use, after the scene is declared
func (c *replacementEngineContext) running() *engine.Engine {
	if c.engine == nil {
		c.host = c.scene.Build()
		c.engine = engine.New(c.host)
	}
	return c.engine
}

// Scene steps

func (c *replacementEngineContext) aLoadedPrefab(kind, name string) error {
	ref, err := helpers.ContentRef(kind, name)
	if err != nil {
		return err
	}
	c.scene.Content(ref)
	return nil
}

func (c *replacementEngineContext) aBuildingWithSlots(building string, table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		ref, err := helpers.ContentRef(getCellValueFromTable(table, row, "kind"), getCellValueFromTable(table, row, "prefab"))
		if err != nil {
			return err
		}
		c.scene.BuildingSlot(building, ref)
	}
	return nil
}

func (c *replacementEngineContext) aNetworkLaneWithSlots(network string, lane int, table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		ref, err := helpers.ContentRef(getCellValueFromTable(table, row, "kind"), getCellValueFromTable(table, row, "prefab"))
		if err != nil {
			return err
		}
		c.scene.NetworkSlot(network, lane, ref)
	}
	return nil
}

// Replacement steps

func (c *replacementEngineContext) iApplyTheReplacement(name string, table *godog.Table) error {
	fields := tableFields(table)
	params, err := c.replaceParams(fields)
	if err != nil {
		return err
	}
	if existing, ok := c.records[name]; ok {
		params.Existing = existing
	}
	rec, err := c.running().Replace(c.ctx, params)
	c.err = err
	if err == nil {
		c.records[name] = rec
	}
	return nil
}

func (c *replacementEngineContext) replaceParams(fields map[string]string) (engine.ReplaceParams, error) {
	var params engine.ReplaceParams
	tier, err := replacement.ParseTier(fields["tier"])
	if err != nil {
		return params, err
	}
	parentKind := prefab.KindBuilding
	if raw, ok := fields["parent kind"]; ok {
		if parentKind, err = prefab.ParseKind(raw); err != nil {
			return params, err
		}
	}
	contentKind := fields["kind"]
	if contentKind == "" {
		contentKind = "tree"
	}
	kind, err := prefab.ParseKind(contentKind)
	if err != nil {
		return params, err
	}

	params = engine.ReplaceParams{
		Tier:        tier,
		ParentKind:  parentKind,
		Parent:      fields["parent"],
		Replacement: prefab.NewRef(kind, fields["replacement"]),
	}
	if target := fields["target"]; target != "" {
		params.Target = prefab.NewRef(kind, target)
	}
	if params.Lane, err = intField(fields, "lane", prefab.NoLane); err != nil {
		return params, err
	}
	if params.Slot, err = intField(fields, "slot", -1); err != nil {
		return params, err
	}
	if params.Probability, err = intField(fields, "probability", 100); err != nil {
		return params, err
	}
	if params.Angle, err = floatField(fields, "angle"); err != nil {
		return params, err
	}
	if params.Offset.Y, err = floatField(fields, "offset y"); err != nil {
		return params, err
	}
	return params, nil
}

func (c *replacementEngineContext) iRemoveTheReplacement(name string) error {
	rec, ok := c.records[name]
	if !ok {
		return fmt.Errorf("no replacement named %q was applied", name)
	}
	c.err = c.running().RemoveReplacement(c.ctx, rec)
	if c.err == nil {
		delete(c.records, name)
	}
	return nil
}

// Slot assertions

func (c *replacementEngineContext) buildingSlot(building string, index int) (prefab.SlotState, error) {
	slots := c.host.Slots(prefab.NewRef(prefab.KindBuilding, building), prefab.NoLane)
	if index < 0 || index >= len(slots) {
		return prefab.SlotState{}, fmt.Errorf("building %s has %d slots, no slot %d", building, len(slots), index)
	}
	return slots[index], nil
}

func expectPrefab(state prefab.SlotState, kind, name string) error {
	want, err := helpers.ContentRef(kind, name)
	if err != nil {
		return err
	}
	if state.Prefab != want {
		return fmt.Errorf("expected %s, got %s", want, state.Prefab)
	}
	return nil
}

func (c *replacementEngineContext) buildingSlotShows(index int, building, kind, name string) error {
	c.running()
	state, err := c.buildingSlot(building, index)
	if err != nil {
		return err
	}
	return expectPrefab(state, kind, name)
}

func (c *replacementEngineContext) buildingSlotShowsWith(index int, building, kind, name string, probability int, angle float64) error {
	if err := c.buildingSlotShows(index, building, kind, name); err != nil {
		return err
	}
	state, _ := c.buildingSlot(building, index)
	if state.Probability != probability {
		return fmt.Errorf("expected probability %d, got %d", probability, state.Probability)
	}
	if state.Angle != angle {
		return fmt.Errorf("expected angle %g, got %g", angle, state.Angle)
	}
	return nil
}

func (c *replacementEngineContext) networkSlotShows(index, lane int, network, kind, name string) error {
	c.running()
	slots := c.host.Slots(prefab.NewRef(prefab.KindNetwork, network), lane)
	if index < 0 || index >= len(slots) {
		return fmt.Errorf("network %s lane %d has %d slots, no slot %d", network, lane, len(slots), index)
	}
	return expectPrefab(slots[index], kind, name)
}

func (c *replacementEngineContext) buildingShouldHaveSlots(building string, count int) error {
	c.running()
	got := len(c.host.Slots(prefab.NewRef(prefab.KindBuilding, building), prefab.NoLane))
	if got != count {
		return fmt.Errorf("expected %d slots in %s, got %d", count, building, got)
	}
	return nil
}

func (c *replacementEngineContext) slotShouldBeAdded(index int, building, not string) error {
	added := c.running().IsAdded(prefab.KindBuilding, building, prefab.NoLane, index)
	if want := not == ""; added != want {
		return fmt.Errorf("slot %d of %s: expected added=%v", index, building, want)
	}
	return nil
}

// Errors

var errorKinds = map[string]interface{}{
	"invalid slot reference": new(*shared.InvalidSlotReferenceError),
	"added slot":             new(*shared.AddedSlotError),
	"unknown pack":           new(*shared.UnknownPackError),
	"unknown record":         new(*shared.UnknownRecordError),
	"validation":             new(*shared.ValidationError),
}

func (c *replacementEngineContext) theOperationShouldFailWith(kind string) error {
	target, ok := errorKinds[kind]
	if !ok {
		return fmt.Errorf("unknown error kind %q", kind)
	}
	if c.err == nil {
		return fmt.Errorf("expected a %s error, got success", kind)
	}
	// errors.As needs a fresh pointer per call
	fresh := reflect.New(reflect.TypeOf(target).Elem()).Interface()
	if !errors.As(c.err, fresh) {
		return fmt.Errorf("expected a %s error, got %T: %v", kind, c.err, c.err)
	}
	return nil
}

func (c *replacementEngineContext) theOperationShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

// Pack steps

func (c *replacementEngineContext) aReplacementPack(name, kind, target, repl string) error {
	from, err := helpers.ContentRef(kind, target)
	if err != nil {
		return err
	}
	to, err := helpers.ContentRef(kind, repl)
	if err != nil {
		return err
	}
	return c.running().RegisterPack(pack.NewPack(name, []*replacement.Record{
		{Target: from, Replacement: to, Probability: 100},
	}))
}

func (c *replacementEngineContext) iSetThePack(action, name string) error {
	c.err = c.running().SetPackStatus(c.ctx, name, action == "apply")
	return nil
}

func (c *replacementEngineContext) thePackShouldBe(name, status string) error {
	applied := c.running().PackApplied(name)
	if want := status == "applied"; applied != want {
		return fmt.Errorf("pack %s: expected %s", name, status)
	}
	return nil
}

func (c *replacementEngineContext) thePackShouldConflict(name, not string) error {
	conflicts := c.running().Conflicts(name)
	if want := not == ""; conflicts != want {
		return fmt.Errorf("pack %s: expected conflicts=%v", name, want)
	}
	return nil
}

// Added prop steps

func (c *replacementEngineContext) iAddPropToBuilding(kind, name, building string, x float64, label string) error {
	ref, err := helpers.ContentRef(kind, name)
	if err != nil {
		return err
	}
	_, index, err := c.running().AddNew(c.ctx, engine.AddParams{
		ParentKind:  prefab.KindBuilding,
		Parent:      building,
		Lane:        prefab.NoLane,
		Prefab:      ref,
		Position:    prefab.Vector3{X: x},
		Probability: 100,
	})
	c.err = err
	if err == nil {
		c.added[label] = index
	}
	return nil
}

func (c *replacementEngineContext) iRemoveAddedSlot(index int, building string) error {
	c.err = c.running().RemoveNew(c.ctx, prefab.KindBuilding, building, prefab.NoLane, index)
	return nil
}

func (c *replacementEngineContext) theAddedPropShouldBeAtSlot(label string, index int) error {
	got, ok := c.added[label]
	if !ok {
		return fmt.Errorf("no added prop labelled %q", label)
	}
	if got != index {
		return fmt.Errorf("added prop %s: expected slot %d, got %d", label, index, got)
	}
	return nil
}

// Preview and reset steps

func (c *replacementEngineContext) iPreviewOnBuildingSlot(kind, name string, index int, building string) error {
	ref, err := helpers.ContentRef(kind, name)
	if err != nil {
		return err
	}
	e := c.running()
	h, err := e.GetOrAddHandler(c.ctx, prefab.BuildingSlot(building, index))
	if err != nil {
		return err
	}
	candidate := engine.NewCandidate(engine.ReplaceParams{
		Tier:        replacement.TierIndividual,
		ParentKind:  prefab.KindBuilding,
		Parent:      building,
		Lane:        prefab.NoLane,
		Slot:        index,
		Target:      h.Original().Prefab,
		Replacement: ref,
		Probability: 100,
	})
	c.err = e.PreviewReplacement(c.ctx, h, candidate)
	return nil
}

func (c *replacementEngineContext) iClearAllPreviews() error {
	return c.running().ClearAllPreviews(c.ctx)
}

func (c *replacementEngineContext) iResetTheEngine() error {
	c.records = make(map[string]*replacement.Record)
	c.added = make(map[string]int)
	return c.running().Reset(c.ctx)
}

func (c *replacementEngineContext) theExportedConfigurationShouldContain(count int) error {
	got := c.running().Export().RecordCount()
	if got != count {
		return fmt.Errorf("expected %d exported records, got %d", count, got)
	}
	return nil
}

// Document steps

func (c *replacementEngineContext) restart(doc *configuration.Document) error {
	c.host = c.scene.Build()
	c.engine = engine.New(c.host)
	result, err := c.engine.Import(c.ctx, doc, engine.ImportOptions{})
	c.result = result
	c.err = err
	return nil
}

func (c *replacementEngineContext) iExportAndImportIntoAFreshScene() error {
	c.doc = c.running().Export()
	return c.restart(c.doc)
}

func (c *replacementEngineContext) theImportShouldReport(records, skipped int) error {
	if c.result == nil {
		return fmt.Errorf("no import ran: %v", c.err)
	}
	if c.result.Records != records || c.result.Skipped != skipped {
		return fmt.Errorf("expected %d records and %d skipped, got %d and %d",
			records, skipped, c.result.Records, c.result.Skipped)
	}
	return nil
}

func (c *replacementEngineContext) aConfigurationDatabase() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}
	c.db = db
	clock := shared.NewMockClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	c.repo = persistence.NewGormConfigurationRepository(db, clock)
	return nil
}

func (c *replacementEngineContext) iSaveTheConfigurationAsProfile(profile string) error {
	if c.repo == nil {
		return fmt.Errorf("no configuration database")
	}
	c.err = c.repo.Save(c.ctx, profile, c.running().Export())
	return nil
}

func (c *replacementEngineContext) iLoadProfileIntoAFreshScene(profile string) error {
	if c.repo == nil {
		return fmt.Errorf("no configuration database")
	}
	doc, err := c.repo.Load(c.ctx, profile)
	if err != nil {
		c.err = err
		return nil
	}
	c.doc = doc
	return c.restart(doc)
}

func (c *replacementEngineContext) theStoredProfilesShouldBe(list string) error {
	profiles, err := c.repo.List(c.ctx)
	if err != nil {
		return err
	}
	var want []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			want = append(want, p)
		}
	}
	if !reflect.DeepEqual(profiles, want) && !(len(profiles) == 0 && len(want) == 0) {
		return fmt.Errorf("expected profiles %v, got %v", want, profiles)
	}
	return nil
}

func (c *replacementEngineContext) iDeleteProfile(profile string) error {
	c.err = c.repo.Delete(c.ctx, profile)
	return nil
}

func (c *replacementEngineContext) theProfileShouldBeMissing() error {
	if !errors.Is(c.err, configuration.ErrProfileNotFound) {
		return fmt.Errorf("expected profile not found, got %v", c.err)
	}
	return nil
}

// InitializeReplacementEngineScenario registers the replacement engine steps
func InitializeReplacementEngineScenario(sc *godog.ScenarioContext) {
	c := &replacementEngineContext{}

	sc.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		c.reset()
		return ctx, nil
	})
	sc.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if c.db != nil {
			_ = database.Close(c.db)
			c.db = nil
		}
		return ctx, nil
	})

	// Scene
	sc.Step(`^a loaded (tree|prop) "([^"]*)"$`, c.aLoadedPrefab)
	sc.Step(`^a building "([^"]*)" with slots:$`, c.aBuildingWithSlots)
	sc.Step(`^a network "([^"]*)" with lane (\d+) slots:$`, c.aNetworkLaneWithSlots)

	// Replacements
	sc.Step(`^I apply the replacement "([^"]*)":$`, c.iApplyTheReplacement)
	sc.Step(`^I remove the replacement "([^"]*)"$`, c.iRemoveTheReplacement)
	sc.Step(`^slot (\d+) of building "([^"]*)" should show (tree|prop) "([^"]*)"$`, c.buildingSlotShows)
	sc.Step(`^slot (\d+) of building "([^"]*)" should show (tree|prop) "([^"]*)" with probability (\d+) and angle (-?\d+(?:\.\d+)?)$`, c.buildingSlotShowsWith)
	sc.Step(`^slot (\d+) in lane (\d+) of network "([^"]*)" should show (tree|prop) "([^"]*)"$`, c.networkSlotShows)
	sc.Step(`^the operation should fail with an? "([^"]*)" error$`, c.theOperationShouldFailWith)
	sc.Step(`^the operation should succeed$`, c.theOperationShouldSucceed)

	// Packs
	sc.Step(`^a replacement pack "([^"]*)" replacing (tree|prop) "([^"]*)" with "([^"]*)"$`, c.aReplacementPack)
	sc.Step(`^I (apply|revert) the pack "([^"]*)"$`, c.iSetThePack)
	sc.Step(`^the pack "([^"]*)" should be (applied|reverted)$`, c.thePackShouldBe)
	sc.Step(`^the pack "([^"]*)" should (not )?conflict$`, c.thePackShouldConflict)

	// Added props
	sc.Step(`^I add (tree|prop) "([^"]*)" to building "([^"]*)" at x (\d+(?:\.\d+)?) as "([^"]*)"$`, c.iAddPropToBuilding)
	sc.Step(`^I remove added slot (\d+) from building "([^"]*)"$`, c.iRemoveAddedSlot)
	sc.Step(`^building "([^"]*)" should have (\d+) slots$`, c.buildingShouldHaveSlots)
	sc.Step(`^slot (\d+) of building "([^"]*)" should (not )?be an added prop$`, c.slotShouldBeAdded)
	sc.Step(`^the added prop "([^"]*)" should be at slot (\d+)$`, c.theAddedPropShouldBeAtSlot)

	// Previews and reset
	sc.Step(`^I preview (tree|prop) "([^"]*)" on slot (\d+) of building "([^"]*)"$`, c.iPreviewOnBuildingSlot)
	sc.Step(`^I clear all previews$`, c.iClearAllPreviews)
	sc.Step(`^I reset the engine$`, c.iResetTheEngine)
	sc.Step(`^the exported configuration should contain (\d+) records?$`, c.theExportedConfigurationShouldContain)

	// Documents and profiles
	sc.Step(`^I export the configuration and import it into a fresh scene$`, c.iExportAndImportIntoAFreshScene)
	sc.Step(`^the import should report (\d+) records? and (\d+) skipped$`, c.theImportShouldReport)
	sc.Step(`^a configuration database$`, c.aConfigurationDatabase)
	sc.Step(`^I save the configuration as profile "([^"]*)"$`, c.iSaveTheConfigurationAsProfile)
	sc.Step(`^I load profile "([^"]*)" into a fresh scene$`, c.iLoadProfileIntoAFreshScene)
	sc.Step(`^the stored profiles should be "([^"]*)"$`, c.theStoredProfilesShouldBe)
	sc.Step(`^I delete profile "([^"]*)"$`, c.iDeleteProfile)
	sc.Step(`^the profile should not be found$`, c.theProfileShouldBeMissing)
}
