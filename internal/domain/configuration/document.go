package configuration

// CurrentVersion is the document version written by this module
const CurrentVersion = 1

// Document is the persisted form of every replacement, added prop, pack,
// scale override and random prefab. Prefab references are stored by name
// and resolved against the loaded catalog on import.
type Document struct {
	Version   int
	Buildings Section
	Networks  Section
	Packs     []PackDef
	Scales    []ScaleDef
	Randoms   []RandomDef
}

// Section holds the records of one parent kind
type Section struct {
	Individual []ParentRecords
	Grouped    []ParentRecords
	All        []RecordDef
	Added      []ParentRecords
}

// ParentRecords groups records by parent prefab name
type ParentRecords struct {
	Parent  string
	Records []RecordDef
}

// RecordDef is the serialized form of a replacement record
type RecordDef struct {
	ID             string
	Target         string
	Replacement    string
	IsTree         bool
	Lane           int
	Slot           int
	Angle          float64
	OffsetX        float64
	OffsetY        float64
	OffsetZ        float64
	Probability    int
	RepeatDistance float64
	CustomHeight   bool
}

// PackDef is a named bundle of network replacement records
type PackDef struct {
	Name    string
	Applied bool
	Records []RecordDef
}

// ScaleDef is a persisted scale override
type ScaleDef struct {
	Prefab string
	IsTree bool
	Min    float64
	Max    float64
}

// RandomDef is a persisted random prefab
type RandomDef struct {
	Name       string
	IsTree     bool
	Variations []VariationDef
}

// VariationDef is one weighted choice of a random prefab
type VariationDef struct {
	Prefab      string
	Probability int
	Locked      bool
}

// New returns an empty document at the current version
func New() *Document {
	return &Document{Version: CurrentVersion}
}

// RecordCount returns the number of replacement and added records
func (d *Document) RecordCount() int {
	count := 0
	for _, s := range []Section{d.Buildings, d.Networks} {
		for _, lists := range [][]ParentRecords{s.Individual, s.Grouped, s.Added} {
			for _, pr := range lists {
				count += len(pr.Records)
			}
		}
		count += len(s.All)
	}
	return count
}
