package host

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/bob-go/internal/domain/prefab"
)

// Scene is the YAML description of the loaded prefabs
type Scene struct {
	Buildings []BuildingDef `yaml:"buildings"`
	Networks  []NetworkDef  `yaml:"networks"`
	Trees     []ContentDef  `yaml:"trees"`
	Props     []ContentDef  `yaml:"props"`
}

// BuildingDef is a building and its authored prop/tree slots
type BuildingDef struct {
	Name  string    `yaml:"name"`
	Slots []SlotDef `yaml:"slots"`
}

// NetworkDef is a network and the slots of each of its lanes
type NetworkDef struct {
	Name  string    `yaml:"name"`
	Lanes []LaneDef `yaml:"lanes"`
}

// LaneDef is one lane of a network
type LaneDef struct {
	Slots []SlotDef `yaml:"slots"`
}

// SlotDef is one authored slot
type SlotDef struct {
	Prefab         string    `yaml:"prefab"`
	Tree           bool      `yaml:"tree"`
	Angle          float64   `yaml:"angle"`
	Position       []float64 `yaml:"position"`
	Probability    *int      `yaml:"probability"`
	RepeatDistance float64   `yaml:"repeat_distance"`
	FixedHeight    bool      `yaml:"fixed_height"`
}

// ContentDef is a tree or prop prefab with its own scale range
type ContentDef struct {
	Name     string  `yaml:"name"`
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`
}

// ParseScene decodes a YAML scene
func ParseScene(r io.Reader) (*Scene, error) {
	var scene Scene
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&scene); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &scene, nil
}

// LoadScene reads a YAML scene file
func LoadScene(path string) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene: %w", err)
	}
	defer f.Close()
	return ParseScene(f)
}

func (d SlotDef) state() prefab.SlotState {
	kind := prefab.KindProp
	if d.Tree {
		kind = prefab.KindTree
	}
	probability := 100
	if d.Probability != nil {
		probability = *d.Probability
	}
	return prefab.SlotState{
		Prefab:         prefab.NewRef(kind, d.Prefab),
		Angle:          d.Angle,
		Position:       d.position(),
		Probability:    probability,
		RepeatDistance: d.RepeatDistance,
		FixedHeight:    d.FixedHeight,
	}
}

// position reads an [x, y, z] list; missing components are zero
func (d SlotDef) position() prefab.Vector3 {
	var v [3]float64
	copy(v[:], d.Position)
	return prefab.Vector3{X: v[0], Y: v[1], Z: v[2]}
}
