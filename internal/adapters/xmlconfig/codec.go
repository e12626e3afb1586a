package xmlconfig

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/andrescamacho/bob-go/internal/domain/configuration"
)

// Encode writes doc as indented XML
func Encode(w io.Writer, doc *configuration.Document) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(toXML(doc)); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode reads a document written by Encode
func Decode(r io.Reader) (*configuration.Document, error) {
	var x documentXML
	if err := xml.NewDecoder(r).Decode(&x); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return fromXML(&x), nil
}

func toXML(doc *configuration.Document) *documentXML {
	x := &documentXML{
		Version:   doc.Version,
		Buildings: sectionToXML(doc.Buildings),
		Networks:  sectionToXML(doc.Networks),
	}
	for _, p := range doc.Packs {
		x.Packs = append(x.Packs, packXML{Name: p.Name, Applied: p.Applied, Records: recordsToXML(p.Records)})
	}
	for _, s := range doc.Scales {
		x.Scales = append(x.Scales, scaleXML{Prefab: s.Prefab, IsTree: s.IsTree, Min: s.Min, Max: s.Max})
	}
	for _, r := range doc.Randoms {
		rx := randomXML{Name: r.Name, IsTree: r.IsTree}
		for _, v := range r.Variations {
			rx.Variations = append(rx.Variations, variationXML{Prefab: v.Prefab, Probability: v.Probability, Locked: v.Locked})
		}
		x.Randoms = append(x.Randoms, rx)
	}
	return x
}

func fromXML(x *documentXML) *configuration.Document {
	doc := &configuration.Document{
		Version:   x.Version,
		Buildings: sectionFromXML(x.Buildings),
		Networks:  sectionFromXML(x.Networks),
	}
	for _, p := range x.Packs {
		doc.Packs = append(doc.Packs, configuration.PackDef{Name: p.Name, Applied: p.Applied, Records: recordsFromXML(p.Records)})
	}
	for _, s := range x.Scales {
		doc.Scales = append(doc.Scales, configuration.ScaleDef{Prefab: s.Prefab, IsTree: s.IsTree, Min: s.Min, Max: s.Max})
	}
	for _, r := range x.Randoms {
		rd := configuration.RandomDef{Name: r.Name, IsTree: r.IsTree}
		for _, v := range r.Variations {
			rd.Variations = append(rd.Variations, configuration.VariationDef{Prefab: v.Prefab, Probability: v.Probability, Locked: v.Locked})
		}
		doc.Randoms = append(doc.Randoms, rd)
	}
	return doc
}

func sectionToXML(s configuration.Section) sectionXML {
	return sectionXML{
		Individual: parentsToXML(s.Individual),
		Grouped:    parentsToXML(s.Grouped),
		All:        recordsToXML(s.All),
		Added:      parentsToXML(s.Added),
	}
}

func sectionFromXML(x sectionXML) configuration.Section {
	return configuration.Section{
		Individual: parentsFromXML(x.Individual),
		Grouped:    parentsFromXML(x.Grouped),
		All:        recordsFromXML(x.All),
		Added:      parentsFromXML(x.Added),
	}
}

func parentsToXML(list []configuration.ParentRecords) []parentXML {
	var out []parentXML
	for _, pr := range list {
		out = append(out, parentXML{Name: pr.Parent, Records: recordsToXML(pr.Records)})
	}
	return out
}

func parentsFromXML(list []parentXML) []configuration.ParentRecords {
	var out []configuration.ParentRecords
	for _, px := range list {
		out = append(out, configuration.ParentRecords{Parent: px.Name, Records: recordsFromXML(px.Records)})
	}
	return out
}

func recordsToXML(defs []configuration.RecordDef) []recordXML {
	var out []recordXML
	for _, d := range defs {
		out = append(out, recordXML{
			ID:             d.ID,
			Target:         d.Target,
			Replacement:    d.Replacement,
			IsTree:         d.IsTree,
			Lane:           d.Lane,
			Slot:           d.Slot,
			Angle:          d.Angle,
			OffsetX:        d.OffsetX,
			OffsetY:        d.OffsetY,
			OffsetZ:        d.OffsetZ,
			Probability:    d.Probability,
			RepeatDistance: d.RepeatDistance,
			CustomHeight:   d.CustomHeight,
		})
	}
	return out
}

func recordsFromXML(list []recordXML) []configuration.RecordDef {
	var out []configuration.RecordDef
	for _, x := range list {
		out = append(out, configuration.RecordDef{
			ID:             x.ID,
			Target:         x.Target,
			Replacement:    x.Replacement,
			IsTree:         x.IsTree,
			Lane:           x.Lane,
			Slot:           x.Slot,
			Angle:          x.Angle,
			OffsetX:        x.OffsetX,
			OffsetY:        x.OffsetY,
			OffsetZ:        x.OffsetZ,
			Probability:    x.Probability,
			RepeatDistance: x.RepeatDistance,
			CustomHeight:   x.CustomHeight,
		})
	}
	return out
}
