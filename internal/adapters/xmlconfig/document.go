package xmlconfig

import (
	"encoding/xml"
)

// documentXML is the on-disk form of a configuration document
type documentXML struct {
	XMLName   xml.Name    `xml:"BOBConfig"`
	Version   int         `xml:"version,attr"`
	Buildings sectionXML  `xml:"Buildings"`
	Networks  sectionXML  `xml:"Networks"`
	Packs     []packXML   `xml:"Packs>Pack"`
	Scales    []scaleXML  `xml:"Scales>Scale"`
	Randoms   []randomXML `xml:"Randoms>Random"`
}

type sectionXML struct {
	Individual []parentXML `xml:"Individual>Parent"`
	Grouped    []parentXML `xml:"Grouped>Parent"`
	All        []recordXML `xml:"All>Replacement"`
	Added      []parentXML `xml:"Added>Parent"`
}

type parentXML struct {
	Name    string      `xml:"name,attr"`
	Records []recordXML `xml:"Replacement"`
}

type recordXML struct {
	ID             string  `xml:"id,attr,omitempty"`
	Target         string  `xml:"target,attr"`
	Replacement    string  `xml:"replacement,attr"`
	IsTree         bool    `xml:"tree,attr,omitempty"`
	Lane           int     `xml:"lane,attr"`
	Slot           int     `xml:"slot,attr"`
	Angle          float64 `xml:"angle,attr,omitempty"`
	OffsetX        float64 `xml:"offsetX,attr,omitempty"`
	OffsetY        float64 `xml:"offsetY,attr,omitempty"`
	OffsetZ        float64 `xml:"offsetZ,attr,omitempty"`
	Probability    int     `xml:"probability,attr"`
	RepeatDistance float64 `xml:"repeatDistance,attr,omitempty"`
	CustomHeight   bool    `xml:"customHeight,attr,omitempty"`
}

type packXML struct {
	Name    string      `xml:"name,attr"`
	Applied bool        `xml:"applied,attr"`
	Records []recordXML `xml:"Replacement"`
}

type scaleXML struct {
	Prefab string  `xml:"prefab,attr"`
	IsTree bool    `xml:"tree,attr,omitempty"`
	Min    float64 `xml:"min,attr"`
	Max    float64 `xml:"max,attr"`
}

type randomXML struct {
	Name       string         `xml:"name,attr"`
	IsTree     bool           `xml:"tree,attr,omitempty"`
	Variations []variationXML `xml:"Variation"`
}

type variationXML struct {
	Prefab      string `xml:"prefab,attr"`
	Probability int    `xml:"probability,attr"`
	Locked      bool   `xml:"locked,attr,omitempty"`
}
