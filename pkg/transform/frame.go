package transform

import (
	"strings"
)

// Field color modes understood by the visualization host.
const (
	FieldColorModeFixed = "fixed"
)

// Node-graph field naming conventions: `arc__` fields carry ring-arc
// weights, `arc__<x>_color` siblings carry their fixed color, `detail__`
// fields are self-describing metadata whose display name is their own first
// value.
const (
	arcFieldPrefix    = "arc__"
	colorFieldSuffix  = "_color"
	detailFieldPrefix = "detail__"
)

// FieldColor is a fixed-color assignment for a frame field.
type FieldColor struct {
	Mode       string `json:"mode"`
	FixedColor string `json:"fixedColor,omitempty"`
}

// FieldConfig carries per-field display configuration.
type FieldConfig struct {
	DisplayName string      `json:"displayName,omitempty"`
	Color       *FieldColor `json:"color,omitempty"`
}

// Field is one column vector of a frame.
type Field struct {
	Name   string      `json:"name"`
	Config FieldConfig `json:"config"`
	Values []any       `json:"values"`
}

// Frame is the field-oriented output shape used for dataframe and
// node-graph formats.
type Frame struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// FirstValue returns the field's first value as a string, or "" for an
// empty field.
func (f Field) FirstValue() string {
	if len(f.Values) == 0 {
		return ""
	}
	return cellString(f.Values[0])
}

// TableToFrame pivots a row-oriented table into column vectors.
func TableToFrame(t Table) Frame {
	fields := make([]Field, len(t.Columns))
	for i, c := range t.Columns {
		values := make([]any, 0, len(t.Rows))
		for _, row := range t.Rows {
			if i < len(row) {
				values = append(values, row[i])
			} else {
				values = append(values, nil)
			}
		}
		fields[i] = Field{Name: c.Text, Values: values}
	}
	return Frame{Name: t.Name, Fields: fields}
}

// ApplyNodeGraphNodesConfig rewrites a frame for node-graph node semantics:
// every `arc__` field with an `arc__<x>_color` sibling gets a display name
// with the prefix stripped and a fixed color taken from the sibling's first
// value, and the color fields themselves are dropped. `detail__` fields
// become self-describing via their first value.
func ApplyNodeGraphNodesConfig(frame Frame) Frame {
	fields := make([]Field, 0, len(frame.Fields))
	for _, field := range frame.Fields {
		if strings.HasPrefix(field.Name, arcFieldPrefix) {
			if strings.HasSuffix(field.Name, colorFieldSuffix) {
				continue
			}
			if color, ok := findArcColor(frame.Fields, field.Name); ok {
				field.Config = FieldConfig{
					DisplayName: strings.TrimPrefix(field.Name, arcFieldPrefix),
					Color: &FieldColor{
						Mode:       FieldColorModeFixed,
						FixedColor: color,
					},
				}
			}
		} else if strings.HasPrefix(field.Name, detailFieldPrefix) {
			field.Config.DisplayName = field.FirstValue()
		}
		fields = append(fields, field)
	}
	frame.Fields = fields
	return frame
}

// ApplyNodeGraphEdgesConfig rewrites a frame for node-graph edge semantics:
// only the `detail__` display-name treatment applies.
func ApplyNodeGraphEdgesConfig(frame Frame) Frame {
	fields := make([]Field, len(frame.Fields))
	for i, field := range frame.Fields {
		if strings.HasPrefix(field.Name, detailFieldPrefix) {
			field.Config.DisplayName = field.FirstValue()
		}
		fields[i] = field
	}
	frame.Fields = fields
	return frame
}

func findArcColor(fields []Field, arcName string) (string, bool) {
	for _, f := range fields {
		if strings.HasPrefix(f.Name, arcName) && strings.HasSuffix(f.Name, colorFieldSuffix) {
			return f.FirstValue(), true
		}
	}
	return "", false
}
