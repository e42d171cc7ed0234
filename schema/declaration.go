package schema

import "sort"

// Provenance records where a Declaration came from. It only strengthens:
// a collection with no validator starts Unset, reads as Inferred once
// sampled, and becomes Explicit on the first schema write.
type Provenance string

const (
	ProvenanceUnset    Provenance = "unset"
	ProvenanceInferred Provenance = "inferred"
	ProvenanceExplicit Provenance = "explicit"
)

// Declaration is the structural schema of one collection.
type Declaration struct {
	Fields     map[string]FieldType `json:"fields"`
	Provenance Provenance           `json:"provenance"`
}

// Has reports whether the declaration already carries the field.
func (d Declaration) Has(name string) bool {
	_, ok := d.Fields[name]
	return ok
}

// Definitions flattens the declaration into a stable list: _id first,
// then alphabetical. Only _id is marked required.
func (d Declaration) Definitions() []FieldDefinition {
	defs := make([]FieldDefinition, 0, len(d.Fields))
	for name, t := range d.Fields {
		defs = append(defs, FieldDefinition{Name: name, Type: t, Required: name == "_id"})
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Name == "_id" {
			return true
		}
		if defs[j].Name == "_id" {
			return false
		}
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// clone returns a Declaration whose field map can be mutated freely.
func (d Declaration) clone() Declaration {
	fields := make(map[string]FieldType, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return Declaration{Fields: fields, Provenance: d.Provenance}
}

// WithField returns a copy carrying the extra field, promoted to Explicit.
func (d Declaration) WithField(name string, t FieldType) Declaration {
	c := d.clone()
	c.Fields[name] = t
	c.Provenance = ProvenanceExplicit
	return c
}

// WithRenamedField returns a copy where oldName's type moved to newName.
// A no-op copy if oldName is absent.
func (d Declaration) WithRenamedField(oldName, newName string) Declaration {
	c := d.clone()
	if t, ok := c.Fields[oldName]; ok {
		delete(c.Fields, oldName)
		c.Fields[newName] = t
	}
	return c
}

// WithoutField returns a copy lacking the field.
func (d Declaration) WithoutField(name string) Declaration {
	c := d.clone()
	delete(c.Fields, name)
	return c
}
