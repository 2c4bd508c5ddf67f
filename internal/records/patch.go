// ABOUTME: Partial update request with explicit present/absent fields
// ABOUTME: A nil field is left unchanged; a non-nil field is set, even to its zero value

package records

import "github.com/2389/bestiary/internal/store"

// Patch describes a partial update. Each field is a pointer so that
// "not provided" and "set to the zero value" stay distinguishable.
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Category *string `json:"type,omitempty"`
	Ability  *string `json:"ability,omitempty"`
	Level    *int    `json:"level,omitempty"`
}

// Sets returns one set instruction per present field, in document field order
func (p Patch) Sets() []store.SetField {
	var sets []store.SetField
	if p.Name != nil {
		sets = append(sets, store.SetField{Field: store.FieldName, Value: *p.Name})
	}
	if p.Category != nil {
		sets = append(sets, store.SetField{Field: store.FieldCategory, Value: *p.Category})
	}
	if p.Ability != nil {
		sets = append(sets, store.SetField{Field: store.FieldAbility, Value: *p.Ability})
	}
	if p.Level != nil {
		sets = append(sets, store.SetField{Field: store.FieldLevel, Value: *p.Level})
	}
	return sets
}
