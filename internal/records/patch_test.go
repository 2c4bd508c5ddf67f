package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bestiary/internal/store"
)

func TestPatch_Sets(t *testing.T) {
	tests := []struct {
		name  string
		patch Patch
		want  []store.SetField
	}{
		{
			name:  "empty",
			patch: Patch{},
			want:  nil,
		},
		{
			name:  "level only",
			patch: Patch{Level: ptr(7)},
			want:  []store.SetField{{Field: "level", Value: 7}},
		},
		{
			name:  "zero values are present",
			patch: Patch{Name: ptr(""), Level: ptr(0)},
			want: []store.SetField{
				{Field: "name", Value: ""},
				{Field: "level", Value: 0},
			},
		},
		{
			name:  "all fields",
			patch: Patch{Name: ptr("Onix"), Category: ptr("Rock"), Ability: ptr("sturdy"), Level: ptr(12)},
			want: []store.SetField{
				{Field: "name", Value: "Onix"},
				{Field: "type", Value: "Rock"},
				{Field: "ability", Value: "sturdy"},
				{Field: "level", Value: 12},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.patch.Sets())
		})
	}
}

func TestPatch_DecodeDistinguishesAbsentFromZero(t *testing.T) {
	var p Patch
	require.NoError(t, json.Unmarshal([]byte(`{"level": 0}`), &p))

	require.NotNil(t, p.Level)
	assert.Equal(t, 0, *p.Level)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Category)
	assert.Nil(t, p.Ability)
}
