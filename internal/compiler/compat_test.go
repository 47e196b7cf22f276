package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gearmatrix/internal/ir"
)

func TestParseCompatMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CompatMode
		wantErr bool
	}{
		{"", CompatWarn, false},
		{"off", CompatOff, false},
		{"WARN", CompatWarn, false},
		{"Strict", CompatStrict, false},
		{"loose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompatMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckCompatibility_EdgeOrder(t *testing.T) {
	gears := []ir.GearSpec{
		{Index: 0, Type: ir.Internal, Teeth: 60, Radius: 60, Connections: []int{2, 1}},
		{Index: 1, Type: ir.Rack, Teeth: 30, Radius: 10},
		{Index: 2, Type: ir.Bevel, Teeth: 20, Radius: 20},
	}
	g := &ir.Graph{Successors: [][]int{{2, 1}, {}, {}}}

	warnings := CheckCompatibility(gears, g)
	require.Len(t, warnings, 2)
	assert.Equal(t, 2, warnings[0].To)
	assert.Equal(t, 1, warnings[1].To)
	assert.Equal(t, "Internal gear 0 cannot drive Bevel gear 2 (allowed: Spur, Helical)", warnings[0].Message)
}

func TestCheckCompatibility_AllowedPairs(t *testing.T) {
	pairs := [][2]ir.GearType{
		{ir.Spur, ir.Internal},
		{ir.Helical, ir.Rack},
		{ir.Bevel, ir.SpiralBevel},
		{ir.Miter, ir.Bevel},
		{ir.SpiralBevel, ir.SpiralBevel},
		{ir.Worm, ir.Spur},
		{ir.Internal, ir.Helical},
	}

	for _, p := range pairs {
		t.Run(string(p[0])+"->"+string(p[1]), func(t *testing.T) {
			gears := []ir.GearSpec{
				{Index: 0, Type: p[0], Teeth: 20, Radius: 10, Connections: []int{1}},
				{Index: 1, Type: p[1], Teeth: 20, Radius: 10},
			}
			g := &ir.Graph{Successors: [][]int{{1}, {}}}
			assert.Empty(t, CheckCompatibility(gears, g))
		})
	}
}
