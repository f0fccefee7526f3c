package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicBezier(t *testing.T) {
	p0, p1, p2, p3 := Pt(0, 0), Pt(0, 100), Pt(100, 100), Pt(100, 0)

	points := CubicBezier(p0, p1, p2, p3, CurveSegments)
	require.Len(t, points, CurveSegments+1)
	assert.Equal(t, p0, points[0])
	assert.InDelta(t, p3.X, points[len(points)-1].X, 1e-9)
	assert.InDelta(t, p3.Y, points[len(points)-1].Y, 1e-9)

	// symmetric control polygon puts t=0.5 on the axis of symmetry
	mid := points[CurveSegments/2]
	assert.InDelta(t, 50, mid.X, 1e-9)
	assert.InDelta(t, 75, mid.Y, 1e-9)
}

func TestCubicBezier_StraightLine(t *testing.T) {
	points := CubicBezier(Pt(0, 0), Pt(10, 0), Pt(20, 0), Pt(30, 0), 3)
	require.Len(t, points, 4)
	for i, p := range points {
		assert.InDelta(t, float64(i*10), p.X, 1e-9)
		assert.Zero(t, p.Y)
	}
}

func TestSideNormal(t *testing.T) {
	assert.Equal(t, Pt(0, -1), SideNormal(SideTop))
	assert.Equal(t, Pt(0, 1), SideNormal(SideBottom))
	assert.Equal(t, Pt(-1, 0), SideNormal(SideLeft))
	assert.Equal(t, Pt(1, 0), SideNormal(SideRight))
}

func TestAnchorPoint_SingleSitsAtMidpoint(t *testing.T) {
	pos, size := Pt(100, 100), Sz(200, 40)
	assert.Equal(t, Pt(200, 100), AnchorPoint(pos, size, SideTop, 0, 1))
	assert.Equal(t, Pt(200, 140), AnchorPoint(pos, size, SideBottom, 0, 1))
	assert.Equal(t, Pt(100, 120), AnchorPoint(pos, size, SideLeft, 0, 1))
	assert.Equal(t, Pt(300, 120), AnchorPoint(pos, size, SideRight, 0, 1))
}

func TestAnchorPoint_Distribution(t *testing.T) {
	pos, size := Pt(0, 0), Sz(120, 60)
	for total := 1; total <= 6; total++ {
		mid := SideMidpoint(pos, size, SideBottom)
		prev := pos.X
		for i := 0; i < total; i++ {
			a := AnchorPoint(pos, size, SideBottom, i, total)
			assert.Greater(t, a.X, prev, "total=%d index=%d", total, i)
			assert.Less(t, a.X, pos.X+size.W)
			prev = a.X

			mirror := AnchorPoint(pos, size, SideBottom, total-1-i, total)
			assert.InDelta(t, mid.X-a.X, mirror.X-mid.X, 1e-9)
		}
	}
}

func TestClosestSide(t *testing.T) {
	pos, size := Pt(0, 0), Sz(100, 50)
	tests := []struct {
		name  string
		point Point
		want  Side
	}{
		{"above", Pt(50, -20), SideTop},
		{"below", Pt(50, 80), SideBottom},
		{"left", Pt(-30, 25), SideLeft},
		{"right", Pt(140, 25), SideRight},
		{"inside near top", Pt(50, 5), SideTop},
		{"inside near right edge", Pt(95, 25), SideRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClosestSide(pos, size, tt.point))
		})
	}
}

func TestFacingSide(t *testing.T) {
	assert.Equal(t, SideLeft, FacingSide(Pt(100, 0), Pt(0, 10)))
	assert.Equal(t, SideRight, FacingSide(Pt(0, 0), Pt(100, -10)))
	assert.Equal(t, SideTop, FacingSide(Pt(0, 100), Pt(10, 0)))
	assert.Equal(t, SideBottom, FacingSide(Pt(0, 0), Pt(0, 0)))
}

func TestParseSide(t *testing.T) {
	for _, side := range Sides {
		got, err := ParseSide(side.String())
		require.NoError(t, err)
		assert.Equal(t, side, got)
	}
	_, err := ParseSide("diagonal")
	assert.Error(t, err)
}

func TestSizeClamp(t *testing.T) {
	assert.Equal(t, Sz(1, 400), Sz(-5, 900).Clamp(1, 400))
	assert.Equal(t, Sz(20, 30), Sz(20, 30).Clamp(1, 400))
}
