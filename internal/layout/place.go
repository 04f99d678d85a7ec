package layout

import (
	"math"
	"math/rand"

	"hexflow/internal/geom"
)

// Placeholder area for nodes reported without a position.
const (
	PlaceWidth  = 600.0
	PlaceHeight = 400.0
	placeMargin = 100.0
)

// Placer hands out initial positions for nodes that have none. A fixed
// seed gives the same sequence on every run.
type Placer struct {
	rng *rand.Rand
}

func NewPlacer(seed int64) *Placer {
	return &Placer{rng: rand.New(rand.NewSource(seed))}
}

func (p *Placer) Next() geom.Point {
	return geom.Pt(
		placeMargin+p.rng.Float64()*PlaceWidth,
		placeMargin+p.rng.Float64()*PlaceHeight,
	)
}

// Grid arranges ids row by row starting at origin, spacing world units
// apart, in a roughly square grid.
func Grid(ids []string, origin geom.Point, spacing float64) map[string]geom.Point {
	out := make(map[string]geom.Point, len(ids))
	if len(ids) == 0 {
		return out
	}
	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	for i, id := range ids {
		row, col := i/cols, i%cols
		out[id] = origin.Add(geom.Pt(float64(col)*spacing, float64(row)*spacing))
	}
	return out
}

// Force would run a physics layout. It currently delegates to Grid with
// enough spacing for the connection points to stay clear.
func Force(ids []string, origin geom.Point) map[string]geom.Point {
	return Grid(ids, origin, 4*NodeSize)
}
