package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	brailleBase = 0x2800
	// Dots with less alpha than this stay unlit.
	alphaThreshold = 0x60
)

// brailleBits[y][x] is the bit of the dot at x, y within a cell.
var brailleBits = [DotsY][DotsX]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Cell is one terminal cell. Color is a lipgloss hex color, empty for none.
type Cell struct {
	Rune  rune
	Color string
}

// Grid is the rendered frame, row major.
type Grid [][]Cell

// NewGrid returns a blank grid.
func NewGrid(cols, rows int) Grid {
	g := make(Grid, rows)
	for y := range g {
		g[y] = make([]Cell, cols)
		for x := range g[y] {
			g[y][x] = Cell{Rune: ' '}
		}
	}
	return g
}

// Braille folds each 2x4 block of dots into one braille rune. A cell takes
// the color most of its lit dots have.
func Braille(img *image.RGBA) Grid {
	b := img.Bounds()
	cols, rows := b.Dx()/DotsX, b.Dy()/DotsY
	g := NewGrid(cols, rows)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			var bits rune
			counts := map[color.RGBA]int{}
			for dy := 0; dy < DotsY; dy++ {
				for dx := 0; dx < DotsX; dx++ {
					c := img.RGBAAt(b.Min.X+col*DotsX+dx, b.Min.Y+row*DotsY+dy)
					if c.A < alphaThreshold {
						continue
					}
					bits |= brailleBits[dy][dx]
					counts[opaque(c)]++
				}
			}
			if bits == 0 {
				continue
			}
			g[row][col] = Cell{Rune: brailleBase + bits, Color: hex(dominant(counts))}
		}
	}
	return g
}

// Put writes text into row starting at col, clipped to the grid.
func (g Grid) Put(col, row int, text, fg string) {
	if row < 0 || row >= len(g) {
		return
	}
	for _, r := range text {
		if col >= 0 && col < len(g[row]) {
			g[row][col] = Cell{Rune: r, Color: fg}
		}
		col++
	}
}

// Lines renders each row, grouping runs of one color into a single style.
func (g Grid) Lines() []string {
	out := make([]string, len(g))
	for y, row := range g {
		var sb strings.Builder
		var run strings.Builder
		current := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if current == "" {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(current)).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.Color != current {
				flush()
				current = c.Color
			}
			run.WriteRune(c.Rune)
		}
		flush()
		out[y] = sb.String()
	}
	return out
}

// String renders the grid without color.
func (g Grid) String() string {
	lines := make([]string, len(g))
	for y, row := range g {
		rs := make([]rune, len(row))
		for x, c := range row {
			rs[x] = c.Rune
		}
		lines[y] = string(rs)
	}
	return strings.Join(lines, "\n")
}

func opaque(c color.RGBA) color.RGBA {
	if c.A == 0xff || c.A == 0 {
		return c
	}
	// Undo premultiplication.
	return color.RGBA{
		R: uint8(uint16(c.R) * 0xff / uint16(c.A)),
		G: uint8(uint16(c.G) * 0xff / uint16(c.A)),
		B: uint8(uint16(c.B) * 0xff / uint16(c.A)),
		A: 0xff,
	}
}

func dominant(counts map[color.RGBA]int) color.RGBA {
	var best color.RGBA
	n := -1
	for c, k := range counts {
		if k > n || k == n && less(c, best) {
			best, n = c, k
		}
	}
	return best
}

func less(a, b color.RGBA) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	if a.G != b.G {
		return a.G < b.G
	}
	return a.B < b.B
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
