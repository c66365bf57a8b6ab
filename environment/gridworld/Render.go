package gridworld

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/logrusorgru/aurora"
)

var (
	pathColour     = color.RGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff}
	obstacleColour = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	gridColour     = color.RGBA{R: 0xbb, G: 0xbb, B: 0xbb, A: 0xff}
	agentColour    = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// Sprint renders the GridWorld as text, one line per row from the top
// (largest y) down, each prefixed by its y coordinate. The agent is
// drawn as A, path cells as . and obstacles as X. A final line labels
// the x coordinates. If colours is true, cells are coloured with ANSI
// escape sequences.
func (g *GridWorld) Sprint(colours bool) string {
	au := aurora.NewAurora(colours)
	x0, y0 := g.Position()

	var b strings.Builder
	for y := g.r - 1; y >= 0; y-- {
		fmt.Fprintf(&b, "%d ", y)
		for x := 0; x < g.c; x++ {
			switch {
			case x == x0 && y == y0:
				b.WriteString(au.Bold(au.Red("A")).String())
			case g.At(x, y) == Path:
				b.WriteString(au.Gray(12, ".").String())
			default:
				b.WriteString(au.Blue("X").String())
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n+ ")
	for x := 0; x < g.c; x++ {
		fmt.Fprintf(&b, "%d", x%10)
	}
	b.WriteString("\n")

	return b.String()
}

// Image draws the GridWorld with square cells of cellSize pixels. The
// y-axis points up, so row y = 0 is drawn at the bottom.
func (g *GridWorld) Image(cellSize int) image.Image {
	if cellSize <= 0 {
		panic(fmt.Sprintf("image: cell size must be positive, got %d",
			cellSize))
	}

	size := float64(cellSize)
	dc := gg.NewContext(g.c*cellSize, g.r*cellSize)
	dc.SetColor(pathColour)
	dc.Clear()

	// Obstacles
	for x := 0; x < g.c; x++ {
		for y := 0; y < g.r; y++ {
			if g.At(x, y) != Obstacle {
				continue
			}
			px, py := g.pixel(x, y, size)
			dc.DrawRectangle(px, py, size, size)
		}
	}
	dc.SetColor(obstacleColour)
	dc.Fill()

	// Grid lines
	for x := 0; x <= g.c; x++ {
		dc.DrawLine(float64(x)*size, 0, float64(x)*size, float64(g.r)*size)
	}
	for y := 0; y <= g.r; y++ {
		dc.DrawLine(0, float64(y)*size, float64(g.c)*size, float64(y)*size)
	}
	dc.SetColor(gridColour)
	dc.SetLineWidth(1)
	dc.Stroke()

	// Agent
	x, y := g.Position()
	px, py := g.pixel(x, y, size)
	dc.DrawCircle(px+size/2, py+size/2, size/3)
	dc.SetColor(agentColour)
	dc.Fill()

	return dc.Image()
}

// EncodePNG writes the image of the GridWorld to w in PNG format
func (g *GridWorld) EncodePNG(w io.Writer, cellSize int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, g.Image(cellSize)); err != nil {
		return fmt.Errorf("encodePNG: %v", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// pixel returns the top-left pixel of the cell at (x, y)
func (g *GridWorld) pixel(x, y int, size float64) (float64, float64) {
	return float64(x) * size, float64(g.r-1-y) * size
}
