// Package preview renders one layer of a placement grid to a PNG image.
//
// Each solved cell is filled with its tile's palette colour, labelled with
// the tile ID and marked with an arrow pointing along the rotated +X axis.
// Unsolved cells are grey with a cross. With Options.Outlines set, the face
// boundaries of each placed entry are overlaid as thin lines.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/chazu/tessera/pkg/solver"
	"github.com/chazu/tessera/pkg/tileset"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// colorPalette assigns distinct colours to tiles.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

var (
	gridColor     = color.RGBA{0x30, 0x30, 0x30, 0xff}
	unsolvedColor = color.RGBA{0xa0, 0xa0, 0xa0, 0xff}
	markColor     = color.RGBA{0x14, 0x14, 0x14, 0xff}
	outlineColor  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// DefaultCell is the default cell edge in pixels.
const DefaultCell = 32

// Options controls rendering.
type Options struct {
	// Cell is the edge of one cell in pixels.
	Cell int
	// Layer selects the Z slice to draw.
	Layer int
	// Labels draws the tile ID in each solved cell. Ignored below 16px.
	Labels bool
	// Outlines, when set, supplies the face boundaries drawn over each
	// solved cell.
	Outlines Outliner
}

// Outliner returns the boundary polylines of a catalogue entry per face, in
// normalized tile space. *tileset.Tileset implements it.
type Outliner interface {
	BoundaryPolylines(entry int) [tileset.FaceCount][][]mgl64.Vec3
}

// TileColor returns the palette colour of a tile.
func TileColor(tile uint32) color.RGBA {
	return parseHex(colorPalette[int(tile)%len(colorPalette)])
}

func parseHex(s string) color.RGBA {
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		panic(fmt.Sprintf("preview: bad palette colour %q", s))
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}

// Render draws layer opts.Layer of g. Grid +Y points up in the image.
func Render(g *solver.PlacementGrid, opts Options) (*image.RGBA, error) {
	if opts.Cell <= 0 {
		opts.Cell = DefaultCell
	}
	if opts.Layer < 0 || opts.Layer >= g.Shape.Z {
		return nil, fmt.Errorf("preview: layer %d outside grid %s", opts.Layer, g.Shape)
	}

	s := opts.Cell
	img := image.NewRGBA(image.Rect(0, 0, g.Shape.X*s, g.Shape.Y*s))
	draw.Draw(img, img.Bounds(), image.NewUniform(gridColor), image.Point{}, draw.Src)

	var face font.Face
	if opts.Labels && s >= 16 {
		f, err := labelFace(float64(s) / 3)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		face = f
	}

	for y := 0; y < g.Shape.Y; y++ {
		for x := 0; x < g.Shape.X; x++ {
			p := g.At(x, y, opts.Layer)
			r := cellRect(x, y, g.Shape.Y, s)

			if !p.Solved {
				draw.Draw(img, r.Inset(1), image.NewUniform(unsolvedColor), image.Point{}, draw.Src)
				drawCross(img, r)
				continue
			}
			draw.Draw(img, r.Inset(1), image.NewUniform(TileColor(p.Tile)), image.Point{}, draw.Src)
			if opts.Outlines != nil {
				drawOutlines(img, r, opts.Outlines.BoundaryPolylines(p.Entry()))
			}
			drawArrow(img, r, p.Orientation)
			if face != nil {
				drawLabel(img, r, face, strconv.FormatUint(uint64(p.Tile), 10))
			}
		}
	}
	return img, nil
}

// cellRect returns the pixel rectangle of cell (x, y); row 0 is the top.
func cellRect(x, y, rows, s int) image.Rectangle {
	top := (rows - 1 - y) * s
	return image.Rect(x*s, top, (x+1)*s, top+s)
}

// fillPolygon rasterizes a closed polygon in image coordinates.
func fillPolygon(img *image.RGBA, c color.Color, pts ...[2]float64) {
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(pts[0][0]), float32(pts[0][1]))
	for _, p := range pts[1:] {
		z.LineTo(float32(p[0]), float32(p[1]))
	}
	z.ClosePath()
	z.Draw(img, b, image.NewUniform(c), image.Point{})
}

// drawArrow marks the direction the tile's +X axis faces after a yaw of
// orientation quarter turns.
func drawArrow(img *image.RGBA, r image.Rectangle, orientation uint8) {
	s := float64(r.Dx())
	cx := float64(r.Min.X) + s/2
	cy := float64(r.Min.Y) + s/2

	// Image Y grows downwards.
	a := float64(orientation%4) * math.Pi / 2
	dx, dy := math.Cos(a), -math.Sin(a)
	px, py := -dy, dx

	at := func(along, across float64) [2]float64 {
		return [2]float64{
			cx + (dx*along+px*across)*s,
			cy + (dy*along+py*across)*s,
		}
	}
	fillPolygon(img, markColor,
		at(-0.35, -0.06),
		at(0.10, -0.06),
		at(0.10, -0.18),
		at(0.38, 0),
		at(0.10, 0.18),
		at(0.10, 0.06),
		at(-0.35, 0.06),
	)
}

// drawCross draws both diagonals of the inner 60% of r.
func drawCross(img *image.RGBA, r image.Rectangle) {
	s := float64(r.Dx())
	x0 := float64(r.Min.X) + 0.2*s
	y0 := float64(r.Min.Y) + 0.2*s
	x1 := float64(r.Min.X) + 0.8*s
	y1 := float64(r.Min.Y) + 0.8*s
	w := math.Max(1, 0.04*s)

	fillPolygon(img, markColor, [2]float64{x0, y0 + w}, [2]float64{x0 + w, y0}, [2]float64{x1, y1 - w}, [2]float64{x1 - w, y1})
	fillPolygon(img, markColor, [2]float64{x1 - w, y0}, [2]float64{x1, y0 + w}, [2]float64{x0 + w, y1}, [2]float64{x0, y1 - w})
}

// drawOutlines projects every face polyline onto the layer plane. Side
// faces collapse onto the cell border, so only their horizontal runs show.
func drawOutlines(img *image.RGBA, r image.Rectangle, faces [tileset.FaceCount][][]mgl64.Vec3) {
	s := float64(r.Dx())
	w := math.Max(2, 0.04*s)
	at := func(p mgl64.Vec3) [2]float64 {
		return [2]float64{
			float64(r.Min.X) + (p.X()+1)/2*s,
			float64(r.Min.Y) + (1-p.Y())/2*s,
		}
	}
	for _, lines := range faces {
		for _, line := range lines {
			for i := 1; i < len(line); i++ {
				drawSegment(img, at(line[i-1]), at(line[i]), w)
			}
		}
	}
}

// drawSegment fills a w pixel wide band from a to b with square ends.
func drawSegment(img *image.RGBA, a, b [2]float64, w float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l < 1e-9 {
		return
	}
	h := w / 2
	ux, uy := dx/l*h, dy/l*h
	px, py := -uy, ux
	fillPolygon(img, outlineColor,
		[2]float64{a[0] - ux + px, a[1] - uy + py},
		[2]float64{b[0] + ux + px, b[1] + uy + py},
		[2]float64{b[0] + ux - px, b[1] + uy - py},
		[2]float64{a[0] - ux - px, a[1] - uy - py},
	)
}

func labelFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("preview: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("preview: font face: %w", err)
	}
	return face, nil
}

// drawLabel writes text in the top-left corner of r.
func drawLabel(img *image.RGBA, r image.Rectangle, face font.Face, text string) {
	ascent := face.Metrics().Ascent
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(markColor),
		Face: face,
		Dot:  fixed.P(r.Min.X+3, r.Min.Y+2).Add(fixed.Point26_6{Y: ascent}),
	}
	d.DrawString(text)
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}

// WriteFile renders g and writes the PNG to path.
func WriteFile(path string, g *solver.PlacementGrid, opts Options) error {
	img, err := Render(g, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
