// Native PNG rendering of a laid-out diagram.
// Mirrors the SVG output using Go's image packages.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/Bubbleman532/turing-sandbox/pkg/diagram"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Scale     float64 // output pixels per canvas unit (default 1)
	FontSize  int     // node label size in points
	LabelSize int     // edge label size in points
	Start     string  // start state, drawn with a double outline
}

// DefaultPNGOptions returns sensible defaults for PNG rendering.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Scale:     1,
		FontSize:  14,
		LabelSize: 12,
	}
}

// supersample is the oversampling factor; the image is drawn large and
// scaled down.
const supersample = 4

// renderContext holds rendering parameters including scale
type renderContext struct {
	img       *image.RGBA
	scale     float64 // canvas units to pixels
	lineWidth float64
	face      font.Face
	labelFace font.Face
}

func newFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // no hinting, we supersample instead
	})
}

func newRenderContext(img *image.RGBA, scale float64, opts PNGOptions) (*renderContext, error) {
	face, err := newFace(float64(opts.FontSize) * scale)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	labelFace, err := newFace(float64(opts.LabelSize) * scale)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &renderContext{
		img:       img,
		scale:     scale,
		lineWidth: scale * 2, // 2px base line width
		face:      face,
		labelFace: labelFace,
	}, nil
}

// RenderPNG renders the diagram's current geometry to PNG.
func RenderPNG(d *diagram.Diagram, w io.Writer, opts PNGOptions) error {
	def := DefaultPNGOptions()
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}
	if opts.FontSize == 0 {
		opts.FontSize = def.FontSize
	}
	if opts.LabelSize == 0 {
		opts.LabelSize = def.LabelSize
	}

	cw, ch := d.Size()
	width := int(math.Ceil(cw * opts.Scale))
	height := int(math.Ceil(ch * opts.Scale))

	large := image.NewRGBA(image.Rect(0, 0, width*supersample, height*supersample))
	ctx, err := newRenderContext(large, opts.Scale*supersample, opts)
	if err != nil {
		return err
	}
	renderDiagram(ctx, d, opts)

	// Downsample to target size using high-quality interpolation
	final := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return png.Encode(w, final)
}

func renderDiagram(ctx *renderContext, d *diagram.Diagram, opts PNGOptions) {
	draw.Draw(ctx.img, ctx.img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)
	s := ctx.scale
	r := d.Radius() * s

	for _, e := range d.Edges {
		e.RefreshLabels()
		pts := e.Points(48)
		if len(pts) < 2 {
			continue
		}
		c := colorBlack
		if e.Selected {
			c = colorSelected
		}
		for i := 1; i < len(pts); i++ {
			drawLine(ctx, pts[i-1].X*s, pts[i-1].Y*s, pts[i].X*s, pts[i].Y*s, c)
		}
		// reversed arcs are drawn from target to source
		tip, from := pts[len(pts)-1], pts[len(pts)-2]
		if e.Shape() == diagram.ShapeArc && e.Reversed() {
			tip, from = pts[0], pts[1]
		}
		drawArrowHead(ctx, from.X*s, from.Y*s, tip.X*s, tip.Y*s, c)

		em := float64(opts.LabelSize)
		for i, p := range e.Placements() {
			at, ok := e.LabelPosition(i, em)
			if !ok {
				continue
			}
			drawTextCentered(ctx, ctx.labelFace, int(at.X*s), int(at.Y*s), p.Text, colorBlack)
		}
	}

	// nodes paint over excess edge ends
	for i, n := range d.Nodes {
		stroke := colorBlack
		if n.Selected {
			stroke = colorSelected
		}
		drawCircle(ctx, n.X*s, n.Y*s, r, NodeColor(i), stroke)
		if n.Label == opts.Start {
			drawCircle(ctx, n.X*s, n.Y*s, r+3*s, color.Transparent, stroke)
		}
		drawTextCentered(ctx, ctx.face, int(n.X*s), int(n.Y*s), n.Label, colorWhite)
	}
}

// drawCircle fills and outlines a circle.
func drawCircle(ctx *renderContext, cx, cy, r float64, fill, stroke color.Color) {
	img := ctx.img
	thickness := ctx.lineWidth

	// Fill interior first
	if fill != color.Transparent {
		for dy := -r; dy <= r; dy++ {
			extent := math.Sqrt(r*r - dy*dy)
			for dx := -extent; dx <= extent; dx++ {
				img.Set(int(cx+dx), int(cy+dy), fill)
			}
		}
	}

	// Draw thick outline
	for angle := 0.0; angle < 2*math.Pi; angle += 0.005 {
		nx, ny := math.Cos(angle), math.Sin(angle)
		x, y := cx+r*nx, cy+r*ny
		for t := -thickness / 2; t <= thickness/2; t += 0.5 {
			img.Set(int(x+nx*t), int(y+ny*t), stroke)
		}
	}
}

// drawLine draws a line between two points with thickness from context.
func drawLine(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	img := ctx.img
	halfThick := ctx.lineWidth / 2

	dx := x2 - x1
	dy := y2 - y1
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps < 1 {
		steps = 1
	}

	dist := math.Sqrt(dx*dx + dy*dy)
	if dist < 1 {
		for ty := -halfThick; ty <= halfThick; ty++ {
			for tx := -halfThick; tx <= halfThick; tx++ {
				img.Set(int(x1+tx), int(y1+ty), c)
			}
		}
		return
	}

	perpX := -dy / dist
	perpY := dx / dist

	for i := 0.0; i <= steps; i++ {
		t := i / steps
		cx := x1 + dx*t
		cy := y1 + dy*t
		for offset := -halfThick; offset <= halfThick; offset += 0.5 {
			img.Set(int(cx+perpX*offset), int(cy+perpY*offset), c)
		}
	}
}

// drawArrowHead draws a filled arrowhead at (x2, y2) pointing away from
// (x1, y1).
func drawArrowHead(ctx *renderContext, x1, y1, x2, y2 float64, c color.Color) {
	dx := x2 - x1
	dy := y2 - y1
	dist := math.Sqrt(dx*dx + dy*dy)
	if dist == 0 {
		return
	}
	nx := dx / dist
	ny := dy / dist

	arrowLen := 9.0 * ctx.scale
	arrowWidth := 4.5 * ctx.scale

	ax1 := x2 - nx*arrowLen + ny*arrowWidth
	ay1 := y2 - ny*arrowLen - nx*arrowWidth
	ax2 := x2 - nx*arrowLen - ny*arrowWidth
	ay2 := y2 - ny*arrowLen + nx*arrowWidth

	for t := 0.0; t <= 1.0; t += 0.05 {
		mx := ax1 + (ax2-ax1)*t
		my := ay1 + (ay2-ay1)*t
		drawLine(ctx, x2, y2, mx, my, c)
	}
}

// drawTextCentered draws text centered on (x, y).
func drawTextCentered(ctx *renderContext, face font.Face, x, y int, text string, c color.Color) {
	width := font.MeasureString(face, text).Ceil()

	// lift the baseline so capitals sit centered on y
	ascent := face.Metrics().Ascent.Ceil()
	baselineY := y + int(float64(ascent)*0.35)

	d := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x - width/2), Y: fixed.I(baselineY)},
	}
	d.DrawString(text)
}
