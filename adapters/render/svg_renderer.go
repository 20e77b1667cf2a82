package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/ports"
)

const (
	// ContentType of the images produced by SVGRenderer
	ContentType = "image/svg+xml"

	// DefaultSize is the canvas edge in pixels
	DefaultSize = 200

	hourHandStyle   = "stroke:black;stroke-width:6;stroke-linecap:round"
	minuteHandStyle = "stroke:black;stroke-width:4;stroke-linecap:round"
	decoyHandStyle  = "stroke:#333333;stroke-width:2;stroke-linecap:round"
	minuteTickStyle = "stroke:black;stroke-width:1"
	extraTickStyle  = "stroke:#555555;stroke-width:1"
	faceStyle       = "fill:white;stroke:black;stroke-width:3"
	numeralStyle    = "text-anchor:middle;font-family:Arial, sans-serif;font-size:16px;font-weight:bold;fill:black"
)

// SVGRenderer draws analog clock faces as SVG documents
type SVGRenderer struct {
	random ports.Random
	size   int
}

// NewSVGRenderer creates a renderer that places noise using random
func NewSVGRenderer(random ports.Random) *SVGRenderer {
	return &SVGRenderer{random: random, size: DefaultSize}
}

// Render draws t. Both real hands are drawn as a line pointing at 12 o'clock
// rotated by the exact hand angle, so noise can never move them.
func (r *SVGRenderer) Render(t core.ClockTime, params core.RenderParams) (ports.Image, error) {
	var buf bytes.Buffer
	f := face{canvas: svg.New(&buf), center: r.size / 2, radius: float64(r.size/2) * 0.8}

	f.canvas.Start(r.size, r.size, fmt.Sprintf(`viewBox="0 0 %d %d"`, r.size, r.size))
	f.canvas.Circle(f.center, f.center, int(f.radius), faceStyle)

	if params.MinuteTicks {
		for m := 0; m < 60; m++ {
			if m%5 == 0 {
				continue
			}
			f.tick(float64(m*6), 0.85, 0.9, minuteTickStyle)
		}
	}

	for i := 0; i < params.ExtraTicks; i++ {
		// half-degree steps so noise rarely lines up with real ticks
		a, err := r.random.Intn(720)
		if err != nil {
			return ports.Image{}, fmt.Errorf("failed to place tick: %w", err)
		}
		inner, err := r.random.Intn(15)
		if err != nil {
			return ports.Image{}, fmt.Errorf("failed to place tick: %w", err)
		}
		f.tick(float64(a)/2, 0.75+float64(inner)/100, 0.92, extraTickStyle)
	}

	markerStyle := fmt.Sprintf("stroke:black;stroke-width:2;stroke-opacity:%s", formatFloat(contrast(params.TickContrast)))
	for h := 1; h <= 12; h++ {
		f.tick(float64(h*30), 0.8, 0.9, markerStyle)
	}
	for h := 1; h <= 12; h++ {
		x, y := f.point(float64(h*30), 0.7)
		f.canvas.Text(x, y+5, strconv.Itoa(h), numeralStyle)
	}

	for i := 0; i < params.Speckles; i++ {
		x, err := r.random.Intn(2 * int(f.radius))
		if err != nil {
			return ports.Image{}, fmt.Errorf("failed to place speckle: %w", err)
		}
		y, err := r.random.Intn(2 * int(f.radius))
		if err != nil {
			return ports.Image{}, fmt.Errorf("failed to place speckle: %w", err)
		}
		off := f.center - int(f.radius)
		f.canvas.Circle(off+x, off+y, 1+i%2, "fill:#777777")
	}

	if params.DecoyHand {
		a, err := r.random.Intn(360)
		if err != nil {
			return ports.Image{}, fmt.Errorf("failed to place decoy hand: %w", err)
		}
		f.hand(float64(a), 0.78, decoyHandStyle)
	}

	f.hand(t.HourAngle(), 0.5, hourHandStyle)
	f.hand(t.MinuteAngle(), 0.7, minuteHandStyle)

	f.canvas.Circle(f.center, f.center, 6, "fill:black")
	f.canvas.End()

	return ports.Image{Data: buf.Bytes(), ContentType: ContentType}, nil
}

type face struct {
	canvas *svg.SVG
	center int
	radius float64
}

// hand draws a line from the centre towards 12 o'clock rotated clockwise by deg
func (f face) hand(deg, length float64, style string) {
	f.canvas.Group(f.rotation(deg))
	f.canvas.Line(0, 0, 0, -int(math.Round(f.radius*length)), style)
	f.canvas.Gend()
}

// tick draws a radial segment between inner and outer fractions of the radius
func (f face) tick(deg, inner, outer float64, style string) {
	f.canvas.Group(f.rotation(deg))
	f.canvas.Line(0, -int(math.Round(f.radius*inner)), 0, -int(math.Round(f.radius*outer)), style)
	f.canvas.Gend()
}

func (f face) rotation(deg float64) string {
	return fmt.Sprintf(`transform="translate(%d,%d) rotate(%s)"`, f.center, f.center, formatFloat(deg))
}

func (f face) point(deg, frac float64) (int, int) {
	rad := deg * math.Pi / 180
	x := float64(f.center) + f.radius*frac*math.Sin(rad)
	y := float64(f.center) - f.radius*frac*math.Cos(rad)
	return int(math.Round(x)), int(math.Round(y))
}

func contrast(c float64) float64 {
	if c <= 0 || c > 1 {
		return 1
	}
	return c
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
