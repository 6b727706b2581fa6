package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// labelHeight is the room left above the slider bar for its label.
const labelHeight = 18

// Slider picks a value in [Min, Max] by dragging its bar. A positive Step
// snaps the value to multiples of Step above Min.
type Slider struct {
	hitBox   // the bar
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	OnChange func(float64)
}

// NewSlider creates a slider of the given width.
func NewSlider(width float64, label string, min, max, value float64) *Slider {
	return &Slider{
		hitBox: hitBox{W: width, H: 12},
		Label:  label,
		Value:  value,
		Min:    min,
		Max:    max,
	}
}

func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if !s.contains(mx, my) {
		return
	}
	if v := s.valueAt(float64(mx)); v != s.Value {
		s.Value = v
		if s.OnChange != nil {
			s.OnChange(v)
		}
	}
}

func (s *Slider) valueAt(x float64) float64 {
	v := s.Min + (x-s.X)/s.W*(s.Max-s.Min)
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

func (s *Slider) Draw(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s: %g", s.Label, s.Value), int(s.X), int(s.Y-labelHeight))

	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H),
		color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := (s.Value - s.Min) / (s.Max - s.Min)
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H),
		color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}

func (s *Slider) Height() float64 { return labelHeight + s.H + 8 }

func (s *Slider) MoveTo(x, y float64) { s.X, s.Y = x, y+labelHeight }
