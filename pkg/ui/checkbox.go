package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a labeled boolean toggle.
type Checkbox struct {
	hitBox
	Label    string
	Value    bool
	OnChange func(bool)
	latch    clickLatch
}

// NewCheckbox creates a checkbox with the given initial value.
func NewCheckbox(label string, value bool) *Checkbox {
	return &Checkbox{
		hitBox: hitBox{W: 16, H: 16},
		Label:  label,
		Value:  value,
	}
}

func (c *Checkbox) Update() {
	if c.latch.fired(c.hitBox) {
		c.Value = !c.Value
		if c.OnChange != nil {
			c.OnChange(c.Value)
		}
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.W), float32(c.H),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.W-4), float32(c.H-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}

	ebitenutil.DebugPrintAt(screen, c.Label, int(c.X+c.W+8), int(c.Y))
}

func (c *Checkbox) Height() float64 { return c.H + 6 }

func (c *Checkbox) MoveTo(x, y float64) { c.X, c.Y = x, y }
