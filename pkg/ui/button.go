package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button runs OnClick once per click.
type Button struct {
	hitBox
	Label   string
	OnClick func()
	latch   clickLatch

	// Styling
	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a button of the given size. Its position is set by the
// panel it is added to.
func NewButton(width, height float64, label string, onClick func()) *Button {
	return &Button{
		hitBox:     hitBox{W: width, H: height},
		Label:      label,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) Update() {
	if b.latch.fired(b.hitBox) && b.OnClick != nil {
		b.OnClick()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	bgColor := b.BGColor
	if b.hovered() {
		bgColor = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		bgColor, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.W), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	// debug font glyphs are 6px wide
	textX := b.X + (b.W-float64(len(b.Label)*6))/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(textX), int(b.Y+b.H/2-8))
}

func (b *Button) Height() float64 { return b.H + 6 }

func (b *Button) MoveTo(x, y float64) { b.X, b.Y = x, y }
