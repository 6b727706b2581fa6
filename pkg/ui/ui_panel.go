package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	sectionHeight = 25
	titleHeight   = 30
	lineHeight    = 16
)

// Text is a read-only line refreshed from Source on every frame.
type Text struct {
	X, Y   float64
	Source func() string
}

func (t *Text) Update() {}

func (t *Text) Draw(screen *ebiten.Image) {
	if t.Source != nil {
		ebitenutil.DebugPrintAt(screen, t.Source(), int(t.X), int(t.Y))
	}
}

func (t *Text) Height() float64 { return lineHeight }

func (t *Text) MoveTo(x, y float64) { t.X, t.Y = x, y }

// section groups the widgets added after AddSection under a header.
type section struct {
	Title   string
	Widgets []Widget
}

// UIPanel stacks widgets in titled sections inside a scrollable box.
type UIPanel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	ScrollOffset  float64
	Hidden        bool

	// Styling
	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []*section
}

// NewUIPanel creates an empty panel.
func NewUIPanel(title string, x, y, width, height float64) *UIPanel {
	return &UIPanel{
		Title:       title,
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; widgets added next belong to it.
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, &section{Title: title})
}

// Add appends w to the current section, opening an untitled one if needed.
func (p *UIPanel) Add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	s := p.sections[len(p.sections)-1]
	s.Widgets = append(s.Widgets, w)
	p.layout()
}

func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(label, value)
	p.Add(c)
	return c
}

func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.Width-20, label, min, max, value)
	p.Add(s)
	return s
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.Width-20, 22, label, onClick)
	p.Add(b)
	return b
}

func (p *UIPanel) AddText(source func() string) *Text {
	t := &Text{Source: source}
	p.Add(t)
	return t
}

// layout moves every widget to its scrolled position.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.Title != "" {
			y += sectionHeight
		}
		for _, w := range s.Widgets {
			w.MoveTo(p.X+10, y)
			y += w.Height()
		}
	}
}

func (p *UIPanel) contentHeight() float64 {
	h := float64(titleHeight)
	for _, s := range p.sections {
		if s.Title != "" {
			h += sectionHeight
		}
		for _, w := range s.Widgets {
			h += w.Height()
		}
	}
	return h
}

func (p *UIPanel) visible(y, h float64) bool {
	return y >= p.Y+titleHeight-h && y+h <= p.Y+p.Height+h
}

// Update scrolls the panel with the mouse wheel and forwards input to the
// widgets.
func (p *UIPanel) Update() {
	if p.Hidden {
		return
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		p.ScrollOffset -= dy * 20
		maxScroll := max(p.contentHeight()-p.Height+10, 0)
		p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
		p.layout()
	}

	for _, s := range p.sections {
		for _, w := range s.Widgets {
			w.Update()
		}
	}
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	if p.Hidden {
		return
	}
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if s.Title != "" {
			if p.visible(y, sectionHeight) {
				vector.FillRect(screen,
					float32(p.X+5), float32(y),
					float32(p.Width-10), 20,
					color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
				ebitenutil.DebugPrintAt(screen, s.Title, int(p.X+10), int(y+3))
			}
			y += sectionHeight
		}
		for _, w := range s.Widgets {
			if p.visible(y, w.Height()) {
				w.Draw(screen)
			}
			y += w.Height()
		}
	}
}
