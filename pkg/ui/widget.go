package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Widget is anything the HUD panel can stack vertically.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	// Height is the vertical space the widget takes, margins included.
	Height() float64
	// MoveTo places the top-left corner of the widget.
	MoveTo(x, y float64)
}

// hitBox is the clickable rectangle of a widget.
type hitBox struct {
	X, Y float64
	W, H float64
}

func (h hitBox) contains(x, y int) bool {
	return float64(x) >= h.X && float64(x) <= h.X+h.W &&
		float64(y) >= h.Y && float64(y) <= h.Y+h.H
}

func (h hitBox) hovered() bool {
	return h.contains(ebiten.CursorPosition())
}

// clickLatch fires once per press of the left mouse button inside a hit box.
type clickLatch struct {
	pressed bool
}

func (l *clickLatch) fired(h hitBox) bool {
	if h.hovered() && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		if !l.pressed {
			l.pressed = true
			return true
		}
		return false
	}
	l.pressed = false
	return false
}
