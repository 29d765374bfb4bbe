package sign

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/wire"
)

const (
	elementRectangle = "rectangle"
	elementVisible   = "visible"
	elementPosition  = "position"
	elementX         = "x"
	elementY         = "y"
	elementWidth     = "width"
	elementHeight    = "height"
	elementRotation  = "rotation"
)

// Rectangle is where the visible signature is drawn. The zero value is an
// invisible signature at the origin.
type Rectangle struct {
	visible  bool
	x        int
	y        int
	width    int
	height   int
	rotation int
}

// NewRectangle returns an invisible zero-sized rectangle.
func NewRectangle() *Rectangle { return &Rectangle{} }

func nonNegative(field string, v int) error {
	if v < 0 {
		return errs.Validation("rectangle %s must not be negative, got %d", field, v)
	}
	return nil
}

// Visible reports whether the signature is drawn.
func (r *Rectangle) Visible() bool { return r.visible }

// SetVisible toggles the visible signature.
func (r *Rectangle) SetVisible(v bool) { r.visible = v }

// X returns the horizontal position.
func (r *Rectangle) X() int { return r.x }

// SetX sets the horizontal position.
func (r *Rectangle) SetX(v int) error {
	if err := nonNegative(elementX, v); err != nil {
		return err
	}
	r.x = v
	return nil
}

// Y returns the vertical position.
func (r *Rectangle) Y() int { return r.y }

// SetY sets the vertical position.
func (r *Rectangle) SetY(v int) error {
	if err := nonNegative(elementY, v); err != nil {
		return err
	}
	r.y = v
	return nil
}

// Width returns the width.
func (r *Rectangle) Width() int { return r.width }

// SetWidth sets the width.
func (r *Rectangle) SetWidth(v int) error {
	if err := nonNegative(elementWidth, v); err != nil {
		return err
	}
	r.width = v
	return nil
}

// Height returns the height.
func (r *Rectangle) Height() int { return r.height }

// SetHeight sets the height.
func (r *Rectangle) SetHeight(v int) error {
	if err := nonNegative(elementHeight, v); err != nil {
		return err
	}
	r.height = v
	return nil
}

// Rotation returns the rotation in degrees.
func (r *Rectangle) Rotation() int { return r.rotation }

// SetRotation sets the rotation in degrees.
func (r *Rectangle) SetRotation(v int) error {
	if err := nonNegative(elementRotation, v); err != nil {
		return err
	}
	r.rotation = v
	return nil
}

// WireNode appends <rectangle>. It cannot fail; the error return matches the
// other WireNode methods.
func (r *Rectangle) WireNode(parent *etree.Element) error {
	el := parent.CreateElement(elementRectangle)
	wire.Text(el, elementVisible, wire.Bool(r.visible))
	pos := el.CreateElement(elementPosition)
	wire.Text(pos, elementX, strconv.Itoa(r.x))
	wire.Text(pos, elementY, strconv.Itoa(r.y))
	wire.Text(pos, elementWidth, strconv.Itoa(r.width))
	wire.Text(pos, elementHeight, strconv.Itoa(r.height))
	wire.Text(pos, elementRotation, strconv.Itoa(r.rotation))
	return nil
}

func (r *Rectangle) request() map[string]any {
	return map[string]any{
		elementVisible: r.visible,
		elementPosition: map[string]any{
			elementX:        r.x,
			elementY:        r.y,
			elementWidth:    r.width,
			elementHeight:   r.height,
			elementRotation: r.rotation,
		},
	}
}
