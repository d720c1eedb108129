package pdfsign

import (
	"github.com/arcsign/pdfsig/internal/render"
)

// Appearance represents the visual content of a signature widget.
// Per the minimal form XObject this library produces, an Appearance can only
// draw text (signer name, reason, location, date) against an optional
// background/border - no embedded images or custom font programs.
// All dimensions and coordinates are in PDF user space units (typically 1/72 inch).
type Appearance struct {
	width, height float64
	elements      []render.Element
	bgColor       *render.Color
	borderWidth   float64
	borderColor   *render.Color
}

// RenderInfo returns the internal representation of the appearance for rendering.
func (a *Appearance) RenderInfo() *render.AppearanceInfo {
	return &render.AppearanceInfo{
		Width:       a.width,
		Height:      a.height,
		Elements:    a.elements,
		BGColor:     a.bgColor,
		BorderWidth: a.borderWidth,
		BorderColor: a.borderColor,
	}
}

// Color is an alias for render.Color for backward compatibility.
// Deprecated: Use render.Color directly.
type Color = render.Color

// TextAlign is an alias for render.TextAlign for backward compatibility.
// Deprecated: Use render.TextAlign directly.
type TextAlign = render.TextAlign

const (
	// AlignLeft aligns text to the left.
	AlignLeft = render.AlignLeft
	// AlignCenter aligns text to the center.
	AlignCenter = render.AlignCenter
	// AlignRight aligns text to the right.
	AlignRight = render.AlignRight
)

// NewAppearance initializes a new signature appearance box with the given width and height.
// Dimensions are in PDF user space units (typically 1/72 inch).
// You can use the Millimeter or Centimeter constants for conversion (e.g., pdfsign.Millimeter * 50).
func NewAppearance(width, height float64) *Appearance {
	return &Appearance{
		width:  width,
		height: height,
	}
}

// Standard populates the appearance with a simple signature layout: the
// signer's name, followed by the reason, location, and signing date.
//
// Template variables ({{Name}}, {{Reason}}, {{Location}}, {{Date}}) are automatically
// expanded with the values from the SignBuilder.
//
// Example:
//
//	app := pdf.NewAppearance(300, 100).Standard()
func (a *Appearance) Standard() *Appearance {
	lineHeight := a.height / 5 // 5 weighted rows
	padding := 4.0

	a.Text("{{Name}}").
		Font(Helvetica, 14).
		Position(padding, a.height-lineHeight-padding)

	a.Text("Reason: {{Reason}}").
		Font(Helvetica, 10).
		Position(padding, a.height-2*lineHeight-padding)

	a.Text("Location: {{Location}}").
		Font(Helvetica, 10).
		Position(padding, a.height-3*lineHeight-padding)

	a.Text("Date: {{Date}}").
		Font(Helvetica, 10).
		Position(padding, a.height-4*lineHeight-padding)

	return a
}

// Background sets the fill color for the signature widget background.
func (a *Appearance) Background(r, g, b uint8) *Appearance {
	a.bgColor = &Color{r, g, b}
	return a
}

// Border draws a rectangular border around the signature widget with the specified width and RGB color.
func (a *Appearance) Border(width float64, r, g, b uint8) *Appearance {
	a.borderWidth = width
	a.borderColor = &Color{r, g, b}
	return a
}

// Text adds a text string to the appearance and returns a TextBuilder for configuration.
// Supports template variables which are expanded at signing time.
func (a *Appearance) Text(content string) *TextBuilder {
	return &TextBuilder{
		appearance: a,
		content:    content,
		font:       Helvetica,
		size:       10,
		color:      Color{0, 0, 0},
	}
}

// Width returns the appearance width.
func (a *Appearance) Width() float64 {
	return a.width
}

// Height returns the appearance height.
func (a *Appearance) Height() float64 {
	return a.height
}

// TextBuilder builds a text element within an appearance.
type TextBuilder struct {
	appearance *Appearance
	content    string
	font       StandardFont
	size       float64
	x, y       float64
	color      Color
	align      TextAlign
	center     bool
}

// Font sets one of the 14 standard PDF fonts and its point size for the text.
func (b *TextBuilder) Font(font StandardFont, size float64) *TextBuilder {
	b.font = font
	b.size = size
	return b
}

// Position sets the position of the text.
func (b *TextBuilder) Position(x, y float64) *TextBuilder {
	b.x = x
	b.y = y
	b.finalize()
	return b
}

// SetColor sets the text color.
func (tb *TextBuilder) SetColor(r, g, b uint8) *TextBuilder {
	tb.color = Color{r, g, b}
	return tb
}

// Align sets the text alignment.
func (b *TextBuilder) Align(align TextAlign) *TextBuilder {
	b.align = align
	return b
}

// Center centers the text in the appearance.
func (b *TextBuilder) Center() *TextBuilder {
	b.center = true
	b.finalize()
	return b
}

func (b *TextBuilder) finalize() {
	if b.appearance != nil {
		b.appearance.elements = append(b.appearance.elements, render.TextElement{
			Content: b.content,
			Font:    b.font,
			Size:    b.size,
			X:       b.x,
			Y:       b.y,
			Color:   b.color,
			Align:   b.align,
			Center:  b.center,
		})
	}
}
