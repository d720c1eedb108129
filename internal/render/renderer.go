package render

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/arcsign/pdfsig/sign"
)

// NewAppearanceRenderer returns a function that renders an appearance to PDF operators.
// Only the minimal set of operators needed for a signature widget is produced:
// a background fill, a border, and literal-string Tj text - no image XObjects,
// no embedded TrueType programs.
func NewAppearanceRenderer(a *AppearanceInfo, signerName, reason, location string) func(context *sign.SignContext, rect [4]float64) ([]byte, error) {
	return func(context *sign.SignContext, rect [4]float64) ([]byte, error) {
		rectWidth := rect[2] - rect[0]
		rectHeight := rect[3] - rect[1]

		var buf bytes.Buffer
		buf.WriteString("<<\n")
		buf.WriteString("  /Type /XObject\n")
		buf.WriteString("  /Subtype /Form\n")
		fmt.Fprintf(&buf, "  /BBox [0 0 %f %f]\n", rectWidth, rectHeight)
		buf.WriteString("  /Matrix [1 0 0 1 0 0]\n")
		buf.WriteString("  /Resources <<\n")

		var fontsBuf bytes.Buffer
		hasFonts := false

		var stream bytes.Buffer

		if a.BGColor != nil {
			fmt.Fprintf(&stream, "q %.2f %.2f %.2f rg 0 0 %.2f %.2f re f Q\n",
				float64(a.BGColor.R)/255.0, float64(a.BGColor.G)/255.0, float64(a.BGColor.B)/255.0,
				rectWidth, rectHeight)
		}

		if a.BorderWidth > 0 && a.BorderColor != nil {
			fmt.Fprintf(&stream, "q %.2f %.2f %.2f RG %.2f w 0 0 %.2f %.2f re S Q\n",
				float64(a.BorderColor.R)/255.0, float64(a.BorderColor.G)/255.0, float64(a.BorderColor.B)/255.0,
				a.BorderWidth, rectWidth, rectHeight)
		}

		date := context.SignData.Signature.Info.Date
		if date.IsZero() {
			date = time.Now()
		}
		tplCtx := TemplateContext{
			Name:     signerName,
			Reason:   reason,
			Location: location,
			Date:     date,
		}

		fontCount := 0
		fontMap := make(map[StandardFont]string)

		for _, el := range a.Elements {
			te, ok := el.(TextElement)
			if !ok {
				continue
			}
			content := ExpandTemplateVariables(te.Content, tplCtx)
			font := te.Font
			if font == "" {
				font = Helvetica
			}

			fontName, ok := fontMap[font]
			if !ok {
				fontCount++
				fontName = fmt.Sprintf("F%d", fontCount)
				fontMap[font] = fontName

				if !hasFonts {
					fontsBuf.WriteString("    /Font <<\n")
					hasFonts = true
				}
				fontObjID, err := RegisterFont(context, font)
				if err != nil {
					return nil, err
				}
				fmt.Fprintf(&fontsBuf, "      /%s %d 0 R\n", fontName, fontObjID)
			}

			stream.WriteString("q\nBT\n")
			fmt.Fprintf(&stream, "  /%s %.2f Tf\n", fontName, te.Size)
			fmt.Fprintf(&stream, "  %.2f %.2f %.2f rg\n", float64(te.Color.R)/255.0, float64(te.Color.G)/255.0, float64(te.Color.B)/255.0)

			x, y := te.X, te.Y
			if te.Center {
				// Without glyph metrics we fall back to a fixed-width estimate
				// (roughly correct for Helvetica-class fonts at common sizes).
				textWidth := float64(len(content)) * te.Size * 0.5
				x = (rectWidth - textWidth) / 2
				y = (rectHeight - te.Size) / 2
				if x < 0 {
					x = 0
				}
				if y < 0 {
					y = 0
				}
			}

			fmt.Fprintf(&stream, "  %.2f %.2f Td\n", x, y)
			fmt.Fprintf(&stream, "  <%s> Tj\n", hex.EncodeToString([]byte(content)))
			stream.WriteString("ET\nQ\n")
		}

		if hasFonts {
			fontsBuf.WriteString("    >>\n")
			buf.Write(fontsBuf.Bytes())
		}

		buf.WriteString("  >>\n")
		buf.WriteString("  /FormType 1\n")
		fmt.Fprintf(&buf, "  /Length %d\n", stream.Len())
		buf.WriteString(">>\nstream\n")
		buf.Write(stream.Bytes())
		buf.WriteString("\nendstream\n")

		return buf.Bytes(), nil
	}
}

// RegisterFont registers a standard (non-embedded) Type1 font in the PDF.
func RegisterFont(context *sign.SignContext, f StandardFont) (uint32, error) {
	baseFont := string(f)
	if baseFont == "" {
		baseFont = string(Helvetica)
	}
	fontDict := fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", baseFont)
	return context.AddObject([]byte(fontDict))
}
