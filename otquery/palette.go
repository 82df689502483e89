package otquery

import (
	"github.com/npillmayer/otview/ot"
)

// PaletteInfo describes a color palette of table CPAL.
type PaletteInfo struct {
	Index  int
	NameID ot.NameID // ot.NoNameID if the palette is unnamed
	Name   string    // resolved from table 'name', empty if unavailable
	Flags  ot.PaletteFlags
	Colors []ot.Color
}

// UsableWithLightBackground reports whether the palette is flagged to be
// usable on a light background.
func (p PaletteInfo) UsableWithLightBackground() bool {
	return p.Flags&ot.PaletteUsableWithLightBackground != 0
}

// UsableWithDarkBackground reports whether the palette is flagged to be
// usable on a dark background.
func (p PaletteInfo) UsableWithDarkBackground() bool {
	return p.Flags&ot.PaletteUsableWithDarkBackground != 0
}

// Palettes returns all color palettes of a face. Fonts without a valid CPAL
// table have no palettes.
func Palettes(face *ot.Face) []PaletteInfo {
	if face == nil {
		return nil
	}
	cpal := face.CPAL()
	n := cpal.PaletteCount()
	if n == 0 {
		return nil
	}
	tracer().Debugf("face has %d palettes with %d entries", n, cpal.PaletteEntryCount())
	palettes := make([]PaletteInfo, n)
	for i := range palettes {
		colors := make([]ot.Color, cpal.PaletteEntryCount())
		_, k := cpal.Colors(i, 0, colors)
		palettes[i] = PaletteInfo{
			Index:  i,
			NameID: cpal.PaletteNameID(i),
			Flags:  cpal.PaletteFlags(i),
			Colors: colors[:k],
		}
		palettes[i].Name, _ = nameFor(face, palettes[i].NameID)
	}
	return palettes
}

// PaletteName returns the name of palette p, if the palette has a name ID and
// the 'name' table contains a string for it.
func PaletteName(face *ot.Face, p int) (string, bool) {
	if face == nil {
		return "", false
	}
	return nameFor(face, face.CPAL().PaletteNameID(p))
}

// PaletteEntryName returns the name of color entry index, which is shared
// between all palettes.
func PaletteEntryName(face *ot.Face, index int) (string, bool) {
	if face == nil {
		return "", false
	}
	return nameFor(face, face.CPAL().PaletteEntryNameID(index))
}
