/*
Package fontload reads font files for tools and tests.

Package ot never accesses the file system itself; fontload supplies the
immutable byte blob, together with the font's full name as reported by
golang.org/x/image/font/sfnt.
*/
package fontload

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}

// ScalableFont is a loaded font file with original bytes and SFNT view.
// SFNT is nil if package sfnt is unable to parse the font, which does not
// keep package ot from inspecting it.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Collection
}

// LoadOpenTypeFont loads an OpenType font (TTF, OTF or TTC) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = filepath.Base(fontfile)
	}
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF, OTF or TTC) from memory.
// An error is returned if fbytes is not an SFNT container at all.
func ParseOpenTypeFont(fbytes []byte) (*ScalableFont, error) {
	if ot.FaceCount(ot.NewBlob(fbytes)) == 0 {
		return nil, fmt.Errorf("not an OpenType font or font collection")
	}
	f := &ScalableFont{Binary: fbytes}
	var err error
	if f.SFNT, err = sfnt.ParseCollection(f.Binary); err != nil {
		tracer().Infof("sfnt cannot parse font: %v", err)
		f.SFNT = nil
		return f, nil
	}
	if f.Fontname, err = f.Name(0, sfnt.NameIDFull); err != nil {
		tracer().Debugf("font has no full name: %v", err)
	}
	return f, nil
}

// Name returns a name table entry of face number index, as decoded by sfnt.
func (f *ScalableFont) Name(index int, id sfnt.NameID) (string, error) {
	if f.SFNT == nil || index < 0 || index >= f.SFNT.NumFonts() {
		return "", fmt.Errorf("no face %d", index)
	}
	font, err := f.SFNT.Font(index)
	if err != nil {
		return "", err
	}
	return font.Name(nil, id)
}

// FaceCount returns the number of faces in the font file.
func (f *ScalableFont) FaceCount() int {
	return ot.FaceCount(f.Blob())
}

// Blob wraps the font's bytes for package ot.
func (f *ScalableFont) Blob() ot.Blob {
	return ot.NewBlob(f.Binary)
}

// Face creates face number index of the font file.
func (f *ScalableFont) Face(index int, opts ...ot.FaceOption) (*ot.Face, error) {
	opts = append([]ot.FaceOption{ot.WithFaceIndex(index)}, opts...)
	return ot.NewFace(f.Blob(), opts...)
}
