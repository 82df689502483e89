package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

// Some versions of widely distributed fonts (Times New Roman, Tahoma,
// Microsoft Himalaya, Cambria and others) ship GDEF tables with wrong glyph
// classes, e.g. marking ASCII quotes as marks. Layout engines ignore GDEF for
// these fonts. The fonts are identified by the byte lengths of their GDEF,
// GSUB and GPOS tables.
//
// See https://lists.freedesktop.org/archives/harfbuzz/2016-February/005489.html

type tableLengths struct {
	gdef, gsub, gpos int
}

var gdefBlacklist = map[tableLengths]struct{}{
	// Times New Roman Italic / Bold Italic, Windows 7 to 10
	{442, 2874, 42038}: {}, {430, 2874, 40662}: {}, {442, 2874, 39116}: {}, {430, 2874, 39374}: {},
	{490, 3046, 41638}: {}, {478, 3046, 41902}: {},
	// Tahoma, Tahoma Bold, Windows 7 to 10, OS X
	{898, 12554, 46470}: {}, {910, 12566, 47732}: {}, {928, 23298, 59332}: {}, {940, 23310, 60732}: {},
	{964, 23836, 60072}: {}, {976, 23832, 61456}: {}, {994, 24474, 60336}: {}, {1006, 24470, 61740}: {},
	{1006, 24576, 61346}: {}, {1018, 24572, 62828}: {}, {1006, 24576, 61352}: {}, {1018, 24572, 62834}: {},
	// Tahoma, Windows 8
	{832, 7324, 47162}: {}, {844, 7302, 45474}: {},
	// Microsoft Himalaya
	{180, 13054, 7254}: {}, {192, 12638, 7254}: {}, {192, 12690, 7254}: {},
	// Padauk
	{188, 248, 3852}: {}, {188, 264, 3426}: {},
	// Cantarell
	{1058, 47032, 11818}: {}, {1046, 47030, 12600}: {}, {1058, 71796, 16770}: {}, {1046, 71790, 17862}: {},
	{1046, 71788, 17112}: {}, {1058, 71794, 17514}: {},
	// Cambria Math, Windows 10
	{1330, 109904, 57938}: {}, {1330, 109904, 58972}: {},
	// Noto Sans Mongolian / Noto Sans Myanmar
	{1004, 59092, 14836}: {},
}

// IsGDEFBlacklisted reports whether the GDEF table of a face is known to be
// broken. Only exact matches of all three table lengths count.
func IsGDEFBlacklisted(face *ot.Face) bool {
	if face == nil || !face.HasTable(ot.TagGDEF) {
		return false
	}
	key := tableLengths{
		gdef: len(face.TableData(ot.TagGDEF)),
		gsub: len(face.TableData(ot.TagGSUB)),
		gpos: len(face.TableData(ot.TagGPOS)),
	}
	_, found := gdefBlacklist[key]
	return found
}

type gdefKey struct{}

// GDEF returns the GDEF table of a face to use for layout. For fonts with a
// blacklisted GDEF table this is the empty GDEF table.
func GDEF(face *ot.Face) *ot.GDEF {
	if face == nil {
		return ot.EmptyGDEF()
	}
	return face.Memo(gdefKey{}, func() any {
		if IsGDEFBlacklisted(face) {
			tracer().Infof("ignoring blacklisted GDEF table")
			return ot.EmptyGDEF()
		}
		return face.GDEF()
	}).(*ot.GDEF)
}
