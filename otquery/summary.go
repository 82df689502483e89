package otquery

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/otview/ot"
	"github.com/npillmayer/otview/otlayout"
	"golang.org/x/image/font/sfnt"
)

// FaceSummary is an overview of the contents of a face.
type FaceSummary struct {
	Index      int      // index of the face within its blob
	Flavor     ot.Tag   // FlavorTrueType, FlavorCFF, …
	Tables     []ot.Tag // table tags, in directory order
	GlyphCount int
	FullName   string     // name ID 4, empty if not present
	UnitsPerEm sfnt.Units // 0 if table 'head' is missing
	HasGSUB    bool       // table present and structurally sound
	HasGPOS    bool
	HasGDEF    bool
	HasCPAL    bool
	Scripts    []ot.Tag // union of GSUB and GPOS script tags, sorted
	Palettes   int      // number of CPAL palettes
}

// Summary creates an overview of a face. Layout and color tables are
// sanitized if this has not happened before.
func Summary(face *ot.Face) FaceSummary {
	var sum FaceSummary
	if face == nil {
		return sum
	}
	sum.Index = face.Index()
	sum.Flavor = face.Flavor()
	sum.Tables = face.TableTags()
	sum.GlyphCount = face.GlyphCount()
	sum.FullName, _ = Name(face, sfnt.NameIDFull)
	if head, ok := headInfo(face); ok {
		sum.UnitsPerEm = head.UnitsPerEm
	}
	sum.HasGSUB = face.Sanitize(ot.TagGSUB) == ot.Passed
	sum.HasGPOS = face.Sanitize(ot.TagGPOS) == ot.Passed
	sum.HasGDEF = face.Sanitize(ot.TagGDEF) == ot.Passed
	sum.HasCPAL = face.Sanitize(ot.TagCPAL) == ot.Passed
	sum.Scripts = ScriptTags(face)
	sum.Palettes = face.CPAL().PaletteCount()
	return sum
}

// ScriptTags returns the script tags of tables GSUB and GPOS, merged and
// sorted by tag value.
func ScriptTags(face *ot.Face) []ot.Tag {
	set := treeset.NewWith(func(a, b any) int {
		return utils.UInt32Comparator(uint32(a.(ot.Tag)), uint32(b.(ot.Tag)))
	})
	buf := make([]ot.Tag, 16)
	for _, table := range []ot.Tag{ot.TagGSUB, ot.TagGPOS} {
		for start := 0; ; {
			total, n := otlayout.TableScriptTags(face, table, start, buf)
			for _, tag := range buf[:n] {
				set.Add(tag)
			}
			start += n
			if n == 0 || start >= total {
				break
			}
		}
	}
	tags := make([]ot.Tag, 0, set.Size())
	for _, v := range set.Values() {
		tags = append(tags, v.(ot.Tag))
	}
	return tags
}

// LayoutTables returns the tags of the OpenType layout tables present in a
// face, whether sound or not.
func LayoutTables(face *ot.Face) []string {
	var tables []string
	if face == nil {
		return tables
	}
	for _, tag := range []ot.Tag{ot.TagGDEF, ot.TagGSUB, ot.TagGPOS, ot.T("BASE"), ot.T("JSTF"), ot.T("MATH")} {
		if face.HasTable(tag) {
			tables = append(tables, tag.String())
		}
	}
	return tables
}

// headTableInfo holds selected fields of OpenType table 'head'.
type headTableInfo struct {
	MagicNumber uint32
	UnitsPerEm  sfnt.Units
}

const headTableSize = 54

// headInfo decodes table 'head' from raw bytes. It returns false if the
// table is missing, too short or lacks the magic number.
func headInfo(face *ot.Face) (headTableInfo, bool) {
	var info headTableInfo
	b := face.TableData(ot.T("head"))
	if len(b) < headTableSize {
		return info, false
	}
	info.MagicNumber = u32(b[12:16])
	if info.MagicNumber != 0x5F0F3CF5 {
		tracer().Infof("table 'head' has invalid magic number %#x", info.MagicNumber)
		return info, false
	}
	info.UnitsPerEm = sfnt.Units(u16(b[18:20]))
	return info, true
}
