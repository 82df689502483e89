package ot

import "strconv"

// LayoutTable is a view onto one of the two OpenType layout tables,
// GSUB and GPOS. Both share a common structure:
//
//	Script List ──► Script ──► LangSys ──(indices)──► Feature List ──► Feature ──(indices)──► Lookup List
//
// Scripts and language systems are identified by tags. A language system
// references features by index into the table's flat feature list, and
// features reference lookups by index into the table's flat lookup list.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2
//
// A LayoutTable for a font without (valid) GSUB or GPOS table has no scripts,
// features or lookups.
type LayoutTable struct {
	tag        Tag
	data       binarySegm
	minor      uint16
	scripts    binarySegm
	features   binarySegm
	lookups    binarySegm
	variations binarySegm
}

var (
	emptyGSUB = &LayoutTable{tag: TagGSUB}
	emptyGPOS = &LayoutTable{tag: TagGPOS}
)

func emptyLayoutTable(tag Tag) *LayoutTable {
	if tag == TagGPOS {
		return emptyGPOS
	}
	return emptyGSUB
}

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, the lookup table structure is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_IGNORE_FLAGS              LayoutTableLookupFlag = 0x000E // All of the 'ignore' flags
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle             LayoutTableLookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple           LayoutTableLookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate          LayoutTableLookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature           LayoutTableLookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext            LayoutTableLookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext    LayoutTableLookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs      LayoutTableLookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining    LayoutTableLookupType = 8 // Applied in reverse order, replace single glyph in chaining context
	GPosLookupTypeSingle             LayoutTableLookupType = 1 // Adjust position of a single glyph
	GPosLookupTypePair               LayoutTableLookupType = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive            LayoutTableLookupType = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase         LayoutTableLookupType = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature     LayoutTableLookupType = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark         LayoutTableLookupType = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos         LayoutTableLookupType = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos  LayoutTableLookupType = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos       LayoutTableLookupType = 9 // Extension mechanism for other positionings
	maxGSubLookupType                                      = GSubLookupTypeReverseChaining
	maxGPosLookupType                                      = GPosLookupTypeExtensionPos
)

const gsubLookupTypeNames = "Single|Multiple|Alternate|Ligature|Context|Chaining|Ext|Reverse"

var gsubLookupTypeInx = [...]int{0, 7, 16, 26, 35, 43, 52, 56, 64}

// GSubString interprets a layout table lookup type as a GSUB table type.
func (lt LayoutTableLookupType) GSubString() string {
	if lt >= 1 && lt <= maxGSubLookupType {
		return gsubLookupTypeNames[gsubLookupTypeInx[lt-1] : gsubLookupTypeInx[lt]-1]
	}
	return strconv.Itoa(int(lt))
}

const gposLookupTypeNames = "Single|Pair|Cursive|MarkToBase|MarkToLigature|MarkToMark|ContextPos|Chained|Ext"

var gposLookupTypeInx = [...]int{0, 7, 12, 20, 31, 46, 57, 68, 76, 80}

// GPosString interprets a layout table lookup type as a GPOS table type.
func (lt LayoutTableLookupType) GPosString() string {
	if lt >= 1 && lt <= maxGPosLookupType {
		return gposLookupTypeNames[gposLookupTypeInx[lt-1] : gposLookupTypeInx[lt]-1]
	}
	return strconv.Itoa(int(lt))
}

// --- Sanitization ----------------------------------------------------------

func sanitizeLayoutTable(s *sanitizer, tag Tag, b binarySegm) (*LayoutTable, bool) {
	empty := emptyLayoutTable(tag)
	if !s.check("Header", b, 0, 10) {
		return empty, false
	}
	if b.U16(0) != 1 {
		return empty, s.fail("Header", b, "unsupported major version %d", b.U16(0))
	}
	lt := &LayoutTable{tag: tag, data: b, minor: b.U16(2)}
	var ok bool
	if lt.scripts, ok = s.offset16("ScriptList", b, 4); !ok || !sanitizeScriptList(s, lt.scripts) {
		return empty, false
	}
	if lt.features, ok = s.offset16("FeatureList", b, 6); !ok || !sanitizeFeatureList(s, lt.features) {
		return empty, false
	}
	if lt.lookups, ok = s.offset16("LookupList", b, 8); !ok || !sanitizeLookupList(s, tag, lt.lookups) {
		return empty, false
	}
	if lt.minor >= 1 {
		if lt.variations, ok = s.offset32("FeatureVariations", b, 10); !ok {
			return empty, false
		}
		if !sanitizeFeatureVariations(s, lt.variations) {
			return empty, false
		}
	}
	return lt, true
}

// sanitizeRecordList checks a list of (Tag, Offset16) records, as used by
// script lists, feature lists and scripts, and calls sub for each target.
func sanitizeRecordList(s *sanitizer, section string, b binarySegm, at int, sub func(Tag, binarySegm) bool) bool {
	if !s.check(section, b, at, 2) {
		return false
	}
	count := int(b.U16(at))
	if !s.checkArray(section, b, at+2, count, 6) {
		return false
	}
	for i := 0; i < count; i++ {
		rec := at + 2 + 6*i
		link, ok := s.required16(section, b, rec+4)
		if !ok {
			return false
		}
		if !sub(Tag(b.U32(rec)), link) {
			return false
		}
	}
	return true
}

func sanitizeScriptList(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	return sanitizeRecordList(s, "ScriptList", b, 0, func(_ Tag, script binarySegm) bool {
		if !s.check("Script", script, 0, 2) {
			return false
		}
		deflt, ok := s.offset16("Script", script, 0)
		if !ok || (deflt != nil && !sanitizeLangSys(s, deflt)) {
			return false
		}
		return sanitizeRecordList(s, "Script", script, 2, func(_ Tag, langSys binarySegm) bool {
			return sanitizeLangSys(s, langSys)
		})
	})
}

func sanitizeLangSys(s *sanitizer, b binarySegm) bool {
	return s.check("LangSys", b, 0, 6) && s.checkArray("LangSys", b, 6, int(b.U16(4)), 2)
}

func sanitizeFeatureList(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	return sanitizeRecordList(s, "FeatureList", b, 0, func(tag Tag, feature binarySegm) bool {
		return sanitizeFeature(s, b, feature, tag)
	})
}

func sanitizeFeature(s *sanitizer, list, b binarySegm, tag Tag) bool {
	if !s.check("Feature", b, 0, 4) || !s.checkArray("Feature", b, 4, int(b.U16(2)), 2) {
		return false
	}
	if tag != TagNone && b.U16(0) != 0 && featureParamsAt(list, b, tag) == nil {
		// Broken feature parameters are ignored, the feature itself stays usable.
		s.warn(b, "feature '%s' has invalid parameters", tag)
	}
	return true
}

func sanitizeLookupList(s *sanitizer, table Tag, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("LookupList", b, 0, 2) {
		return false
	}
	count := int(b.U16(0))
	if !s.checkArray("LookupList", b, 2, count, 2) {
		return false
	}
	for i := 0; i < count; i++ {
		lookup, ok := s.required16("LookupList", b, 2+2*i)
		if !ok || !sanitizeLookup(s, table, lookup) {
			return false
		}
	}
	return true
}

func sanitizeLookup(s *sanitizer, table Tag, b binarySegm) bool {
	if !s.check("Lookup", b, 0, 6) {
		return false
	}
	ltype, flag, count := LayoutTableLookupType(b.U16(0)), LayoutTableLookupFlag(b.U16(2)), int(b.U16(4))
	if !s.checkArray("Lookup", b, 6, count, 2) {
		return false
	}
	if flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 && !s.check("Lookup", b, 6+2*count, 2) {
		return false
	}
	isExt := isExtension(table, ltype)
	var extType LayoutTableLookupType
	for i := 0; i < count; i++ {
		sub, ok := s.required16("LookupSubtable", b, 6+2*i)
		if !ok {
			return false
		}
		st := LookupSubtable{Table: table, Type: ltype, data: sub}
		if isExt {
			if st, ok = sanitizeExtension(s, table, sub); !ok {
				return false
			}
			if i == 0 {
				extType = st.Type
			} else if st.Type != extType {
				return s.fail("Extension", sub, "extension subtables of mixed types %d and %d", extType, st.Type)
			}
		}
		if !sanitizeSubtable(s, st) {
			return false
		}
	}
	return true
}

func isExtension(table Tag, ltype LayoutTableLookupType) bool {
	return (table == TagGSUB && ltype == GSubLookupTypeExtensionSubs) ||
		(table == TagGPOS && ltype == GPosLookupTypeExtensionPos)
}

func sanitizeExtension(s *sanitizer, table Tag, b binarySegm) (LookupSubtable, bool) {
	if !s.check("Extension", b, 0, 8) {
		return LookupSubtable{}, false
	}
	if b.U16(0) != 1 {
		return LookupSubtable{}, s.fail("Extension", b, "unsupported format %d", b.U16(0))
	}
	ltype := LayoutTableLookupType(b.U16(2))
	if isExtension(table, ltype) {
		return LookupSubtable{}, s.fail("Extension", b, "extension subtable must not reference an extension")
	}
	target, ok := s.offset32("Extension", b, 4)
	if !ok {
		return LookupSubtable{}, false
	}
	if target == nil {
		return LookupSubtable{}, s.fail("Extension", b, "NULL extension offset")
	}
	return LookupSubtable{Table: table, Type: ltype, data: target}, true
}

func sanitizeSubtable(s *sanitizer, st LookupSubtable) bool {
	if !s.enter("LookupSubtable") {
		return false
	}
	defer s.leave()
	if st.Table == TagGPOS {
		return sanitizeGPosSubtable(s, st)
	}
	return sanitizeGSubSubtable(s, st)
}

// --- Table level accessors -------------------------------------------------

// TableTag returns the tag of the table, i.e. GSUB or GPOS.
func (lt *LayoutTable) TableTag() Tag {
	if lt == nil {
		return TagNone
	}
	return lt.tag
}

// HasData reports whether the layout table is present and valid.
func (lt *LayoutTable) HasData() bool {
	return lt != nil && lt.data != nil
}

// Size returns the size of the table in bytes.
func (lt *LayoutTable) Size() int {
	if lt == nil {
		return 0
	}
	return len(lt.data)
}

// recordCount, recordTag and recordLink operate on (Tag, Offset16) record lists.
func recordCount(b binarySegm, at int) int {
	return int(b.U16(at))
}

func recordTag(b binarySegm, at, i int) Tag {
	if i < 0 || i >= recordCount(b, at) {
		return TagNone
	}
	return Tag(b.U32(at + 2 + 6*i))
}

func recordLink(b binarySegm, at, i int) binarySegm {
	if i < 0 || i >= recordCount(b, at) {
		return nil
	}
	return b.link16(at + 2 + 6*i + 4)
}

func recordFind(b binarySegm, at int, tag Tag) (int, bool) {
	for i := 0; i < recordCount(b, at); i++ {
		if Tag(b.U32(at+2+6*i)) == tag {
			return i, true
		}
	}
	return NotFoundIndex, false
}

func recordTags(b binarySegm, at, start int, buf []Tag) (int, int) {
	return Page(recordCount(b, at), start, buf, func(i int) Tag {
		return Tag(b.U32(at + 2 + 6*i))
	})
}

// ScriptCount returns the number of scripts in the table's script list.
func (lt *LayoutTable) ScriptCount() int {
	if lt == nil {
		return 0
	}
	return recordCount(lt.scripts, 0)
}

// ScriptTag returns the tag of script number i, or TagNone.
func (lt *LayoutTable) ScriptTag(i int) Tag {
	if lt == nil {
		return TagNone
	}
	return recordTag(lt.scripts, 0, i)
}

// ScriptTags copies script tags into buf, starting with script number start.
// It returns the total number of scripts and the number of tags copied.
func (lt *LayoutTable) ScriptTags(start int, buf []Tag) (int, int) {
	if lt == nil {
		return 0, 0
	}
	return recordTags(lt.scripts, 0, start, buf)
}

// FindScript returns the index of the script with the given tag.
// If there is no such script, NotFoundIndex and false are returned.
func (lt *LayoutTable) FindScript(tag Tag) (int, bool) {
	if lt == nil {
		return NotFoundIndex, false
	}
	return recordFind(lt.scripts, 0, tag)
}

// Script returns script number i. For out-of-range indices an empty script is returned.
func (lt *LayoutTable) Script(i int) Script {
	if lt == nil {
		return Script{}
	}
	return Script{tag: recordTag(lt.scripts, 0, i), data: recordLink(lt.scripts, 0, i)}
}

// FeatureCount returns the number of features in the table's feature list.
func (lt *LayoutTable) FeatureCount() int {
	if lt == nil {
		return 0
	}
	return recordCount(lt.features, 0)
}

// FeatureTag returns the tag of feature number i, or TagNone.
func (lt *LayoutTable) FeatureTag(i int) Tag {
	if lt == nil {
		return TagNone
	}
	return recordTag(lt.features, 0, i)
}

// FeatureTags copies feature tags into buf, starting with feature number start.
// It returns the total number of features and the number of tags copied.
func (lt *LayoutTable) FeatureTags(start int, buf []Tag) (int, int) {
	if lt == nil {
		return 0, 0
	}
	return recordTags(lt.features, 0, start, buf)
}

// FindFeature returns the index of the first feature with the given tag.
func (lt *LayoutTable) FindFeature(tag Tag) (int, bool) {
	if lt == nil {
		return NotFoundIndex, false
	}
	return recordFind(lt.features, 0, tag)
}

// Feature returns feature number i. For out-of-range indices an empty feature is returned.
func (lt *LayoutTable) Feature(i int) Feature {
	if lt == nil {
		return Feature{}
	}
	return Feature{
		tag:  recordTag(lt.features, 0, i),
		data: recordLink(lt.features, 0, i),
		list: lt.features,
	}
}

// LookupCount returns the number of lookups in the table's lookup list.
func (lt *LayoutTable) LookupCount() int {
	if lt == nil {
		return 0
	}
	return int(lt.lookups.U16(0))
}

// Lookup returns lookup number i. For out-of-range indices an empty lookup is returned.
func (lt *LayoutTable) Lookup(i int) Lookup {
	if lt == nil || i < 0 || i >= lt.LookupCount() {
		return Lookup{}
	}
	return Lookup{table: lt.tag, data: lt.lookups.link16(2 + 2*i)}
}

// --- Script and LangSys ----------------------------------------------------

// Script is a view onto a script table, which holds the language systems
// for a writing system.
type Script struct {
	tag  Tag
	data binarySegm
}

// Tag returns the script's tag.
func (sc Script) Tag() Tag {
	return sc.tag
}

// IsEmpty reports whether the script view is empty, e.g. because of an
// out-of-range script index.
func (sc Script) IsEmpty() bool {
	return sc.data == nil
}

// LangSysCount returns the number of language systems of a script,
// not counting the default language system.
func (sc Script) LangSysCount() int {
	return recordCount(sc.data, 2)
}

// LangSysTag returns the tag of language system number i, or TagNone.
func (sc Script) LangSysTag(i int) Tag {
	return recordTag(sc.data, 2, i)
}

// LangSysTags copies language system tags into buf, starting with language
// system number start. It returns the total number of language systems and the
// number of tags copied.
func (sc Script) LangSysTags(start int, buf []Tag) (int, int) {
	return recordTags(sc.data, 2, start, buf)
}

// FindLangSys returns the index of the language system with the given tag.
func (sc Script) FindLangSys(tag Tag) (int, bool) {
	return recordFind(sc.data, 2, tag)
}

// HasDefaultLangSys reports whether the script has a default language system.
func (sc Script) HasDefaultLangSys() bool {
	return sc.data.U16(0) != 0
}

// DefaultLangSys returns the default language system of the script.
func (sc Script) DefaultLangSys() LangSys {
	return LangSys{data: sc.data.link16(0)}
}

// LangSys returns language system number i. If i is DefaultLanguageIndex,
// the default language system is returned.
func (sc Script) LangSys(i int) LangSys {
	if i == DefaultLanguageIndex {
		return sc.DefaultLangSys()
	}
	return LangSys{data: recordLink(sc.data, 2, i)}
}

// LangSys is a view onto a language system table, which references the
// features to apply for a language.
type LangSys struct {
	data binarySegm
}

// RequiredFeatureIndex returns the index of the feature required for this
// language system, or NotFoundIndex.
func (ls LangSys) RequiredFeatureIndex() int {
	if ls.data == nil {
		return NotFoundIndex
	}
	return int(ls.data.U16(2))
}

// HasRequiredFeature reports whether the language system has a required feature.
func (ls LangSys) HasRequiredFeature() bool {
	return ls.RequiredFeatureIndex() != NotFoundIndex
}

// FeatureCount returns the number of feature indices, not counting the required feature.
func (ls LangSys) FeatureCount() int {
	return int(ls.data.U16(4))
}

// FeatureIndex returns feature index number i, or NotFoundIndex.
func (ls LangSys) FeatureIndex(i int) int {
	if i < 0 || i >= ls.FeatureCount() {
		return NotFoundIndex
	}
	return int(ls.data.U16(6 + 2*i))
}

// FeatureIndexes copies feature indices into buf, starting with entry start.
// It returns the total number of feature indices and the number of indices copied.
func (ls LangSys) FeatureIndexes(start int, buf []int) (int, int) {
	return Page(ls.FeatureCount(), start, buf, func(i int) int {
		return int(ls.data.U16(6 + 2*i))
	})
}

// --- Feature ---------------------------------------------------------------

// Feature is a view onto a feature table, which references lookups by index.
type Feature struct {
	tag  Tag
	data binarySegm
	list binarySegm // feature list, needed to resolve 'size' parameters
}

// Tag returns the feature's tag.
func (f Feature) Tag() Tag {
	return f.tag
}

// IsEmpty reports whether the feature view is empty.
func (f Feature) IsEmpty() bool {
	return f.data == nil
}

// LookupCount returns the number of lookups referenced by the feature.
func (f Feature) LookupCount() int {
	return int(f.data.U16(2))
}

// LookupIndex returns lookup index number i, or NotFoundIndex.
func (f Feature) LookupIndex(i int) int {
	if i < 0 || i >= f.LookupCount() {
		return NotFoundIndex
	}
	return int(f.data.U16(4 + 2*i))
}

// LookupIndexes copies lookup indices into buf, starting with entry start.
// It returns the total number of lookup indices and the number of indices copied.
func (f Feature) LookupIndexes(start int, buf []int) (int, int) {
	return Page(f.LookupCount(), start, buf, func(i int) int {
		return int(f.data.U16(4 + 2*i))
	})
}

// --- Lookup ----------------------------------------------------------------

// Lookup is a view onto a lookup table. Subtables of extension lookups are
// resolved transparently.
type Lookup struct {
	table Tag
	data  binarySegm
}

// IsEmpty reports whether the lookup view is empty.
func (l Lookup) IsEmpty() bool {
	return l.data == nil
}

// Type returns the lookup type as stored in the lookup table. For extension
// lookups, use ResolvedType.
func (l Lookup) Type() LayoutTableLookupType {
	return LayoutTableLookupType(l.data.U16(0))
}

// ResolvedType returns the lookup type, with extension lookups resolved to the
// type of their subtables.
func (l Lookup) ResolvedType() LayoutTableLookupType {
	if l.SubTableCount() > 0 {
		return l.SubTable(0).Type
	}
	return l.Type()
}

// Flag returns the lookup flags.
func (l Lookup) Flag() LayoutTableLookupFlag {
	return LayoutTableLookupFlag(l.data.U16(2))
}

// SubTableCount returns the number of subtables.
func (l Lookup) SubTableCount() int {
	return int(l.data.U16(4))
}

// MarkFilteringSet returns the index of the GDEF mark glyph set to use, or
// NotFoundIndex if the lookup does not use mark filtering.
func (l Lookup) MarkFilteringSet() int {
	if l.Flag()&LOOKUP_FLAG_USE_MARK_FILTERING_SET == 0 {
		return NotFoundIndex
	}
	return int(l.data.U16(6 + 2*l.SubTableCount()))
}

// Props returns the lookup flags combined with the mark filtering set in
// the upper 16 bits. This is the representation used for glyph filtering.
func (l Lookup) Props() uint32 {
	props := uint32(l.Flag())
	if l.Flag()&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		props |= uint32(l.MarkFilteringSet()) << 16
	}
	return props
}

// IsReverse reports whether the lookup is to be applied back to front, which is
// true for GSUB reverse chaining lookups.
func (l Lookup) IsReverse() bool {
	return l.table == TagGSUB && l.ResolvedType() == GSubLookupTypeReverseChaining
}

// SubTable returns subtable number i.
func (l Lookup) SubTable(i int) LookupSubtable {
	if i < 0 || i >= l.SubTableCount() {
		return LookupSubtable{}
	}
	sub := l.data.link16(6 + 2*i)
	if isExtension(l.table, l.Type()) {
		return LookupSubtable{
			Table: l.table,
			Type:  LayoutTableLookupType(sub.U16(2)),
			data:  sub.link32(4),
		}
	}
	return LookupSubtable{Table: l.table, Type: l.Type(), data: sub}
}

// LookupSubtable is a view onto a lookup subtable. Table and Type tell how
// to interpret the subtable, where Type is never an extension type.
type LookupSubtable struct {
	Table Tag
	Type  LayoutTableLookupType
	data  binarySegm
}

// Format returns the subtable's format.
func (st LookupSubtable) Format() uint16 {
	return st.data.U16(0)
}

// IsEmpty reports whether the subtable view is empty.
func (st LookupSubtable) IsEmpty() bool {
	return st.data == nil
}
