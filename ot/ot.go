package ot

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// NameID is an index into a font's 'name' table.
type NameID uint16

// NoNameID is returned by accessors for name IDs where a table does not
// provide a name.
const NoNameID NameID = 0xFFFF

// Sentinel values for index lookups.
const (
	NotFoundIndex        = 0xFFFF // script/language/feature index not found
	DefaultLanguageIndex = 0xFFFF // denotes a script's default language system
)

// NoVariationsIndex is returned if no feature variation record applies.
const NoVariationsIndex uint32 = 0xFFFFFFFF

// --- Tag -------------------------------------------------------------------

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table, design-variation axis,
// script, language system, feature, or baseline
type Tag uint32

// Tags with special meaning for layout queries.
const (
	TagDFLT Tag = 0x44464C54 // 'DFLT', default script
	TagDflt Tag = 0x64666C74 // 'dflt', default language system (mis-used for scripts by some fonts)
	TagLatn Tag = 0x6C61746E // 'latn', Latin script
	TagNone Tag = 0          // no tag
)

// Table tags this package knows how to sanitize.
const (
	TagGSUB Tag = 0x47535542
	TagGPOS Tag = 0x47504F53
	TagGDEF Tag = 0x47444546
	TagCPAL Tag = 0x4350414C
	TagMaxp Tag = 0x6D617870
	TagName Tag = 0x6E616D65
)

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append([]byte{0, 0, 0, 0}[:4-len(b)], b...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	})
}

// isNumbered reports whether t consists of the two characters p followed by
// two decimal digits, as in 'ss01' or 'cv99'.
func (t Tag) isNumbered(p string) bool {
	if len(p) != 2 || byte(t>>24) != p[0] || byte(t>>16) != p[1] {
		return false
	}
	d1, d2 := byte(t>>8), byte(t)
	return '0' <= d1 && d1 <= '9' && '0' <= d2 && d2 <= '9'
}

// --- Blob ------------------------------------------------------------------

// Blob is an immutable buffer holding the binary data of a font file.
// All views onto font tables reference a Blob's bytes; they never copy them.
// Clients must not modify the underlying byte slice while a Blob is in use.
type Blob struct {
	data binarySegm
}

// EmptyBlob is a blob without any data.
var EmptyBlob = Blob{}

// NewBlob wraps a byte slice as a Blob.
func NewBlob(data []byte) Blob {
	return Blob{data: data}
}

// Len returns the size of the blob in bytes.
func (b Blob) Len() int {
	return len(b.data)
}

// Bytes returns the blob's data. Clients must treat it as read-only.
func (b Blob) Bytes() []byte {
	return b.data
}
