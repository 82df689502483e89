/*
Package otbuild assembles OpenType table binaries for tests.

Tables are described as trees of Table values. A Table is a sequence of
big-endian fields, some of which are offsets to child tables. When a tree is
serialized, children are laid out after their parents (breadth first) and
offsets are resolved relative to the start of the table which contains the
offset field, which is what OpenType does for nearly all offsets.

Helpers in this package produce the common building blocks (coverage, class
definitions, layout tables, CPAL, whole SFNT fonts). They intentionally do not
validate anything: tests use them to produce malformed data as well.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otbuild

import (
	"encoding/binary"
	"fmt"
)

type fieldKind uint8

const (
	fieldU16 fieldKind = iota
	fieldU32
	fieldBytes
	fieldOff16
	fieldOff32
)

type field struct {
	kind  fieldKind
	val   uint32
	raw   []byte
	child *Table
}

func (f field) size() int {
	switch f.kind {
	case fieldU16, fieldOff16:
		return 2
	case fieldU32, fieldOff32:
		return 4
	}
	return len(f.raw)
}

// Table is a node of a table tree.
type Table struct {
	fields []field
}

// New creates an empty table.
func New() *Table {
	return &Table{}
}

// U16 appends 16-bit fields.
func (t *Table) U16(v ...uint16) *Table {
	for _, x := range v {
		t.fields = append(t.fields, field{kind: fieldU16, val: uint32(x)})
	}
	return t
}

// I16 appends signed 16-bit fields.
func (t *Table) I16(v ...int16) *Table {
	for _, x := range v {
		t.fields = append(t.fields, field{kind: fieldU16, val: uint32(uint16(x))})
	}
	return t
}

// U32 appends 32-bit fields.
func (t *Table) U32(v ...uint32) *Table {
	for _, x := range v {
		t.fields = append(t.fields, field{kind: fieldU32, val: x})
	}
	return t
}

// Tag appends a 4-byte tag. Tags shorter than 4 bytes are padded with spaces.
func (t *Table) Tag(tag string) *Table {
	b := []byte(tag + "    ")[:4]
	return t.U32(binary.BigEndian.Uint32(b))
}

// Data appends raw bytes.
func (t *Table) Data(b []byte) *Table {
	t.fields = append(t.fields, field{kind: fieldBytes, raw: b})
	return t
}

// Off16 appends a 16-bit offset to child. A nil child results in a NULL offset.
func (t *Table) Off16(child *Table) *Table {
	t.fields = append(t.fields, field{kind: fieldOff16, child: child})
	return t
}

// Off32 appends a 32-bit offset to child. A nil child results in a NULL offset.
func (t *Table) Off32(child *Table) *Table {
	t.fields = append(t.fields, field{kind: fieldOff32, child: child})
	return t
}

func (t *Table) size() int {
	n := 0
	for _, f := range t.fields {
		n += f.size()
	}
	return n
}

// Bytes serializes the table tree rooted at t.
//
// A child referenced more than once is placed only once. Bytes panics if an
// offset cannot be represented, i.e. if it would be negative or too large for
// its field. This is a test helper, and a panic points to a broken test setup.
func (t *Table) Bytes() []byte {
	pos := map[*Table]int{}
	var order []*Table
	queue := []*Table{t}
	end := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if _, seen := pos[node]; seen {
			continue
		}
		pos[node] = end
		end += node.size()
		order = append(order, node)
		for _, f := range node.fields {
			if f.child != nil {
				queue = append(queue, f.child)
			}
		}
	}
	out := make([]byte, end)
	for _, node := range order {
		at := pos[node]
		for _, f := range node.fields {
			switch f.kind {
			case fieldU16:
				binary.BigEndian.PutUint16(out[at:], uint16(f.val))
			case fieldU32:
				binary.BigEndian.PutUint32(out[at:], f.val)
			case fieldBytes:
				copy(out[at:], f.raw)
			case fieldOff16, fieldOff32:
				off := 0
				if f.child != nil {
					off = pos[f.child] - pos[node]
				}
				if off < 0 || (f.kind == fieldOff16 && off > 0xFFFF) {
					panic(fmt.Sprintf("otbuild: offset %d not representable", off))
				}
				if f.kind == fieldOff16 {
					binary.BigEndian.PutUint16(out[at:], uint16(off))
				} else {
					binary.BigEndian.PutUint32(out[at:], uint32(off))
				}
			}
			at += f.size()
		}
	}
	return out
}

// Raw wraps pre-built bytes as a table, e.g. to reference a hand-crafted
// malformed structure from a well-formed one.
func Raw(b []byte) *Table {
	return New().Data(b)
}
