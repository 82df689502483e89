package otlayout

import (
	"github.com/npillmayer/otview/ot"
)

// digest is a small Bloom filter over glyph indices. It may report glyphs
// that have never been added, but never misses one that has. Lookup
// application uses digests to skip subtables which cannot match the
// current glyph without a coverage lookup.
type digest struct {
	masks [3]uint64
}

var digestShifts = [3]uint{4, 0, 9}

func (d *digest) add(g ot.GlyphIndex) {
	for i, shift := range digestShifts {
		d.masks[i] |= 1 << ((uint(g) >> shift) & 63)
	}
}

func (d *digest) addCoverage(cov ot.Coverage) {
	for _, g := range cov.Glyphs() {
		d.add(g)
	}
}

func (d *digest) union(other digest) {
	for i := range d.masks {
		d.masks[i] |= other.masks[i]
	}
}

func (d digest) mayHave(g ot.GlyphIndex) bool {
	for i, shift := range digestShifts {
		if d.masks[i]&(1<<((uint(g)>>shift)&63)) == 0 {
			return false
		}
	}
	return true
}

// lookupAccel caches data derived from a lookup which is needed on every
// application: the lookup itself, its subtables and their digests.
type lookupAccel struct {
	lookup    ot.Lookup
	subtables []ot.LookupSubtable
	digests   []digest
	digest    digest // union of all subtable digests
}

func newLookupAccel(l ot.Lookup) *lookupAccel {
	accel := &lookupAccel{lookup: l}
	n := l.SubTableCount()
	accel.subtables = make([]ot.LookupSubtable, n)
	accel.digests = make([]digest, n)
	for i := 0; i < n; i++ {
		st := l.SubTable(i)
		accel.subtables[i] = st
		accel.digests[i].addCoverage(st.Coverage())
		accel.digest.union(accel.digests[i])
	}
	return accel
}

type accelKey struct {
	table ot.Tag
}

// accelerators returns the lookup accelerators of a layout table of a face.
// They are created once per face and table.
func accelerators(face *ot.Face, table ot.Tag) []*lookupAccel {
	if face == nil {
		return nil
	}
	return face.Memo(accelKey{table: table}, func() any {
		lt := face.LayoutTable(table)
		accels := make([]*lookupAccel, lt.LookupCount())
		for i := range accels {
			accels[i] = newLookupAccel(lt.Lookup(i))
		}
		tracer().Debugf("built %d lookup accelerators for %s", len(accels), table)
		return accels
	}).([]*lookupAccel)
}

// accelerator returns the accelerator for lookup inx of a layout table, or nil
// if there is no such lookup.
func accelerator(face *ot.Face, table ot.Tag, inx int) *lookupAccel {
	accels := accelerators(face, table)
	if inx < 0 || inx >= len(accels) {
		return nil
	}
	return accels[inx]
}
