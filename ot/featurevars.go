package ot

// Feature variations allow a font to substitute alternate feature tables,
// depending on the position in a variable font's design space.
//
// See https://docs.microsoft.com/en-us/typography/opentype/spec/chapter2#featurevariations-table
//
//	FeatureVariations
//	  └─ FeatureVariationRecord[] ──► ConditionSet ──► Condition[]
//	                               └─► FeatureTableSubstitution ──► (featureIndex, Feature)[]

func sanitizeFeatureVariations(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("FeatureVariations", b, 0, 8) {
		return false
	}
	if b.U16(0) != 1 {
		return s.fail("FeatureVariations", b, "unsupported major version %d", b.U16(0))
	}
	count := b.U32(4)
	if uint64(count) > uint64(len(b)) { // every record needs 8 bytes
		return s.fail("FeatureVariations", b, "record count %d too large", count)
	}
	if !s.checkArray("FeatureVariations", b, 8, int(count), 8) {
		return false
	}
	for i := 0; i < int(count); i++ {
		rec := 8 + 8*i
		condSet, ok := s.offset32("ConditionSet", b, rec)
		if !ok || !sanitizeConditionSet(s, condSet) {
			return false
		}
		subst, ok := s.offset32("FeatureTableSubstitution", b, rec+4)
		if !ok || !sanitizeFeatureSubstitution(s, subst) {
			return false
		}
	}
	return true
}

func sanitizeConditionSet(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("ConditionSet", b, 0, 2) {
		return false
	}
	count := int(b.U16(0))
	if !s.checkArray("ConditionSet", b, 2, count, 4) {
		return false
	}
	for i := 0; i < count; i++ {
		cond, ok := s.offset32("Condition", b, 2+4*i)
		if !ok {
			return false
		}
		if cond == nil {
			continue
		}
		if !s.check("Condition", cond, 0, 2) {
			return false
		}
		if cond.U16(0) == 1 && !s.check("Condition", cond, 0, 8) {
			return false
		}
	}
	return true
}

func sanitizeFeatureSubstitution(s *sanitizer, b binarySegm) bool {
	if b == nil {
		return true
	}
	if !s.check("FeatureTableSubstitution", b, 0, 6) {
		return false
	}
	if b.U16(0) != 1 {
		return s.fail("FeatureTableSubstitution", b, "unsupported major version %d", b.U16(0))
	}
	count := int(b.U16(4))
	if !s.checkArray("FeatureTableSubstitution", b, 6, count, 6) {
		return false
	}
	for i := 0; i < count; i++ {
		rec := 6 + 6*i
		alt, ok := s.offset32("FeatureTableSubstitution", b, rec+2)
		if !ok {
			return false
		}
		if alt == nil {
			return s.fail("FeatureTableSubstitution", b, "NULL alternate feature")
		}
		if !sanitizeFeature(s, nil, alt, TagNone) {
			return false
		}
	}
	return true
}

// FeatureVariationCount returns the number of feature variation records.
func (lt *LayoutTable) FeatureVariationCount() int {
	if lt == nil || lt.variations == nil {
		return 0
	}
	return int(lt.variations.U32(4))
}

// FindVariationsIndex returns the index of the first feature variation record
// whose condition set matches the normalized design-space coordinates coords
// (in F2DOT14 units). Axes without a coordinate are treated as 0.
// If no record matches, NoVariationsIndex and false are returned.
func (lt *LayoutTable) FindVariationsIndex(coords []int) (uint32, bool) {
	n := lt.FeatureVariationCount()
	for i := 0; i < n; i++ {
		condSet := lt.variations.link32(8 + 8*i)
		if evaluateConditionSet(condSet, coords) {
			return uint32(i), true
		}
	}
	return NoVariationsIndex, false
}

func evaluateConditionSet(b binarySegm, coords []int) bool {
	for i := 0; i < int(b.U16(0)); i++ {
		cond := b.link32(2 + 4*i)
		if cond.U16(0) != 1 {
			return false // unknown condition formats never match
		}
		axis := int(cond.U16(2))
		coord := 0
		if axis < len(coords) {
			coord = coords[axis]
		}
		if coord < int(cond.I16(4)) || coord > int(cond.I16(6)) {
			return false
		}
	}
	return true
}

// FeatureVariation returns feature number feature, as substituted by feature
// variation record number variations. If variations is NoVariationsIndex or
// the record does not substitute the feature, the regular feature is returned.
func (lt *LayoutTable) FeatureVariation(feature int, variations uint32) Feature {
	if variations == NoVariationsIndex || int64(variations) >= int64(lt.FeatureVariationCount()) {
		return lt.Feature(feature)
	}
	subst := lt.variations.link32(8 + 8*int(variations) + 4)
	for i := 0; i < int(subst.U16(4)); i++ {
		rec := 6 + 6*i
		if int(subst.U16(rec)) == feature {
			return Feature{tag: lt.FeatureTag(feature), data: subst.link32(rec + 2)}
		}
	}
	return lt.Feature(feature)
}
