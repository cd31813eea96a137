package mono

import (
	"github.com/rask-lang/raskc/internal/typesystem"
)

// sizeOf/alignOf give mono's own minimal notion of a type's storage
// footprint, just enough to compute struct/enum field offsets (spec §4.7
// "Layout: field offsets computed with natural alignment, no codegen ABI
// commitment"). Composite types too (named structs/enums already visited)
// fall back to a conservative pointer-sized slot, since recursive types
// (a struct containing itself by value) are impossible and by-value structs
// nested inside other structs are inlined by a real ABI in a way this
// layout pass does not need to reproduce for any SPEC_FULL consumer.
func sizeOf(t typesystem.Type) int {
	switch t.Kind {
	case typesystem.KPrimitive:
		switch t.Prim {
		case "i8", "u8", "bool":
			return 1
		case "i16", "u16":
			return 2
		case "i32", "u32", "f32", "char":
			return 4
		case "i64", "u64", "f64":
			return 8
		case "i128", "u128":
			return 16
		case "unit", "never":
			return 0
		}
		return 8
	case typesystem.KArray:
		return sizeOf(*t.Elem) * t.Len
	case typesystem.KTuple:
		total := 0
		for _, e := range t.Elems {
			total += sizeOf(e)
		}
		return total
	default:
		return 8
	}
}

func alignOf(t typesystem.Type) int {
	s := sizeOf(t)
	switch {
	case s >= 8:
		return 8
	case s >= 4:
		return 4
	case s >= 2:
		return 2
	case s <= 0:
		return 1
	default:
		return s
	}
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// collectLayouts computes a StructLayout/EnumLayout for every struct/enum
// TypeId reached while instantiating out.Functions (spec §4.7 "Layout").
func (m *monomorphizer) collectLayouts(out *Program) {
	for _, id := range sortedTypeIDs(m.structSeen) {
		def := m.tc.Table.Get(id)
		if def == nil {
			continue
		}
		out.StructLayouts = append(out.StructLayouts, m.layoutStruct(def))
	}
	for _, id := range sortedTypeIDs(m.enumSeen) {
		def := m.tc.Table.Get(id)
		if def == nil {
			continue
		}
		out.EnumLayouts = append(out.EnumLayouts, m.layoutEnum(def))
	}
}

func (m *monomorphizer) layoutStruct(def *typesystem.TypeDef) *StructLayout {
	layout := &StructLayout{TypeID: def.ID, Name: def.Name}
	offset := 0
	maxAlign := 1
	for _, f := range def.Fields {
		a := alignOf(f.Type)
		if a > maxAlign {
			maxAlign = a
		}
		offset = alignUp(offset, a)
		size := sizeOf(f.Type)
		layout.Fields = append(layout.Fields, StructField{Name: f.Name, Type: f.Type, Offset: offset, Size: size})
		offset += size
	}
	layout.Size = alignUp(offset, maxAlign)
	layout.Align = maxAlign
	return layout
}

// layoutEnum computes a single shared payload region sized to the widest
// variant (a tagged union), with the tag occupying the first TagType-sized
// bytes (spec §4.7 "TagType is u8 for up to 256 variants, else u16").
func (m *monomorphizer) layoutEnum(def *typesystem.TypeDef) *EnumLayout {
	tagType := "u8"
	if len(def.Variants) > 256 {
		tagType = "u16"
	}
	tagSize := 1
	if tagType == "u16" {
		tagSize = 2
	}
	layout := &EnumLayout{TypeID: def.ID, Name: def.Name, TagType: tagType}
	maxAlign := tagSize
	payloadSizes := make([]int, len(def.Variants))
	maxPayload := 0
	for i, v := range def.Variants {
		payloadSize := 0
		for _, p := range v.Positional {
			if a := alignOf(p); a > maxAlign {
				maxAlign = a
			}
			payloadSize += sizeOf(p)
		}
		for _, f := range v.Named {
			if a := alignOf(f.Type); a > maxAlign {
				maxAlign = a
			}
			payloadSize += sizeOf(f.Type)
		}
		payloadSizes[i] = payloadSize
		if payloadSize > maxPayload {
			maxPayload = payloadSize
		}
	}
	payloadOffset := alignUp(tagSize, maxAlign)
	for i, v := range def.Variants {
		layout.Variants = append(layout.Variants, EnumVariantLayout{
			Name:          v.Name,
			Tag:           v.Index,
			PayloadOffset: payloadOffset,
			PayloadSize:   payloadSizes[i],
		})
	}
	layout.Size = alignUp(payloadOffset+maxPayload, maxAlign)
	layout.Align = maxAlign
	return layout
}
