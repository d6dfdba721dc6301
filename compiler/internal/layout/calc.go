package layout

// Info is the size, alignment and field offsets of a record.
type Info struct {
	FieldOffs []uint32
	Size      uint32
	Align     uint32
	BaseSize  uint32
}

// Record describes a vtable record: an optional embedded base record
// followed by Slots code pointers.
type Record struct {
	Base  *Record
	Name  string
	Slots int
}

type Calculator struct {
	cache    map[*Record]Info
	ptrSize  uint32
	ptrAlign uint32
}

func NewCalculator(ptrSize, ptrAlign uint32) *Calculator {
	return &Calculator{
		cache:    make(map[*Record]Info),
		ptrSize:  ptrSize,
		ptrAlign: ptrAlign,
	}
}

// Pointer returns the layout of one code pointer.
func (c *Calculator) Pointer() Info {
	return Info{Size: c.ptrSize, Align: c.ptrAlign}
}

// Calculate lays out r: the base record at offset 0, then one pointer per
// slot in order. No reordering, padding only for natural alignment.
func (c *Calculator) Calculate(r *Record) Info {
	if cached, ok := c.cache[r]; ok {
		return cached
	}

	maxAlign := uint32(1)
	offset := uint32(0)
	var baseSize uint32

	if r.Base != nil {
		base := c.Calculate(r.Base)
		offset = base.Size
		baseSize = base.Size
		if base.Align > maxAlign {
			maxAlign = base.Align
		}
	}

	ptr := c.Pointer()
	fieldOffs := make([]uint32, 0, r.Slots)
	for i := 0; i < r.Slots; i++ {
		offset = AlignTo(offset, ptr.Align)
		fieldOffs = append(fieldOffs, offset)
		if ptr.Align > maxAlign {
			maxAlign = ptr.Align
		}
		offset += ptr.Size
	}

	info := Info{
		Size:      AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
		BaseSize:  baseSize,
	}
	c.cache[r] = info
	return info
}

func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
