package engine

// rowRing holds the last radius+1 filtered rows of a column pass. Row y lives
// in slot y mod slots; a row is drained to the output only once no later row
// can read the input it overwrites.
type rowRing struct {
	data    []float32
	slots   int
	slotLen int
}

func newRowRing(data []float32, slots, slotLen int) rowRing {
	return rowRing{data: data[:slots*slotLen], slots: slots, slotLen: slotLen}
}

// slot returns the storage for row y.
func (r rowRing) slot(y int) []float32 {
	s := (y % r.slots) * r.slotLen
	return r.data[s : s+r.slotLen]
}

// drain copies the first width elements of row y into out.
func (r rowRing) drain(y, width int, out []float32, stride int) {
	copy(out[y*stride:y*stride+width], r.slot(y)[:width])
}

// ringSlotLen rounds width up to whole registers so every slot starts on a
// register boundary of the aligned scratch. Spans write exactly width values,
// so no padding past that is needed.
func ringSlotLen(width, lanes int) int {
	return (width + lanes - 1) / lanes * lanes
}
