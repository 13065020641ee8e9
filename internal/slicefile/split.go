package slicefile

// Split cuts data into slices of sliceSize bytes. The last slice may be shorter.
// Empty data yields no slices.
func Split(data []byte, sliceSize int) ([]Slice, error) {
	if err := ValidateSliceSize(sliceSize); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	out := make([]Slice, 0, SliceCountFor(int64(len(data)), sliceSize))
	for off := 0; off < len(data); off += sliceSize {
		end := off + sliceSize
		if end > len(data) {
			end = len(data)
		}
		chunk := make([]byte, end-off)
		copy(chunk, data[off:end])
		out = append(out, Slice{Index: len(out), Data: chunk})
	}
	return out, nil
}
