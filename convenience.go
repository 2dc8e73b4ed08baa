package fastfilter

// ConvolveRows filters a single signal with a kernel without keeping a Filter.
func ConvolveRows(kernel Kernel, in, out []float32) error {
	f, err := New(&Config{Kernel: kernel})
	if err != nil {
		return err
	}
	return f.Rows(in, out)
}

// ConvolveColumns filters every column of a strided image with a kernel
// without keeping a Filter.
func ConvolveColumns(kernel Kernel, in []float32, width, height, inStride int, out []float32, outStride int) error {
	f, err := New(&Config{Kernel: kernel})
	if err != nil {
		return err
	}
	return f.Columns(in, width, height, inStride, out, outStride)
}

// RowsInPlace filters a signal in place using tmp as the intermediate
// buffer. tmp must have the same length as data and must not overlap it.
func (f *Filter) RowsInPlace(data, tmp []float32) error {
	if err := f.Rows(data, tmp); err != nil {
		return err
	}
	copy(data, tmp)
	return nil
}

// ColumnsInPlace filters every column of a strided image in place.
func (f *Filter) ColumnsInPlace(data []float32, width, height, stride int) error {
	return f.Columns(data, width, height, stride, data, stride)
}
