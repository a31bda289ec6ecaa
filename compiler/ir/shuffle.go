package ir

func Concat(vectors ...Expr) *Shuffle {
	n := 0
	for _, v := range vectors {
		n += int(v.Type().Lanes)
	}

	ind := make([]int, n)
	for i := range ind {
		ind[i] = i
	}

	return &Shuffle{Vectors: vectors, Indices: ind}
}

func Interleave(vectors ...Expr) *Shuffle {
	n := len(vectors)
	lanes := int(vectors[0].Type().Lanes)

	ind := make([]int, n*lanes)
	for i := range ind {
		ind[i] = (i%n)*lanes + i/n
	}

	return &Shuffle{Vectors: vectors, Indices: ind}
}

func Slice(v Expr, begin, stride, lanes int) *Shuffle {
	ind := make([]int, lanes)
	for i := range ind {
		ind[i] = begin + i*stride
	}

	return &Shuffle{Vectors: []Expr{v}, Indices: ind}
}

func (x *Shuffle) InputLanes() int {
	n := 0
	for _, v := range x.Vectors {
		n += int(v.Type().Lanes)
	}

	return n
}

func (x *Shuffle) IsInterleave() bool {
	n := len(x.Vectors)
	if n < 2 {
		return false
	}

	lanes := int(x.Vectors[0].Type().Lanes)

	for _, v := range x.Vectors {
		if int(v.Type().Lanes) != lanes {
			return false
		}
	}

	if len(x.Indices) != n*lanes {
		return false
	}

	for i, ix := range x.Indices {
		if ix != (i%n)*lanes+i/n {
			return false
		}
	}

	return true
}

func (x *Shuffle) IsConcat() bool {
	if len(x.Vectors) < 2 || len(x.Indices) != x.InputLanes() {
		return false
	}

	for i, ix := range x.Indices {
		if ix != i {
			return false
		}
	}

	return true
}

func (x *Shuffle) IsSlice() bool {
	if len(x.Indices) == 0 {
		return false
	}

	stride := x.SliceStride()

	for i, ix := range x.Indices {
		if ix != x.Indices[0]+i*stride {
			return false
		}
	}

	return true
}

func (x *Shuffle) SliceBegin() int { return x.Indices[0] }

func (x *Shuffle) SliceStride() int {
	if len(x.Indices) < 2 {
		return 1
	}

	return x.Indices[1] - x.Indices[0]
}
