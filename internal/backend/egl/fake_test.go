package egl

import "unsafe"

func unsafeSlice(p *uintptr, n int) []uintptr {
	return unsafe.Slice(p, n)
}

func readList(p *int32) []int32 {
	var out []int32
	for i := 0; ; i++ {
		v := *(*int32)(unsafe.Add(unsafe.Pointer(p), i*4))
		out = append(out, v)
		if v == NONE {
			return out
		}
	}
}
