package uview

import "encoding/binary"

// Image is one camera frame transferred from UView: Width×Height unsigned
// 16-bit samples. A fresh Image is produced per GetImage call; nothing is
// cached.
//
// The pixel buffer is laid out as Width runs of Height samples, matching
// the transfer order of the instrument. Samples decode little-endian; the
// acquisition host is an x86 Windows machine and the wire carries its
// native byte order.
type Image struct {
	Width  int
	Height int
	Pix    []uint16
}

// At returns the sample at position (x, y) with 0 ≤ x < Width and
// 0 ≤ y < Height.
func (img *Image) At(x, y int) uint16 {
	return img.Pix[x*img.Height+y]
}

func decodeSamples(raw []byte) []uint16 {
	pix := make([]uint16, len(raw)/2)
	for i := range pix {
		pix[i] = binary.LittleEndian.Uint16(raw[2*i:])
	}

	return pix
}
