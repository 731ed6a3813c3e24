package wgl

import (
	"unsafe"

	"github.com/1broseidon/glport/internal/platform"
)

const (
	pfdDoubleBuffer  = 0x00000001
	pfdDrawToWindow  = 0x00000004
	pfdSupportOpenGL = 0x00000020
	pfdTypeRGBA      = 0
	pfdMainPlane     = 0
)

// pixelFormatDescriptor mirrors PIXELFORMATDESCRIPTOR.
type pixelFormatDescriptor struct {
	Size           uint16
	Version        uint16
	Flags          uint32
	PixelType      byte
	ColorBits      byte
	RedBits        byte
	RedShift       byte
	GreenBits      byte
	GreenShift     byte
	BlueBits       byte
	BlueShift      byte
	AlphaBits      byte
	AlphaShift     byte
	AccumBits      byte
	AccumRedBits   byte
	AccumGreenBits byte
	AccumBlueBits  byte
	AccumAlphaBits byte
	DepthBits      byte
	StencilBits    byte
	AuxBuffers     byte
	LayerType      byte
	Reserved       byte
	LayerMask      uint32
	VisibleMask    uint32
	DamageMask     uint32
}

// descriptorFor translates attrs into a ChoosePixelFormat request.
func descriptorFor(attrs platform.ConfigAttrs) pixelFormatDescriptor {
	pfd := pixelFormatDescriptor{
		Version:     1,
		Flags:       pfdDrawToWindow | pfdSupportOpenGL,
		PixelType:   pfdTypeRGBA,
		RedBits:     byte(attrs.RedSize),
		GreenBits:   byte(attrs.GreenSize),
		BlueBits:    byte(attrs.BlueSize),
		AlphaBits:   byte(attrs.AlphaSize),
		DepthBits:   byte(attrs.DepthSize),
		StencilBits: byte(attrs.StencilSize),
		LayerType:   pfdMainPlane,
	}
	pfd.Size = uint16(unsafe.Sizeof(pfd))
	pfd.ColorBits = pfd.RedBits + pfd.GreenBits + pfd.BlueBits
	if attrs.DoubleBuffered {
		pfd.Flags |= pfdDoubleBuffer
	}
	if attrs.AccumBuffer {
		pfd.AccumBits = 32
		pfd.AccumRedBits, pfd.AccumGreenBits, pfd.AccumBlueBits, pfd.AccumAlphaBits = 8, 8, 8, 8
	}
	return pfd
}
