package uview

import (
	"fmt"

	"github.com/elmitec/go-elmitec/proto"
)

// FileFormat selects the on-disk format of an exported image. The numeric
// values are the format codes of the export command.
type FileFormat int

const (
	// FormatDAT is uncompressed 16-bit raw data with the overlay included;
	// the contents selection is ignored.
	FormatDAT FileFormat = 0
	// FormatPNG is a compressed RGB888 image.
	FormatPNG FileFormat = 1
	// FormatTIFF is a compressed RGB888 image.
	FormatTIFF FileFormat = 2
	// FormatBMP is an uncompressed RGB888 image.
	FormatBMP FileFormat = 3
	// FormatJPG is compressed with the quality configured in UView; only
	// processed contents are supported.
	FormatJPG FileFormat = 4
	// FormatTIFF16 is uncompressed 16-bit raw data; the contents selection
	// is ignored.
	FormatTIFF16 FileFormat = 5
)

func (f FileFormat) String() string {
	switch f {
	case FormatDAT:
		return "DAT"
	case FormatPNG:
		return "PNG"
	case FormatTIFF:
		return "TIFF"
	case FormatBMP:
		return "BMP"
	case FormatJPG:
		return "JPG"
	case FormatTIFF16:
		return "TIFF16"
	default:
		return fmt.Sprintf("FileFormat(%d)", int(f))
	}
}

// FileContents selects what pixel data an export contains. The numeric
// values are the contents codes of the export command.
type FileContents int

const (
	// ContentsProcessed exports x, y, z as seen on screen.
	ContentsProcessed FileContents = 0
	// ContentsRaw exports raw x, y with z as seen on screen.
	ContentsRaw FileContents = 1
	// ContentsGray16 exports a 16-bit gray level image, x, y, z raw.
	ContentsGray16 FileContents = 2
)

func (c FileContents) String() string {
	switch c {
	case ContentsProcessed:
		return "PROCESSED"
	case ContentsRaw:
		return "RAW"
	case ContentsGray16:
		return "GRAY16"
	default:
		return fmt.Sprintf("FileContents(%d)", int(c))
	}
}

// checkExportCombo validates the fixed (format, contents) compatibility
// table. It runs before any I/O.
func checkExportCombo(format FileFormat, contents FileContents) error {
	switch format {
	case FormatDAT, FormatTIFF16:
		// Contents selection is ignored for raw formats.
		return nil

	case FormatPNG:
		switch contents {
		case ContentsProcessed, ContentsRaw, ContentsGray16:
			return nil
		}

	case FormatTIFF, FormatBMP:
		switch contents {
		case ContentsProcessed, ContentsRaw:
			return nil
		case ContentsGray16:
			return fmt.Errorf("%w: %s does not support GRAY16 contents", proto.ErrInvalidArgument, format)
		}

	case FormatJPG:
		if contents == ContentsProcessed {
			return nil
		}

		return fmt.Errorf("%w: JPG supports only PROCESSED contents", proto.ErrInvalidArgument)

	default:
		return fmt.Errorf("%w: unknown file format %d", proto.ErrInvalidArgument, int(format))
	}

	return fmt.Errorf("%w: unknown file contents %d", proto.ErrInvalidArgument, int(contents))
}
