package format

import (
	"bytes"
	"encoding/binary"

	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// PrefixLen is the largest prefix Detect ever looks at.
const PrefixLen = 64

// minSignature is the shortest signature we recognise (BMP "BM").
const minSignature = 2

var (
	sigPNG   = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	sigJPEG  = []byte{0xff, 0xd8, 0xff}
	sigRIFF  = []byte("RIFF")
	sigWEBP  = []byte("WEBP")
	sigFTYP  = []byte("ftyp")
	sigBMP   = []byte("BM")
	sigTIFFL = []byte{'I', 'I', 0x2a, 0x00}
	sigTIFFB = []byte{'M', 'M', 0x00, 0x2a}
	sigGIF   = []byte("GIF8")
)

// Detect classifies data by magic bytes. The file name plays no part.
func Detect(data []byte) (Format, error) {
	if len(data) < minSignature {
		return Unknown, imgerr.New(imgerr.KindUnsupportedFormat, "detect",
			"input too short (%d bytes)", len(data))
	}
	if len(data) > PrefixLen {
		data = data[:PrefixLen]
	}

	switch {
	case bytes.HasPrefix(data, sigPNG):
		return PNG, nil
	case bytes.HasPrefix(data, sigJPEG):
		return JPEG, nil
	case len(data) >= 12 && bytes.Equal(data[0:4], sigRIFF) && bytes.Equal(data[8:12], sigWEBP):
		return WebP, nil
	case isAVIF(data):
		return AVIF, nil
	case bytes.HasPrefix(data, sigTIFFL), bytes.HasPrefix(data, sigTIFFB):
		return TIFF, nil
	case bytes.HasPrefix(data, sigGIF):
		return Unknown, imgerr.New(imgerr.KindUnsupportedFormat, "detect",
			"gif input is not supported")
	case bytes.HasPrefix(data, sigBMP) && isBMP(data):
		return BMP, nil
	}
	return Unknown, imgerr.New(imgerr.KindUnsupportedFormat, "detect", "no known signature")
}

// bmpHeaderSizes are the DIB header sizes of every BITMAPINFOHEADER
// revision, OS/2 variants included.
var bmpHeaderSizes = map[uint32]bool{12: true, 40: true, 52: true, 56: true, 64: true, 108: true, 124: true}

// isBMP requires a known DIB header size right after the 14-byte file
// header, since "BM" alone matches plenty of non-image data.
func isBMP(data []byte) bool {
	if len(data) < 18 {
		return false
	}
	return bmpHeaderSizes[binary.LittleEndian.Uint32(data[14:18])]
}

// isAVIF checks for an ISOBMFF ftyp box whose major or compatible brands
// include avif (still) or avis (sequence).
func isAVIF(data []byte) bool {
	if len(data) < 12 || !bytes.Equal(data[4:8], sigFTYP) {
		return false
	}
	size := int(binary.BigEndian.Uint32(data[0:4]))
	if size < 16 || size > len(data) {
		// Still accept a major brand match when the box runs past the prefix.
		size = len(data)
	}
	if avifBrand(data[8:12]) {
		return true
	}
	// major(4) minor_version(4) then compatible brands.
	for off := 16; off+4 <= size; off += 4 {
		if avifBrand(data[off : off+4]) {
			return true
		}
	}
	return false
}

func avifBrand(b []byte) bool {
	return string(b) == "avif" || string(b) == "avis"
}
