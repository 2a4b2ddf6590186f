package decoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/AnyUserName/imgpress/internal/imgerr"
	"golang.org/x/image/webp"
)

const vp8xAnimationFlag = 0x02

// validateWebP checks the RIFF size and every chunk size against the buffer.
func validateWebP(data []byte) error {
	if len(data) < 20 {
		return fmt.Errorf("truncated RIFF header (%d bytes)", len(data))
	}
	riff := int64(binary.LittleEndian.Uint32(data[4:8]))
	end := 8 + riff
	if riff < 12 || end > int64(len(data)) {
		return fmt.Errorf("RIFF size %d does not fit %d bytes", riff, len(data))
	}

	off := int64(12)
	first := true
	for off < end {
		if off+8 > end {
			return fmt.Errorf("truncated chunk header at offset %d", off)
		}
		fourcc := string(data[off : off+4])
		size := int64(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		payload := off + 8
		if payload+size > end {
			return fmt.Errorf("chunk %q size %d overruns RIFF payload", fourcc, size)
		}

		if first {
			switch fourcc {
			case "VP8 ", "VP8L", "VP8X":
			default:
				return fmt.Errorf("unexpected first chunk %q", fourcc)
			}
			first = false
		}
		switch fourcc {
		case "VP8X":
			if size < 10 {
				return fmt.Errorf("VP8X chunk too short (%d)", size)
			}
			if data[payload]&vp8xAnimationFlag != 0 {
				return imgerr.New(imgerr.KindUnsupportedFormat, "decode webp", "animated webp is not supported")
			}
		case "ANIM", "ANMF":
			return imgerr.New(imgerr.KindUnsupportedFormat, "decode webp", "animated webp is not supported")
		}

		// Chunks are padded to even sizes.
		off = payload + size + size&1
	}
	return nil
}

func probeWebP(_ *Decoder, data []byte) (image.Point, error) {
	if err := validateWebP(data); err != nil {
		return image.Point{}, err
	}
	cfg, err := webp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func decodeWebP(_ *Decoder, data []byte) (image.Image, error) {
	if err := validateWebP(data); err != nil {
		return nil, err
	}
	return webp.Decode(bytes.NewReader(data))
}
