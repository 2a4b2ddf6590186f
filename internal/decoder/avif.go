package decoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"

	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// box is one ISOBMFF box with its header stripped.
type box struct {
	typ     string
	payload []byte
}

// readBoxes splits data into consecutive boxes. Sizes of 1 (64-bit
// largesize) and 0 (extends to the end) are honoured.
func readBoxes(data []byte) ([]box, error) {
	var out []box
	for off := 0; off < len(data); {
		if off+8 > len(data) {
			return nil, fmt.Errorf("truncated box header at offset %d", off)
		}
		size := uint64(binary.BigEndian.Uint32(data[off : off+4]))
		typ := string(data[off+4 : off+8])
		hdr := uint64(8)
		switch size {
		case 1:
			if off+16 > len(data) {
				return nil, fmt.Errorf("truncated largesize of box %q", typ)
			}
			size = binary.BigEndian.Uint64(data[off+8 : off+16])
			hdr = 16
		case 0:
			size = uint64(len(data) - off)
		}
		if size < hdr || size > uint64(len(data)-off) {
			return nil, fmt.Errorf("box %q size %d overruns buffer at offset %d", typ, size, off)
		}
		out = append(out, box{typ: typ, payload: data[off+int(hdr) : off+int(size)]})
		off += int(size)
	}
	return out, nil
}

func findBox(boxes []box, typ string) (box, bool) {
	for _, b := range boxes {
		if b.typ == typ {
			return b, true
		}
	}
	return box{}, false
}

// fullBoxChildren parses the children of a FullBox (4 bytes version/flags first).
func fullBoxChildren(b box) ([]box, error) {
	if len(b.payload) < 4 {
		return nil, fmt.Errorf("box %q too short", b.typ)
	}
	return readBoxes(b.payload[4:])
}

// avifExtent validates the container and returns the largest image extent
// declared by an ispe property.
func avifExtent(data []byte) (image.Point, error) {
	top, err := readBoxes(data)
	if err != nil {
		return image.Point{}, err
	}
	if len(top) == 0 || top[0].typ != "ftyp" {
		return image.Point{}, fmt.Errorf("ftyp is not the first box")
	}
	meta, ok := findBox(top, "meta")
	if !ok {
		return image.Point{}, fmt.Errorf("missing meta box")
	}
	metaChildren, err := fullBoxChildren(meta)
	if err != nil {
		return image.Point{}, err
	}
	iprp, ok := findBox(metaChildren, "iprp")
	if !ok {
		return image.Point{}, fmt.Errorf("missing iprp box")
	}
	iprpChildren, err := readBoxes(iprp.payload)
	if err != nil {
		return image.Point{}, err
	}
	ipco, ok := findBox(iprpChildren, "ipco")
	if !ok {
		return image.Point{}, fmt.Errorf("missing ipco box")
	}
	props, err := readBoxes(ipco.payload)
	if err != nil {
		return image.Point{}, err
	}

	var best image.Point
	for _, p := range props {
		if p.typ != "ispe" {
			continue
		}
		if len(p.payload) < 12 {
			return image.Point{}, fmt.Errorf("ispe box too short")
		}
		w := binary.BigEndian.Uint32(p.payload[4:8])
		h := binary.BigEndian.Uint32(p.payload[8:12])
		if w > 1<<16 || h > 1<<16 {
			return image.Point{}, fmt.Errorf("ispe extent %dx%d out of range", w, h)
		}
		if int(w)*int(h) > best.X*best.Y {
			best = image.Pt(int(w), int(h))
		}
	}
	if best.X == 0 || best.Y == 0 {
		return image.Point{}, fmt.Errorf("no image extent (ispe) property")
	}
	return best, nil
}

func probeAVIF(_ *Decoder, data []byte) (image.Point, error) {
	return avifExtent(data)
}

// decodeAVIF delegates pixel decoding to avifdec, asking for 8-bit PNG so
// 10/12-bit sources are downsampled here.
func decodeAVIF(d *Decoder, data []byte) (image.Image, error) {
	if _, err := avifExtent(data); err != nil {
		return nil, err
	}
	if !d.avifdec.Available() {
		return nil, imgerr.New(imgerr.KindUnsupportedMode, "decode avif", "avifdec not found in PATH; install libavif-bin")
	}
	out, err := d.avifdec.Convert(data, "avif", "png", func(src, dst string) []string {
		return []string{"--depth", "8", "-j", "1", src, dst}
	})
	if err != nil {
		return nil, err
	}
	return png.Decode(bytes.NewReader(out))
}
