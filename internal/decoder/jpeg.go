package decoder

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
)

const (
	markerSOI = 0xd8
	markerEOI = 0xd9
	markerSOS = 0xda
	markerTEM = 0x01
)

// isSOF reports whether m is a start-of-frame marker (C0–CF minus DHT, JPG, DAC).
func isSOF(m byte) bool {
	return m >= 0xc0 && m <= 0xcf && m != 0xc4 && m != 0xc8 && m != 0xcc
}

// validateJPEG walks the marker segments from SOI up to the first SOS.
// Every segment must fit the buffer and a frame header must come first.
func validateJPEG(data []byte) error {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return fmt.Errorf("missing SOI marker")
	}
	sawSOF := false
	i := 2
	for {
		if i >= len(data) {
			return fmt.Errorf("truncated before scan data")
		}
		if data[i] != 0xff {
			return fmt.Errorf("expected marker at offset %d, found 0x%02x", i, data[i])
		}
		// Any number of 0xff fill bytes may precede a marker.
		for i < len(data) && data[i] == 0xff {
			i++
		}
		if i >= len(data) {
			return fmt.Errorf("truncated marker at offset %d", i)
		}
		m := data[i]
		i++

		switch {
		case m == markerSOI:
			return fmt.Errorf("unexpected SOI at offset %d", i-2)
		case m == markerEOI:
			return fmt.Errorf("EOI before scan data")
		case m == markerTEM, m >= 0xd0 && m <= 0xd7:
			continue // standalone, no length
		case m == 0x00:
			return fmt.Errorf("stuffed byte outside scan at offset %d", i-1)
		}

		if i+2 > len(data) {
			return fmt.Errorf("truncated length of marker 0x%02x", m)
		}
		n := int(binary.BigEndian.Uint16(data[i : i+2]))
		if n < 2 || i+n > len(data) {
			return fmt.Errorf("marker 0x%02x length %d overruns buffer (%d bytes left)", m, n, len(data)-i)
		}
		if isSOF(m) {
			sawSOF = true
		}
		if m == markerSOS {
			if !sawSOF {
				return fmt.Errorf("scan before frame header")
			}
			if i+n >= len(data) {
				return fmt.Errorf("no entropy-coded data after scan header")
			}
			return nil
		}
		i += n
	}
}

func probeJPEG(_ *Decoder, data []byte) (image.Point, error) {
	if err := validateJPEG(data); err != nil {
		return image.Point{}, err
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

func decodeJPEG(_ *Decoder, data []byte) (image.Image, error) {
	if err := validateJPEG(data); err != nil {
		return nil, err
	}
	return jpeg.Decode(bytes.NewReader(data))
}
