//go:build windows

package tray

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/png"

	"github.com/example/scripthub/internal/logging"
)

// icoHeader is ICONDIR followed by a single ICONDIRENTRY.
type icoHeader struct {
	Reserved   uint16
	Type       uint16
	Count      uint16
	Width      uint8
	Height     uint8
	Colors     uint8
	Reserved2  uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

const icoHeaderSize = 6 + 16

// platformIcon wraps the PNG icon in an ICO container, which is the only
// format the Windows tray accepts.
func platformIcon(data []byte) []byte {
	if isICO(data) {
		return data
	}
	ico, err := pngToICO(data)
	if err != nil {
		logging.Warnf("tray icon conversion failed: %v", err)
		return nil
	}
	return ico
}

func pngToICO(data []byte) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid icon bounds %dx%d", cfg.Width, cfg.Height)
	}

	header := icoHeader{
		Type:       1,
		Count:      1,
		Width:      icoDimension(cfg.Width),
		Height:     icoDimension(cfg.Height),
		Planes:     1,
		BitCount:   32,
		BytesInRes: uint32(len(data)),
		Offset:     icoHeaderSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, icoHeaderSize+len(data)))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	buf.Write(data)
	logging.Debugf("wrapped %dx%d tray icon in ico container", cfg.Width, cfg.Height)
	return buf.Bytes(), nil
}

// icoDimension encodes 256 and above as 0, per the ICO format.
func icoDimension(v int) uint8 {
	if v >= 256 {
		return 0
	}
	return uint8(v)
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0x00
}
