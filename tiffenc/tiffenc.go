// Package tiffenc writes multi-page baseline TIFF files. Frames are stored
// as 8-bit RGB with Adobe Deflate (zlib) compressed strips, one IFD per page
// chained through the NextIFD pointer, and X/Y resolution tags carrying the
// requested DPI in both axes.
package tiffenc

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
)

// ErrNoFrames is returned when Encode is called with an empty frame list.
var ErrNoFrames = errors.New("tiffenc: no frames to encode")

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagXResolution     = 282
	tagYResolution     = 283
	tagResolutionUnit  = 296

	typeShort    = 3
	typeLong     = 4
	typeRational = 5

	compressionDeflate = 8 // Adobe-style deflate (zlib)
	photometricRGB     = 2
	resolutionInch     = 2

	headerSize   = 8
	entryCount   = 12
	ifdSize      = 2 + entryCount*12 + 4
	bpsArraySize = 6 // three uint16 samples
	rationalSize = 8
)

type frame struct {
	width  int
	height int
	strip  []byte // zlib-compressed RGB rows
	pad    int    // word-alignment padding after the strip

	dataOff uint32
	bpsOff  uint32
	xresOff uint32
	yresOff uint32
	ifdOff  uint32
}

// Encode writes frames as one multi-page TIFF to w. dpi is recorded as the
// X and Y resolution of every page.
func Encode(w io.Writer, frames []image.Image, dpi int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}

	prepared := make([]*frame, 0, len(frames))
	for i, img := range frames {
		f, err := prepareFrame(img)
		if err != nil {
			return fmt.Errorf("tiffenc: frame %d: %w", i, err)
		}
		prepared = append(prepared, f)
	}

	// Lay out each frame as [strip][bits-per-sample][xres][yres][IFD].
	cursor := uint32(headerSize)
	for _, f := range prepared {
		f.dataOff = cursor
		cursor += uint32(len(f.strip) + f.pad)
		f.bpsOff = cursor
		cursor += bpsArraySize
		f.xresOff = cursor
		cursor += rationalSize
		f.yresOff = cursor
		cursor += rationalSize
		f.ifdOff = cursor
		cursor += ifdSize
	}

	header := make([]byte, headerSize)
	header[0], header[1] = 'I', 'I'
	binary.LittleEndian.PutUint16(header[2:], 42)
	binary.LittleEndian.PutUint32(header[4:], prepared[0].ifdOff)
	if _, err := w.Write(header); err != nil {
		return err
	}

	for i, f := range prepared {
		next := uint32(0)
		if i+1 < len(prepared) {
			next = prepared[i+1].ifdOff
		}
		if err := writeFrame(w, f, next, dpi); err != nil {
			return err
		}
	}
	return nil
}

func prepareFrame(img image.Image) (*frame, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}

	rows := make([]byte, 0, width*height*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rows = append(rows, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(rows); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	f := &frame{width: width, height: height, strip: buf.Bytes()}
	f.pad = len(f.strip) % 2
	return f, nil
}

func writeFrame(w io.Writer, f *frame, nextIFD uint32, dpi int) error {
	if _, err := w.Write(f.strip); err != nil {
		return err
	}
	if f.pad > 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	aux := make([]byte, bpsArraySize+2*rationalSize)
	binary.LittleEndian.PutUint16(aux[0:], 8)
	binary.LittleEndian.PutUint16(aux[2:], 8)
	binary.LittleEndian.PutUint16(aux[4:], 8)
	binary.LittleEndian.PutUint32(aux[6:], uint32(dpi))
	binary.LittleEndian.PutUint32(aux[10:], 1)
	binary.LittleEndian.PutUint32(aux[14:], uint32(dpi))
	binary.LittleEndian.PutUint32(aux[18:], 1)
	if _, err := w.Write(aux); err != nil {
		return err
	}

	ifd := make([]byte, 0, ifdSize)
	ifd = binary.LittleEndian.AppendUint16(ifd, entryCount)
	ifd = appendEntry(ifd, tagImageWidth, typeLong, 1, uint32(f.width))
	ifd = appendEntry(ifd, tagImageLength, typeLong, 1, uint32(f.height))
	ifd = appendEntry(ifd, tagBitsPerSample, typeShort, 3, f.bpsOff)
	ifd = appendEntry(ifd, tagCompression, typeShort, 1, compressionDeflate)
	ifd = appendEntry(ifd, tagPhotometric, typeShort, 1, photometricRGB)
	ifd = appendEntry(ifd, tagStripOffsets, typeLong, 1, f.dataOff)
	ifd = appendEntry(ifd, tagSamplesPerPixel, typeShort, 1, 3)
	ifd = appendEntry(ifd, tagRowsPerStrip, typeLong, 1, uint32(f.height))
	ifd = appendEntry(ifd, tagStripByteCounts, typeLong, 1, uint32(len(f.strip)))
	ifd = appendEntry(ifd, tagXResolution, typeRational, 1, f.xresOff)
	ifd = appendEntry(ifd, tagYResolution, typeRational, 1, f.yresOff)
	ifd = appendEntry(ifd, tagResolutionUnit, typeShort, 1, resolutionInch)
	ifd = binary.LittleEndian.AppendUint32(ifd, nextIFD)

	_, err := w.Write(ifd)
	return err
}

// appendEntry encodes one 12-byte IFD entry. SHORT values are stored inline
// in the low half of the value field, per the TIFF 6.0 layout.
func appendEntry(b []byte, tag, typ uint16, count, value uint32) []byte {
	b = binary.LittleEndian.AppendUint16(b, tag)
	b = binary.LittleEndian.AppendUint16(b, typ)
	b = binary.LittleEndian.AppendUint32(b, count)
	if typ == typeShort && count == 1 {
		b = binary.LittleEndian.AppendUint16(b, uint16(value))
		b = binary.LittleEndian.AppendUint16(b, 0)
		return b
	}
	return binary.LittleEndian.AppendUint32(b, value)
}
