package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"gonum.org/v1/gonum/mat"

	"fftcodec/pkg/fft"
)

const (
	containerMagic   = "FFTC"
	containerVersion = 1

	// maxSpectrumEntries is the largest FFTHeight*FFTWidth a container holds.
	// It bounds allocations when reading untrusted input.
	maxSpectrumEntries = 1 << 28

	entrySize = 4 + 8 + 8
)

// containerHeader is the uncompressed prefix of a serialized representation.
type containerHeader struct {
	Magic     [4]byte
	Version   uint8
	Rate      uint8
	Reserved  [2]byte
	Height    uint32
	Width     uint32
	FFTHeight uint32
	FFTWidth  uint32
}

// WriteTo serializes c to w. The header is written as is; the spectra follow
// as a zstd stream holding, per channel, the number of kept coefficients and
// then (index, real, imaginary) for each of them. Zeroed coefficients are not
// stored, so higher compression rates give smaller output.
func (c *Compressed) WriteTo(w io.Writer) (int64, error) {
	if c != nil && !fitsContainer(c.FFTHeight, c.FFTWidth) {
		return 0, fmt.Errorf("%w: %dx%d spectrum, limit is %d entries",
			ErrTooLarge, c.FFTWidth, c.FFTHeight, maxSpectrumEntries)
	}
	if err := c.validate(); err != nil {
		return 0, err
	}

	cw := &countingWriter{w: w}

	hdr := containerHeader{
		Version:   containerVersion,
		Rate:      uint8(c.Rate),
		Height:    uint32(c.Height),
		Width:     uint32(c.Width),
		FFTHeight: uint32(c.FFTHeight),
		FFTWidth:  uint32(c.FFTWidth),
	}
	copy(hdr.Magic[:], containerMagic)
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}

	enc, err := zstd.NewWriter(cw)
	if err != nil {
		return cw.n, err
	}
	bw := bufio.NewWriter(enc)

	var entry [entrySize]byte
	for _, ch := range c.Channels {
		var count uint32
		forEach(ch, func(_, _ int, v complex128) {
			if v != 0 {
				count++
			}
		})
		if err := binary.Write(bw, binary.LittleEndian, count); err != nil {
			enc.Close()
			return cw.n, err
		}

		var werr error
		forEach(ch, func(i, j int, v complex128) {
			if v == 0 || werr != nil {
				return
			}
			binary.LittleEndian.PutUint32(entry[0:], uint32(i*c.FFTWidth+j))
			binary.LittleEndian.PutUint64(entry[4:], math.Float64bits(real(v)))
			binary.LittleEndian.PutUint64(entry[12:], math.Float64bits(imag(v)))
			_, werr = bw.Write(entry[:])
		})
		if werr != nil {
			enc.Close()
			return cw.n, werr
		}
	}

	if err := bw.Flush(); err != nil {
		enc.Close()
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// ReadCompressed parses a representation written by (*Compressed).WriteTo.
func ReadCompressed(r io.Reader) (*Compressed, error) {
	var hdr containerHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, corrupt("read header", err)
	}
	if string(hdr.Magic[:]) != containerMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, hdr.Magic[:])
	}
	if hdr.Version != containerVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, hdr.Version)
	}

	c := &Compressed{
		Height:    int(hdr.Height),
		Width:     int(hdr.Width),
		FFTHeight: int(hdr.FFTHeight),
		FFTWidth:  int(hdr.FFTWidth),
		Rate:      int(hdr.Rate),
	}
	if c.Rate > 100 || c.Height <= 0 || c.Width <= 0 ||
		!fft.IsPowerOfTwo(c.FFTHeight) || !fft.IsPowerOfTwo(c.FFTWidth) ||
		c.FFTHeight < c.Height || c.FFTWidth < c.Width ||
		!fitsContainer(c.FFTHeight, c.FFTWidth) {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d (spectrum %dx%d, rate %d)",
			ErrCorrupt, c.Width, c.Height, c.FFTWidth, c.FFTHeight, c.Rate)
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, corrupt("open payload", err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	size := c.FFTHeight * c.FFTWidth
	var entry [entrySize]byte
	for ch := range c.Channels {
		var count uint32
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, corrupt(fmt.Sprintf("read channel %d", ch), err)
		}
		if int(count) > size {
			return nil, fmt.Errorf("%w: channel %d claims %d coefficients, spectrum holds %d",
				ErrCorrupt, ch, count, size)
		}

		data := make([]complex128, size)
		for k := uint32(0); k < count; k++ {
			if _, err := io.ReadFull(br, entry[:]); err != nil {
				return nil, corrupt(fmt.Sprintf("read channel %d", ch), err)
			}
			idx := binary.LittleEndian.Uint32(entry[0:])
			if int(idx) >= size {
				return nil, fmt.Errorf("%w: channel %d index %d out of range", ErrCorrupt, ch, idx)
			}
			re := math.Float64frombits(binary.LittleEndian.Uint64(entry[4:]))
			im := math.Float64frombits(binary.LittleEndian.Uint64(entry[12:]))
			data[idx] = complex(re, im)
		}
		c.Channels[ch] = mat.NewCDense(c.FFTHeight, c.FFTWidth, data)
	}
	return c, nil
}

// fitsContainer reports whether a fftHeight×fftWidth spectrum is within the
// container limit.
func fitsContainer(fftHeight, fftWidth int) bool {
	return fftHeight > 0 && fftWidth > 0 && fftHeight <= maxSpectrumEntries/fftWidth
}

func corrupt(op string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %s: %w", ErrCorrupt, op, err)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
