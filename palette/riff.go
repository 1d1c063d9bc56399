package palette

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"imgex/bitmap"

	"golang.org/x/image/riff"
)

/*
typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// ReadFrom reads every palette of a RIFF PAL stream.
func ReadFrom(r io.Reader) ([]bitmap.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("%w: RIFF content type %q", bitmap.ErrUnsupportedFormat, string(formType[:]))
	}

	return readPalettes(rd, string(formType[:]))
}

func readPalettes(r *riff.Reader, ident string) ([]bitmap.Palette, error) {
	var res []bitmap.Palette

	for {
		id, size, data, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return res, fmt.Errorf("could not read chunk %q#%d: %w", ident, len(res), err)
		}

		if id == riff.LIST {
			listType, list, lerr := riff.NewListReader(size, data)
			if lerr != nil {
				return res, fmt.Errorf("could not read list from chunk %q#%d: %w", ident, len(res), lerr)
			} else if listType != palType {
				return res, fmt.Errorf("%w: chunk %q#%d of type %q", bitmap.ErrUnsupportedFormat, ident, len(res), string(listType[:]))
			}

			listRes, lerr := readPalettes(list, fmt.Sprintf("%s%d.%s", ident, len(res), listType[:]))
			res = append(res, listRes...)
			if lerr != nil {
				return res, lerr
			}
			continue
		} else if id != dataType {
			return res, fmt.Errorf("%w: chunk type %q in %q#%d", bitmap.ErrUnsupportedFormat, string(id[:]), ident, len(res))
		}

		pal, err := readPalette(data, fmt.Sprintf("%s%d", ident, len(res)))
		if err != nil {
			return res, err
		}

		res = append(res, pal)
	}

	return res, nil
}

func readPalette(r io.Reader, ident string) (bitmap.Palette, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("could not read header of chunk %s: %w", ident, err)
	}

	ver := binary.BigEndian.Uint16(buf)
	if ver != 3 {
		return nil, fmt.Errorf("%w: palette version %d in chunk %s", bitmap.ErrUnsupportedFormat, ver, ident)
	}

	count := int(binary.LittleEndian.Uint16(buf[2:]))
	if count == 0 || count > bitmap.MaxPaletteSize {
		return nil, fmt.Errorf("%w: %d colors in chunk %s", bitmap.ErrUnsupportedFormat, count, ident)
	}

	entries := make([]byte, 4*count)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors from chunk %s: %w", count, ident, err)
	}

	res := make(bitmap.Palette, count)
	for i := range res {
		res[i] = bitmap.RGB{R: entries[4*i], G: entries[4*i+1], B: entries[4*i+2]}
	}

	return res, nil
}

// WriteTo writes pals as a RIFF PAL stream, one data chunk per palette.
func WriteTo(w io.Writer, pals []bitmap.Palette) (int64, error) {
	n := 4
	for _, pal := range pals {
		n += 4 + 4 + 4 + len(pal)*4 // chunk id + chunk size + palVersion + palNumEntries + 4 bytes/color
	}

	if err := writeBytes(w, riffType[:]); err != nil {
		return 0, fmt.Errorf("could not write RIFF magic: %w", err)
	}

	if err := writeBytes(w, binary.LittleEndian.AppendUint32(nil, uint32(n))); err != nil {
		return 4, fmt.Errorf("could not write document size: %w", err)
	}

	if err := writeBytes(w, palType[:]); err != nil {
		return 8, fmt.Errorf("could not write content type: %w", err)
	}

	count := int64(12)
	for i, pal := range pals {
		n, err := writePalette(w, pal)
		count += n
		if err != nil {
			return count, fmt.Errorf("could not write chunk %d: %w", i, err)
		}
	}

	return count, nil
}

func writePalette(w io.Writer, pal bitmap.Palette) (int64, error) {
	buf := make([]byte, 0, 12+4*len(pal))
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+len(pal)*4))
	buf = append(buf, 0, 0x03)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(pal)))
	for _, c := range pal {
		buf = append(buf, c.R, c.G, c.B, 0x00)
	}

	if err := writeBytes(w, buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

func writeBytes(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	} else if n != len(b) {
		return fmt.Errorf("wrote only %d/%d bytes", n, len(b))
	}

	return nil
}
