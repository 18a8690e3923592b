package rifx

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// ParseDict decodes the Dict resource into the ordered list of original file
// paths, one per File resource. data is the raw resource including its 8-byte
// chunk header; order is the archive's byte order.
//
// The dictionary is a Windows-16 era structure and may store its fields in
// the opposite byte order to its parent archive. That is detected from the
// table-of-contents length: a value past any plausible size means the nominal
// order was wrong, and the whole resource is re-read flipped.
func ParseDict(data []byte, order Order) ([]string, error) {
	if len(data) < chunkHeaderSize {
		return nil, errAt(CorruptDictionary, 0, "resource shorter than its chunk header")
	}
	c := NewCursor(data[chunkHeaderSize:])
	c.SetOrder(order)

	tocLen, err := c.ReadU32()
	if err != nil {
		return nil, err
	}
	if tocLen > dictTOCSanityMax {
		c.SetOrder(order.Flip())
		c.Seek(dictTOCLenPos)
		if tocLen, err = c.ReadU32(); err != nil {
			return nil, err
		}
		if tocLen > dictTOCSanityMax {
			return nil, errAt(CorruptDictionary, dictTOCLenPos, "TOC length %#x implausible under either byte order", tocLen)
		}
	}

	c.Seek(dictNameCountPos)
	nameCount, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	// The name list follows the TOC and an opaque variable-length preamble.
	c.Seek(dictTOCPos)
	if _, err := c.ReadBytes(int(tocLen)); err != nil {
		return nil, err
	}
	preamble, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if preamble < dictPreambleBias {
		return nil, errAt(CorruptDictionary, c.Pos()-2, "preamble length %#x below bias %#x", preamble, dictPreambleBias)
	}
	if _, err := c.ReadBytes(int(preamble) - dictPreambleBias); err != nil {
		return nil, err
	}

	names := make([]string, 0, nameCount)
	for i := 0; i < int(nameCount); i++ {
		length, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		start := c.Pos()
		raw, err := c.ReadBytes(int(length))
		if err != nil {
			return nil, errAt(CorruptDictionary, start, "name %d declares %d bytes past end of resource", i, length)
		}
		// Records are padded to 4-byte boundaries.
		if pad := (4 - int(length)%4) % 4; pad > 0 {
			if _, err := c.ReadBytes(pad); err != nil {
				return nil, err
			}
		}
		name, err := decodeName(raw, start)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, nil
}

// decodeName decodes a dictionary name, trying UTF-8 first, then the legacy
// Western code page, then Shift-JIS. The x/text decoders substitute
// utf8.RuneError rather than failing, so a replacement rune in the output is
// what marks a fallback as exhausted.
func decodeName(raw []byte, offset int) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	fallbacks := []encoding.Encoding{charmap.Windows1252, japanese.ShiftJIS}
	for _, enc := range fallbacks {
		decoded, err := enc.NewDecoder().Bytes(raw)
		if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
			return string(decoded), nil
		}
	}
	return "", errAt(UndecodableName, offset, "name %x not valid UTF-8, Windows-1252 or Shift-JIS", raw)
}
