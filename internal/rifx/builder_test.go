package rifx

import (
	"bytes"
	"encoding/binary"
)

// Helpers for building synthetic containers in tests. Little-endian archives
// store chunk tags byte-reversed, so builders take the natural spelling and
// store whichever form the target order requires.

func storedTag(tag string, order Order) []byte {
	b := []byte(tag)
	if order == OrderLittle {
		b = []byte{b[3], b[2], b[1], b[0]}
	}
	return b
}

func putU16(buf []byte, pos int, v uint16, order Order) {
	if order == OrderLittle {
		binary.LittleEndian.PutUint16(buf[pos:], v)
	} else {
		binary.BigEndian.PutUint16(buf[pos:], v)
	}
}

func putU32(buf []byte, pos int, v uint32, order Order) {
	if order == OrderLittle {
		binary.LittleEndian.PutUint32(buf[pos:], v)
	} else {
		binary.BigEndian.PutUint32(buf[pos:], v)
	}
}

func getU32(buf []byte, pos int, order Order) uint32 {
	if order == OrderLittle {
		return binary.LittleEndian.Uint32(buf[pos:])
	}
	return binary.BigEndian.Uint32(buf[pos:])
}

func ident(order Order) string {
	if order == OrderLittle {
		return sigXFIR
	}
	return sigRIFX
}

// movieSpec describes a synthetic standard movie sub-file.
type movieSpec struct {
	order      Order
	total      int      // whole sub-file length
	count      uint32   // internal record count, relocation slot included
	relBase    uint32   // internal relocation base
	offsets    []uint32 // stored offsets of the real records
	terminator [4]byte  // last 4 bytes
	typeTag    string   // defaults to TypeMovie
}

// buildMovie lays out a movie sub-file with its declared size, type tag and
// internal map header fields at the format's fixed offsets.
func buildMovie(spec movieSpec) []byte {
	if spec.typeTag == "" {
		spec.typeTag = TypeMovie
	}
	buf := make([]byte, spec.total)
	copy(buf, ident(spec.order))
	putU32(buf, 4, uint32(spec.total-chunkHeaderSize), spec.order)
	copy(buf[movieTypePos:], storedTag(spec.typeTag, spec.order))
	copy(buf[mmapPos:], storedTag(tagMMap, spec.order))
	putU16(buf, movieStridePos, 0x14, spec.order)
	putU32(buf, movieCountPos, spec.count, spec.order)
	putU32(buf, movieRelBasePos, spec.relBase, spec.order)
	for i, off := range spec.offsets {
		putU32(buf, movieRecordsPos+i*0x14, off, spec.order)
	}
	copy(buf[spec.total-4:], spec.terminator[:])
	return buf
}

// dictSpec describes a synthetic Dict resource.
type dictSpec struct {
	order     Order // byte order the fields are written in
	tocLen    uint32
	nameCount uint32
	names     [][]byte // raw name bytes, encoded however the test wants
}

// buildDict lays out a Dict resource including its 8-byte chunk header, with
// a TOC of tocLen zero bytes and a minimal preamble.
func buildDict(spec dictSpec) []byte {
	var payload bytes.Buffer
	writeU32 := func(v uint32) {
		var b [4]byte
		putU32(b[:], 0, v, spec.order)
		payload.Write(b[:])
	}

	writeU32(spec.tocLen)
	payload.Write(make([]byte, dictNameCountPos-payload.Len()))
	writeU32(spec.nameCount)
	payload.Write(make([]byte, dictTOCPos-payload.Len()))
	payload.Write(make([]byte, spec.tocLen))

	var pre [2]byte
	putU16(pre[:], 0, dictPreambleBias, spec.order)
	payload.Write(pre[:])

	for _, name := range spec.names {
		writeU32(uint32(len(name)))
		payload.Write(name)
		if pad := (4 - len(name)%4) % 4; pad > 0 {
			payload.Write(make([]byte, pad))
		}
	}

	chunk := make([]byte, chunkHeaderSize+payload.Len())
	copy(chunk, storedTag(tagDict, spec.order))
	putU32(chunk, 4, uint32(payload.Len()), spec.order)
	copy(chunk[chunkHeaderSize:], payload.Bytes())
	return chunk
}

// archiveRecord is one resource map record for buildArchive.
type archiveRecord struct {
	tag    string
	size   uint32
	offset uint32
}

// buildArchive lays out an archive: signature, projector marker, imap and
// mmap chunks, a map whose first record slot carries relBase in its offset
// field, then the given records, then chunks appended at their offsets.
func buildArchive(order Order, relBase uint32, records []archiveRecord, chunks map[uint32][]byte) []byte {
	const stride = 0x14
	size := mmapRecordsPos + stride*(len(records)+1)
	for off, chunk := range chunks {
		if end := int(off) + len(chunk); end > size {
			size = end
		}
	}

	buf := make([]byte, size)
	copy(buf, ident(order))
	putU32(buf, 4, uint32(size-chunkHeaderSize), order)
	if order == OrderLittle {
		copy(buf[8:], markerWin)
	} else {
		copy(buf[8:], markerMac)
	}
	copy(buf[imapPos:], storedTag(tagIMap, order))
	copy(buf[mmapPos:], storedTag(tagMMap, order))
	putU16(buf, mmapStridePos, stride, order)
	putU32(buf, mmapCountPos, uint32(len(records)+1), order)

	copy(buf[mmapRecordsPos:], storedTag("free", order))
	putU32(buf, mmapRecordsPos+recordOffsetField, relBase, order)

	for i, rec := range records {
		pos := mmapRecordsPos + (i+1)*stride
		copy(buf[pos:], storedTag(rec.tag, order))
		putU32(buf, pos+4, rec.size, order)
		putU32(buf, pos+recordOffsetField, rec.offset, order)
	}

	for off, chunk := range chunks {
		copy(buf[off:], chunk)
	}
	return buf
}
