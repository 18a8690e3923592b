// Package rifx decodes the RIFX/XFIR chunked container format that Director
// projectors embed their movies in. The format is a resource map (fixed-stride
// records of tag, size, relocatable offset), one "Dict" resource holding the
// original path of every "File" resource in matching order, and the raw
// "File" payloads themselves, which are full containers in their own right
// and may use a different byte order than the parent.
package rifx

// Container signatures. Little-endian containers store them forward as
// written here; readers normalise chunk tags (not signatures) by reversal.
const (
	sigXFIR = "XFIR" // little-endian, usual Windows form
	sigFFIR = "FFIR" // little-endian RIFF variant
	sigRIFX = "RIFX" // big-endian, usual Mac form
	sigRIFF = "RIFF" // big-endian RIFF variant
)

// Projector marker tags, found 8 bytes after the signature. Stored byte
// order: "APPL" appears as "LPPA" in little-endian containers.
const (
	markerWin = "LPPA"
	markerMac = "APPL"
)

// Fixed structural offsets of the archive, relative to the signature.
const (
	imapPos = 0xC  // "imap" chunk tag
	mmapPos = 0x2C // "mmap" chunk tag

	mmapStridePos  = mmapPos + 0xA  // u16 record stride
	mmapCountPos   = mmapPos + 0x10 // u32 record count
	mmapRecordsPos = mmapPos + 0x20 // first record; its offset field holds the relocation base

	// recordOffsetField is the position of the stored-offset field inside a
	// map record, after the tag and size fields.
	recordOffsetField = 8

	// chunkHeaderSize is the tag + size overhead not counted in a record's
	// stored size field.
	chunkHeaderSize = 8
)

// Fixed offsets inside a standard movie sub-file, used by the rebaser. The
// sub-file's own mmap sits at the standard mmapPos once extracted, so the
// header fields land at the same relative positions as the parent's.
const (
	movieMapPtrPos  = 0x18            // u32 pointer to the mmap chunk, patched to mmapPos
	movieStridePos  = mmapStridePos   // u16 internal record stride
	movieCountPos   = mmapCountPos    // u32 internal record count (includes the relocation slot)
	movieRelBasePos = 0x54            // u32 relocation base (first record's offset field)
	movieRecordsPos = 0x68            // offset field of the first real record
	movieTypePos    = chunkHeaderSize // 4-byte type tag following ident and size
)

// Dictionary ("Dict" resource) layout, relative to the start of the resource
// payload after its 8-byte chunk header.
const (
	dictTOCLenPos    = 0x0
	dictNameCountPos = 0x10
	dictTOCPos       = 0x18
	// dictTOCSanityMax is the threshold above which a TOC length read under
	// the archive's nominal byte order is taken to mean the embedded
	// dictionary disagrees with its parent and must be re-read flipped.
	dictTOCSanityMax = 0x10000
	// dictPreambleBias is subtracted from the preamble length field to get
	// the number of opaque bytes preceding the name list.
	dictPreambleBias = 0x12
)

// Resource tags of interest when walking the map.
const (
	tagIMap = "imap"
	tagMMap = "mmap"
	tagFile = "File"
	tagDict = "Dict"
)

// Sub-file type tags.
const (
	TypeMovie           = "MV93" // standard movie, internal map needs rebasing
	TypeCompressedMovie = "FGDM" // Shockwave-compressed movie, written as-is
	TypeCompressedCast  = "FGDC" // compressed cast, written as-is
	TypeXtra            = "Xtra" // nested chunk stream ending in a zlib blob
)

// xtraSubHeaderSize is the fixed header skipped after a FILE sub-chunk tag
// inside an Xtra resource, before its compressed payload begins.
const xtraSubHeaderSize = 0x1C
