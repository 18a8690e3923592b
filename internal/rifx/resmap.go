package rifx

import "log/slog"

// MapEntry is one relocated record from the resource map.
type MapEntry struct {
	Tag string
	// Offset is absolute within the archive: the stored offset minus the
	// map's relocation base. A zero stored offset stays zero and means the
	// resource is empty, not that it sits at the archive start.
	Offset uint32
	// Size is the record's stored size plus the 8-byte chunk header. The
	// stored size is advisory for File resources; extraction re-reads the
	// truth from the sub-file's own header.
	Size uint32
}

// ResourceMap is the decoded top-level resource map of an archive.
type ResourceMap struct {
	Order Order
	// Files holds every "File" record in encounter order. The order is
	// load-bearing: dictionary names pair with these positionally.
	Files []MapEntry
	// Dict is the single "Dict" record, nil if the archive has none.
	Dict *MapEntry
}

// ReadMap verifies the archive's fixed structure (signature, imap chunk,
// mmap chunk) and walks the resource map. data must start at the signature
// returned by Locate.
func ReadMap(data []byte, logger *slog.Logger) (*ResourceMap, error) {
	c := NewCursor(data)

	order, err := c.ReadIdent()
	if err != nil {
		return nil, err
	}
	if order == OrderUnknown {
		return nil, errAt(BadContainer, 0, "unrecognised container signature %q", data[:min(4, len(data))])
	}

	c.Seek(imapPos)
	if tag, err := c.ReadTag(); err != nil {
		return nil, err
	} else if tag != tagIMap {
		return nil, errAt(BadContainer, imapPos, "expected %q chunk, found %q", tagIMap, tag)
	}

	c.Seek(mmapPos)
	if tag, err := c.ReadTag(); err != nil {
		return nil, err
	} else if tag != tagMMap {
		return nil, errAt(BadContainer, mmapPos, "expected %q chunk, found %q", tagMMap, tag)
	}

	c.Seek(mmapStridePos)
	stride, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	if stride < 12 {
		return nil, errAt(BadContainer, mmapStridePos, "record stride %d below tag+size+offset minimum", stride)
	}

	c.Seek(mmapCountPos)
	count, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	// Quirk of the format: the first record slot does not describe a
	// resource, its offset field stores the relocation base for the whole
	// table.
	c.Seek(mmapRecordsPos + recordOffsetField)
	relBase, err := c.ReadU32()
	if err != nil {
		return nil, err
	}

	logger.Debug("walking resource map",
		"order", order,
		"stride", stride,
		"records", count,
		"relocation_base", relBase,
	)

	m := &ResourceMap{Order: order}
	for i := 0; i < int(count); i++ {
		recPos := mmapRecordsPos + i*int(stride)
		c.Seek(recPos)

		tag, err := c.ReadTag()
		if err != nil {
			return nil, err
		}
		size, err := c.ReadU32()
		if err != nil {
			return nil, err
		}
		offset, err := c.ReadU32()
		if err != nil {
			return nil, err
		}

		entry := MapEntry{Tag: tag, Size: size + chunkHeaderSize}
		if offset != 0 {
			entry.Offset = offset - relBase
		}

		switch tag {
		case tagFile:
			m.Files = append(m.Files, entry)
		case tagDict:
			if m.Dict != nil {
				return nil, errAt(BadContainer, recPos, "second %q resource in map", tagDict)
			}
			e := entry
			m.Dict = &e
		}
	}

	logger.Debug("resource map walked",
		"files", len(m.Files),
		"has_dict", m.Dict != nil,
	)

	return m, nil
}

// DictBytes slices the Dict resource's raw bytes (chunk header included) out
// of the archive.
func (m *ResourceMap) DictBytes(data []byte) ([]byte, error) {
	if m.Dict == nil {
		return nil, errAt(BadContainer, 0, "archive has no %q resource", tagDict)
	}
	start, end := int(m.Dict.Offset), int(m.Dict.Offset)+int(m.Dict.Size)
	if start < 0 || end > len(data) || start > end {
		return nil, errAt(BadContainer, start, "%q resource range [%#x,%#x) outside archive of %d bytes", tagDict, start, end, len(data))
	}
	return data[start:end], nil
}
