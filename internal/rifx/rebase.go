package rifx

import "errors"

// Rebase rewrites a standard movie sub-file's internal offsets so the file is
// self-consistent outside its parent archive: the map pointer is patched to
// the standard map position, and every internal record offset is converted
// from parent-relative to file-relative by subtracting the sub-file's own
// relocation base. The final 4 bytes are forced to a zero terminator.
//
// sub must be an owned copy; Rebase patches it in place. The source archive
// buffer is never to be aliased here.
//
// Any header field missing at its fixed offset fails with MalformedSubfile:
// silently rebasing a mis-classified file would corrupt it.
func Rebase(sub []byte) error {
	c := NewCursor(sub)
	order, err := c.ReadIdent()
	if err != nil {
		return malformed(err)
	}
	if order == OrderUnknown {
		return errAt(MalformedSubfile, 0, "sub-file signature %q not recognised", sub[:min(4, len(sub))])
	}

	c.Seek(movieStridePos)
	stride, err := c.ReadU16()
	if err != nil {
		return malformed(err)
	}
	if stride == 0 {
		return errAt(MalformedSubfile, movieStridePos, "zero internal record stride")
	}

	c.Seek(movieCountPos)
	count, err := c.ReadU32()
	if err != nil {
		return malformed(err)
	}
	if count == 0 {
		return errAt(MalformedSubfile, movieCountPos, "internal record count missing its relocation slot")
	}

	c.Seek(movieRelBasePos)
	relBase, err := c.ReadU32()
	if err != nil {
		return malformed(err)
	}

	// The map now lives at the standard position of a standalone file, not
	// wherever it floated inside the parent. Inside a parent the pointer is
	// parent-absolute and can never equal mmapPos, so finding mmapPos here
	// means the file was already rebased; subtracting the relocation base a
	// second time would corrupt every offset.
	c.Seek(movieMapPtrPos)
	ptr, err := c.ReadU32()
	if err != nil {
		return malformed(err)
	}
	if ptr == mmapPos {
		return errAt(MalformedSubfile, movieMapPtrPos, "map pointer already rebased")
	}
	c.Seek(movieMapPtrPos)
	if err := c.WriteU32(mmapPos); err != nil {
		return malformed(err)
	}

	// count includes the relocation slot; the real records follow it.
	for i := 0; i < int(count)-1; i++ {
		pos := movieRecordsPos + i*int(stride)
		c.Seek(pos)
		stored, err := c.ReadU32()
		if err != nil {
			return malformed(err)
		}
		if stored == 0 {
			// Zero marks an empty resource, never a real offset.
			continue
		}
		c.Seek(pos)
		if err := c.WriteU32(stored - relBase); err != nil {
			return malformed(err)
		}
	}

	if len(sub) < 4 {
		return errAt(MalformedSubfile, 0, "sub-file too short for terminator")
	}
	tail := sub[len(sub)-4:]
	if tail[0] != 0 || tail[1] != 0 || tail[2] != 0 || tail[3] != 0 {
		tail[0], tail[1], tail[2], tail[3] = 0, 0, 0, 0
	}

	return nil
}

// malformed reclassifies a cursor error as a MalformedSubfile failure,
// keeping the offset it occurred at.
func malformed(err error) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Kind != MalformedSubfile {
		return &FormatError{Kind: MalformedSubfile, Offset: fe.Offset, Detail: fe.Error()}
	}
	return err
}
