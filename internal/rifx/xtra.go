package rifx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/compress/zlib"
)

// xtraState drives the sub-chunk scan inside an Xtra resource.
type xtraState int

const (
	// xtraScanning is the steady state: skip the pending payload, read the
	// next (tag, size) pair.
	xtraScanning xtraState = iota
	// xtraSawXinf means an Xinf sub-chunk was read; its payload is logged
	// and discarded. Not interpreted yet.
	xtraSawXinf
	// xtraFound means the terminal XTdf or FILE sub-chunk was reached and
	// its payload size is known.
	xtraFound
)

// UnpackXtra scans the sub-chunk stream of an Xtra-typed sub-file for its
// terminal compressed payload and inflates it. A zero-sized terminal payload
// yields (nil, nil): an empty Xtra produces no output file and is not an
// error.
func UnpackXtra(sub []byte, logger *slog.Logger) ([]byte, error) {
	c := NewCursor(sub)
	order, err := c.ReadIdent()
	if err != nil {
		return nil, malformed(err)
	}
	if order == OrderUnknown {
		return nil, errAt(MalformedSubfile, 0, "sub-file signature %q not recognised", sub[:min(4, len(sub))])
	}

	// Position past the type tag, where the sub-chunk stream begins.
	c.Seek(movieTypePos + 4)

	// The stream may carry a single alignment byte before the first tag.
	if pad, err := c.ReadBytes(1); err != nil {
		return nil, malformed(err)
	} else if pad[0] != 0 {
		c.Seek(c.Pos() - 1)
	}

	state := xtraScanning
	size := 0
	for state != xtraFound {
		switch state {
		case xtraScanning:
			if _, err := c.ReadBytes(size); err != nil {
				return nil, malformed(err)
			}
			tag, err := c.ReadTag()
			if err != nil {
				return nil, malformed(err)
			}
			declared, err := c.ReadU32()
			if err != nil {
				return nil, malformed(err)
			}
			// Sub-chunk payloads are word-aligned.
			size = int(declared)
			if size%2 != 0 {
				size++
			}

			switch tag {
			case "Xinf":
				state = xtraSawXinf
			case "XTdf":
				state = xtraFound
			case "FILE":
				if _, err := c.ReadBytes(xtraSubHeaderSize); err != nil {
					return nil, malformed(err)
				}
				state = xtraFound
			}

		case xtraSawXinf:
			payload, err := c.ReadBytes(size)
			if err != nil {
				return nil, malformed(err)
			}
			// TODO: work out what Xinf carries; so far only seen opaque.
			logger.Debug("skipping Xinf sub-chunk", "payload", hex.EncodeToString(payload))
			size = 0
			state = xtraScanning
		}
	}

	if size == 0 {
		return nil, nil
	}

	compressed, err := c.ReadBytes(size)
	if err != nil {
		return nil, malformed(err)
	}
	return inflate(compressed)
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open xtra payload: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate xtra payload: %w", err)
	}
	return out, nil
}
