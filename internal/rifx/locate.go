package rifx

import "bytes"

// Origin is the projector platform the archive was built for, determined by
// which signature/marker pair located it. It decides the path separator used
// when stripping dictionary names.
type Origin int

const (
	// OriginWindows archives were located via XFIR...LPPA.
	OriginWindows Origin = iota
	// OriginMac archives were located via RIFX...APPL.
	OriginMac
)

func (o Origin) String() string {
	if o == OriginMac {
		return "mac"
	}
	return "windows"
}

// Separator returns the path separator the origin platform used in the
// dictionary's original file paths.
func (o Origin) Separator() byte {
	if o == OriginMac {
		return ':'
	}
	return '\\'
}

// Locate scans a host executable for an embedded projector archive: the
// container signature followed, 8 bytes in, by the projector application
// marker. The Windows pattern is tried first; only one family is expected per
// host. Returns the offset of the signature, which becomes position zero for
// the rest of the decode.
func Locate(host []byte) (int, Origin, error) {
	if off := findPattern(host, sigXFIR, markerWin); off >= 0 {
		return off, OriginWindows, nil
	}
	if off := findPattern(host, sigRIFX, markerMac); off >= 0 {
		return off, OriginMac, nil
	}
	return 0, 0, errAt(NotAProjector, 0, "no %s/%s archive signature in %d bytes", sigXFIR, sigRIFX, len(host))
}

// findPattern finds sig at position i with marker at i+8; the 4 bytes in
// between are the archive's declared size and can hold anything.
func findPattern(data []byte, sig, marker string) int {
	from := 0
	for {
		i := bytes.Index(data[from:], []byte(sig))
		if i < 0 {
			return -1
		}
		i += from
		if i+12 <= len(data) && string(data[i+8:i+12]) == marker {
			return i
		}
		from = i + 1
	}
}
