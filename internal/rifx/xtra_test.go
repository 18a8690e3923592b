package rifx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// buildXtra assembles an Xtra-typed sub-file (little-endian) whose sub-chunk
// stream is given as (natural tag, payload) pairs. Payloads are padded to
// even length as the format requires, with declared sizes left odd.
func buildXtra(t *testing.T, leadingPad bool, chunks []struct {
	tag     string
	payload []byte
}) []byte {
	t.Helper()

	var stream bytes.Buffer
	if leadingPad {
		stream.WriteByte(0)
	}
	for _, ch := range chunks {
		stream.Write(storedTag(ch.tag, OrderLittle))
		var size [4]byte
		binary.LittleEndian.PutUint32(size[:], uint32(len(ch.payload)))
		stream.Write(size[:])
		if ch.tag == "FILE" {
			stream.Write(make([]byte, xtraSubHeaderSize))
		}
		stream.Write(ch.payload)
		if len(ch.payload)%2 != 0 {
			stream.WriteByte(0)
		}
	}

	total := 12 + stream.Len()
	sub := make([]byte, total)
	copy(sub, sigXFIR)
	binary.LittleEndian.PutUint32(sub[4:], uint32(total-chunkHeaderSize))
	copy(sub[movieTypePos:], storedTag(TypeXtra, OrderLittle))
	copy(sub[12:], stream.Bytes())
	return sub
}

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("compress test payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return buf.Bytes()
}

func TestUnpackXtra(t *testing.T) {
	want := []byte("the embedded xtra payload")

	t.Run("FILE payload is inflated", func(t *testing.T) {
		sub := buildXtra(t, true, []struct {
			tag     string
			payload []byte
		}{
			{"FILE", deflate(t, want)},
		})
		got, err := UnpackXtra(sub, discardLogger())
		if err != nil {
			t.Fatalf("UnpackXtra() failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("UnpackXtra() = %q, want %q", got, want)
		}
	})

	t.Run("scanner passes unknown and Xinf sub-chunks", func(t *testing.T) {
		sub := buildXtra(t, false, []struct {
			tag     string
			payload []byte
		}{
			{"vers", []byte{1, 2, 3}}, // odd size exercises even rounding
			{"Xinf", []byte{0xAA, 0xBB}},
			{"XTdf", deflate(t, want)},
		})
		got, err := UnpackXtra(sub, discardLogger())
		if err != nil {
			t.Fatalf("UnpackXtra() failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("UnpackXtra() = %q, want %q", got, want)
		}
	})

	t.Run("empty terminal payload yields no output", func(t *testing.T) {
		sub := buildXtra(t, true, []struct {
			tag     string
			payload []byte
		}{
			{"XTdf", nil},
		})
		got, err := UnpackXtra(sub, discardLogger())
		if err != nil {
			t.Fatalf("UnpackXtra() failed: %v", err)
		}
		if got != nil {
			t.Errorf("UnpackXtra() = %d bytes, want none", len(got))
		}
	})

	t.Run("stream without terminal chunk", func(t *testing.T) {
		sub := buildXtra(t, false, []struct {
			tag     string
			payload []byte
		}{
			{"vers", []byte{1, 2, 3, 4}},
		})
		if _, err := UnpackXtra(sub, discardLogger()); !IsKind(err, MalformedSubfile) {
			t.Errorf("UnpackXtra() error = %v, want MalformedSubfile", err)
		}
	})

	t.Run("corrupt compressed payload", func(t *testing.T) {
		sub := buildXtra(t, false, []struct {
			tag     string
			payload []byte
		}{
			{"FILE", []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		})
		if _, err := UnpackXtra(sub, discardLogger()); err == nil {
			t.Error("UnpackXtra() succeeded on garbage payload")
		}
	})
}
