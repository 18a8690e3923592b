package rifx

import (
	"encoding/binary"
)

// Order is the byte order of a container, detected from its signature.
type Order int

const (
	// OrderUnknown means no recognised signature has been read yet.
	OrderUnknown Order = iota
	// OrderLittle covers the XFIR/FFIR (Windows) family.
	OrderLittle
	// OrderBig covers the RIFX/RIFF (Mac) family.
	OrderBig
)

func (o Order) String() string {
	switch o {
	case OrderLittle:
		return "little"
	case OrderBig:
		return "big"
	default:
		return "unknown"
	}
}

// Flip returns the opposite byte order. Flipping OrderUnknown is a no-op.
func (o Order) Flip() Order {
	switch o {
	case OrderLittle:
		return OrderBig
	case OrderBig:
		return OrderLittle
	default:
		return o
	}
}

// Cursor is an endianness-aware reader over a byte buffer, with in-place
// 32-bit patching for the rebaser. All reads are bounds-checked; running past
// the buffer yields an UnexpectedEOF FormatError carrying the position at
// which the read started.
type Cursor struct {
	buf   []byte
	pos   int
	order Order
}

// NewCursor returns a cursor positioned at the start of buf with no byte
// order set.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Order returns the cursor's current byte order.
func (c *Cursor) Order() Order { return c.order }

// SetOrder sets the byte order without consuming input. Used for resources
// whose order is inherited from the parent rather than read from a signature.
func (c *Cursor) SetOrder(o Order) { c.order = o }

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Seek moves the cursor to an absolute position. Seeking past the end is
// allowed; the next read will fail with UnexpectedEOF.
func (c *Cursor) Seek(pos int) { c.pos = pos }

func (c *Cursor) take(n int) ([]byte, error) {
	if c.pos < 0 || n < 0 || c.pos+n > len(c.buf) {
		return nil, errAt(UnexpectedEOF, c.pos, "need %d bytes, have %d", n, len(c.buf)-c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadBytes reads exactly n bytes.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	return c.take(n)
}

// ReadIdent reads the 4-byte container signature and sets the cursor's byte
// order accordingly. An unrecognised signature leaves the order unchanged at
// OrderUnknown, which callers treat as "not this format".
func (c *Cursor) ReadIdent() (Order, error) {
	b, err := c.take(4)
	if err != nil {
		return OrderUnknown, err
	}
	switch string(b) {
	case sigXFIR, sigFFIR:
		c.order = OrderLittle
	case sigRIFX, sigRIFF:
		c.order = OrderBig
	}
	return c.order, nil
}

// ReadTag reads a 4-byte chunk tag, reversing it under little-endian order so
// callers always compare against the natural spelling. A tag containing
// non-ASCII bytes violates the format.
func (c *Cursor) ReadTag() (string, error) {
	start := c.pos
	b, err := c.take(4)
	if err != nil {
		return "", err
	}
	tag := [4]byte{b[0], b[1], b[2], b[3]}
	if c.order == OrderLittle {
		tag[0], tag[1], tag[2], tag[3] = tag[3], tag[2], tag[1], tag[0]
	}
	for _, ch := range tag {
		if ch > 0x7F {
			return "", errAt(BadContainer, start, "tag %q is not ASCII", tag[:])
		}
	}
	return string(tag[:]), nil
}

func (c *Cursor) byteOrder() (binary.ByteOrder, error) {
	switch c.order {
	case OrderLittle:
		return binary.LittleEndian, nil
	case OrderBig:
		return binary.BigEndian, nil
	default:
		return nil, errAt(BadContainer, c.pos, "byte order not established")
	}
}

// ReadU16 reads a 16-bit unsigned integer in the cursor's byte order.
func (c *Cursor) ReadU16() (uint16, error) {
	bo, err := c.byteOrder()
	if err != nil {
		return 0, err
	}
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return bo.Uint16(b), nil
}

// ReadU32 reads a 32-bit unsigned integer in the cursor's byte order.
func (c *Cursor) ReadU32() (uint32, error) {
	bo, err := c.byteOrder()
	if err != nil {
		return 0, err
	}
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return bo.Uint32(b), nil
}

// WriteU32 overwrites 4 bytes at the current position with v in the cursor's
// byte order and advances past them. The cursor must own the buffer it is
// patching; decode paths never write.
func (c *Cursor) WriteU32(v uint32) error {
	bo, err := c.byteOrder()
	if err != nil {
		return err
	}
	b, err := c.take(4)
	if err != nil {
		return err
	}
	bo.PutUint32(b, v)
	return nil
}
