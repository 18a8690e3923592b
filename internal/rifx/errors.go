package rifx

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the fatal conditions the container format can
// produce. Every kind corresponds to a specific violated invariant; there is
// no retry story for any of them, since decoding is a pure transform over an
// in-memory buffer.
type ErrorKind int

const (
	// UnexpectedEOF means a read ran past the end of the buffer.
	UnexpectedEOF ErrorKind = iota
	// NotAProjector means no container signature was found in the host binary.
	NotAProjector
	// BadContainer means a structural tag was missing at its fixed offset.
	BadContainer
	// CorruptDictionary means a name record in the Dict resource was
	// inconsistent with its declared length.
	CorruptDictionary
	// UndecodableName means a dictionary name survived none of the text
	// decode fallbacks.
	UndecodableName
	// MalformedSubfile means an extracted sub-file failed the preconditions
	// for classification or rebasing.
	MalformedSubfile
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedEOF:
		return "unexpected EOF"
	case NotAProjector:
		return "not a projector"
	case BadContainer:
		return "bad container"
	case CorruptDictionary:
		return "corrupt dictionary"
	case UndecodableName:
		return "undecodable name"
	case MalformedSubfile:
		return "malformed sub-file"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// FormatError is a container decode failure. Offset is the buffer position at
// which the invariant failed, relative to whatever buffer the failing
// component was handed (the archive for map-level errors, the resource for
// dictionary and sub-file errors).
type FormatError struct {
	Kind   ErrorKind
	Offset int64
	Detail string
}

func (e *FormatError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at offset 0x%x", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%s at offset 0x%x: %s", e.Kind, e.Offset, e.Detail)
}

func errAt(kind ErrorKind, offset int, format string, args ...any) *FormatError {
	return &FormatError{
		Kind:   kind,
		Offset: int64(offset),
		Detail: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is a *FormatError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fe *FormatError
	return errors.As(err, &fe) && fe.Kind == kind
}
