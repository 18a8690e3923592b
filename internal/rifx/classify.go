package rifx

// Kind is the handling strategy for an extracted sub-file, chosen from its
// own type tag.
type Kind int

const (
	// KindMovie is a standard movie whose internal resource map must be
	// rebased before the file is valid on its own. Unrecognised type tags
	// also land here; the movie layout is the format's default.
	KindMovie Kind = iota
	// KindCompressedMovie (FGDM) is written through unchanged but selects
	// the compressed extension variant.
	KindCompressedMovie
	// KindRaw (FGDC) is written through unchanged.
	KindRaw
	// KindXtra holds a nested chunk stream ending in a zlib-compressed blob.
	KindXtra
)

func (k Kind) String() string {
	switch k {
	case KindMovie:
		return "movie"
	case KindCompressedMovie:
		return "compressed movie"
	case KindRaw:
		return "raw"
	case KindXtra:
		return "xtra"
	default:
		return "unknown"
	}
}

// SubfileInfo is the result of classifying an extracted sub-file.
type SubfileInfo struct {
	Kind Kind
	// Order is the sub-file's own byte order, detected independently of the
	// parent; mixed-order archives exist.
	Order Order
	// Type is the normalised 4-byte type tag.
	Type string
}

// Classify reads a sub-file's identity and type tag. It fails with
// MalformedSubfile when the sub-file does not begin with a recognised
// container signature; anything the map called a File must be a container.
func Classify(sub []byte) (SubfileInfo, error) {
	c := NewCursor(sub)
	order, err := c.ReadIdent()
	if err != nil {
		return SubfileInfo{}, err
	}
	if order == OrderUnknown {
		return SubfileInfo{}, errAt(MalformedSubfile, 0, "sub-file signature %q not recognised", sub[:min(4, len(sub))])
	}

	c.Seek(movieTypePos)
	typ, err := c.ReadTag()
	if err != nil {
		return SubfileInfo{}, err
	}

	info := SubfileInfo{Order: order, Type: typ}
	switch typ {
	case TypeCompressedMovie:
		info.Kind = KindCompressedMovie
	case TypeCompressedCast:
		info.Kind = KindRaw
	case TypeXtra:
		info.Kind = KindXtra
	default:
		// TypeMovie and anything unrecognised take the rebase path.
		info.Kind = KindMovie
	}
	return info, nil
}
