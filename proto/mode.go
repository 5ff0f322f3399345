package proto

// Mode identifies the framing applied to a single protocol message.
//
// The mode of a reply is fixed per command; it is never declared on the wire
// except for the image header's embedded width and height.
type Mode int

const (
	// ModeString frames a message as single-byte text terminated by 0x00.
	ModeString Mode = iota
	// ModeInteger frames an integer as its decimal text, STRING rules apply.
	ModeInteger
	// ModeFloat frames a float as its decimal text, STRING rules apply.
	ModeFloat
	// ModeBinary frames a message as a fixed-length raw byte block, no terminator.
	ModeBinary
)

func (m Mode) String() string {
	switch m {
	case ModeString:
		return "STRING"
	case ModeInteger:
		return "INTEGER"
	case ModeFloat:
		return "FLOAT"
	case ModeBinary:
		return "BINARY"
	default:
		return "UNKNOWN"
	}
}
