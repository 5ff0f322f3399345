package uview

// MarkerKind enumerates the marker shapes UView reports. Codes outside
// the fixed table map to MarkerUnknown rather than failing.
type MarkerKind int

const (
	MarkerLine MarkerKind = iota
	MarkerHorizLine
	MarkerVertLine
	MarkerCircle
	MarkerText
	MarkerCross
	MarkerUnknown
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerLine:
		return "LINE"
	case MarkerHorizLine:
		return "HORIZLINE"
	case MarkerVertLine:
		return "VERTLINE"
	case MarkerCircle:
		return "CIRCLE"
	case MarkerText:
		return "TEXT"
	case MarkerCross:
		return "CROSS"
	default:
		return "UNKNOWN"
	}
}

// markerKindFromCode maps the raw wire code to a MarkerKind.
func markerKindFromCode(code int) MarkerKind {
	switch code {
	case 0:
		return MarkerLine
	case 1:
		return MarkerHorizLine
	case 2:
		return MarkerVertLine
	case 5:
		return MarkerCircle
	case 9:
		return MarkerText
	case 10:
		return MarkerCross
	default:
		return MarkerUnknown
	}
}

// Marker describes one marker of a UView image window.
type Marker struct {
	Index      int
	Name       string
	ImageIndex int
	Kind       MarkerKind
	KindCode   int

	// Pos holds the four integer position fields of the marker; their
	// meaning depends on the marker kind.
	Pos [4]int
}
