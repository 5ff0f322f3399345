package leem2000

import "strings"

// Sentinel replies signifying "module slot not present". Entries producing
// one of these are dropped from the corresponding map, per entity.
var sentinels = map[string]struct{}{
	"":         {},
	"no name":  {},
	"invalid":  {},
	"disabled": {},
}

func isSentinel(s string) bool {
	_, ok := sentinels[s]
	return ok
}

// Directory is an immutable snapshot of the remote module directory.
// UpdateModules builds a fresh Directory and swaps it in atomically; a
// snapshot handed out to a caller never mutates.
type Directory struct {
	count      int
	names      map[int]string
	mnemonics  map[int]string
	units      map[int]string
	lowLimits  map[int]float64
	highLimits map[int]float64

	// Reverse maps key on the upper-cased symbol. When two indices share
	// an upper-cased name or mnemonic, the last index written during the
	// discovery scan wins; the protocol leaves that ambiguity unresolved.
	byName     map[string]int
	byMnemonic map[string]int
}

func newDirectory(count int) *Directory {
	return &Directory{
		count:      count,
		names:      make(map[int]string),
		mnemonics:  make(map[int]string),
		units:      make(map[int]string),
		lowLimits:  make(map[int]float64),
		highLimits: make(map[int]float64),
		byName:     make(map[string]int),
		byMnemonic: make(map[string]int),
	}
}

// Count returns the module count declared by the remote during the scan
// that built this snapshot.
func (d *Directory) Count() int { return d.count }

// Name returns the name of the module at index, if one was accepted.
func (d *Directory) Name(index int) (string, bool) {
	name, ok := d.names[index]
	return name, ok
}

// Mnemonic returns the mnemonic of the module at index, if one was accepted.
func (d *Directory) Mnemonic(index int) (string, bool) {
	mne, ok := d.mnemonics[index]
	return mne, ok
}

// Unit returns the unit string of the module at index, if one was accepted.
func (d *Directory) Unit(index int) (string, bool) {
	unit, ok := d.units[index]
	return unit, ok
}

// LowLimit returns the preset low limit of the module at index, if known.
func (d *Directory) LowLimit(index int) (float64, bool) {
	v, ok := d.lowLimits[index]
	return v, ok
}

// HighLimit returns the preset high limit of the module at index, if known.
func (d *Directory) HighLimit(index int) (float64, bool) {
	v, ok := d.highLimits[index]
	return v, ok
}

// IndexOf resolves a symbolic id case-insensitively, checking names before
// mnemonics.
func (d *Directory) IndexOf(symbol string) (int, bool) {
	key := strings.ToUpper(symbol)
	if idx, ok := d.byName[key]; ok {
		return idx, true
	}
	if idx, ok := d.byMnemonic[key]; ok {
		return idx, true
	}

	return 0, false
}

// Mnemonics returns all accepted mnemonics in index order.
func (d *Directory) Mnemonics() []string {
	out := make([]string, 0, len(d.mnemonics))
	for i := 0; i < d.count; i++ {
		if mne, ok := d.mnemonics[i]; ok {
			out = append(out, mne)
		}
	}

	return out
}
