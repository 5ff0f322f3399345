package leem2000

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/elmitec/go-elmitec/proto"
)

const (
	// DefaultHost is the host used when no WithHost option is given.
	DefaultHost = "localhost"
	// DefaultPort is the well-known LEEM2000 remote-control port.
	DefaultPort = 5566
)

// Session is a client session with the LEEM2000 module controller.
//
// The embedded proto.Client provides Connect, Disconnect, Acquire and the
// endpoint accessors. Connect additionally performs an initial
// UpdateModules and UpdateValues so symbolic module ids resolve
// immediately on a fresh connection.
type Session struct {
	*proto.Client

	// dir holds the immutable current directory snapshot.
	dir atomic.Pointer[Directory]

	// values caches the last queried value per mnemonic. It is readable
	// concurrently with command traffic, which the session lock serializes.
	values *xsync.MapOf[string, float64]
}

// Change describes one entry of a modified-modules poll.
type Change struct {
	ModuleName  string
	ModuleIndex int
	NewValue    float64
}

// FieldOfView is the result of a field-of-view query. OK reports whether
// the preset reply carried a parsable micrometer value; when it is false,
// Raw still holds the reply text.
type FieldOfView struct {
	Value float64
	Raw   string
	OK    bool
}

// NewSession creates a LEEM2000 session with the default endpoint
// localhost:5566, customized by the given options. The session does not
// connect until Connect or Acquire is called.
func NewSession(opts ...proto.Option) (*Session, error) {
	client, err := proto.NewClient("leem2000", DefaultHost, DefaultPort, opts...)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Client: client,
		values: xsync.NewMapOf[string, float64](),
	}
	s.dir.Store(newDirectory(0))
	client.RegisterConnectHook(s.refresh)

	return s, nil
}

// refresh runs after every successful connect.
func (s *Session) refresh() error {
	if err := s.UpdateModules(); err != nil {
		return err
	}

	return s.UpdateValues()
}

// NumberOfModules queries the remote's declared module count.
func (s *Session) NumberOfModules() (int, error) {
	n, ok, err := s.CommandInt("nrm")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty module count reply", proto.ErrFormat)
	}

	return n, nil
}

// UpdateModules performs a full directory refresh: it queries the module
// count and, for each index, the name, mnemonic, unit (only when the name
// was accepted) and the preset low/high limits. Sentinel replies are
// dropped from the corresponding map per entity.
//
// The new directory replaces the old one atomically at the end of the
// scan; a scan that fails partway leaves the previous snapshot in place.
func (s *Session) UpdateModules() error {
	count, err := s.NumberOfModules()
	if err != nil {
		return err
	}

	d := newDirectory(count)

	for i := 0; i < count; i++ {
		name, err := s.Command(fmt.Sprintf("nam %d", i))
		if err != nil {
			return err
		}
		if !isSentinel(name) {
			d.names[i] = name
			d.byName[strings.ToUpper(name)] = i
		}

		mne, err := s.Command(fmt.Sprintf("mne %d", i))
		if err != nil {
			return err
		}
		if !isSentinel(mne) {
			d.mnemonics[i] = mne
			d.byMnemonic[strings.ToUpper(mne)] = i
		}

		// Units only exist for modules whose name was accepted.
		if _, ok := d.names[i]; ok {
			unit, err := s.Command(fmt.Sprintf("uni %d", i))
			if err != nil {
				return err
			}
			if !isSentinel(unit) {
				d.units[i] = unit
			}
		}

		// Limits are queried regardless of name acceptance.
		low, err := s.Command(fmt.Sprintf("psl %d", i))
		if err != nil {
			return err
		}
		if !isSentinel(low) {
			v, perr := strconv.ParseFloat(strings.TrimSpace(low), 64)
			if perr != nil {
				return fmt.Errorf("%w: low limit %q for module %d", proto.ErrFormat, low, i)
			}
			d.lowLimits[i] = v
		}

		high, err := s.Command(fmt.Sprintf("psh %d", i))
		if err != nil {
			return err
		}
		if !isSentinel(high) {
			v, perr := strconv.ParseFloat(strings.TrimSpace(high), 64)
			if perr != nil {
				return fmt.Errorf("%w: high limit %q for module %d", proto.ErrFormat, high, i)
			}
			d.highLimits[i] = v
		}
	}

	s.dir.Store(d)

	return nil
}

// UpdateValues re-queries the value of every mnemonic in the current
// directory. Replies that fail the float parse are skipped, not recorded
// as zero.
func (s *Session) UpdateValues() error {
	if !s.Connected() {
		return proto.ErrNotConnected
	}

	s.values.Clear()

	for _, mne := range s.dir.Load().Mnemonics() {
		reply, err := s.Command("get " + mne)
		if err != nil {
			return err
		}

		v, perr := strconv.ParseFloat(strings.TrimSpace(reply), 64)
		if perr != nil {
			continue
		}
		s.values.Store(mne, v)
	}

	return nil
}

// Directory returns the current directory snapshot.
func (s *Session) Directory() *Directory {
	return s.dir.Load()
}

// CachedValue returns the value recorded for mnemonic by the last
// UpdateValues run.
func (s *Session) CachedValue(mnemonic string) (float64, bool) {
	return s.values.Load(mnemonic)
}

// Values returns a copy of the current value snapshot.
func (s *Session) Values() map[string]float64 {
	out := make(map[string]float64, s.values.Size())
	s.values.Range(func(mne string, v float64) bool {
		out[mne] = v
		return true
	})

	return out
}

// Value queries the current value of the referenced module.
func (s *Session) Value(ref ModuleRef) (float64, error) {
	if !s.Connected() {
		return 0, proto.ErrNotConnected
	}

	idx, err := ref.resolve(s.dir.Load())
	if err != nil {
		return 0, err
	}

	v, ok, err := s.CommandFloat(fmt.Sprintf("get %d", idx))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty value reply for module %d", proto.ErrFormat, idx)
	}

	return v, nil
}

// SetValue writes a new value to the referenced module. The value must be
// finite. A symbolic ref that resolves to neither the name map nor the
// mnemonic map fails with ErrNotFound before any network request.
//
// The write succeeded iff the remote reply is the literal "0"; any other
// reply is reported as ErrRemote, a logical rejection rather than a parse
// failure.
func (s *Session) SetValue(ref ModuleRef, value float64) error {
	if !s.Connected() {
		return proto.ErrNotConnected
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: value must be finite", proto.ErrInvalidArgument)
	}

	idx, err := ref.resolve(s.dir.Load())
	if err != nil {
		return err
	}

	reply, err := s.Command(fmt.Sprintf("set %d=%s", idx, strconv.FormatFloat(value, 'g', -1, 64)))
	if err != nil {
		return err
	}
	if reply != "0" {
		return fmt.Errorf("%w: set rejected with reply %q", proto.ErrRemote, reply)
	}

	return nil
}

// LowLimit queries the preset low limit of the referenced module.
func (s *Session) LowLimit(ref ModuleRef) (float64, error) {
	return s.limit(ref, "psl")
}

// HighLimit queries the preset high limit of the referenced module.
func (s *Session) HighLimit(ref ModuleRef) (float64, error) {
	return s.limit(ref, "psh")
}

func (s *Session) limit(ref ModuleRef, cmd string) (float64, error) {
	if !s.Connected() {
		return 0, proto.ErrNotConnected
	}

	idx, err := ref.resolve(s.dir.Load())
	if err != nil {
		return 0, err
	}

	v, ok, err := s.CommandFloat(fmt.Sprintf("%s %d", cmd, idx))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty limit reply for module %d", proto.ErrFormat, idx)
	}

	return v, nil
}

// Version queries the LEEM2000 software version.
func (s *Session) Version() (float64, error) {
	v, ok, err := s.CommandFloat("ver")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty version reply", proto.ErrFormat)
	}

	return v, nil
}

// FieldOfView queries the current preset description and scans it for a
// micrometer field-of-view value. An unparsable reply is not an error:
// the result carries the raw text with OK=false.
func (s *Session) FieldOfView() (FieldOfView, error) {
	reply, err := s.Command("prl")
	if err != nil {
		return FieldOfView{}, err
	}

	if i := strings.IndexRune(reply, 'µ'); i >= 0 {
		if v, perr := strconv.ParseFloat(strings.TrimSpace(reply[:i]), 64); perr == nil {
			return FieldOfView{Value: v, Raw: reply, OK: true}, nil
		}
	}

	return FieldOfView{Raw: reply}, nil
}

// ModifiedModules polls for modules whose value changed since the last
// poll. The reply "0" means no changes. Otherwise the reply carries a
// count followed by that many (index, value) pairs, in order; indices
// absent from the directory get the synthesized name "Unknown<index>".
func (s *Session) ModifiedModules() ([]Change, error) {
	reply, err := s.Command("chm")
	if err != nil {
		return nil, err
	}
	if reply == "0" {
		return nil, nil
	}

	fields := strings.Fields(reply)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty change reply", proto.ErrFormat)
	}

	n, perr := strconv.Atoi(fields[0])
	if perr != nil || n < 0 {
		return nil, fmt.Errorf("%w: change count %q", proto.ErrFormat, fields[0])
	}
	if len(fields) < 1+2*n {
		return nil, fmt.Errorf("%w: expected %d change tokens, got %d", proto.ErrFormat, 2*n, len(fields)-1)
	}

	d := s.dir.Load()
	changes := make([]Change, 0, n)

	for i := 0; i < n; i++ {
		idx, perr := strconv.Atoi(fields[2*i+1])
		if perr != nil {
			return nil, fmt.Errorf("%w: change index %q", proto.ErrFormat, fields[2*i+1])
		}

		val, perr := strconv.ParseFloat(fields[2*i+2], 64)
		if perr != nil {
			return nil, fmt.Errorf("%w: change value %q", proto.ErrFormat, fields[2*i+2])
		}

		name, ok := d.Name(idx)
		if !ok {
			name = fmt.Sprintf("Unknown%d", idx)
		}

		changes = append(changes, Change{ModuleName: name, ModuleIndex: idx, NewValue: val})
	}

	return changes, nil
}
