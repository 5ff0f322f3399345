package uview

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/elmitec/go-elmitec/proto"
)

const (
	// DefaultHost is the host used when no WithHost option is given.
	DefaultHost = "localhost"
	// DefaultPort is the well-known UView remote-control port.
	DefaultPort = 5570

	// imageHeaderLen is the fixed length of the binary image header.
	imageHeaderLen = 19

	// maxFilenameLen bounds export filenames; the remote host enforces
	// the Windows MAX_PATH limit.
	maxFilenameLen = 260

	// maxAveraging is the largest accepted averaging window.
	maxAveraging = 499
)

// Session is a client session with the UView image-acquisition
// application.
//
// The embedded proto.Client provides Connect, Disconnect, Acquire and the
// endpoint accessors.
type Session struct {
	*proto.Client
}

// ROI is the region of interest of the active window,
// (minimum X, minimum Y, maximum X, maximum Y).
type ROI struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// NewSession creates a UView session with the default endpoint
// localhost:5570, customized by the given options. The session does not
// connect until Connect or Acquire is called.
func NewSession(opts ...proto.Option) (*Session, error) {
	client, err := proto.NewClient("uview", DefaultHost, DefaultPort, opts...)
	if err != nil {
		return nil, err
	}

	return &Session{Client: client}, nil
}

// GetImage transfers the image of the currently active window.
//
// The exchange is one 19-byte binary header announcing width and height,
// the width*height*2 byte sample block, and one trailing footer byte that
// is read and discarded. Header validation precedes body consumption: a
// header that does not split into exactly three tokens fails without
// pulling any would-be body bytes off the stream.
func (s *Session) GetImage() (*Image, error) {
	var img *Image

	err := s.Exec(func(f *proto.Framer) error {
		header, err := f.CommandBinary("ida 0 0", imageHeaderLen)
		if err != nil {
			return err
		}

		fields := strings.Fields(string(header))
		if len(fields) != 3 {
			return fmt.Errorf("%w: image header %q", proto.ErrFormat, string(header))
		}

		width, werr := strconv.Atoi(fields[1])
		height, herr := strconv.Atoi(fields[2])
		if werr != nil || herr != nil || width <= 0 || height <= 0 {
			return fmt.Errorf("%w: image size %q x %q", proto.ErrFormat, fields[1], fields[2])
		}

		body, err := f.ReceiveBinary(width * height * 2)
		if err != nil {
			return err
		}

		// The transfer closes with a single footer byte of no further
		// meaning to this layer.
		if _, err := f.ReceiveBinary(1); err != nil {
			return err
		}

		img = &Image{Width: width, Height: height, Pix: decodeSamples(body)}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return img, nil
}

// ExportImage exports the current image to a file on the machine where the
// UView software runs; name is the PC-style filename without extension.
// This library only observes success or failure, never file contents.
//
// The (format, contents) combination is validated against the fixed
// compatibility table before any I/O: TIFF and BMP reject GRAY16, JPG
// accepts only PROCESSED, DAT and TIFF16 ignore contents entirely.
func (s *Session) ExportImage(name string, format FileFormat, contents FileContents) error {
	if name == "" {
		return fmt.Errorf("%w: empty filename", proto.ErrInvalidArgument)
	}
	if len(name) >= maxFilenameLen {
		return fmt.Errorf("%w: filename longer than %d characters", proto.ErrInvalidArgument, maxFilenameLen-1)
	}
	if err := checkExportCombo(format, contents); err != nil {
		return err
	}

	reply, err := s.Command(fmt.Sprintf("exp %d,%d,%s", int(format), int(contents), name))
	if err != nil {
		return err
	}

	fields := strings.Fields(reply)
	if len(fields) == 2 && fields[0] == "ErrorCode" {
		return &RemoteError{Code: fields[1]}
	}

	return nil
}

// SetAveraging sets the averaging mode: 0 disables averaging, 1 enables
// the sliding average, 2..499 set a fixed window of that many images.
func (s *Session) SetAveraging(n int) error {
	if n < 0 || n > maxAveraging {
		return fmt.Errorf("%w: averaging %d out of range [0, %d]", proto.ErrInvalidArgument, n, maxAveraging)
	}

	_, err := s.Command(fmt.Sprintf("avr %d", n))

	return err
}

// Averaging returns the current averaging mode, with the meaning described
// at SetAveraging.
func (s *Session) Averaging() (int, error) {
	v, ok, err := s.CommandInt("avr")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty averaging reply", proto.ErrFormat)
	}

	return v, nil
}

// AcquireSingleImage acquires one camera image into the given window.
// Window -1 targets the active window; any value below -1 is coerced to
// -1 rather than rejected.
func (s *Session) AcquireSingleImage(window int) error {
	if window < -1 {
		window = -1
	}

	_, err := s.Command(fmt.Sprintf("asi %d", window))

	return err
}

// AcquisitionInProgress reports whether an image acquisition is currently
// running.
func (s *Session) AcquisitionInProgress() (bool, error) {
	v, ok, err := s.CommandInt("aip")
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: empty acquisition status reply", proto.ErrFormat)
	}

	return v != 0, nil
}

// SetContinuousAcquisition enables or disables continuous acquisition.
func (s *Session) SetContinuousAcquisition(enable bool) error {
	req := "aip 0"
	if enable {
		req = "aip 1"
	}

	_, err := s.Command(req)

	return err
}

// CameraSize returns the size of the camera sensor.
func (s *Session) CameraSize() (width, height int, err error) {
	reply, err := s.Command("gcs")
	if err != nil {
		return 0, 0, err
	}

	fields := strings.Fields(reply)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: camera size reply %q", proto.ErrFormat, reply)
	}

	width, werr := strconv.Atoi(fields[0])
	height, herr := strconv.Atoi(fields[1])
	if werr != nil || herr != nil {
		return 0, 0, fmt.Errorf("%w: camera size reply %q", proto.ErrFormat, reply)
	}

	return width, height, nil
}

// RegionOfInterest returns the ROI of the active window.
//
// The four scalars are queried with four independent commands; the
// protocol offers no atomic readout, so remote state changes between the
// queries can yield an inconsistent ROI.
func (s *Session) RegionOfInterest() (ROI, error) {
	var roi ROI

	for _, q := range []struct {
		cmd  string
		dest *float64
	}{
		{"xmi", &roi.MinX},
		{"ymi", &roi.MinY},
		{"xma", &roi.MaxX},
		{"yma", &roi.MaxY},
	} {
		v, ok, err := s.CommandFloat(q.cmd)
		if err != nil {
			return ROI{}, err
		}
		if !ok {
			return ROI{}, fmt.Errorf("%w: empty %s reply", proto.ErrFormat, q.cmd)
		}
		*q.dest = v
	}

	return roi, nil
}

// MarkerInfo queries the marker with the given non-negative id.
func (s *Session) MarkerInfo(id int) (*Marker, error) {
	if id < 0 {
		return nil, fmt.Errorf("%w: marker id %d must not be negative", proto.ErrInvalidArgument, id)
	}

	reply, err := s.Command(fmt.Sprintf("mar %d", id))
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(reply)
	if len(fields) != 7 {
		return nil, fmt.Errorf("%w: marker reply %q", proto.ErrFormat, reply)
	}

	imgIdx, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: marker image index %q", proto.ErrFormat, fields[1])
	}

	kindCode, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: marker kind code %q", proto.ErrFormat, fields[2])
	}

	m := &Marker{
		Index:      id,
		Name:       fields[0],
		ImageIndex: imgIdx,
		Kind:       markerKindFromCode(kindCode),
		KindCode:   kindCode,
	}

	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(fields[3+i])
		if err != nil {
			return nil, fmt.Errorf("%w: marker position %q", proto.ErrFormat, fields[3+i])
		}
		m.Pos[i] = v
	}

	return m, nil
}

// ExposureTime returns the current camera exposure time in milliseconds.
func (s *Session) ExposureTime() (float64, error) {
	v, ok, err := s.CommandFloat("ext")
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: empty exposure reply", proto.ErrFormat)
	}

	return v, nil
}

// SetExposureTime sets the camera exposure time in milliseconds. The
// fractional part of ms is truncated before sending.
func (s *Session) SetExposureTime(ms float64) error {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return fmt.Errorf("%w: exposure time must be finite", proto.ErrInvalidArgument)
	}

	_, err := s.Command(fmt.Sprintf("ext %d", int64(ms)))

	return err
}

// Version queries the UView software version.
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
