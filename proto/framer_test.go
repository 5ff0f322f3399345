package proto

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Send tests ---

func TestFramer_SendString(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(a, time.Second)

	done := make(chan error, 1)
	go func() { done <- f.SendString("abc", true) }()

	buf := make([]byte, 4)
	_, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 'c', 0}, buf, "delimited send must append a single 0x00")
	require.NoError(t, <-done)
}

func TestFramer_SendStringNoDelimiter(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(a, time.Second)

	go func() { _ = f.SendString("abc", false) }()

	buf := make([]byte, 3)
	_, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), buf)
}

func TestFramer_SendInt(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(a, time.Second)

	go func() { _ = f.SendInt(42, true) }()

	buf := make([]byte, 3)
	_, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{'4', '2', 0}, buf, "integer mode stringifies then applies STRING rules")
}

func TestFramer_SendBytes(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(a, time.Second)
	payload := []byte{0x00, 0xFF, 0x10}

	go func() { _ = f.SendBytes(payload) }()

	buf := make([]byte, 3)
	_, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, payload, buf, "binary mode writes raw bytes, no terminator")
}

func TestFramer_SendStringNonLatin1(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(a, time.Second)

	err := f.SendString("漢", true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

// --- Receive tests ---

func TestFramer_StringRoundTrip(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	sender := NewFramer(a, time.Second)
	receiver := NewFramer(b, time.Second)

	// "ü" is Latin-1 representable; it must survive the round trip.
	const text = "AC objective 1.5 üm"

	go func() { _ = sender.SendString(text, true) }()

	got, err := receiver.ReceiveString()
	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestFramer_ReceiveString_EOFEndsString(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()

	f := NewFramer(b, time.Second)

	go func() {
		_, _ = a.Write([]byte("abc"))
		a.Close()
	}()

	got, err := f.ReceiveString()
	require.NoError(t, err, "stream end before a terminator is not an error")
	assert.Equal(t, "abc", got)
}

func TestFramer_ReceiveString_Latin1Decode(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	// 0xB5 is the micro sign in Latin-1.
	go func() { _, _ = a.Write([]byte{'1', '.', '5', 0xB5, 'm', 0}) }()

	got, err := f.ReceiveString()
	require.NoError(t, err)
	assert.Equal(t, "1.5µm", got)
}

func TestFramer_ReceiveInt(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() { _, _ = a.Write([]byte("42\x00")) }()

	v, ok, err := f.ReceiveInt()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestFramer_ReceiveInt_EmptyIsMissing(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() { _, _ = a.Write([]byte{0}) }()

	v, ok, err := f.ReceiveInt()
	require.NoError(t, err, "an empty reply is missing, not an error")
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestFramer_ReceiveInt_Malformed(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() { _, _ = a.Write([]byte("abc\x00")) }()

	_, _, err := f.ReceiveInt()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestFramer_ReceiveFloat(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() { _, _ = a.Write([]byte("3.25\x00")) }()

	v, ok, err := f.ReceiveFloat()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 3.25, v, 1e-9)
}

func TestFramer_ReceiveFloat_EmptyIsMissing(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() { _, _ = a.Write([]byte{0}) }()

	v, ok, err := f.ReceiveFloat()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestFramer_ReceiveBinary_CoalescesPartialReads(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() {
		// Deliver the block in three fragments.
		_, _ = a.Write([]byte{1, 2, 3})
		_, _ = a.Write([]byte{4, 5})
		_, _ = a.Write([]byte{6, 7, 8})
	}()

	got, err := f.ReceiveBinary(8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, got)
}

func TestFramer_ReceiveBinary_EarlyClose(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	f := NewFramer(b, time.Second)

	go func() {
		_, _ = a.Write([]byte{1, 2, 3})
		a.Close()
	}()

	_, err := f.ReceiveBinary(8)
	assert.ErrorIs(t, err, ErrConnClosed)
}

func TestFramer_ReceiveBinary_InvalidLength(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, time.Second)

	for _, length := range []int{0, -1} {
		_, err := f.ReceiveBinary(length)
		assert.ErrorIs(t, err, ErrInvalidArgument, "length %d", length)
	}
}

func TestFramer_ReceiveTimeout(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	f := NewFramer(b, 20*time.Millisecond)

	_, err := f.ReceiveString()
	require.Error(t, err, "an unresponsive peer must not block past the receive timeout")

	var netErr net.Error
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

// --- Command tests ---

func TestFramer_Command(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	peer := &testPeer{}
	peer.serve(a, func(req string) []byte {
		if req == "ver" {
			return textReply("5.1")
		}
		return textReply("")
	})

	f := NewFramer(b, time.Second)

	reply, err := f.Command("ver")
	require.NoError(t, err)
	assert.Equal(t, "5.1", reply)
	assert.Equal(t, []string{"ver"}, peer.requests())
}

func TestFramer_CommandBinary_InvalidLength(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	peer := &testPeer{}
	peer.serve(a, func(string) []byte { return nil })

	f := NewFramer(b, time.Second)

	_, err := f.CommandBinary("ida 0 0", 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, peer.requests(), "length validation must precede the request")
}
