package uview

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elmitec/go-elmitec/proto"
)

// fakeUView scripts a UView application on the far end of a net.Pipe.
// Text replies are framed as null-terminated Latin-1; raw replies are
// written verbatim (the image transfer has no terminators).
type fakeUView struct {
	mu   sync.Mutex
	reqs []string
	text map[string]string
	raw  map[string][]byte
}

func (p *fakeUView) set(req, reply string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text[req] = reply
}

func (p *fakeUView) requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.reqs))
	copy(out, p.reqs)

	return out
}

func (p *fakeUView) handle(req string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	if reply, ok := p.raw[req]; ok {
		return reply
	}
	if reply, ok := p.text[req]; ok {
		return append([]byte(reply), 0)
	}

	return []byte{0}
}

func (p *fakeUView) serve(conn net.Conn) {
	go func() {
		r := bufio.NewReader(conn)
		for {
			req, err := r.ReadString(0)
			if err != nil {
				return
			}
			req = strings.TrimSuffix(req, "\x00")

			p.mu.Lock()
			p.reqs = append(p.reqs, req)
			p.mu.Unlock()

			if _, err := conn.Write(p.handle(req)); err != nil {
				return
			}
		}
	}()
}

func newTestSession(t *testing.T, text map[string]string, raw map[string][]byte, opts ...proto.Option) (*Session, *fakeUView) {
	t.Helper()

	if text == nil {
		text = map[string]string{}
	}
	if raw == nil {
		raw = map[string][]byte{}
	}
	peer := &fakeUView{text: text, raw: raw}

	opts = append([]proto.Option{proto.WithDialer(
		func(_ context.Context, _, _ string) (net.Conn, error) {
			client, server := net.Pipe()
			peer.serve(server)

			return client, nil
		},
	)}, opts...)

	s, err := NewSession(opts...)
	require.NoError(t, err)

	return s, peer
}

func connect(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Connect())
	t.Cleanup(func() { _ = s.Disconnect() })
}

// imageReply frames a complete image transfer: the space-padded 19-byte
// header, the little-endian sample block, and the single footer byte.
func imageReply(width, height int, samples []uint16) []byte {
	out := []byte(fmt.Sprintf("%-19s", fmt.Sprintf("BINARY %d %d", width, height)))
	for _, s := range samples {
		out = append(out, byte(s), byte(s>>8))
	}

	return append(out, 0xFE) // footer byte, value irrelevant
}
