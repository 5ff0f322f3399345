package leem2000

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elmitec/go-elmitec/proto"
)

// fakeLeem scripts a LEEM2000 application on the far end of a net.Pipe.
// Unscripted directory queries answer the "invalid" sentinel and an
// unscripted module count is zero, so tests only list the replies they
// care about.
type fakeLeem struct {
	mu      sync.Mutex
	reqs    []string
	replies map[string]string
}

func (p *fakeLeem) set(req, reply string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies[req] = reply
}

func (p *fakeLeem) requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.reqs))
	copy(out, p.reqs)

	return out
}

func (p *fakeLeem) handle(req string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if reply, ok := p.replies[req]; ok {
		return reply
	}

	switch {
	case req == "nrm":
		return "0"
	case strings.HasPrefix(req, "nam "),
		strings.HasPrefix(req, "mne "),
		strings.HasPrefix(req, "uni "),
		strings.HasPrefix(req, "psl "),
		strings.HasPrefix(req, "psh "):
		return "invalid"
	}

	return ""
}

func (p *fakeLeem) serve(conn net.Conn) {
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

			if _, err := conn.Write(latin1Reply(p.handle(req))); err != nil {
				return
			}
		}
	}()
}

// latin1Reply encodes s as a null-terminated Latin-1 reply, one byte per
// rune, the way the instrument frames its text.
func latin1Reply(s string) []byte {
	buf := make([]byte, 0, len(s)+1)
	for _, r := range s {
		buf = append(buf, byte(r))
	}

	return append(buf, 0)
}

func newTestSession(t *testing.T, replies map[string]string) (*Session, *fakeLeem) {
	t.Helper()

	if replies == nil {
		replies = map[string]string{}
	}
	peer := &fakeLeem{replies: replies}

	s, err := NewSession(proto.WithDialer(
		func(_ context.Context, _, _ string) (net.Conn, error) {
			client, server := net.Pipe()
			peer.serve(server)

			return client, nil
		},
	))
	require.NoError(t, err)

	return s, peer
}

func connect(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.Connect())
	t.Cleanup(func() { _ = s.Disconnect() })
}
