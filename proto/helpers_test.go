package proto

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
)

// testPeer is a scripted remote application on the far end of a net.Pipe.
// It reads null-terminated requests and answers them through the handler;
// a nil handler result sends nothing.
type testPeer struct {
	mu   sync.Mutex
	reqs []string
}

func (p *testPeer) serve(conn net.Conn, handler func(req string) []byte) {
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

			if resp := handler(req); resp != nil {
				if _, err := conn.Write(resp); err != nil {
					return
				}
			}
		}
	}()
}

func (p *testPeer) requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.reqs))
	copy(out, p.reqs)

	return out
}

// pipeDialer returns a DialFunc that hands the client side of a fresh
// net.Pipe to the session and serves the far side with handler.
func pipeDialer(peer *testPeer, handler func(req string) []byte) DialFunc {
	return func(_ context.Context, _, _ string) (net.Conn, error) {
		client, server := net.Pipe()
		peer.serve(server, handler)

		return client, nil
	}
}

// textReply encodes s as a null-terminated Latin-1 reply.
func textReply(s string) []byte {
	buf := make([]byte, 0, len(s)+1)
	for _, r := range s {
		buf = append(buf, byte(r))
	}

	return append(buf, 0)
}
