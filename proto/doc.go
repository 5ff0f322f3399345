// Package proto implements the byte-level framing shared by the LEEM2000 and
// UView remote-control protocols, and the session plumbing built on top of it.
//
// Both instrument applications speak the same wire dialect: commands are
// null-terminated single-byte (ASCII/Latin-1) text, replies are either
// null-terminated text or a fixed-length binary block. The framing mode of
// each reply is a static property of the command, never negotiated in-band.
//
// The Framer type owns the four framing modes over one net.Conn. The Client
// type owns exactly one connection, serializes request/reply pairs (the
// protocol has no request identifiers, so only one command may be outstanding
// at a time), and provides the scoped-use Guard returned by Acquire.
package proto
