// Package uview implements the client session for the UView
// image-acquisition application.
//
// A Session owns exactly one TCP connection to UView and exposes image
// transfer, file export, marker queries, region-of-interest readout and
// acquisition control. Image payloads arrive as fixed-length binary blocks
// of unsigned 16-bit samples announced by a 19-byte ASCII header; every
// other reply is null-terminated text.
package uview
