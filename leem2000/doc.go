// Package leem2000 implements the client session for the LEEM2000 module
// controller.
//
// A Session owns exactly one TCP connection to the LEEM2000 application and
// a snapshot of its module directory: per-index names, mnemonics, units and
// limits, plus reverse maps for case-insensitive symbolic lookup. The
// directory is discovered with UpdateModules and rebuilt wholesale; module
// values are read individually or snapshotted with UpdateValues.
//
// Modules are addressed by ModuleRef, either a numeric index or a symbolic
// name/mnemonic. Symbols resolve locally against the directory before any
// wire command is built; an unresolved symbol fails with ErrNotFound and
// performs no I/O.
package leem2000
