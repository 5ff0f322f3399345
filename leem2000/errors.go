package leem2000

import "errors"

// ErrNotFound indicates that a symbolic module id resolves to neither the
// name map nor the mnemonic map of the current directory.
var ErrNotFound = errors.New("leem2000: module not found in directory")
