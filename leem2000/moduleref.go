package leem2000

import (
	"fmt"
	"strconv"
)

// ModuleRef identifies a module either by its numeric index or by a
// symbolic name/mnemonic.
type ModuleRef struct {
	index    int
	symbol   string
	bySymbol bool
}

// ModuleIndex refers to a module by its numeric index.
func ModuleIndex(index int) ModuleRef {
	return ModuleRef{index: index}
}

// ModuleSymbol refers to a module by name or mnemonic, matched
// case-insensitively against the directory.
func ModuleSymbol(symbol string) ModuleRef {
	return ModuleRef{symbol: symbol, bySymbol: true}
}

func (r ModuleRef) String() string {
	if r.bySymbol {
		return r.symbol
	}

	return strconv.Itoa(r.index)
}

// resolve maps the ref to a numeric index against the directory snapshot.
// Symbols check the name map before the mnemonic map. An unresolved symbol
// fails with ErrNotFound; no wire command has been built at that point.
func (r ModuleRef) resolve(d *Directory) (int, error) {
	if !r.bySymbol {
		return r.index, nil
	}

	if idx, ok := d.IndexOf(r.symbol); ok {
		return idx, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrNotFound, r.symbol)
}
