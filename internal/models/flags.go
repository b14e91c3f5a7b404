package models

// Bits is a small bitmask stored as an integer column.
type Bits uint64

// Set returns the mask with flag set.
func (b Bits) Set(flag Bits) Bits { return b | flag }

// Clear returns the mask with flag cleared.
func (b Bits) Clear(flag Bits) Bits { return b &^ flag }

// Has reports whether flag is set.
func (b Bits) Has(flag Bits) bool { return b&flag != 0 }
