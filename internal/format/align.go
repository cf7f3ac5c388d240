package format

// AlignPage returns n aligned up to the next 4KB page boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n int) int {
	return (n + PageMask) &^ PageMask
}

// Units returns the number of units needed to hold a payload of n bytes plus
// its header: ceil(n / UnitSize) + 1.
//
// Example:
//
//	Units(0)  = 1
//	Units(1)  = 2
//	Units(16) = 2
//	Units(17) = 3
func Units(n uint64) uint64 {
	return (n+UnitMask)/UnitSize + 1
}

// UnitBytes converts a unit count to bytes.
func UnitBytes(units uint64) uint64 {
	return units * UnitSize
}
