package blend

// mulDiv255 multiplies two bytes and divides by 255 with rounding.
//
// Formula: t = a*b + 128; (t + t>>8) >> 8
//
// This is Alvy Ray Smith's formula; it is exact for every byte pair, which
// keeps compositing deterministic across repeated runs.
func mulDiv255(a, b byte) byte {
	t := uint16(a)*uint16(b) + 128
	return byte((t + (t >> 8)) >> 8)
}

// MulDiv255 is the exported form of mulDiv255 for packages that scale
// premultiplied pixels by an 8-bit coverage or opacity value.
func MulDiv255(a, b byte) byte {
	return mulDiv255(a, b)
}

// addClamp adds two bytes with clamping to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// unpremul converts a premultiplied channel back to straight colour.
func unpremul(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint16(c)*255 + uint16(a)/2) / uint16(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}
