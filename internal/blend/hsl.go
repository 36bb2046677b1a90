package blend

// Non-separable blend modes operate on the whole RGB triplet.
// See W3C Compositing and Blending Level 1, section 10.

type rgb struct{ r, g, b float64 }

// lum returns the BT.601 luminance used by the W3C non-separable modes.
func (c rgb) lum() float64 {
	return 0.30*c.r + 0.59*c.g + 0.11*c.b
}

func (c rgb) sat() float64 {
	return max(c.r, c.g, c.b) - min(c.r, c.g, c.b)
}

// clip scales out-of-gamut components towards the luminance.
func (c rgb) clip() rgb {
	l := c.lum()
	n := min(c.r, c.g, c.b)
	x := max(c.r, c.g, c.b)
	if n < 0 {
		k := l / (l - n)
		c = rgb{l + (c.r-l)*k, l + (c.g-l)*k, l + (c.b-l)*k}
	}
	if x > 1 {
		k := (1 - l) / (x - l)
		c = rgb{l + (c.r-l)*k, l + (c.g-l)*k, l + (c.b-l)*k}
	}
	return c
}

func (c rgb) withLum(l float64) rgb {
	d := l - c.lum()
	return rgb{c.r + d, c.g + d, c.b + d}.clip()
}

func (c rgb) withSat(s float64) rgb {
	lo, mid, hi := c.order()
	if *hi > *lo {
		*mid = (*mid - *lo) * s / (*hi - *lo)
		*hi = s
	} else {
		*mid, *hi = 0, 0
	}
	*lo = 0
	return c
}

// order returns pointers to the smallest, middle and largest components.
func (c *rgb) order() (lo, mid, hi *float64) {
	lo, mid, hi = &c.r, &c.g, &c.b
	if *lo > *mid {
		lo, mid = mid, lo
	}
	if *mid > *hi {
		mid, hi = hi, mid
	}
	if *lo > *mid {
		lo, mid = mid, lo
	}
	return lo, mid, hi
}

func nonSeparable(sr, sg, sb, sa, dr, dg, db, da byte, b func(cs, cb rgb) rgb) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}
	cs := rgb{float64(sr) / float64(sa), float64(sg) / float64(sa), float64(sb) / float64(sa)}
	cb := rgb{float64(dr) / float64(da), float64(dg) / float64(da), float64(db) / float64(da)}
	res := b(cs, cb)
	return mix(sr, sg, sb, sa, dr, dg, db, da, unitToByte(res.r), unitToByte(res.g), unitToByte(res.b))
}

func blendHue(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb rgb) rgb {
		return cs.withSat(cb.sat()).withLum(cb.lum())
	})
}

func blendSaturation(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb rgb) rgb {
		return cb.withSat(cs.sat()).withLum(cb.lum())
	})
}

func blendColor(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb rgb) rgb {
		return cs.withLum(cb.lum())
	})
}

func blendLuminosity(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return nonSeparable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb rgb) rgb {
		return cb.withLum(cs.lum())
	})
}
