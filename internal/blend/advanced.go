package blend

import "math"

// separable composites with a per-channel blend function B applied to straight
// (unpremultiplied) colour:
//
//	Co = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Cs, Cb)
//	Ao = Sa + Da*(1 - Sa)
func separable(sr, sg, sb, sa, dr, dg, db, da byte, b func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}
	return mix(sr, sg, sb, sa, dr, dg, db, da,
		b(unpremul(sr, sa), unpremul(dr, da)),
		b(unpremul(sg, sa), unpremul(dg, da)),
		b(unpremul(sb, sa), unpremul(db, da)))
}

// mix applies the W3C compositing formula given an already blended straight colour.
func mix(sr, sg, sb, sa, dr, dg, db, da, br, bg, bb byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	a := addClamp(sa, mulDiv255(da, invSa))
	r := addClamp(addClamp(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, br))
	g := addClamp(addClamp(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, bg))
	b := addClamp(addClamp(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, bb))

	// Rounding in the three terms may push a channel past alpha.
	return minByte(r, a), minByte(g, a), minByte(b, a), a
}

// blendMultiply darkens: B = Cs * Cb. The default operation for custom layers.
func blendMultiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

func blendScreen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, screen)
}

func screen(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// hardLight returns Multiply(Cb, 2Cs) or Screen(Cb, 2Cs-1).
func hardLight(s, d byte) byte {
	if s <= 127 {
		return clampInt(int(s) * 2 * int(d) / 255)
	}
	s2 := int(s)*2 - 255
	return clampInt(int(d) + s2 - int(d)*s2/255)
}

func blendOverlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return hardLight(d, s)
	})
}

func blendHardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, hardLight)
}

func blendDarken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, minByte)
}

func blendLighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, maxByte)
}

// blendColorDodge: B = min(1, Cb / (1 - Cs)), 0 when Cb is 0.
func blendColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 0 {
			return 0
		}
		if s == 255 {
			return 255
		}
		return clampInt(int(d) * 255 / int(255-s))
	})
}

// blendColorBurn: B = 1 - min(1, (1 - Cb) / Cs), 1 when Cb is 1.
func blendColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if d == 255 {
			return 255
		}
		if s == 0 {
			return 0
		}
		return 255 - clampInt(int(255-d)*255/int(s))
	})
}

func blendSoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		cs := float64(s) / 255
		cb := float64(d) / 255

		var res float64
		if cs <= 0.5 {
			res = cb - (1-2*cs)*cb*(1-cb)
		} else {
			var dx float64
			if cb <= 0.25 {
				dx = ((16*cb-12)*cb + 4) * cb
			} else {
				dx = math.Sqrt(cb)
			}
			res = cb + (2*cs-1)*(dx-cb)
		}
		return unitToByte(res)
	})
}

func blendDifference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		if s > d {
			return s - d
		}
		return d - s
	})
}

// blendExclusion: B = Cb + Cs - 2CbCs.
func blendExclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(s, d byte) byte {
		return clampInt(int(s) + int(d) - 2*int(mulDiv255(s, d)))
	})
}

func clampInt(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func unitToByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
