package image

import (
	"image"
	"math"
)

// MipmapChain holds successively halved copies of an image.
// Level 0 is the original and is never copied or released.
type MipmapChain struct {
	levels []*image.RGBA
}

// GenerateMipmaps builds a chain with a 2x2 box filter until the larger side
// reaches one pixel. Returns nil for an empty source.
func GenerateMipmaps(src *image.RGBA) *MipmapChain {
	if IsEmpty(src) {
		return nil
	}
	maxDim := max(src.Rect.Dx(), src.Rect.Dy())
	n := 1 + int(math.Floor(math.Log2(float64(maxDim))))

	chain := &MipmapChain{levels: make([]*image.RGBA, n)}
	chain.levels[0] = src
	for i := 1; i < n; i++ {
		chain.levels[i] = downsample(chain.levels[i-1])
	}
	return chain
}

func downsample(src *image.RGBA) *image.RGBA {
	srcW, srcH := src.Rect.Dx(), src.Rect.Dy()
	dstW := max(1, srcW/2)
	dstH := max(1, srcH/2)
	dst := defaultPool.Get(dstW, dstH)

	for dy := 0; dy < dstH; dy++ {
		sy0 := min(dy*2, srcH-1)
		sy1 := min(dy*2+1, srcH-1)
		for dx := 0; dx < dstW; dx++ {
			sx0 := min(dx*2, srcW-1)
			sx1 := min(dx*2+1, srcW-1)
			p00 := src.Pix[sy0*src.Stride+sx0*4:]
			p10 := src.Pix[sy0*src.Stride+sx1*4:]
			p01 := src.Pix[sy1*src.Stride+sx0*4:]
			p11 := src.Pix[sy1*src.Stride+sx1*4:]
			o := dst.Pix[dy*dst.Stride+dx*4:]
			for c := 0; c < 4; c++ {
				o[c] = byte((uint16(p00[c]) + uint16(p10[c]) + uint16(p01[c]) + uint16(p11[c]) + 2) / 4)
			}
		}
	}
	return dst
}

// Level returns level n, or nil when n is out of range.
func (m *MipmapChain) Level(n int) *image.RGBA {
	if m == nil || n < 0 || n >= len(m.levels) {
		return nil
	}
	return m.levels[n]
}

// NumLevels returns the number of levels in the chain.
func (m *MipmapChain) NumLevels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// LevelIndex returns floor(-log2(scale)) clamped to the chain, where scale is
// displayed size over original size. Magnified draws use level 0.
func (m *MipmapChain) LevelIndex(scale float64) int {
	if m == nil || len(m.levels) == 0 || scale >= 1 || scale <= 0 || math.IsNaN(scale) {
		return 0
	}
	return clamp(int(math.Floor(-math.Log2(scale))), 0, len(m.levels)-1)
}

// LevelForScale returns the level suited to drawing at scale.
func (m *MipmapChain) LevelForScale(scale float64) *image.RGBA {
	return m.Level(m.LevelIndex(scale))
}

// Release returns every level but the original to the buffer pool.
// The chain must not be used afterwards.
func (m *MipmapChain) Release() {
	if m == nil {
		return
	}
	for i := 1; i < len(m.levels); i++ {
		defaultPool.Put(m.levels[i])
		m.levels[i] = nil
	}
}
