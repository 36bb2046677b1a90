package image

import (
	"image"
	"sync"
)

// Pool reuses RGBA buffers of identical dimensions.
// The warp engine allocates a 2w x 2h scratch buffer per call, and rendering
// a composition repeatedly with the same inputs hits the same sizes.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[image.Point][]*image.RGBA
	maxSize int // max buffers per bucket, 0 means unlimited
}

// NewPool creates a pool retaining at most maxPerBucket buffers per size.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[image.Point][]*image.RGBA),
		maxSize: maxPerBucket,
	}
}

// Get returns a cleared width x height buffer, reusing a pooled one if any.
// Callers validate dimensions; see New.
func (p *Pool) Get(width, height int) *image.RGBA {
	key := image.Pt(width, height)

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		buf := bucket[n-1]
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		Clear(buf)
		return buf
	}
	p.mu.Unlock()

	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Put hands buf back to the pool. The caller must not use it afterwards.
func (p *Pool) Put(buf *image.RGBA) {
	if IsEmpty(buf) || buf.Rect.Min != (image.Point{}) {
		return
	}
	key := buf.Rect.Size()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

var defaultPool = NewPool(8)

// Get retrieves a buffer from the default pool.
func Get(width, height int) *image.RGBA {
	return defaultPool.Get(width, height)
}

// Put returns a buffer to the default pool.
func Put(buf *image.RGBA) {
	defaultPool.Put(buf)
}
