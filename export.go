package effectpic

import (
	"bytes"
	"image"
	"io"

	"golang.org/x/image/draw"

	imgutil "github.com/gogpu/effectpic/internal/image"
)

// Result returns the output canvas. Its content is meaningful after a
// successful Combine and must not be read while Combine runs.
func (c *Composition) Result() *image.RGBA {
	return c.out
}

// Combined reports whether the output holds a combine that has not been
// invalidated by ClearCache.
func (c *Composition) Combined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.combined
}

// EncodePNG writes the output as PNG. Before Combine it logs a warning and
// writes nothing.
func (c *Composition) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.combined {
		c.logger.Warn("effectpic: please call Combine first", "composition", c.name)
		return nil
	}
	return imgutil.EncodePNG(w, c.out)
}

// ResultPNG returns the output encoded as PNG, or nil before Combine.
func (c *Composition) ResultPNG() []byte {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		c.logger.Warn("effectpic: encode result", "composition", c.name, "error", err)
		return nil
	}
	if buf.Len() == 0 {
		return nil
	}
	return buf.Bytes()
}

// ResultDataURL returns the output as a base64 PNG data URL, or "" before
// Combine.
func (c *Composition) ResultDataURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.combined {
		c.logger.Warn("effectpic: please call Combine first", "composition", c.name)
		return ""
	}
	url, err := imgutil.DataURL(c.out)
	if err != nil {
		c.logger.Warn("effectpic: encode result", "composition", c.name, "error", err)
		return ""
	}
	return url
}

// ShowResult replaces the content of dst with the output scaled to dst's
// bounds. It reports false, leaving dst untouched, when dst is nil or
// Combine has not run.
func (c *Composition) ShowResult(dst draw.Image) bool {
	if dst == nil {
		c.logger.Warn("effectpic: no display target", "composition", c.name)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.combined {
		c.logger.Warn("effectpic: please call Combine first", "composition", c.name)
		return false
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), c.out, c.out.Bounds(), draw.Src, nil)
	return true
}
