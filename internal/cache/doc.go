// Package cache provides the keyed store behind the compositor's rendered
// layers and default warp grids.
//
// Cache[K, V] is safe for concurrent use. With a limit of 0 it never evicts,
// so a layer stays until it is overwritten or the cache is cleared. A
// positive limit turns it into an LRU cache; the compositor bounds its
// rendered layers this way when asked to, since a dropped layer can be
// rendered again.
//
//	layers := cache.New[string, *image.RGBA](0)
//	layers.Set("shirt", img)
//	img, ok := layers.Get("shirt")
package cache
