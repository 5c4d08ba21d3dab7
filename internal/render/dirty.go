package render

import "github.com/isorpg/fxengine/internal/geom"

// DirtyTracker accumulates screen regions that need repainting. Effects
// append during the frame; the render system drains once per frame.
type DirtyTracker struct {
	rects []geom.Rect
	all   bool
}

func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{rects: make([]geom.Rect, 0, 64)}
}

// Add records r. Empty rectangles are dropped.
func (d *DirtyTracker) Add(r geom.Rect) {
	if r.Empty() || d.all {
		return
	}
	d.rects = append(d.rects, r)
}

// SetAll marks the whole screen dirty.
func (d *DirtyTracker) SetAll() {
	d.all = true
	d.rects = d.rects[:0]
}

// Dirty reports whether anything needs repainting.
func (d *DirtyTracker) Dirty() bool {
	return d.all || len(d.rects) > 0
}

// Len returns the number of pending rectangles.
func (d *DirtyTracker) Len() int { return len(d.rects) }

// Drain returns the union of pending regions (or the full screen) and resets.
func (d *DirtyTracker) Drain(screen geom.Rect) geom.Rect {
	defer func() {
		d.all = false
		d.rects = d.rects[:0]
	}()
	if d.all {
		return screen
	}
	var u geom.Rect
	for _, r := range d.rects {
		u = u.Union(r)
	}
	return u.Intersect(screen)
}
