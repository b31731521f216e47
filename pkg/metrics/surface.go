package metrics

import (
	"github.com/vango-dev/lux/pkg/surface"
)

// Surface wraps s so that every mutation is counted.
func (m *Metrics) Surface(s surface.Surface) surface.Surface {
	return &countingSurface{Surface: s, m: m}
}

type countingSurface struct {
	surface.Surface
	m *Metrics
}

func (c *countingSurface) count(op string) {
	c.m.surfaceOps.WithLabelValues(op).Inc()
}

func (c *countingSurface) CreateUnit(kind surface.UnitKind, data string) surface.Handle {
	c.count("create")
	return c.Surface.CreateUnit(kind, data)
}

func (c *countingSurface) SetAttribute(h surface.Handle, name, value string) {
	c.count("set_attr")
	c.Surface.SetAttribute(h, name, value)
}

func (c *countingSurface) RemoveAttribute(h surface.Handle, name string) {
	c.count("remove_attr")
	c.Surface.RemoveAttribute(h, name)
}

func (c *countingSurface) InsertAfter(parent, ref, h surface.Handle) {
	c.count("insert")
	c.Surface.InsertAfter(parent, ref, h)
}

func (c *countingSurface) RemoveUnit(h surface.Handle) {
	c.count("remove")
	c.Surface.RemoveUnit(h)
}

func (c *countingSurface) SetTextContent(h surface.Handle, text string) {
	c.count("set_text")
	c.Surface.SetTextContent(h, text)
}

func (c *countingSurface) Listen(h surface.Handle, event string, fn surface.Listener) {
	c.count("listen")
	c.Surface.Listen(h, event, fn)
}

func (c *countingSurface) Unlisten(h surface.Handle, event string) {
	c.count("unlisten")
	c.Surface.Unlisten(h, event)
}
