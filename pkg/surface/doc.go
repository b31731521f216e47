// Package surface defines the display surface the reconciler writes to,
// and an in-memory implementation of it.
//
// A surface owns display units (elements, text and comments) addressed
// by Handle. The reconciler never reads from the surface; it only issues
// the mutations below, so a surface can record them, replay them, or
// forward them over a connection.
//
//	mem := surface.NewMemory()
//	h := mem.CreateUnit(surface.UnitElement, "p")
//	mem.InsertAfter(mem.Root(), 0, h)
//	mem.HTML() // "<p></p>"
//
// Memory records every mutation as an Op, which makes it the reference
// surface for tests and for counting how much work a patch did.
package surface
