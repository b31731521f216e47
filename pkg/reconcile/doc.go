// Package reconcile mounts vdom trees on a surface and patches them.
//
// Patch compares an old, mounted tree with a new description and issues
// the smallest set of surface mutations that makes the surface match the
// new tree. Patching a tree against itself, or against an identical
// description, issues none.
//
//	r := reconcile.New(mem)
//	r.Render(tree, mem.Root(), 0)
//	r.Patch(tree, next, mem.Root())
//
// # Children
//
// Children without keys are patched by position. When every child has a
// key, the common head and tail are patched in place and the remaining
// window is matched by key; a longest increasing subsequence of the
// matched nodes stays in place and only the others move.
//
// # Reactive Parts
//
// Dynamic attributes and bound text are kept up to date by watchers.
// Components and blocks own an effect that re-renders them when what they
// read changes and patches their own subtree.
//
// A Reconciler is not safe for concurrent use; drive it, and the reactive
// values its trees read, from one goroutine.
package reconcile
