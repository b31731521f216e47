package vtest

import (
	"fmt"
	"strings"
	"testing"

	jsonpatch "github.com/evanphx/json-patch"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/vango-dev/lux/pkg/surface"
)

// Diff returns a readable character diff from want to got: deletions
// are shown as [-text-] and insertions as {+text+}.
func Diff(want, got string) string {
	dmp := diffpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffDelete:
			fmt.Fprintf(&b, "[-%s-]", d.Text)
		case diffpatch.DiffInsert:
			fmt.Fprintf(&b, "{+%s+}", d.Text)
		case diffpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// ExpectSnapshotJSON asserts that the JSON snapshot of the memory surface
// is equal to want, ignoring formatting and key order.
func ExpectSnapshotJSON(t testing.TB, mem *surface.Memory, want string) {
	t.Helper()
	got, err := mem.SnapshotJSON()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
		return
	}
	if jsonpatch.Equal([]byte(want), got) {
		return
	}
	delta, err := jsonpatch.CreateMergePatch([]byte(want), got)
	if err != nil {
		t.Errorf("snapshot mismatch:\nwant: %s\ngot:  %s", want, got)
		return
	}
	t.Errorf("snapshot mismatch, merge patch from want to got:\n%s", delta)
}
