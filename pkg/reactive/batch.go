package reactive

// Batch runs fn and defers notifications until the outermost batch
// returns. Each subscriber affected by the batched writes then runs once.
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
//
// Batches nest; only the outermost one flushes.
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++

	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth == 0 {
			pending := ctx.pending
			ctx.pending = nil
			if len(pending) > 0 {
				flush(pending)
			}
			releaseTrackingContext()
		}
	}()

	fn()
}

// InBatch reports whether the current goroutine is inside a Batch.
func InBatch() bool {
	return getTrackingContext().batchDepth > 0
}
