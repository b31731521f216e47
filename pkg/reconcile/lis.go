package reconcile

// longestIncreasing returns the indices of a longest strictly increasing
// subsequence of seq. Negative entries are skipped. It runs in
// O(n log n).
func longestIncreasing(seq []int) []int {
	prev := make([]int, len(seq))
	tails := make([]int, 0, len(seq))

	for i, v := range seq {
		if v < 0 {
			continue
		}
		if n := len(tails); n == 0 || seq[tails[n-1]] < v {
			if n > 0 {
				prev[i] = tails[n-1]
			}
			tails = append(tails, i)
			continue
		}
		lo, hi := 0, len(tails)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < seq[tails[lo]] {
			if lo > 0 {
				prev[i] = tails[lo-1]
			}
			tails[lo] = i
		}
	}

	if len(tails) == 0 {
		return nil
	}
	last := tails[len(tails)-1]
	for k := len(tails) - 1; k >= 0; k-- {
		tails[k] = last
		last = prev[last]
	}
	return tails
}

// longestIncreasingQuadratic is longestIncreasing for short sequences.
func longestIncreasingQuadratic(seq []int) []int {
	length := make([]int, len(seq))
	prev := make([]int, len(seq))
	best := -1
	for i, v := range seq {
		prev[i] = -1
		if v < 0 {
			continue
		}
		length[i] = 1
		for j := 0; j < i; j++ {
			if seq[j] >= 0 && seq[j] < v && length[j]+1 > length[i] {
				length[i] = length[j] + 1
				prev[i] = j
			}
		}
		if best < 0 || length[i] > length[best] {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	out := make([]int, length[best])
	for k, i := len(out)-1, best; k >= 0; k, i = k-1, prev[i] {
		out[k] = i
	}
	return out
}
