package solver

import "math/bits"

// bitset is a fixed-size set of catalogue entries.
type bitset []uint64

func words(n int) int {
	return (n + 63) / 64
}

func (b bitset) set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b bitset) has(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

// fill sets entries [0, n) and clears the rest.
func (b bitset) fill(n int) {
	for w := range b {
		switch {
		case (w+1)*64 <= n:
			b[w] = ^uint64(0)
		case w*64 < n:
			b[w] = 1<<(uint(n)%64) - 1
		default:
			b[w] = 0
		}
	}
}

func (b bitset) and(o bitset) {
	for w := range b {
		b[w] &= o[w]
	}
}

func (b bitset) count() int {
	c := 0
	for _, w := range b {
		c += bits.OnesCount64(w)
	}
	return c
}

func (b bitset) empty() bool {
	for _, w := range b {
		if w != 0 {
			return false
		}
	}
	return true
}

// nth returns the k-th set entry in ascending order, or -1.
func (b bitset) nth(k int) int {
	for w, word := range b {
		c := bits.OnesCount64(word)
		if k >= c {
			k -= c
			continue
		}
		for ; k > 0; k-- {
			word &= word - 1
		}
		return w*64 + bits.TrailingZeros64(word)
	}
	return -1
}
