// Package shuffle provides seedable permutation and sampling helpers used
// by the drill generators.
package shuffle

import "time"

// rng is a Mulberry32 generator.
type rng struct {
	state uint32
}

// next advances the generator one step and returns a float in [0, 1).
func (r *rng) next() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296
}

// Shuffle returns a permuted copy of items seeded from the current time in
// milliseconds.
func Shuffle[T any](items []T) []T {
	return ShuffleSeeded(items, uint32(time.Now().UnixMilli()))
}

// ShuffleSeeded returns a permuted copy of items. The same seed always yields
// the same permutation. items is not modified.
func ShuffleSeeded[T any](items []T, seed uint32) []T {
	out := make([]T, len(items))
	copy(out, items)

	r := &rng{state: seed}
	for i := len(out) - 1; i > 0; i-- {
		j := int(r.next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// SelectRandom returns count distinct elements of items in random order.
// When count covers the whole input it returns a full shuffle.
func SelectRandom[T any](items []T, count int) []T {
	if count >= len(items) {
		return Shuffle(items)
	}
	if count <= 0 {
		return []T{}
	}
	return Shuffle(items)[:count]
}

// Pick returns one random element of items, or false when items is empty.
func Pick[T any](items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return Shuffle(items)[0], true
}
