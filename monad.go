// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// Monad operations for routines.
//
// Minimal definition: Pure (unit) and Bind are necessary and sufficient.
// Map and Then are derived operations kept as optimizations to avoid
// intermediate closure allocations.

// Bind sequences two routines (monadic bind).
// It runs m, then passes the result to f to get a new routine.
func Bind[A, B any](m Eff[A], f func(A) Eff[B]) Eff[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return f(a)(k)
		})
	}
}

// Map applies a pure function to the result of a routine.
//
// Allocation note: Map is equivalent to Bind(m, compose(Pure, f)) but
// avoids the intermediate Pure closure, making it the preferred choice
// when the transformation is pure (does not produce effects).
func Map[A, B any](m Eff[A], f func(A) B) Eff[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(a A) Resumed {
			return k(f(a))
		})
	}
}

// Then sequences two routines, discarding the first result.
// This is more efficient than Bind when the second routine
// does not depend on the first result.
//
// Allocation note: Then avoids the closure capture of a transformation
// function that would occur with Bind(m, func(_ A) { return n }).
func Then[A, B any](m Eff[A], n Eff[B]) Eff[B] {
	return func(k func(B) Resumed) Resumed {
		return m(func(_ A) Resumed {
			return n(k)
		})
	}
}
