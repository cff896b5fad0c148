// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga

// Resumed is the type of values flowing through effect suspension and
// resumption. The engine's waiter table and bridge deliver Resumed values
// back into parked strands.
type Resumed = any

// Eff is a suspendable routine in continuation-passing style: a computation
// that produces a value of type A, suspending zero or more times via
// Perform along the way. This is the contract the engine requires of user
// routines.
//
// The function receives a continuation k representing "the rest of the
// routine". Applying k to a value of type A produces the final Resumed
// result the engine steps over.
type Eff[A any] func(k func(A) Resumed) Resumed

// Pure lifts a plain value into a routine that performs no effects.
// The resulting routine immediately passes the value to its continuation.
func Pure[A any](a A) Eff[A] {
	return func(k func(A) Resumed) Resumed {
		return k(a)
	}
}

// Suspend creates a routine from a CPS function. Primitive constructor for
// routines that need direct access to the continuation.
func Suspend[A any](f func(func(A) Resumed) Resumed) Eff[A] {
	return Eff[A](f)
}
