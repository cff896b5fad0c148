// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga_test

import (
	"testing"

	"code.hybscloud.com/saga"
)

// runEff evaluates an effect-free routine with the identity continuation.
func runEff[A any](m saga.Eff[A]) any {
	return m(func(a A) saga.Resumed { return a })
}

func TestPureRun(t *testing.T) {
	got := runEff(saga.Pure(42))
	if got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestPureRunString(t *testing.T) {
	got := runEff(saga.Pure("hello"))
	if got != "hello" {
		t.Fatalf("got %v, want %q", got, "hello")
	}
}

func TestBindSimple(t *testing.T) {
	m := saga.Pure(10)
	n := saga.Bind(m, func(x int) saga.Eff[int] {
		return saga.Pure(x * 2)
	})
	got := runEff(n)
	if got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestBindChain(t *testing.T) {
	m := saga.Pure(5)
	n := saga.Bind(m, func(x int) saga.Eff[int] {
		return saga.Bind(saga.Pure(x+1), func(y int) saga.Eff[int] {
			return saga.Pure(y * 2)
		})
	})
	got := runEff(n)
	if got != 12 {
		t.Fatalf("got %v, want 12", got)
	}
}

func TestBindLeftIdentity(t *testing.T) {
	// Bind(Pure(a), f) ≡ f(a)
	a := 7
	f := func(x int) saga.Eff[int] {
		return saga.Pure(x * 3)
	}

	left := runEff(saga.Bind(saga.Pure(a), f))
	right := runEff(f(a))

	if left != right {
		t.Fatalf("left identity failed: %v != %v", left, right)
	}
}

func TestBindRightIdentity(t *testing.T) {
	// Bind(m, Pure) ≡ m
	m := saga.Pure(42)

	left := runEff(saga.Bind(m, saga.Pure[int]))
	right := runEff(m)

	if left != right {
		t.Fatalf("right identity failed: %v != %v", left, right)
	}
}

func TestBindAssociativity(t *testing.T) {
	// Bind(Bind(m, f), g) ≡ Bind(m, func(x) Bind(f(x), g))
	m := saga.Pure(2)
	f := func(x int) saga.Eff[int] {
		return saga.Pure(x + 3)
	}
	g := func(x int) saga.Eff[int] {
		return saga.Pure(x * 2)
	}

	left := runEff(saga.Bind(saga.Bind(m, f), g))
	right := runEff(saga.Bind(m, func(x int) saga.Eff[int] {
		return saga.Bind(f(x), g)
	}))

	if left != right {
		t.Fatalf("associativity failed: %v != %v", left, right)
	}
}

func TestMap(t *testing.T) {
	m := saga.Pure(10)
	n := saga.Map(m, func(x int) int { return x * 3 })
	got := runEff(n)
	if got != 30 {
		t.Fatalf("got %v, want 30", got)
	}
}

func TestThen(t *testing.T) {
	m := saga.Pure(10)
	n := saga.Pure(20)
	got := runEff(saga.Then(m, n))
	if got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestSuspend(t *testing.T) {
	m := saga.Suspend[int](func(k func(int) saga.Resumed) saga.Resumed {
		return k(41)
	})
	got := runEff(saga.Map(m, func(x int) int { return x + 1 }))
	if got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestEffBindPure(t *testing.T) {
	comp := saga.Bind(
		saga.Pure[any](10),
		func(x any) saga.Eff[any] {
			return saga.Pure[any](x.(int) * 2)
		},
	)
	got := runEff(comp)
	if got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestStepOnPure(t *testing.T) {
	result, susp := saga.Step(saga.Pure[any](42))
	if susp != nil {
		t.Fatalf("Pure should not suspend")
	}
	if result != 42 {
		t.Fatalf("got %v, want 42", result)
	}
}
