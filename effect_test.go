// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package saga_test

import (
	"strings"
	"testing"

	"code.hybscloud.com/saga"
	"github.com/stretchr/testify/require"
)

func TestEffectVariantString(t *testing.T) {
	cases := map[saga.Variant]string{
		saga.VariantBroadcast:    "Broadcast",
		saga.VariantReceive:      "Receive",
		saga.VariantCall:         "Call",
		saga.VariantCallFork:     "CallFork",
		saga.VariantCallBlocking: "CallBlocking",
		saga.VariantFirst:        "First",
		saga.VariantCancel:       "Cancel",
		saga.VariantWrapper:      "Wrapper",
		saga.VariantIntercept:    "Intercept",
		saga.VariantDebugTree:    "DebugTree",
	}
	for v, want := range cases {
		require.Equal(t, want, v.String())
	}
}

func TestBroadcastCapturesCallerFrame(t *testing.T) {
	op := saga.Broadcast("k", 5, true)
	require.Equal(t, saga.VariantBroadcast, op.Variant)
	require.Contains(t, op.CallerFrame, "effect_test.go")
}

func TestReceivePredicateDefault(t *testing.T) {
	op := saga.Receive("k", nil)
	require.Nil(t, op.Predicate, "expected nil predicate to mean match-all")
}

func TestWrapperOverridesNameKeepsInner(t *testing.T) {
	inner := saga.Broadcast("k", 1, false)
	wrapped := saga.Wrapper(inner, "custom-name")
	require.Equal(t, "custom-name", wrapped.Name)
	require.Equal(t, saga.VariantBroadcast, wrapped.Inner.Variant, "inner variant lost")
}

// TestPerformSuspendsAndResumes exercises the Step/Suspension boundary in
// isolation, with no Engine involved: a routine performs one effect, and
// resuming its suspension with a value lets it return.
func TestPerformSuspendsAndResumes(t *testing.T) {
	routine := saga.Bind(
		saga.Perform(saga.Broadcast("k", 1, true)),
		func(v any) saga.Eff[any] {
			return saga.Pure[any](v)
		},
	)

	result, susp := saga.Step(routine)
	require.Nil(t, result, "expected suspension")
	require.NotNil(t, susp)
	require.Equal(t, saga.VariantBroadcast, susp.Op().Variant)

	final, next := susp.Resume("resumed-value")
	require.Nil(t, next, "expected completion")
	require.Equal(t, "resumed-value", final)
}

func TestSuspensionDoubleResumePanics(t *testing.T) {
	_, susp := saga.Step(saga.Perform(saga.DebugTree()))
	require.NotNil(t, susp)
	susp.Resume("tree")

	require.Panics(t, func() { susp.Resume("tree-again") })
}

func TestSuspensionTryResumeAfterUse(t *testing.T) {
	_, susp := saga.Step(saga.Perform(saga.DebugTree()))
	require.NotNil(t, susp)

	_, _, ok := susp.TryResume("tree")
	require.True(t, ok, "first TryResume should succeed")

	_, _, ok = susp.TryResume("tree-again")
	require.False(t, ok, "second TryResume should fail")
}
