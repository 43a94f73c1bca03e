// Package testing provides test infrastructure for pool engine scenarios.
//
// It gives tests a deterministic environment in the spirit of a ledger
// test harness: named accounts, an in-memory or disk-backed state store,
// an engine wired to an event recorder, and operation builders that can
// be submitted and checked.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: an engine over a fresh state store with recorded events
//   - Account: deterministic test accounts derived from a name
//   - Amount helpers: whole-token amounts at a fixed decimal scale
//   - Op and Result: submitted operations and what they produced
//   - Assertions: balance, reserve, event and error checks
//
// Operation builders for two-asset pools live in testing/amm and the
// batch pool builders in testing/batch.
//
// # Basic Usage
//
//	func TestCreate(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//	    alice := jtx.NewAccount("alice")
//
//	    env.Fund(usd, jtx.Tokens(1000), alice)
//	    env.Fund(eur, jtx.Tokens(1000), alice)
//
//	    result := env.Submit(amm.Create(alice, usd, eur).Build())
//	    jtx.RequireSuccess(t, result)
//	}
//
// # TestEnv
//
// TestEnv owns the engine, the store and the recorder. Events recorded by
// a submitted operation are attached to its Result; env.Events returns
// everything recorded since the last ResetEvents.
//
//	env := jtx.NewTestEnv(t)                  // memory store
//	env := jtx.NewTestEnvBacked(t, "pebble")  // store on disk under t.TempDir()
//	env.Balance(alice, usd)
//	env.Supply(lp)
//
// # Assertions
//
//	jtx.RequireSuccess(t, result)
//	jtx.RequireFail(t, result, coreamm.ErrInsufficientOutputAmount)
//	jtx.RequireBalance(t, env, alice, usd, jtx.Tokens(900))
//	jtx.RequireKinds(t, result, events.KindSync, events.KindSwap)
package testing
