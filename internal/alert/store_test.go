package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records the last written grid and serves a canned read.
type fakeBackend struct {
	rows    [][]string
	readErr error

	written  [][]string
	writeErr error
	writes   int
}

func (f *fakeBackend) Read(context.Context) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows, nil
}

func (f *fakeBackend) Write(_ context.Context, rows [][]string) error {
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = rows
	return nil
}

func TestStoreSaveThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	store := NewStore(backend)

	require.NoError(t, store.Add(ctx, Rule{
		Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100,
	}))
	require.NoError(t, store.Add(ctx, Rule{
		Symbol: "ETHUSD", Criteria: CriteriaMarkPrice, Condition: ConditionLTE, Threshold: 2500.5,
	}))
	require.NoError(t, store.SetStatus(ctx, Rule{
		Symbol: "ETHUSD", Criteria: CriteriaMarkPrice, Condition: ConditionLTE, Threshold: 2500.5,
	}, StatusInactive))

	// The written grid starts with the header row.
	require.NotEmpty(t, backend.written)
	assert.Equal(t, []string{"Symbol", "Criteria", "Condition", "Threshold", "Status"}, backend.written[0])
	assert.Equal(t, []string{"ETHUSD", "Mark Price", "<=", "2500.5", "Inactive"}, backend.written[2])

	// A fresh store loading that grid reproduces the rules; the header row
	// drops out because its threshold does not parse.
	fresh := NewStore(&fakeBackend{rows: backend.written})
	require.NoError(t, fresh.Load(ctx))
	rules := fresh.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, StatusActive, rules[0].Status)
	assert.Equal(t, StatusInactive, rules[1].Status)
	assert.Equal(t, 2500.5, rules[1].Threshold)
}

func TestStoreLoadSkipsMalformedRows(t *testing.T) {
	backend := &fakeBackend{rows: [][]string{
		{"Symbol", "Criteria", "Condition", "Threshold", "Status"},
		{"BTCUSD", "UPNL (USD)", ">=", "100", "Active"},
		{"", "UPNL (USD)", ">=", "100", "Active"},
		{"ETHUSD", "Mark Price", "<="},
		{"ETHUSD", "Mark Price", "<=", "not-a-number", "Active"},
		{"ETHUSD", "Mark Price", "<=", "2500", "nonsense-status"},
	}}
	store := NewStore(backend)
	require.NoError(t, store.Load(context.Background()))

	rules := store.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "BTCUSD", rules[0].Symbol)
	// Unrecognized status defaults to Active.
	assert.Equal(t, StatusActive, rules[1].Status)
}

func TestStoreLoadFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	store := NewStore(backend)
	require.NoError(t, store.Add(ctx, Rule{
		Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100,
	}))

	backend.readErr = errors.New("quota exceeded")
	err := store.Load(ctx)
	require.Error(t, err)
	assert.Len(t, store.Rules(), 1)
}

func TestStoreAddRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})
	rule := Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100}
	require.NoError(t, store.Add(ctx, rule))

	// Identity ignores status: deactivating does not free the slot.
	require.NoError(t, store.SetStatus(ctx, rule, StatusInactive))
	err := store.Add(ctx, rule)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, store.Rules(), 1)

	// A different threshold is a different rule.
	other := rule
	other.Threshold = 200
	assert.NoError(t, store.Add(ctx, other))
}

func TestStoreAddValidation(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})

	err := store.Add(ctx, Rule{Symbol: " ", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 1})
	assert.Error(t, err)

	err = store.Add(ctx, Rule{Symbol: "BTCUSD", Criteria: "Volume", Condition: ConditionGTE, Threshold: 1})
	assert.Error(t, err)

	err = store.Add(ctx, Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ">", Threshold: 1})
	assert.Error(t, err)

	err = store.Add(ctx, Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 0})
	assert.ErrorIs(t, err, ErrZeroThreshold)

	assert.Empty(t, store.Rules())
}

func TestStoreAddForcesActiveStatus(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})
	require.NoError(t, store.Add(ctx, Rule{
		Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100,
		Status: StatusInactive,
	}))
	assert.Equal(t, StatusActive, store.Rules()[0].Status)
}

func TestStoreAddKeepsRuleWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{writeErr: errors.New("write refused")}
	store := NewStore(backend)

	err := store.Add(ctx, Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100})
	require.Error(t, err)
	assert.Len(t, store.Rules(), 1)
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})
	rule := Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100}
	require.NoError(t, store.Add(ctx, rule))

	assert.ErrorIs(t, store.Remove(ctx, Rule{
		Symbol: "ETHUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100,
	}), ErrNotFound)

	require.NoError(t, store.Remove(ctx, rule))
	assert.Empty(t, store.Rules())
}

func TestStoreSetStatusUnknownTarget(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})
	rule := Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100}
	require.NoError(t, store.Add(ctx, rule))

	assert.Error(t, store.SetStatus(ctx, rule, "Paused"))
	assert.ErrorIs(t, store.SetStatus(ctx, Rule{
		Symbol: "ETHUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100,
	}, StatusInactive), ErrNotFound)
}

func TestPartition(t *testing.T) {
	ctx := context.Background()
	store := NewStore(&fakeBackend{})
	a := Rule{Symbol: "BTCUSD", Criteria: CriteriaUPNL, Condition: ConditionGTE, Threshold: 100}
	b := Rule{Symbol: "ETHUSD", Criteria: CriteriaMarkPrice, Condition: ConditionLTE, Threshold: 2500}
	require.NoError(t, store.Add(ctx, a))
	require.NoError(t, store.Add(ctx, b))
	require.NoError(t, store.SetStatus(ctx, b, StatusInactive))

	active, inactive := store.Partition()
	require.Len(t, active, 1)
	require.Len(t, inactive, 1)
	assert.Equal(t, "BTCUSD", active[0].Symbol)
	assert.Equal(t, "ETHUSD", inactive[0].Symbol)
}
