package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"deltawatch/internal/alert"
	"deltawatch/internal/logger"
	"deltawatch/internal/position"
)

// Exchange is the read-only slice of the Delta API the monitor needs.
type Exchange interface {
	Positions(ctx context.Context) ([]gjson.Result, error)
	Tickers(ctx context.Context) ([]gjson.Result, error)
}

// SheetProber checks that the rule spreadsheet is reachable.
type SheetProber interface {
	Title(ctx context.Context) (string, error)
}

// CallStatus records the outcome of one upstream call within a cycle.
type CallStatus struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Snapshot is the result of the most recent monitoring cycle.
type Snapshot struct {
	CycleID  string                  `json:"cycle_id"`
	At       time.Time               `json:"at"`
	Rows     []position.FormattedRow `json:"rows"`
	Active   []alert.Rule            `json:"active_alerts"`
	Inactive []alert.Rule            `json:"inactive_alerts"`
	Fired    []alert.Rule            `json:"fired"`
	Calls    []CallStatus            `json:"calls"`
}

// Monitor runs the fetch → valuate → evaluate cycle and serves the results.
// Cycles never overlap; alert mutations trigger an immediate extra cycle so
// the sheet and the snapshot reflect the change right away.
type Monitor struct {
	exchange  Exchange
	store     *alert.Store
	evaluator *alert.Evaluator
	prober    SheetProber

	runMu  sync.Mutex
	snapMu sync.RWMutex
	snap   Snapshot
}

func New(exchange Exchange, store *alert.Store, evaluator *alert.Evaluator, prober SheetProber) *Monitor {
	return &Monitor{
		exchange:  exchange,
		store:     store,
		evaluator: evaluator,
		prober:    prober,
	}
}

// RunCycle executes one full monitoring pass. Upstream failures degrade the
// cycle instead of aborting it: a failed call leaves an empty slice and a
// CallStatus entry, and the rest of the cycle still runs.
func (m *Monitor) RunCycle(ctx context.Context) Snapshot {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	cycleID := uuid.NewString()[:8]
	calls := make([]CallStatus, 0, 3)

	positions, err := m.exchange.Positions(ctx)
	calls = append(calls, callStatus("positions", err))
	if err != nil {
		logger.Warnf("[%s] fetching positions failed: %v", cycleID, err)
		positions = nil
	}

	tickers, err := m.exchange.Tickers(ctx)
	calls = append(calls, callStatus("tickers", err))
	if err != nil {
		logger.Warnf("[%s] fetching tickers failed: %v", cycleID, err)
		tickers = nil
	}

	if err := m.store.Load(ctx); err != nil {
		calls = append(calls, callStatus("sheet_load", err))
		logger.Warnf("[%s] loading alert rules failed, keeping current set: %v", cycleID, err)
	} else {
		calls = append(calls, callStatus("sheet_load", nil))
	}

	index := position.BuildIndexMap(tickers)
	table := position.BuildTable(positions, index)
	fired := m.evaluator.Evaluate(ctx, table)
	active, inactive := m.store.Partition()

	snap := Snapshot{
		CycleID:  cycleID,
		At:       time.Now().UTC(),
		Rows:     table.Format(),
		Active:   active,
		Inactive: inactive,
		Fired:    fired,
		Calls:    calls,
	}

	m.snapMu.Lock()
	m.snap = snap
	m.snapMu.Unlock()

	logger.Debugf("[%s] cycle done: %d positions, %d active rules, %d fired",
		cycleID, len(snap.Rows), len(active), len(fired))
	return snap
}

// Snapshot returns the latest cycle result.
func (m *Monitor) Snapshot() Snapshot {
	m.snapMu.RLock()
	defer m.snapMu.RUnlock()
	return m.snap
}

// RunNow forces an immediate cycle, outside the scheduled cadence.
func (m *Monitor) RunNow(ctx context.Context) Snapshot {
	return m.RunCycle(ctx)
}

// AddAlert registers a new rule and runs a cycle so it takes effect at once.
func (m *Monitor) AddAlert(ctx context.Context, rule alert.Rule) error {
	if err := m.store.Add(ctx, rule); err != nil {
		return err
	}
	m.RunCycle(ctx)
	return nil
}

// SetAlertStatus flips a rule between Active and Inactive.
func (m *Monitor) SetAlertStatus(ctx context.Context, rule alert.Rule, status alert.Status) error {
	if err := m.store.SetStatus(ctx, rule, status); err != nil {
		return err
	}
	m.RunCycle(ctx)
	return nil
}

// RemoveAlert deletes a rule.
func (m *Monitor) RemoveAlert(ctx context.Context, rule alert.Rule) error {
	if err := m.store.Remove(ctx, rule); err != nil {
		return err
	}
	m.RunCycle(ctx)
	return nil
}

// SyncFromSheet reloads the rule set from the spreadsheet.
func (m *Monitor) SyncFromSheet(ctx context.Context) error {
	return m.store.Load(ctx)
}

// SyncToSheet rewrites the spreadsheet from the in-memory rule set.
func (m *Monitor) SyncToSheet(ctx context.Context) error {
	return m.store.Save(ctx)
}

// SheetStatus probes spreadsheet access and returns its title.
func (m *Monitor) SheetStatus(ctx context.Context) (string, error) {
	if m.prober == nil {
		return "", fmt.Errorf("no sheet prober configured")
	}
	return m.prober.Title(ctx)
}

func callStatus(name string, err error) CallStatus {
	if err != nil {
		return CallStatus{Name: name, OK: false, Error: err.Error()}
	}
	return CallStatus{Name: name, OK: true}
}
