package alert

import (
	"context"

	"deltawatch/internal/logger"
	"deltawatch/internal/position"
)

// Notifier delivers fired alerts to the outbound channel.
type Notifier interface {
	SendText(ctx context.Context, text string) error
}

// Evaluator checks every active rule against the cycle's position table and
// pushes a notification for each one whose condition holds.
type Evaluator struct {
	store    *Store
	notifier Notifier
}

func NewEvaluator(store *Store, notifier Notifier) *Evaluator {
	return &Evaluator{store: store, notifier: notifier}
}

// Evaluate runs one pass over the rules. A rule that stays true fires again
// on the next cycle; there is no suppression window. Rules whose symbol is
// not in the table, or whose criteria value never resolved, are skipped.
// Delivery failures are logged and swallowed. Returns the rules that fired.
func (e *Evaluator) Evaluate(ctx context.Context, table *position.Table) []Rule {
	var fired []Rule
	for _, rule := range e.store.Rules() {
		if rule.Status != StatusActive {
			continue
		}
		row, ok := table.Lookup(rule.Symbol)
		if !ok {
			continue
		}
		value := criteriaValue(row, rule.Criteria)
		if value == nil {
			continue
		}
		if !rule.holds(*value) {
			continue
		}
		fired = append(fired, rule)
		if e.notifier == nil {
			continue
		}
		if err := e.notifier.SendText(ctx, rule.Message()); err != nil {
			logger.Warnf("alert notification failed: %v", err)
		}
	}
	return fired
}

// criteriaValue reads the row field named by the criteria; nil when the row
// never resolved that value.
func criteriaValue(row position.Row, c Criteria) *float64 {
	switch c {
	case CriteriaUPNL:
		return row.UPNL
	case CriteriaMarkPrice:
		return row.MarkPrice
	default:
		return nil
	}
}
