package alert

import (
	"fmt"
	"strconv"
	"strings"
)

// Criteria names the position row field a threshold is compared against. The
// values are the wire strings used in the "Delta Alerts" worksheet, so sheets
// written by earlier deployments keep loading.
type Criteria string

const (
	CriteriaUPNL      Criteria = "UPNL (USD)"
	CriteriaMarkPrice Criteria = "Mark Price"
)

// Condition is the comparison direction.
type Condition string

const (
	ConditionGTE Condition = ">="
	ConditionLTE Condition = "<="
)

// Status is the rule lifecycle state. Only Active rules are evaluated;
// Inactive rules stay persisted and can be reactivated.
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Rule is one user-defined threshold alert. Identity for duplicate detection
// is the (Symbol, Criteria, Condition, Threshold) tuple. Status is lifecycle
// state, not identity, and is the only field ever edited in place.
type Rule struct {
	Symbol    string    `json:"symbol"`
	Criteria  Criteria  `json:"criteria"`
	Condition Condition `json:"condition"`
	Threshold float64   `json:"threshold"`
	Status    Status    `json:"status"`
}

// Same reports whether two rules share the identity tuple.
func (r Rule) Same(other Rule) bool {
	return r.Symbol == other.Symbol &&
		r.Criteria == other.Criteria &&
		r.Condition == other.Condition &&
		r.Threshold == other.Threshold
}

// Validate enforces the mutation-boundary rules for submitted alerts.
func (r Rule) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return fmt.Errorf("alert symbol cannot be empty")
	}
	switch r.Criteria {
	case CriteriaUPNL, CriteriaMarkPrice:
	default:
		return fmt.Errorf("unknown criteria %q", string(r.Criteria))
	}
	switch r.Condition {
	case ConditionGTE, ConditionLTE:
	default:
		return fmt.Errorf("unknown condition %q", string(r.Condition))
	}
	if r.Threshold == 0 {
		return ErrZeroThreshold
	}
	return nil
}

// Message renders the outbound notification text for a fired rule.
func (r Rule) Message() string {
	return fmt.Sprintf("ALERT: %s %s %s %s",
		r.Symbol, r.Criteria, r.Condition, formatThreshold(r.Threshold))
}

func (r Rule) holds(value float64) bool {
	if r.Condition == ConditionGTE {
		return value >= r.Threshold
	}
	return value <= r.Threshold
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
