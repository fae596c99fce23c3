package alert

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Header row written ahead of the rules in the worksheet. On load it is not
// special-cased: its threshold cell never parses, so it is skipped like any
// other malformed row.
var sheetHeader = []string{"Symbol", "Criteria", "Condition", "Threshold", "Status"}

var (
	// ErrDuplicate rejects a rule whose identity tuple already exists,
	// whatever the status of the existing rule.
	ErrDuplicate = errors.New("identical alert already exists")
	// ErrZeroThreshold rejects thresholds of exactly zero.
	ErrZeroThreshold = errors.New("alert threshold must be non-zero")
	// ErrNotFound reports a mutation aimed at a rule not in the list.
	ErrNotFound = errors.New("alert not found")
)

// Backend is the external persistence contract: read the whole worksheet, or
// clear and rewrite it wholesale. Implemented by gateway/sheets.
type Backend interface {
	Read(ctx context.Context) ([][]string, error)
	Write(ctx context.Context, rows [][]string) error
}

// Store owns the in-memory rule list for the process and mirrors it to the
// backend: Load replaces memory wholesale, every mutation saves wholesale.
// Two processes racing on Load/Save lose updates last-writer-wins; a single
// interactive session is the expected deployment.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	rules   []Rule
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load replaces the in-memory rules with the worksheet contents. Rows that do
// not parse are silently skipped; a backend failure leaves memory untouched
// and is reported to the caller.
func (s *Store) Load(ctx context.Context) error {
	rows, err := s.backend.Read(ctx)
	if err != nil {
		return fmt.Errorf("loading alerts: %w", err)
	}
	loaded := make([]Rule, 0, len(rows))
	for _, row := range rows {
		if rule, ok := parseRow(row); ok {
			loaded = append(loaded, rule)
		}
	}
	s.mu.Lock()
	s.rules = loaded
	s.mu.Unlock()
	return nil
}

// Save rewrites the worksheet with the full rule list, all statuses included.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	out := make([][]string, 0, len(s.rules)+1)
	out = append(out, sheetHeader)
	for _, r := range s.rules {
		out = append(out, []string{
			r.Symbol,
			string(r.Criteria),
			string(r.Condition),
			formatThreshold(r.Threshold),
			string(r.Status),
		})
	}
	s.mu.RUnlock()
	if err := s.backend.Write(ctx, out); err != nil {
		return fmt.Errorf("saving alerts: %w", err)
	}
	return nil
}

// Add appends a new Active rule and mirrors the list. Duplicates by identity
// tuple are rejected. The rule stays in memory even if the mirror write
// fails; the returned error reports the failed sync.
func (s *Store) Add(ctx context.Context, rule Rule) error {
	rule.Status = StatusActive
	if err := rule.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	for _, existing := range s.rules {
		if existing.Same(rule) {
			s.mu.Unlock()
			return ErrDuplicate
		}
	}
	s.rules = append(s.rules, rule)
	s.mu.Unlock()
	return s.Save(ctx)
}

// SetStatus flips the lifecycle status of the rule matching the identity
// tuple, then mirrors the list.
func (s *Store) SetStatus(ctx context.Context, rule Rule, status Status) error {
	if status != StatusActive && status != StatusInactive {
		return fmt.Errorf("unknown status %q", string(status))
	}
	s.mu.Lock()
	i := s.indexOf(rule)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.rules[i].Status = status
	s.mu.Unlock()
	return s.Save(ctx)
}

// Remove deletes the rule matching the identity tuple, then mirrors the list.
func (s *Store) Remove(ctx context.Context, rule Rule) error {
	s.mu.Lock()
	i := s.indexOf(rule)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.rules = append(s.rules[:i], s.rules[i+1:]...)
	s.mu.Unlock()
	return s.Save(ctx)
}

// Rules returns a copy of the current rule list in storage order.
func (s *Store) Rules() []Rule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Partition splits the rules into active and inactive, preserving order.
func (s *Store) Partition() (active, inactive []Rule) {
	for _, r := range s.Rules() {
		if r.Status == StatusInactive {
			inactive = append(inactive, r)
		} else {
			active = append(active, r)
		}
	}
	return active, inactive
}

// indexOf must be called with the lock held.
func (s *Store) indexOf(rule Rule) int {
	for i := range s.rules {
		if s.rules[i].Same(rule) {
			return i
		}
	}
	return -1
}

// parseRow maps one worksheet row to a rule. Short rows, empty symbols and
// non-numeric thresholds are dropped rather than failing the load; a missing
// or unrecognized status defaults to Active.
func parseRow(row []string) (Rule, bool) {
	if len(row) < 5 || strings.TrimSpace(row[0]) == "" {
		return Rule{}, false
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return Rule{}, false
	}
	status := Status(strings.TrimSpace(row[4]))
	if status != StatusInactive {
		status = StatusActive
	}
	return Rule{
		Symbol:    strings.TrimSpace(row[0]),
		Criteria:  Criteria(strings.TrimSpace(row[1])),
		Condition: Condition(strings.TrimSpace(row[2])),
		Threshold: threshold,
		Status:    status,
	}, true
}
