// Package ledger keeps the high-score tables, one per difficulty tier, and
// the roster of player names used to attribute new records.
package ledger

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/blockfall/internal/engine"
)

const (
	// MaxRecords is the capacity of one tier's table.
	MaxRecords = 10
	// Tiers is the number of difficulty tiers, one per block-type count.
	Tiers = engine.MaxBlockTypes - engine.MinBlockTypes + 1
	// DefaultName fills records nobody has beaten yet.
	DefaultName = "Somebody"
)

// ErrTier is returned for a difficulty without a table.
var ErrTier = errors.New("ledger: no tier for difficulty")

// Record is one ranked result.
type Record struct {
	Name  string
	Level int
	Score int
}

// Table is one tier's records, best first.
type Table [MaxRecords]Record

// Ledger holds a table per tier.
type Ledger struct {
	tables [Tiers]Table
}

// New returns a ledger filled with default records.
func New() *Ledger {
	l := &Ledger{}
	l.Reset()
	return l
}

// Reset restores every tier to the default records.
func (l *Ledger) Reset() {
	for t := range l.tables {
		l.tables[t] = DefaultTable()
	}
}

// DefaultTable returns the records a fresh tier starts with.
func DefaultTable() Table {
	var tb Table
	for i := range tb {
		tb[i] = Record{Name: DefaultName, Level: 1, Score: MaxRecords - i}
	}
	return tb
}

// Tier maps a block-type count to its table index.
func Tier(blockTypes int) (int, error) {
	if blockTypes < engine.MinBlockTypes || blockTypes > engine.MaxBlockTypes {
		return 0, fmt.Errorf("%w: %d block types", ErrTier, blockTypes)
	}
	return blockTypes - engine.MinBlockTypes, nil
}

// BlockTypes is the inverse of Tier.
func BlockTypes(tier int) int {
	return tier + engine.MinBlockTypes
}

func validTier(tier int) bool {
	return tier >= 0 && tier < Tiers
}

// Records returns a copy of a tier's records, or nil for an unknown tier.
func (l *Ledger) Records(tier int) []Record {
	if !validTier(tier) {
		return nil
	}
	out := make([]Record, MaxRecords)
	copy(out, l.tables[tier][:])
	return out
}

// Table returns a tier's table by value.
func (l *Ledger) Table(tier int) Table {
	if !validTier(tier) {
		return Table{}
	}
	return l.tables[tier]
}

// SetTable replaces a tier's table wholesale.
func (l *Ledger) SetTable(tier int, tb Table) {
	if validTier(tier) {
		l.tables[tier] = tb
	}
}

// WouldRank reports where score would be inserted without changing anything.
// The position is the first record with a strictly lower score.
func (l *Ledger) WouldRank(tier, score int) (int, bool) {
	if !validTier(tier) {
		return 0, false
	}
	for i, r := range l.tables[tier] {
		if r.Score < score {
			return i, true
		}
	}
	return 0, false
}

// Insert ranks a result. Lower records shift down and the last one drops off.
// It reports false and leaves the table unchanged when score ranks nowhere.
func (l *Ledger) Insert(tier int, name string, level, score int) (int, bool) {
	pos, ok := l.WouldRank(tier, score)
	if !ok {
		return 0, false
	}
	tb := &l.tables[tier]
	copy(tb[pos+1:], tb[pos:MaxRecords-1])
	tb[pos] = Record{Name: TruncateName(name), Level: level, Score: score}
	return pos, true
}
