package core

import "sync/atomic"

// TableStore holds the process-wide reference table. Readers load the current
// table without locking; reloads build a complete replacement off to the side
// and publish it with a single pointer swap, so in-flight requests never see
// a partially built table.
type TableStore struct {
	table atomic.Pointer[ReferenceTable]
}

// NewTableStore creates a store holding the given table.
func NewTableStore(table *ReferenceTable) *TableStore {
	s := &TableStore{}
	s.table.Store(table)
	return s
}

// Current returns the table serving requests right now.
func (s *TableStore) Current() *ReferenceTable {
	return s.table.Load()
}

// Swap atomically replaces the serving table and returns the previous one.
func (s *TableStore) Swap(table *ReferenceTable) *ReferenceTable {
	return s.table.Swap(table)
}
