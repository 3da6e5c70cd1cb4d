// Package rostercache holds the last published roster snapshot so roster
// reads do not fan out to the store on every request.
package rostercache

import (
	"context"
	"sync"

	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// Memory keeps the snapshot in process
type Memory struct {
	mu       sync.RWMutex
	snapshot *model.RosterSnapshot
}

var _ interfaces.RosterCache = &Memory{}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(ctx context.Context) (*model.RosterSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot, nil
}

func (m *Memory) Put(ctx context.Context, snapshot *model.RosterSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
	return nil
}
