package interfaces

import (
	"context"

	"github.com/oncowatch/oncowatch/pkg/domain/model"
)

// RosterCache holds the last published roster snapshot
type RosterCache interface {
	// Get returns the cached snapshot, or nil, nil when nothing is cached
	Get(ctx context.Context) (*model.RosterSnapshot, error)
	Put(ctx context.Context, snapshot *model.RosterSnapshot) error
}
