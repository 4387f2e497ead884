/*
Package history records which filings have already been handled.

The ledger is append-only: IDs are read once when it is opened and every new ID is written
through to the backing store before MarkProcessed returns.
*/
package history

import (
	"fmt"
	"sync"

	"github.com/phuslu/log"

	"github.com/shanehull/tickerwatch/internal/store"
)

type Ledger struct {
	store     store.Lines
	mutex     sync.Mutex
	processed map[string]struct{}
	logger    *log.Logger
}

// Open loads every processed ID from s.
func Open(s store.Lines, logger *log.Logger) (*Ledger, error) {
	if logger == nil {
		logger = &log.DefaultLogger
	}

	ids, err := s.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load processed filings: %w", err)
	}

	l := &Ledger{
		store:     s,
		processed: make(map[string]struct{}, len(ids)),
		logger:    logger,
	}
	for _, id := range ids {
		l.processed[id] = struct{}{}
	}

	logger.Debug().Int("processed", len(l.processed)).Msg("Loaded processed filings ledger")
	return l, nil
}

func (l *Ledger) IsProcessed(id string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	_, ok := l.processed[id]
	return ok
}

// MarkProcessed appends id to the store. It does not check whether id was already
// recorded.
func (l *Ledger) MarkProcessed(id string) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.store.Append(id); err != nil {
		return fmt.Errorf("failed to record processed filing %s: %w", id, err)
	}
	l.processed[id] = struct{}{}
	return nil
}

// Len returns the number of distinct processed IDs.
func (l *Ledger) Len() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.processed)
}
