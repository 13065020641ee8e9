package httpapi

import (
	"context"
	"log"
	"sync"
	"time"

	"salesleads/internal/httpapi/handlers"
	"salesleads/internal/importsync"
)

type importRunner interface {
	Run(context.Context) (importsync.Summary, error)
}

// ImportTrigger runs imports in the background on request. A trigger while
// an import is running is a no-op.
type ImportTrigger struct {
	runner  importRunner
	timeout time.Duration
	logger  *log.Logger

	mu         sync.Mutex
	running    bool
	done       chan struct{}
	lastResult *importsync.Summary
	lastError  error
}

func NewImportTrigger(runner importRunner, timeout time.Duration, logger *log.Logger) *ImportTrigger {
	if logger == nil {
		logger = log.Default()
	}
	return &ImportTrigger{
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

func (it *ImportTrigger) TriggerImport(_ context.Context) (bool, error) {
	it.mu.Lock()
	if it.running {
		it.mu.Unlock()
		return false, nil
	}
	it.running = true
	done := make(chan struct{})
	it.done = done
	it.mu.Unlock()

	go func() {
		defer close(done)

		ctx := context.Background()
		if it.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, it.timeout)
			defer cancel()
		}
		summary, err := it.runner.Run(ctx)

		it.mu.Lock()
		it.running = false
		if err != nil {
			it.lastError = err
			it.logger.Printf("manual import failed: %v", err)
		} else {
			it.lastResult = &summary
			it.lastError = nil
			it.logger.Printf("manual import finished: customers=%d leads=%d owners=%d",
				summary.Customers, summary.Leads, len(summary.Owners))
		}
		it.mu.Unlock()
	}()

	return true, nil
}

// Wait blocks until the current background import, if any, finishes.
func (it *ImportTrigger) Wait() {
	it.mu.Lock()
	done := it.done
	it.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (it *ImportTrigger) Status() handlers.ImportStatus {
	it.mu.Lock()
	defer it.mu.Unlock()

	errStr := ""
	if it.lastError != nil {
		errStr = it.lastError.Error()
	}
	return handlers.ImportStatus{
		Running:    it.running,
		LastResult: it.lastResult,
		LastError:  errStr,
	}
}
