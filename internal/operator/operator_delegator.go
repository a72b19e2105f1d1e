package operator

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/bank-server/internal/operator/actions"
	"github.com/carson-networks/bank-server/internal/storage"
)

// ErrOperatorStopped is returned by Process once Stop has been called.
var ErrOperatorStopped = errors.New("operator: stopped")

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	storage    storage.Storage
	logger     *logrus.Logger
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    chan struct{}
	done       chan struct{}
}

func NewOperatorDelegator(s storage.Storage, numWorkers int, logger *logrus.Logger) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OperatorDelegator{
		storage:    s,
		logger:     logger,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
		stopped:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.storage, d.queue, d.logger)
		go func() {
			defer d.wg.Done()
			op.Run(d.stopped)
		}()
	}
}

// Stop lets the workers finish queued items and waits for them to exit.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopped)
		d.wg.Wait()
		close(d.done)
	})
}

// Process queues action and waits for its outcome. Once queued, the caller
// always learns whether the unit of work committed: cancelling ctx makes the
// action's storage calls fail rather than abandoning the wait.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      ctx,
		action:   action,
		response: respCh,
	}

	select {
	case <-d.stopped:
		return ErrOperatorStopped
	default:
	}

	select {
	case d.queue <- item:
	case <-d.stopped:
		return ErrOperatorStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-d.done:
		select {
		case resp := <-respCh:
			return resp.err
		default:
			return ErrOperatorStopped
		}
	}
}
