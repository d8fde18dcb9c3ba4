package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"
)

const shardBuffer = 64

// UpdateHandler processes a single update
type UpdateHandler func(ctx context.Context, update tgbotapi.Update)

// Dispatcher fans updates out to a fixed set of workers. Updates from one user
// always land on the same worker, so they are handled one at a time in arrival order.
type Dispatcher struct {
	workers int
	handle  UpdateHandler
}

func NewDispatcher(workers int, handle UpdateHandler) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	return &Dispatcher{workers: workers, handle: handle}
}

// Shard returns the worker index for update. Updates without a sender go to worker 0.
func (d *Dispatcher) Shard(update tgbotapi.Update) int {
	from := update.SentFrom()
	if from == nil {
		return 0
	}
	shard := from.ID % int64(d.workers)
	if shard < 0 {
		shard = -shard
	}
	return int(shard)
}

// Run consumes updates until the channel closes or ctx is cancelled, then
// waits for the workers to drain what they already hold.
func (d *Dispatcher) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	g, ctx := errgroup.WithContext(ctx)

	shards := make([]chan tgbotapi.Update, d.workers)
	for i := range shards {
		shard := make(chan tgbotapi.Update, shardBuffer)
		shards[i] = shard
		g.Go(func() error {
			for update := range shard {
				d.handle(ctx, update)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, shard := range shards {
				close(shard)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return nil
			case update, ok := <-updates:
				if !ok {
					return nil
				}
				select {
				case shards[d.Shard(update)] <- update:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})

	return g.Wait()
}
