package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageFrom(userID int64, updateID int) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message:  &tgbotapi.Message{From: &tgbotapi.User{ID: userID}, Chat: &tgbotapi.Chat{ID: userID}},
	}
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[int64][]int)

	d := NewDispatcher(4, func(ctx context.Context, update tgbotapi.Update) {
		mu.Lock()
		defer mu.Unlock()
		id := update.Message.From.ID
		seen[id] = append(seen[id], update.UpdateID)
	})

	updates := make(chan tgbotapi.Update)
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background(), updates) }()

	const perUser = 50
	users := []int64{1, 2, 3, 4, 5, 6, 7}
	for i := 0; i < perUser; i++ {
		for _, u := range users {
			updates <- messageFrom(u, i)
		}
	}
	close(updates)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop after the update channel closed")
	}

	for _, u := range users {
		require.Len(t, seen[u], perUser)
		for i, id := range seen[u] {
			assert.Equal(t, i, id, "user %d", u)
		}
	}
}

func TestDispatcher_SerializesOneUser(t *testing.T) {
	var mu sync.Mutex
	active, maxActive := 0, 0

	d := NewDispatcher(8, func(ctx context.Context, update tgbotapi.Update) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
	})

	updates := make(chan tgbotapi.Update, 20)
	for i := 0; i < 20; i++ {
		updates <- messageFrom(99, i)
	}
	close(updates)

	require.NoError(t, d.Run(context.Background(), updates))
	assert.Equal(t, 1, maxActive)
}

func TestDispatcher_StopsOnCancel(t *testing.T) {
	d := NewDispatcher(2, func(ctx context.Context, update tgbotapi.Update) {})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, make(chan tgbotapi.Update)) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}

func TestDispatcher_UpdatesWithoutSender(t *testing.T) {
	d := NewDispatcher(3, nil)
	assert.Equal(t, 0, d.Shard(tgbotapi.Update{UpdateID: 1}))
}

// Feature: storefront, Property 74: A user always maps to the same worker
// Validates: updates are serialized per user across sharded workers
func TestProperty_ShardIsStableAndInRange(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("shard depends only on the user id and stays within the worker count", prop.ForAll(
		func(userID int64, workers int) bool {
			d := NewDispatcher(workers, nil)
			callback := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: userID}}}
			inline := tgbotapi.Update{InlineQuery: &tgbotapi.InlineQuery{From: &tgbotapi.User{ID: userID}}}

			shard := d.Shard(messageFrom(userID, 1))
			return shard >= 0 && shard < workers &&
				d.Shard(callback) == shard &&
				d.Shard(inline) == shard
		},
		gen.Int64(),
		gen.IntRange(1, 64),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
