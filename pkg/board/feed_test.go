package board

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestFeed creates a test feed connected to a miniredis instance
func setupTestFeed(t *testing.T) (*Feed, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	feed, err := NewFeed(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { feed.Close() })

	return feed, mr
}

func TestNewFeed(t *testing.T) {
	t.Run("creates feed successfully", func(t *testing.T) {
		feed, _ := setupTestFeed(t)
		assert.NotNil(t, feed)
		assert.Equal(t, "test", feed.namespace)
	})

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewFeed(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "namespace cannot be empty")
	})
}

func TestFeedPing(t *testing.T) {
	feed, _ := setupTestFeed(t)
	assert.NoError(t, feed.Ping(context.Background()))
}

func TestPublishValidation(t *testing.T) {
	feed, _ := setupTestFeed(t)
	ctx := context.Background()

	t.Run("rejects unknown kind", func(t *testing.T) {
		err := feed.Publish(ctx, Event{Kind: "bogus", BoardID: uuid.New().String()})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown event kind")
	})

	t.Run("rejects malformed board ID", func(t *testing.T) {
		err := feed.Publish(ctx, Event{Kind: EventColumnMoved, BoardID: "not-a-uuid"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid board ID")
	})
}

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	feed, _ := setupTestFeed(t)
	ctx := context.Background()
	boardID := uuid.New().String()

	sub, err := feed.Subscribe(ctx, boardID)
	require.NoError(t, err)
	defer sub.Close()

	ev, err := NewEvent(EventColumnMoved, boardID, uuid.New().String(), ColumnMoved{
		ColumnID: uuid.New().String(),
		Position: 2,
	})
	require.NoError(t, err)

	// Publish after the subscription is live
	require.NoError(t, feed.Publish(ctx, ev))

	select {
	case got := <-sub.Events():
		assert.Equal(t, EventColumnMoved, got.Kind)
		assert.Equal(t, boardID, got.BoardID)
		payload, err := DecodePayload[ColumnMoved](got)
		require.NoError(t, err)
		assert.Equal(t, 2, payload.Position)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for board event")
	}
}

func TestSubscriptionIsScopedToBoard(t *testing.T) {
	feed, _ := setupTestFeed(t)
	ctx := context.Background()
	boardA := uuid.New().String()
	boardB := uuid.New().String()

	sub, err := feed.Subscribe(ctx, boardA)
	require.NoError(t, err)
	defer sub.Close()

	ev, err := NewEvent(EventCardMoved, boardB, uuid.New().String(), CardMoved{
		CardID:      uuid.New().String(),
		OldColumnID: uuid.New().String(),
		ColumnID:    uuid.New().String(),
		Position:    0,
	})
	require.NoError(t, err)
	require.NoError(t, feed.Publish(ctx, ev))

	select {
	case got := <-sub.Events():
		t.Fatalf("received event for a different board: %+v", got)
	case <-time.After(200 * time.Millisecond):
		// expected: nothing delivered
	}
}

func TestSubscriptionClose(t *testing.T) {
	feed, _ := setupTestFeed(t)
	boardID := uuid.New().String()

	sub, err := feed.Subscribe(context.Background(), boardID)
	require.NoError(t, err)

	// Safe to close twice
	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())

	// Events channel eventually closes
	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close")
	}
}

func TestSubscriptionContextCancellation(t *testing.T) {
	feed, _ := setupTestFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := feed.Subscribe(ctx, uuid.New().String())
	require.NoError(t, err)
	defer sub.Close()

	cancel()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel did not close after context cancellation")
	}
}

func TestSubscriptionSkipsMalformedMessages(t *testing.T) {
	feed, mr := setupTestFeed(t)
	ctx := context.Background()
	boardID := uuid.New().String()

	sub, err := feed.Subscribe(ctx, boardID)
	require.NoError(t, err)
	defer sub.Close()

	// Inject garbage directly onto the channel
	mr.Publish(EventsChannel("test", boardID), "{not json")

	select {
	case err := <-sub.Errors():
		assert.Contains(t, err.Error(), "failed to unmarshal")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for decode error")
	}

	// Subscription still works afterwards
	ev, err := NewEvent(EventMemberRemoved, boardID, uuid.New().String(), MemberRemoved{UserID: uuid.New().String()})
	require.NoError(t, err)
	require.NoError(t, feed.Publish(ctx, ev))

	select {
	case got := <-sub.Events():
		assert.Equal(t, EventMemberRemoved, got.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription stopped delivering after a bad message")
	}
}
