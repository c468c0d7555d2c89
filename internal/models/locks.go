package models

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const lockPollInterval = 50 * time.Millisecond

// SlotLocker serializes booking creation for one (spot, date) slot so the
// overlap count and the insert observe the same ledger.
type SlotLocker interface {
	// Acquire blocks until the key is held or the wait budget is spent, in
	// which case it returns ErrLockTimeout. release may be called repeatedly.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

func SlotKey(spotID primitive.ObjectID, date string) string {
	return fmt.Sprintf("booking:%s:%s", spotID.Hex(), date)
}

// waitForLock retries try until it reports success, the wait budget runs out
// or ctx ends.
func waitForLock(ctx context.Context, wait time.Duration, try func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := try(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// releaseContext detaches release from a request context that may already
// be cancelled.
func releaseContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MongoLocker keeps advisory locks as documents keyed by slot. The TTL index
// on expires_at reaps abandoned locks; Acquire also clears expired holders
// itself since the TTL monitor only runs once a minute.
type MongoLocker struct {
	repo *MongodbRepo
	ttl  time.Duration
	wait time.Duration
}

func NewMongoLocker(repo *MongodbRepo, ttl, wait time.Duration) *MongoLocker {
	return &MongoLocker{repo: repo, ttl: ttl, wait: wait}
}

func (l *MongoLocker) Acquire(ctx context.Context, key string) (func(), error) {
	col, err := l.repo.GetCollection(ctx, LocksColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	owner := uuid.NewString()
	err = waitForLock(ctx, l.wait, func(ctx context.Context) (bool, error) {
		now := time.Now()
		if _, err := col.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": now}}); err != nil {
			return false, fmt.Errorf("failed to clear expired lock: %w", err)
		}
		_, err := col.InsertOne(ctx, BookingLock{
			ID:        key,
			Owner:     owner,
			ExpiresAt: now.Add(l.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return true, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert lock: %w", err)
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := releaseContext()
			defer cancel()
			if _, err := col.DeleteOne(ctx, bson.M{"_id": key, "owner": owner}); err != nil {
				slog.Error("failed to release booking lock", "key", key, "error", err)
			}
		})
	}, nil
}

// unlockScript deletes the key only while it still holds our token.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`

type RedisLocker struct {
	client   redis.Cmdable
	ttl      time.Duration
	wait     time.Duration
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait, newToken: uuid.NewString}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := l.newToken()
	err := waitForLock(ctx, l.wait, func(ctx context.Context) (bool, error) {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("failed to set lock: %w", err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := releaseContext()
			defer cancel()
			err := l.client.Eval(ctx, unlockScript, []string{key}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				slog.Error("failed to release booking lock", "key", key, "error", err)
			}
		})
	}, nil
}

// LocalLocker is an in-process keyed mutex for single instance deployments.
type LocalLocker struct {
	wait  time.Duration
	mu    sync.Mutex
	slots map[string]*localSlot
}

type localSlot struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, slots: make(map[string]*localSlot)}
}

func (l *LocalLocker) ref(key string) *localSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &localSlot{sem: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(key string, slot *localSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	slot := l.ref(key)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case slot.sem <- struct{}{}:
	case <-timer.C:
		l.unref(key, slot)
		return nil, ErrLockTimeout
	case <-ctx.Done():
		l.unref(key, slot)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			l.unref(key, slot)
		})
	}, nil
}

// Held reports how many keys currently have holders or waiters.
func (l *LocalLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
