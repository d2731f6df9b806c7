package api

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Quota counts requests per client per UTC day.
type Quota interface {
	// Allow records one request from key at now and reports whether it is
	// within limit, along with the requests left today.
	Allow(key string, now time.Time) (remaining int, ok bool, err error)
	Close() error
}

func dayOf(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// MemoryQuota keeps counters in memory; they reset on restart.
type MemoryQuota struct {
	limit  int
	mu     sync.Mutex
	day    string
	counts map[string]int
}

// NewMemoryQuota creates an in-memory quota. A limit <= 0 allows everything.
func NewMemoryQuota(limit int) *MemoryQuota {
	return &MemoryQuota{limit: limit, counts: make(map[string]int)}
}

func (q *MemoryQuota) Allow(key string, now time.Time) (int, bool, error) {
	if q.limit <= 0 {
		return -1, true, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if day := dayOf(now); day != q.day {
		q.day = day
		q.counts = make(map[string]int)
	}
	if q.counts[key] >= q.limit {
		return 0, false, nil
	}
	q.counts[key]++
	return q.limit - q.counts[key], true, nil
}

func (q *MemoryQuota) Close() error { return nil }

// BoltQuota persists counters in a bbolt file, one bucket per UTC day.
// Buckets for earlier days are dropped as soon as a new day starts.
type BoltQuota struct {
	limit int
	db    *bolt.DB
}

// NewBoltQuota opens (or creates) the quota database at path.
func NewBoltQuota(path string, limit int) (*BoltQuota, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open quota db: %w", err)
	}
	return &BoltQuota{limit: limit, db: db}, nil
}

func (q *BoltQuota) Allow(key string, now time.Time) (remaining int, ok bool, err error) {
	if q.limit <= 0 {
		return -1, true, nil
	}
	day := []byte(dayOf(now))

	err = q.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if string(name) != string(day) {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}

		b, err := tx.CreateBucketIfNotExists(day)
		if err != nil {
			return err
		}
		var count uint32
		if v := b.Get([]byte(key)); len(v) == 4 {
			count = binary.BigEndian.Uint32(v)
		}
		if int(count) >= q.limit {
			return nil
		}
		count++
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, count)
		if err := b.Put([]byte(key), buf); err != nil {
			return err
		}
		remaining, ok = q.limit-int(count), true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("update quota: %w", err)
	}
	return remaining, ok, nil
}

func (q *BoltQuota) Close() error {
	return q.db.Close()
}
