package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names for the run store.
const (
	bucketRuns     = "runs"     // run_id -> RunInfo JSON
	bucketAttempts = "attempts" // run_id/seq -> Attempt JSON, append-only
)

// RunInfo is the metadata stored for one recorded run.
type RunInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Mode      string    `json:"mode"`
	Retries   int       `json:"retries"`
	Tasks     int       `json:"tasks"`
}

// BoltStore is a bbolt-backed durable record of past runs and their
// attempts. It is a secondary record: the CSV file stays the canonical
// result output, the store exists so earlier runs survive on disk for
// later inspection.
type BoltStore struct {
	db *bolt.DB
	mu sync.Mutex
}

// NewBoltStore opens (creating if needed) a run store at the given path.
func NewBoltStore(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketRuns, bucketAttempts} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// BeginRun registers a new run and returns a Recorder that appends this
// run's attempts under it.
func (s *BoltStore) BeginRun(info RunInfo) (*RunRecorder, error) {
	if info.ID == "" {
		info.ID = uuid.New().String()[:8]
	}
	if info.StartedAt.IsZero() {
		info.StartedAt = time.Now()
	}

	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal run info: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).Put([]byte(info.ID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("register run %s: %w", info.ID, err)
	}

	return &RunRecorder{store: s, runID: info.ID}, nil
}

// Runs lists all recorded runs, oldest first.
func (s *BoltStore) Runs() ([]RunInfo, error) {
	var runs []RunInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).ForEach(func(k, v []byte) error {
			var info RunInfo
			if err := json.Unmarshal(v, &info); err != nil {
				return fmt.Errorf("unmarshal run %s: %w", string(k), err)
			}
			runs = append(runs, info)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs, nil
}

// Attempts returns the attempts recorded for a run, in generation order.
func (s *BoltStore) Attempts(runID string) ([]Attempt, error) {
	prefix := []byte(runID + "/")
	var attempts []Attempt
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketAttempts)).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var a Attempt
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("unmarshal attempt %s: %w", string(k), err)
			}
			attempts = append(attempts, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// RunRecorder appends one run's attempts to the store. Keys are zero-padded
// sequence numbers so cursor order is generation order.
type RunRecorder struct {
	store *BoltStore
	runID string
	seq   int
}

func (r *RunRecorder) Record(a Attempt) error {
	r.store.mu.Lock()
	r.seq++
	key := fmt.Sprintf("%s/%08d", r.runID, r.seq)
	r.store.mu.Unlock()

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	err = r.store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketAttempts)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("store attempt %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the underlying store is closed by its owner.
func (r *RunRecorder) Close() error {
	return nil
}
