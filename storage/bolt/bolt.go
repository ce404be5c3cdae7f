package bolt

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Comcast/glushkov/storage"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds the records.
var DefaultBucket = []byte("automata")

// Storage is a storage.Storage backed by a BoltDB file with one
// bucket.
type Storage struct {
	Debug    bool
	filename string
	bucket   []byte
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
		bucket:   DefaultBucket,
	}, nil
}

// Open opens (or creates) the file and makes sure the bucket exists.
func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) Put(ctx context.Context, r *storage.Record) error {
	s.logf("Put %s", r.Name)

	js, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(r.Name), js)
	})
}

func (s *Storage) Get(ctx context.Context, name string) (*storage.Record, error) {
	s.logf("Get %s", name)

	var r *storage.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		js := tx.Bucket(s.bucket).Get([]byte(name))
		if js == nil {
			return storage.NotFound
		}
		r = &storage.Record{}
		return json.Unmarshal(js, r)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Storage) Rem(ctx context.Context, name string) error {
	s.logf("Rem %s", name)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		key := []byte(name)
		if b.Get(key) == nil {
			return storage.NotFound
		}
		return b.Delete(key)
	})
}

func (s *Storage) List(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("List found %d", len(acc))
	return acc, nil
}
