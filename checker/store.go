package checker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketFixtures = []byte("fixtures_by_name")

// Store keeps imported fixtures under datadir/db/fixtures.db.
type Store struct {
	path string
	db   *bolt.DB
}

func OpenStore(datadir string) (*Store, error) {
	if datadir == "" {
		return nil, fmt.Errorf("datadir required")
	}
	dir := filepath.Join(datadir, "db")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	path := filepath.Join(dir, "fixtures.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open bbolt: %w", err)
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketFixtures)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("create bucket %s: %w", string(bucketFixtures), err)
	}
	return &Store{path: path, db: bdb}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// Put stores fx under its name, replacing any previous fixture.
func (s *Store) Put(fx *Fixture) error {
	if fx == nil || fx.Name == "" {
		return fmt.Errorf("fixture name is required")
	}
	raw, err := json.Marshal(fx)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).Put([]byte(fx.Name), raw)
	})
}

func (s *Store) Get(name string) (*Fixture, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketFixtures).Get([]byte(name))
		if v == nil {
			return nil
		}
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil || raw == nil {
		return nil, false, err
	}
	var fx Fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, true, fmt.Errorf("decode fixture %q: %w", name, err)
	}
	return &fx, true, nil
}

// List returns the stored fixture names in key order.
func (s *Store) List() ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	return out, err
}

func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketFixtures).Delete([]byte(name))
	})
}
