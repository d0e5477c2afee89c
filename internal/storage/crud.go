package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/manav03panchal/dailyclocks/internal/model"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the database.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCorruptRecord is returned when a stored value cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrSchemaVersion is returned when a stored record has an unknown version.
	ErrSchemaVersion = errors.New("unsupported record version")
)

// KV is the string-keyed blob store the repositories persist through.
type KV interface {
	GetBytes(key string) ([]byte, error)
	SetBytes(key string, data []byte) error
	Delete(key string) error
}

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// IsUnreadable returns true if the stored value exists but is unusable.
func IsUnreadable(err error) bool {
	return errors.Is(err, ErrCorruptRecord) || errors.Is(err, ErrSchemaVersion)
}

// GetBytes retrieves raw bytes by key.
func (d *DB) GetBytes(key string) ([]byte, error) {
	var result []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			result = make([]byte, len(val))
			copy(result, val)
			return nil
		})
	})
	return result, err
}

// SetBytes stores raw bytes with the given key.
func (d *DB) SetBytes(key string, data []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Delete removes a key from the database. Deleting a missing key is not an error.
func (d *DB) Delete(key string) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Exists checks if a key exists in the database.
func (d *DB) Exists(key string) (bool, error) {
	_, err := d.GetBytes(key)
	if err == nil {
		return true, nil
	}
	if IsErrKeyNotFound(err) {
		return false, nil
	}
	return false, err
}

// ListByPrefix retrieves all keys with the given prefix.
func (d *DB) ListByPrefix(prefix string) ([]string, error) {
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			key := make([]byte, len(it.Item().Key()))
			copy(key, it.Item().Key())
			keys = append(keys, string(key))
		}
		return nil
	})
	return keys, err
}

// versionProbe decodes only the version field of a record.
type versionProbe struct {
	Version int `json:"version"`
}

// Get retrieves a record by key and unmarshals it into v.
// A value that does not decode, or carries another schema version,
// yields ErrCorruptRecord or ErrSchemaVersion.
func Get(kv KV, key string, v model.Model) error {
	data, err := kv.GetBytes(key)
	if err != nil {
		return err
	}

	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	if probe.Version != model.SchemaVersion {
		return fmt.Errorf("%w: %s has version %d", ErrSchemaVersion, key, probe.Version)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptRecord, key, err)
	}
	v.SetKey(key)
	return nil
}

// Set stores a record under its own key.
func Set(kv KV, v model.Model) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.SetBytes(v.GetKey(), data)
}
