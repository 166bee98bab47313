package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/zombor/billed/internal/bill"
)

const (
	sessionBucketName = "session"
	draftBucketName   = "drafts"

	userKey  = "user"
	tokenKey = "jwt"
)

// BoltStore keeps the session record, the API token and pending bill
// drafts in a BoltDB file
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens or creates the store at path
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(sessionBucketName)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(draftBucketName)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// SetUser records the signed-in identity
func (b *BoltStore) SetUser(identity Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	return b.put(sessionBucketName, userKey, data)
}

// SetToken records the API token
func (b *BoltStore) SetToken(token string) error {
	return b.put(sessionBucketName, tokenKey, []byte(token))
}

// Token returns the API token, or "" when none is stored
func (b *BoltStore) Token() (string, error) {
	data, err := b.get(sessionBucketName, tokenKey)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Identity returns the stored user. Without a user record it falls back
// to the identity carried by the stored token.
func (b *BoltStore) Identity() (Identity, error) {
	data, err := b.get(sessionBucketName, userKey)
	if err != nil {
		return Identity{}, err
	}
	if data != nil {
		var identity Identity
		if err := json.Unmarshal(data, &identity); err != nil {
			return Identity{}, fmt.Errorf("unmarshaling user: %w", err)
		}
		if identity.Email != "" {
			return identity, nil
		}
	}

	token, err := b.Token()
	if err != nil {
		return Identity{}, err
	}
	if token == "" {
		return Identity{}, ErrNoSession
	}
	return TokenIdentity(token)
}

// SaveDraft stores the pending bill of the given employee
func (b *BoltStore) SaveDraft(email string, draft bill.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}
	return b.put(draftBucketName, email, data)
}

// Draft returns the pending bill of the given employee. ok is false when
// there is none.
func (b *BoltStore) Draft(email string) (draft bill.Draft, ok bool, err error) {
	data, err := b.get(draftBucketName, email)
	if err != nil || data == nil {
		return bill.Draft{}, false, err
	}
	if err := json.Unmarshal(data, &draft); err != nil {
		return bill.Draft{}, false, fmt.Errorf("unmarshaling draft: %w", err)
	}
	return draft, true, nil
}

// ClearDraft removes the pending bill of the given employee
func (b *BoltStore) ClearDraft(email string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(draftBucketName)).Delete([]byte(email))
	})
}

// Close closes the database
func (b *BoltStore) Close() error {
	return b.db.Close()
}

var errEmptyKey = errors.New("empty key")

func (b *BoltStore) put(bucket, key string, value []byte) error {
	if key == "" {
		return errEmptyKey
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
}

// get returns a copy of the value, or nil when the key is absent
func (b *BoltStore) get(bucket, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket([]byte(bucket)).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}
