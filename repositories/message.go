//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bate-papo/domain"
	"bate-papo/errors"
	goerrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	messagePrefix   = "msg:"
	messageIDPrefix = "msgid:"
	messageSeqKey   = "seq:messages"
	seqBandwidth    = 100
)

type IMessageRepository interface {
	StoreMessage(message domain.Message) (domain.Message, error)
	ListVisible(viewer string, limit *int) ([]domain.Message, error)
	GetMessage(id uuid.UUID) (domain.Message, error)
	DeleteOwned(id uuid.UUID, requester string) error
}

// MessageRepository is the append-only chat log.
// Every message gets the next value of a badger sequence and is keyed
// "msg:{seq_padded}" so a prefix scan returns insertion order.
// A secondary key "msgid:{uuid}" points back to the log key for deletes.
type MessageRepository struct {
	mu  sync.RWMutex
	db  *badger.DB
	log *slog.Logger
	seq *badger.Sequence
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

func messageKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", messagePrefix, seq))
}

func messageIDKey(id uuid.UUID) []byte {
	return []byte(messageIDPrefix + id.String())
}

// StoreMessage appends a message at the end of the log and returns it with its id.
// The sequence is leased on first write so that read-only handles never write.
func (m *MessageRepository) StoreMessage(message domain.Message) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seq == nil {
		seq, err := m.db.GetSequence([]byte(messageSeqKey), seqBandwidth)
		if err != nil {
			return domain.Message{}, errors.Storage("lease message sequence", err)
		}
		m.seq = seq
	}
	next, err := m.seq.Next()
	if err != nil {
		return domain.Message{}, errors.Storage("next message sequence", err)
	}
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}

	key := messageKey(next)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, marshalMessage(DiskMessage{Message: message, Seq: next})); err != nil {
			return err
		}
		return txn.Set(messageIDKey(message.ID), key)
	})
	if err != nil {
		return domain.Message{}, errors.Storage("store message", err)
	}
	return message, nil
}

// ListVisible scans the log from the oldest entry and keeps what viewer may read.
// When limit is set, it bounds the number of log entries examined, not the
// number returned: hidden private messages still use up a slot.
func (m *MessageRepository) ListVisible(viewer string, limit *int) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	visible := []domain.Message{}
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		examined := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && examined == *limit {
				m.log.Debug("Scan limit reached", "limit", *limit, "viewer", viewer)
				break
			}
			examined++
			err := it.Item().Value(func(value []byte) error {
				dm, err := unmarshalMessage(value)
				if err != nil {
					return err
				}
				if domain.IsVisible(dm.Message, viewer) {
					visible = append(visible, dm.Message)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Storage("list messages", err)
	}
	return visible, nil
}

// ScanLog walks the whole log in insertion order without any visibility filter.
// It backs offline inspection of the store.
func (m *MessageRepository) ScanLog(fn func(DiskMessage) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			dm, err := unmarshalMessage(value)
			if err != nil {
				return err
			}
			if err := fn(dm); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		dm, _, err := getMessage(txn, id)
		message = dm.Message
		return err
	})
	if err != nil {
		return domain.Message{}, wrapStorage("get message", err)
	}
	return message, nil
}

// DeleteOwned removes the message if requester is its sender.
// Lookup, ownership check and removal happen in one transaction under the write lock.
func (m *MessageRepository) DeleteOwned(id uuid.UUID, requester string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.db.Update(func(txn *badger.Txn) error {
		dm, key, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if dm.From != requester {
			return errors.ErrNotMessageOwner
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(messageIDKey(id))
	})
	return wrapStorage("delete message", err)
}

// Close returns the unused part of the leased sequence.
func (m *MessageRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq == nil {
		return nil
	}
	err := m.seq.Release()
	m.seq = nil
	return err
}

func getMessage(txn *badger.Txn, id uuid.UUID) (DiskMessage, []byte, error) {
	idItem, err := txn.Get(messageIDKey(id))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return DiskMessage{}, nil, errors.ErrMessageNotFound
	}
	if err != nil {
		return DiskMessage{}, nil, err
	}
	key, err := idItem.ValueCopy(nil)
	if err != nil {
		return DiskMessage{}, nil, err
	}
	item, err := txn.Get(key)
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return DiskMessage{}, nil, errors.ErrMessageNotFound
	}
	if err != nil {
		return DiskMessage{}, nil, err
	}
	var dm DiskMessage
	err = item.Value(func(value []byte) error {
		dm, err = unmarshalMessage(value)
		return err
	})
	return dm, key, err
}
