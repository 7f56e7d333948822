//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"bate-papo/domain"
	"bate-papo/errors"
	goerrors "errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	Create(participant domain.Participant) error
	Touch(name string, at time.Time) (domain.Participant, error)
	Get(name string) (domain.Participant, error)
	List() ([]domain.Participant, error)
	DeleteIfInactive(name string, now time.Time, threshold time.Duration) (bool, error)
	Delete(name string) error
}

// ParticipantRepository is the registry of online participants.
// Writers are serialized by mu so that a check-then-write never interleaves
// with another one, whatever badger's own conflict detection decides.
type ParticipantRepository struct {
	mu sync.RWMutex
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// Create registers a new participant, failing with ErrNameTaken when the name is in use.
func (r *ParticipantRepository) Create(participant domain.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(participant.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrNameTaken
		} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, marshalParticipant(participant))
	})
	return wrapStorage("create participant", err)
}

// Touch refreshes the last time the participant was seen.
// lastSeen only moves forward: a clock reading that is not after the stored
// value is bumped by one nanosecond.
func (r *ParticipantRepository) Touch(name string, at time.Time) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated domain.Participant
	err := r.db.Update(func(txn *badger.Txn) error {
		p, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		if !at.After(p.LastSeen) {
			at = p.LastSeen.Add(time.Nanosecond)
		}
		p.LastSeen = at
		updated = p
		return txn.Set(participantKey(name), marshalParticipant(p))
	})
	if err != nil {
		return domain.Participant{}, wrapStorage("touch participant", err)
	}
	return updated, nil
}

func (r *ParticipantRepository) Get(name string) (domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var p domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = getParticipant(txn, name)
		return err
	})
	if err != nil {
		return domain.Participant{}, wrapStorage("get participant", err)
	}
	return p, nil
}

// List returns every registered participant, in key order.
func (r *ParticipantRepository) List() ([]domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participants := []domain.Participant{}
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix)
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				p, err := unmarshalParticipant(value)
				if err != nil {
					return err
				}
				participants = append(participants, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage("list participants", err)
	}
	return participants, nil
}

// DeleteIfInactive removes the participant only if, read under the write lock,
// it has been inactive for longer than threshold. A heartbeat that landed
// before this read keeps the participant alive.
func (r *ParticipantRepository) DeleteIfInactive(name string, now time.Time, threshold time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := false
	err := r.db.Update(func(txn *badger.Txn) error {
		p, err := getParticipant(txn, name)
		if err != nil {
			return err
		}
		if !p.IsInactive(now, threshold) {
			return nil
		}
		deleted = true
		return txn.Delete(participantKey(name))
	})
	if err != nil {
		return false, wrapStorage("delete inactive participant", err)
	}
	return deleted, nil
}

// Delete removes the participant unconditionally. Deleting an unknown name is not an error.
func (r *ParticipantRepository) Delete(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(participantKey(name))
	})
	return wrapStorage("delete participant", err)
}

func getParticipant(txn *badger.Txn, name string) (domain.Participant, error) {
	item, err := txn.Get(participantKey(name))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return domain.Participant{}, errors.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, err
	}
	var p domain.Participant
	err = item.Value(func(value []byte) error {
		p, err = unmarshalParticipant(value)
		return err
	})
	return p, err
}

// wrapStorage lets domain sentinels through untouched and tags anything else as a storage failure.
func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{errors.ErrValidation, errors.ErrConflict, errors.ErrNotFound, errors.ErrUnauthorized} {
		if goerrors.Is(err, known) {
			return err
		}
	}
	return errors.Storage(op, err)
}
