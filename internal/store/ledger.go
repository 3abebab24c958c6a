package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Badger key prefixes. Ledger entries expire at local midnight so a new
// day always starts from the SQLite truth; idempotency keys outlive the
// day slightly to absorb late retries.
const (
	ledgerPrefix = "ledger:"
	idemPrefix   = "idem:"

	idemTTL = 26 * time.Hour
)

func ledgerKey(userID string, now time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", ledgerPrefix, userID, DayOf(now).Format("2006-01-02")))
}

// untilMidnight returns the TTL that expires a cache entry at the next
// midnight, with a one minute floor so entries written just before the
// rollover still get a real lifetime.
func untilMidnight(now time.Time) time.Duration {
	next := DayOf(now).AddDate(0, 0, 1)
	d := next.Sub(now.UTC())
	if d < time.Minute {
		d = time.Minute
	}
	return d
}

// cacheLedger stores today's dispensed totals with a TTL to midnight.
func (s *Store) cacheLedger(userID string, now time.Time, totals map[string]float64) {
	data, err := json.Marshal(totals)
	if err != nil {
		return
	}
	// Cache writes are best effort, the SQLite ledger stays the truth.
	_ = s.badger.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(ledgerKey(userID, now), data).WithTTL(untilMidnight(now))
		return txn.SetEntry(e)
	})
}

// ledgerFromCache returns the cached totals, false on miss or decode
// failure.
func (s *Store) ledgerFromCache(userID string, now time.Time) (map[string]float64, bool) {
	var data []byte
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get(ledgerKey(userID, now))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			data = append([]byte{}, v...)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}

	var totals map[string]float64
	if err := json.Unmarshal(data, &totals); err != nil {
		return nil, false
	}
	return totals, true
}

// invalidateLedger drops the cached totals after a dispense.
func (s *Store) invalidateLedger(userID string) error {
	return s.badger.Update(func(txn *badger.Txn) error {
		// All days for the user, in practice only today exists.
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(ledgerPrefix + userID + ":")
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClaimRequestID marks a client request ID as processed. It returns
// false when the ID was already claimed, so a retried dispense is not
// poured twice.
func (s *Store) ClaimRequestID(userID, requestID string) (bool, error) {
	if requestID == "" {
		return true, nil
	}
	key := []byte(idemPrefix + userID + ":" + requestID)

	claimed := false
	err := s.badger.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil // already claimed
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		claimed = true
		e := badger.NewEntry(key, []byte{1}).WithTTL(idemTTL)
		return txn.SetEntry(e)
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}
