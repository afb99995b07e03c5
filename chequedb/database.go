// Copyright 2026 The chequedesk Authors
// This file is part of the chequedesk library.
//
// The chequedesk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The chequedesk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the chequedesk library. If not, see <http://www.gnu.org/licenses/>.

package chequedb

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

var (
	// chequesKey is the storage key holding the JSON array of records.
	chequesKey = []byte("cheques")

	// ErrCorrupt is returned when the stored record list cannot be decoded.
	ErrCorrupt = errors.New("corrupt cheque record list")

	// ErrUnknownCheque is returned when a status change targets a sequential
	// number that was never issued through this desk.
	ErrUnknownCheque = errors.New("unknown cheque")
)

// Store is the record repository injected into the UI controller.
type Store interface {
	// Load returns all records in insertion order. A missing list yields an
	// empty slice.
	Load() ([]Record, error)

	// Append assigns the next sequential number to rec, persists it and returns
	// the updated list.
	Append(rec Record) ([]Record, error)

	// SetStatus changes the status of the record with the given sequential
	// number.
	SetStatus(seq uint64, status Status) error
}

// DB is a Store backed by a key-value database. Read-modify-write cycles are
// serialized so that concurrent appends never lose records.
type DB struct {
	db   ethdb.KeyValueStore
	lock sync.Mutex
}

// New wraps the given key-value store.
func New(db ethdb.KeyValueStore) *DB {
	return &DB{db: db}
}

// Load implements Store.
func (s *DB) Load() ([]Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.load()
}

// load reads the record list. The caller must hold s.lock.
func (s *DB) load() ([]Record, error) {
	has, err := s.db.Has(chequesKey)
	if err != nil {
		return nil, err
	}
	if !has {
		return []Record{}, nil
	}
	blob, err := s.db.Get(chequesKey)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// store writes the record list. The caller must hold s.lock.
func (s *DB) store(records []Record) error {
	blob, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.db.Put(chequesKey, blob)
}

// Append implements Store.
func (s *DB) Append(rec Record) ([]Record, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	rec.SequentialNumber = uint64(len(records)) + 1
	if rec.Status == "" {
		rec.Status = StatusPending
	}
	records = append(records, rec)
	if err := s.store(records); err != nil {
		return nil, err
	}
	log.Debug("Stored cheque record", "seq", rec.SequentialNumber, "receiver", rec.ReceiverName, "amount", rec.Amount)
	return records, nil
}

// SetStatus implements Store.
func (s *DB) SetStatus(seq uint64, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid cheque status %q", status)
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].SequentialNumber == seq {
			records[i].Status = status
			return s.store(records)
		}
	}
	return fmt.Errorf("%w: #%d", ErrUnknownCheque, seq)
}
