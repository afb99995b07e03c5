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

	"github.com/ethereum/go-ethereum/ethdb"
)

var loginUserKey = []byte("loginUser")

// ErrNoSession is returned when nobody is logged in.
var ErrNoSession = errors.New("no login session")

// LoginUser is the session marker of the desk operator.
type LoginUser struct {
	Username string `json:"username"`
}

// Sessions keeps the single login marker in the same database as the records.
type Sessions struct {
	db ethdb.KeyValueStore
}

// NewSessions creates a session keeper over db.
func NewSessions(db ethdb.KeyValueStore) *Sessions {
	return &Sessions{db: db}
}

// Current returns the logged in user or ErrNoSession.
func (s *Sessions) Current() (*LoginUser, error) {
	has, err := s.db.Has(loginUserKey)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNoSession
	}
	blob, err := s.db.Get(loginUserKey)
	if err != nil {
		return nil, err
	}
	user := new(LoginUser)
	if err := json.Unmarshal(blob, user); err != nil {
		return nil, fmt.Errorf("%w: login user: %v", ErrCorrupt, err)
	}
	return user, nil
}

// Ensure returns the current session, creating one for username if absent.
func (s *Sessions) Ensure(username string) (*LoginUser, error) {
	user, err := s.Current()
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return nil, err
	}
	return s.Login(username)
}

// Login replaces the session marker.
func (s *Sessions) Login(username string) (*LoginUser, error) {
	user := &LoginUser{Username: username}
	blob, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	if err := s.db.Put(loginUserKey, blob); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout removes the session marker. Logging out twice is not an error.
func (s *Sessions) Logout() error {
	return s.db.Delete(loginUserKey)
}
