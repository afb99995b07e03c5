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
	"fmt"

	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/ethdb/pebble"
	"github.com/ethereum/go-ethereum/log"
)

// Supported database engines.
const (
	EngineLevelDB = "leveldb"
	EnginePebble  = "pebble"
	EngineMemory  = "memory"
)

const (
	dbCache   = 16 // MB of cache for the record database
	dbHandles = 16 // file handles for the record database
	namespace = "chequedesk/db/"
)

// Open opens the key-value database backing the desk. The memory engine
// ignores the path and loses everything on close.
func Open(engine, path string) (ethdb.KeyValueStore, error) {
	switch engine {
	case EngineMemory:
		log.Info("Using in-memory cheque database")
		return memorydb.New(), nil
	case EngineLevelDB:
		log.Info("Opening cheque database", "engine", engine, "path", path)
		return leveldb.New(path, dbCache, dbHandles, namespace, false)
	case EnginePebble, "":
		log.Info("Opening cheque database", "engine", EnginePebble, "path", path)
		return pebble.New(path, dbCache, dbHandles, namespace, false, false)
	default:
		return nil, fmt.Errorf("unknown database engine %q", engine)
	}
}
