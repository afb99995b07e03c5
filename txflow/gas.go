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

package txflow

import (
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Default gas floors per contract method.
const (
	IssueGasFloor  = uint64(300000)
	VerifyGasFloor = uint64(100000)
)

// Floors maps contract methods to the minimum gas limit sent with them.
type Floors map[string]uint64

// DefaultFloors returns the stock floors for the cheque contract.
func DefaultFloors() Floors {
	return Floors{
		"issueCheque":  IssueGasFloor,
		"verifyCheque": VerifyGasFloor,
	}
}

// Floor returns the floor configured for method, falling back to the issue
// floor for methods without one.
func (f Floors) Floor(method string) uint64 {
	if floor, ok := f[method]; ok && floor > 0 {
		return floor
	}
	return IssueGasFloor
}

// NormalizeGas coerces a gas estimate into a plain gas limit of at least floor.
// Estimates may be native integers or arbitrary precision values (*big.Int,
// hexutil.Big, uint256.Int, decimal or 0x-prefixed strings). Anything that
// cannot be represented as a uint64 yields the floor.
func NormalizeGas(estimate interface{}, floor uint64) uint64 {
	gas, ok := toUint64(estimate)
	if !ok || gas < floor {
		return floor
	}
	return gas
}

func toUint64(v interface{}) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, true
	case hexutil.Uint64:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
			return 0, false
		}
		return uint64(v), true
	case *big.Int:
		if v == nil || v.Sign() < 0 || !v.IsUint64() {
			return 0, false
		}
		return v.Uint64(), true
	case big.Int:
		return toUint64(&v)
	case *hexutil.Big:
		if v == nil {
			return 0, false
		}
		return toUint64(v.ToInt())
	case hexutil.Big:
		return toUint64(v.ToInt())
	case *uint256.Int:
		if v == nil || !v.IsUint64() {
			return 0, false
		}
		return v.Uint64(), true
	case string:
		s := strings.TrimSpace(v)
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return 0, false
		}
		return toUint64(n)
	default:
		return 0, false
	}
}
