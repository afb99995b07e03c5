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

package cheque

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// ErrInvalidAmount is returned for amounts that are not positive decimal
// ether values representable as a whole number of wei in 256 bits.
var ErrInvalidAmount = errors.New("invalid cheque amount")

// ToWei converts a decimal ether amount such as "10" or "0.25" into wei.
func ToWei(amount string) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	r, ok := new(big.Rat).SetString(amount)
	if !ok || strings.ContainsAny(amount, "/eE") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if r.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q must be greater than zero", ErrInvalidAmount, amount)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.Ether))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: %q has more than 18 decimals", ErrInvalidAmount, amount)
	}
	wei := new(big.Int).Set(r.Num())
	if _, overflow := uint256.FromBig(wei); overflow {
		return nil, fmt.Errorf("%w: %q overflows 256 bits", ErrInvalidAmount, amount)
	}
	return wei, nil
}
