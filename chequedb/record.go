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

// Package chequedb persists the locally issued cheque records and the login
// session of the cheque desk.
package chequedb

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the lifecycle state of an issued cheque as seen by the desk.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusVerified Status = "Verified"
)

// Valid reports whether s is one of the known cheque states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusVerified
}

// Record is a cheque issued through this desk. The on-chain contract only
// knows the payee and the amount; bank, receiver and date are kept locally.
// ChequeID is the contract's id of the cheque, which differs from the local
// sequential number as soon as anyone else issues on the same contract.
type Record struct {
	Sender           common.Address `json:"senderAddress"`
	BankName         string         `json:"bankName"`
	ReceiverName     string         `json:"receiverName"`
	Amount           string         `json:"amount"`
	ChequeDate       string         `json:"chequeDate"`
	SequentialNumber uint64         `json:"sequentialNumber"`
	Status           Status         `json:"status"`
	ChequeID         *big.Int       `json:"chequeId,omitempty"`
}

func (r *Record) String() string {
	id := "unknown"
	if r.ChequeID != nil {
		id = r.ChequeID.String()
	}
	return fmt.Sprintf("cheque #%d (chain id %s): sender %s, bank %q, receiver %q, amount %s, date %s, %s",
		r.SequentialNumber, id, r.Sender.Hex(), r.BankName, r.ReceiverName, r.Amount, r.ChequeDate, r.Status)
}

// Form is the user supplied part of a cheque record.
type Form struct {
	BankName     string `json:"bankName"`
	ReceiverName string `json:"receiverName"`
	Amount       string `json:"amount"`
	ChequeDate   string `json:"chequeDate"`
}

// Complete reports whether every field of the form holds a non-blank value.
func (f Form) Complete() bool {
	for _, field := range []string{f.BankName, f.ReceiverName, f.Amount, f.ChequeDate} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Record converts the form into a pending record issued by sender. The
// sequential number is assigned by the store on append.
func (f Form) Record(sender common.Address) Record {
	return Record{
		Sender:       sender,
		BankName:     f.BankName,
		ReceiverName: f.ReceiverName,
		Amount:       f.Amount,
		ChequeDate:   f.ChequeDate,
		Status:       StatusPending,
	}
}
