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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReceiptFailed is wrapped by submissions that were mined but reverted.
var ErrReceiptFailed = errors.New("transaction reverted on chain")

// SubmissionError describes a failed state-changing call with everything that
// could be learned about the failure.
type SubmissionError struct {
	Method     string         // contract method that was submitted
	Reason     string         // decoded revert reason, empty if none could be decoded
	Receipt    *types.Receipt // receipt of a mined but failed transaction, if any
	RPCMessage string         // message of the underlying RPC error, if any
	Err        error          // raw failure
}

func (e *SubmissionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s failed: %s", e.Method, e.Reason)
	}
	return fmt.Sprintf("%s failed: %v", e.Method, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// newSubmissionError collects the diagnostics carried by err. The revert
// reason is filled in by the caller.
func newSubmissionError(method string, err error, receipt *types.Receipt) *SubmissionError {
	serr := &SubmissionError{Method: method, Receipt: receipt, Err: err}

	var rerr rpc.Error
	if errors.As(err, &rerr) {
		serr.RPCMessage = rerr.Error()
	}
	return serr
}
