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
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// revertHeaderLength is the number of hex characters preceding the reason
// text in an ABI encoded Error(string) payload: the 0x prefix, the 4 byte
// selector, the 32 byte offset word and the 32 byte length word.
const revertHeaderLength = 2 + 8 + 64 + 64

// revertSelector is the hex encoded selector of Error(string).
const revertSelector = "08c379a0"

var (
	// ErrShortPayload is returned when a payload does not extend past the
	// Error(string) header.
	ErrShortPayload = errors.New("revert payload too short")

	// ErrNoPayload is returned when an error carries no hex payload at all.
	ErrNoPayload = errors.New("no revert payload in error")

	hexRun = regexp.MustCompile(`0x[0-9a-fA-F]+`)
)

// DecodeRevertReason recovers the reason text from a hex encoded
// Error(string) revert payload. The bytes following the fixed header are
// read as single byte characters and NUL padding is dropped. Payloads using
// any other encoding do not yield a meaningful reason.
func DecodeRevertReason(payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if !strings.HasPrefix(payload, "0x") && !strings.HasPrefix(payload, "0X") {
		payload = "0x" + payload
	}
	if len(payload) <= revertHeaderLength {
		return "", fmt.Errorf("%w: %d hex characters", ErrShortPayload, len(payload))
	}
	tail := payload[revertHeaderLength:]
	if len(tail)%2 == 1 {
		tail += "0"
	}
	raw, err := hex.DecodeString(tail)
	if err != nil {
		return "", fmt.Errorf("invalid revert payload: %v", err)
	}
	var reason strings.Builder
	for _, b := range raw {
		if b != 0 {
			reason.WriteRune(rune(b))
		}
	}
	return reason.String(), nil
}

// ErrorPayload digs the hex payload out of a failed call or submission. RPC
// error data is consulted first, then the message. Messages may echo
// addresses or calldata, so only runs starting with the Error(string)
// selector are taken from them.
func ErrorPayload(err error) (string, error) {
	if err == nil {
		return "", ErrNoPayload
	}
	var de rpc.DataError
	if errors.As(err, &de) {
		if payload, ok := findPayload(de.ErrorData()); ok {
			return payload, nil
		}
	}
	var best string
	for _, run := range hexRun.FindAllString(err.Error(), -1) {
		if hasRevertSelector(run) && len(run) > len(best) {
			best = run
		}
	}
	if best == "" {
		return "", ErrNoPayload
	}
	return best, nil
}

func hasRevertSelector(run string) bool {
	return len(run) >= 2+len(revertSelector) && strings.EqualFold(run[2:2+len(revertSelector)], revertSelector)
}

// findPayload walks error data as returned by nodes and wallets, which either
// hand over the hex string directly or nest it in JSON objects.
func findPayload(data interface{}) (string, bool) {
	switch data := data.(type) {
	case string:
		if hexRun.MatchString(data) {
			return hexRun.FindString(data), true
		}
	case map[string]interface{}:
		for _, key := range []string{"data", "result", "originalError", "error"} {
			if nested, ok := data[key]; ok {
				if payload, ok := findPayload(nested); ok {
					return payload, true
				}
			}
		}
		for _, nested := range data {
			if payload, ok := findPayload(nested); ok {
				return payload, true
			}
		}
	}
	return "", false
}

// RevertReason combines ErrorPayload and DecodeRevertReason.
func RevertReason(err error) (string, error) {
	payload, perr := ErrorPayload(err)
	if perr != nil {
		return "", perr
	}
	return DecodeRevertReason(payload)
}
