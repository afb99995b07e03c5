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

import "github.com/ethereum/go-ethereum/metrics"

var (
	submittedMeter    = metrics.NewRegisteredMeter("txflow/submitted", nil)
	failedMeter       = metrics.NewRegisteredMeter("txflow/failed", nil)
	estimateFallbacks = metrics.NewRegisteredCounter("txflow/estimate/fallback", nil)
	simulationReverts = metrics.NewRegisteredCounter("txflow/simulation/reverted", nil)
	decodedReasons    = metrics.NewRegisteredCounter("txflow/revert/decoded", nil)
	confirmationTimer = metrics.NewRegisteredTimer("txflow/confirmation", nil)
)
