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

import "strconv"

// NoRecords is the text of the placeholder row shown for an empty list.
const NoRecords = "No cheques found."

// Header names the columns produced by Rows.
var Header = []string{"#", "Sender", "Bank", "Receiver", "Amount", "Date", "Status"}

// Rows flattens records into table rows, one per record, with the stored
// values verbatim. An empty list renders as a single placeholder row.
func Rows(records []Record) [][]string {
	if len(records) == 0 {
		return [][]string{{NoRecords}}
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.FormatUint(r.SequentialNumber, 10),
			r.Sender.Hex(),
			r.BankName,
			r.ReceiverName,
			r.Amount,
			r.ChequeDate,
			string(r.Status),
		})
	}
	return rows
}
