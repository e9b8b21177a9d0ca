// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Transaction ids count units of IDResolution since EpochOffset.
//
// Both are used to generate ids and to tell their age.
// Change one and every staged transaction will appear to be of a different age.
const (
	IDResolution = 100 * time.Microsecond

	// EpochOffset is subtracted to keep ids short. It corresponds to 2013-12-09.
	EpochOffset = 13866047000000
)

// TransactionID names a transaction, and encodes the time it has been created at.
type TransactionID int64

// lastIssued is the greatest id handed out by this process.
var lastIssued int64

// NewTransactionID derives an id from the given time.
//
// Within one process ids are strictly increasing,
// even if called more than once within IDResolution.
func NewTransactionID(now time.Time) TransactionID {
	candidate := now.UnixNano()/int64(IDResolution) - EpochOffset
	for {
		last := atomic.LoadInt64(&lastIssued)
		next := candidate
		if next <= last {
			next = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastIssued, last, next) {
			return TransactionID(next)
		}
	}
}

// ParseTransactionID accepts positive integers only.
func ParseTransactionID(s string) (TransactionID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidTransactionID
	}
	return TransactionID(n), nil
}

// Time is when the transaction has been created, truncated to IDResolution.
func (id TransactionID) Time() time.Time {
	return time.Unix(0, (int64(id)+EpochOffset)*int64(IDResolution))
}

// Age of the transaction at 'now'.
func (id TransactionID) Age(now time.Time) time.Duration {
	return now.Sub(id.Time())
}

func (id TransactionID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
