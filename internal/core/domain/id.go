package domain

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/thanhpk/randstr"
)

var recordCounter uint64

// NewDepositID returns a new unique deposit id.
func NewDepositID() string {
	return newRecordID(DepositIDPrefix)
}

// NewWithdrawalID returns a new unique withdrawal id.
func NewWithdrawalID() string {
	return newRecordID(WithdrawalIDPrefix)
}

// newRecordID composes the current time in millis with a process-wide
// monotonic counter. Both parts are zero-padded so that ids sort by creation
// order. The random suffix keeps ids unique across restarts within the same
// millisecond.
func newRecordID(prefix string) string {
	seq := atomic.AddUint64(&recordCounter, 1)
	millis := time.Now().UnixMilli()
	return fmt.Sprintf(
		"%s-%013d-%08d-%s", prefix, millis, seq%100000000, randstr.Hex(2),
	)
}
