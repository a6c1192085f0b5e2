package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

var idSeq uint64

// GenCommentID generates a unique comment id from the current UTC
// nanosecond timestamp and an atomic sequence number. The format is
// "c-<timestamp>-<seq>".
func GenCommentID() string {
	n := time.Now().UTC().UnixNano()
	s := atomic.AddUint64(&idSeq, 1)
	return fmt.Sprintf("c-%d-%d", n, s)
}
