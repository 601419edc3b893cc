package driver

import (
	"time"

	uuid "github.com/satori/go.uuid"

	"github.com/Eventuria/eventstore/common"
)

// WatchHandshake is the "outer layer" SPEC_FULL.md §4.5 specifies: it
// races a timer against the handshake completing and, on expiry,
// injects a HandshakeTimeout onto in. It is started once per Confirming
// stage (the caller re-arms it after every stage transition) and exits
// on its own once the timer fires or ctx's Control closes, grounded on
// the teacher's common.NewTimer (common/timer.go).
func WatchHandshake(ctx common.Context, timeout time.Duration, cid ConnectionId, correlation uuid.UUID, in chan<- Msg) {
	closed := common.NewTimer(ctx.Control(), timeout)
	go func() {
		select {
		case <-ctx.Control().Closed():
			return
		case <-closed:
			select {
			case <-ctx.Control().Closed():
			case in <- HandshakeTimeout(cid, correlation):
			}
		}
	}()
}
