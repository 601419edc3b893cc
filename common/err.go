package common

import "errors"

var (
	ClosedError   = errors.New("COMMON:CLOSED")
	CanceledError = errors.New("COMMON:CANCELED")
	TimeoutError  = errors.New("COMMON:TIMEOUT")
)

func RunIf(fn func()) func(v interface{}) {
	return func(v interface{}) {
		if v != nil {
			fn()
		}
	}
}

func Or(l error, r error) error {
	if l != nil {
		return l
	} else {
		return r
	}
}
