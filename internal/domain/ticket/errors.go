package ticket

import "errors"

var (
	ErrQueueEmpty       = errors.New("no tickets waiting")
	ErrTicketNotWaiting = errors.New("ticket is not waiting")
)
