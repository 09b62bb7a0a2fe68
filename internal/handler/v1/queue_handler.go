package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/domain/ticket"
)

type QueueSnapshot struct {
	Waiting    []int `json:"waiting"`
	Length     int   `json:"length"`
	LastIssued int   `json:"last_issued"`
}

type TicketPosition struct {
	Ticket int `json:"ticket"`
	Ahead  int `json:"ahead"`
}

// QueueHandler exposes the waiting room to displays. Read-only.
type QueueHandler struct {
	queue *ticket.Queue
}

func NewQueueHandler(queue *ticket.Queue) *QueueHandler {
	return &QueueHandler{queue: queue}
}

func (h *QueueHandler) Snapshot(c *gin.Context) {
	waiting := h.queue.Waiting()
	if waiting == nil {
		waiting = []int{}
	}
	respondOK(c, QueueSnapshot{
		Waiting:    waiting,
		Length:     len(waiting),
		LastIssued: h.queue.LastIssued(),
	})
}

func (h *QueueHandler) Position(c *gin.Context) {
	n, ok := parseTicket(c, "ticket")
	if !ok {
		return
	}

	ahead, err := h.queue.Position(n)
	if err != nil {
		respondServiceError(c, err, map[string]string{
			"last_issued": strconv.Itoa(h.queue.LastIssued()),
		})
		return
	}
	respondOK(c, TicketPosition{Ticket: n, Ahead: ahead})
}
