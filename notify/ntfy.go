// Package notify pushes fire-and-forget notifications about executed
// trades and safety events. Delivery failures are logged and dropped;
// nothing here may stall or kill a trading loop.
package notify

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/stratlab/internal/logger"
)

// Priorities understood by ntfy.sh.
const (
	PriorityDefault = "default"
	PriorityHigh    = "high"
	PriorityUrgent  = "urgent"
)

type Notifier interface {
	Push(title, message, priority string)
}

// Ntfy publishes to an ntfy.sh topic over plain HTTP POST.
type Ntfy struct {
	Base  string // server base URL, default https://ntfy.sh
	Topic string

	client *http.Client
	log    *slog.Logger
}

func NewNtfy(topic string) *Ntfy {
	return &Ntfy{
		Base:   "https://ntfy.sh",
		Topic:  topic,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    logger.Get("notify"),
	}
}

func (n *Ntfy) Push(title, message, priority string) {
	if priority == "" {
		priority = PriorityDefault
	}

	req, err := http.NewRequest(http.MethodPost, n.Base+"/"+n.Topic, strings.NewReader(message))
	if err != nil {
		n.log.Error("build notification failed", "error", err)
		return
	}
	req.Header.Set("Title", title)
	req.Header.Set("Priority", priority)

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Error("send notification failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("notification rejected", "status", resp.StatusCode)
	}
}

// Nop discards notifications; used when no topic is configured.
type Nop struct{}

func (Nop) Push(title, message, priority string) {}
