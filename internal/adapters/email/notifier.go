package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"sync"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/config"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// message is a queued reminder email.
type message struct {
	to      string
	subject string
	body    string
}

// Notifier delivers maintenance reminders over SMTP. Sends are queued onto a
// buffered channel and drained by a single background worker, so a slow mail
// server never stalls the sweeps or the request path. A full queue drops the
// message with a log line.
type Notifier struct {
	cfg    config.SMTPConfig
	queue  chan message
	wg     sync.WaitGroup
	logger *logger.Logger

	// send is swappable for tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewNotifier creates the notifier and starts its delivery worker.
func NewNotifier(cfg config.SMTPConfig, log *logger.Logger) *Notifier {
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}

	n := &Notifier{
		cfg:    cfg,
		queue:  make(chan message, size),
		logger: log.WithComponent("email"),
		send:   smtp.SendMail,
	}

	n.wg.Add(1)
	go n.worker()

	return n
}

var _ ports.Notifier = (*Notifier)(nil)

// Notify enqueues a reminder email for the task's owner. Never blocks.
func (n *Notifier) Notify(ctx context.Context, user *entities.User, product *entities.Product, task *entities.Task) error {
	msg := message{
		to:      user.Email,
		subject: fmt.Sprintf("Maintenance reminder: %s", task.TaskName),
		body:    buildBody(user, product, task),
	}

	select {
	case n.queue <- msg:
		return nil
	default:
		n.logger.Warnw("Email queue full, dropping reminder", "to", msg.to, "task_id", task.ID)
		return nil
	}
}

// Close drains the queue and stops the worker.
func (n *Notifier) Close() {
	close(n.queue)
	n.wg.Wait()
}

func (n *Notifier) worker() {
	defer n.wg.Done()

	for msg := range n.queue {
		if err := n.deliver(msg); err != nil {
			n.logger.WithError(err).Errorw("Failed to deliver email", "to", msg.to)
		}
	}
}

func (n *Notifier) deliver(msg message) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.to)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.body)

	if err := n.send(addr, auth, n.cfg.From, []string{msg.to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}

func buildBody(user *entities.User, product *entities.Product, task *entities.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Name)
	fmt.Fprintf(&b, "The task %q for your product %q needs attention.\n\n", task.TaskName, product.Name)
	if task.NextMaintenance != nil {
		fmt.Fprintf(&b, "Due date: %s\n", task.NextMaintenance.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Current status: %s\n", task.Status)
	b.WriteString("\nOpen the app to complete or postpone the task.\n")
	return b.String()
}
