// Package queue contains the background consumer that listens to the
// audit queue and appends one line per event to <dir>/audit.log.
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/pistac/admin-backend/internal/logging"
)

// DefaultAuditQueue is used when no queue name is configured.
const DefaultAuditQueue = "admin.audit"

// StartAuditConsumer connects to RabbitMQ, declares the audit queue
// (durable), and consumes until ctx is cancelled. Broker failures are
// retried with exponential backoff; a message that cannot be written is
// rejected without requeue so the loop keeps moving.
func StartAuditConsumer(ctx context.Context, url, queueName, dir string) error {
    if queueName == "" {
        queueName = DefaultAuditQueue
    }
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            logging.Warn().Err(err).Dur("retry_in", backoff).Msg("audit-consumer: failed to dial broker")
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = consumeLoop(ctx, conn, queueName, dir)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        logging.Warn().Err(err).Msg("audit-consumer: consume loop ended; reconnecting")
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queueName, dir string) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        logging.Warn().Err(err).Msg("audit-consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := AppendAuditLine(dir, d.Body); err != nil {
                logging.Error().Err(err).Msg("audit-consumer: handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// AppendAuditLine decodes one message body and appends its formatted line
// to dir/audit.log, creating the directory if needed.
func AppendAuditLine(dir string, body []byte) error {
    var ev AuditEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if dir == "" {
        dir = "logs"
    }
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", dir, err)
    }
    f, err := os.OpenFile(filepath.Join(dir, "audit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatAuditLine renders ev as a single human-friendly line ending in '\n'.
func FormatAuditLine(ev AuditEvent) string {
    data := "-"
    if ev.Data != nil {
        if b, err := json.Marshal(ev.Data); err == nil {
            data = string(b)
        }
    }
    return fmt.Sprintf("[%s] %s | %s=%d | actor=%d | data=%s\n",
        ev.OccurredAt, ev.Action, ev.Entity, ev.EntityID, ev.ActorID, data)
}
