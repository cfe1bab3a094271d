package queue

// consumer.go contains the background consumer that drains the
// reservation.updated and order.updated queues and appends structured
// lines to logs/notifications.log.  Push delivery to user devices is out
// of scope; this consumer is the durable fan-out point those deliveries
// would hang off.

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ, declares both durable
// queues, and starts consuming messages.  The function runs a reconnect
// loop with exponential backoff and keeps running indefinitely; processing
// errors are logged and the offending message is rejected without requeue
// so the server continues operating.
func StartNotificationConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("notification-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{ReservationQueueName, OrderQueueName} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    resMsgs, err := ch.Consume(ReservationQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", ReservationQueueName, err)
    }
    ordMsgs, err := ch.Consume(OrderQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume %s: %w", OrderQueueName, err)
    }

    for {
        select {
        case d, ok := <-resMsgs:
            if !ok {
                return errors.New("reservation deliveries channel closed")
            }
            ackOrReject(d, handleReservationMessage(d.Body))
        case d, ok := <-ordMsgs:
            if !ok {
                return errors.New("order deliveries channel closed")
            }
            ackOrReject(d, handleOrderMessage(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("notification-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleReservationMessage(body []byte) error {
    var ev ReservationUpdatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    slot := "-"
    if ev.TimeSlotID != nil {
        slot = fmt.Sprintf("%d", *ev.TimeSlotID)
    }
    line := fmt.Sprintf("[%s] Reservation %s | reservation_id=%s | user_id=%d | event_id=%d | event=%q | slot=%s | party_size=%d\n",
        ev.OccurredAt, ev.Status, ev.ReservationID, ev.UserID, ev.EventID, ev.EventTitle, slot, ev.PartySize)
    return appendNotification(line)
}

func handleOrderMessage(body []byte) error {
    var ev OrderUpdatedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Order %s | order_id=%s | user_id=%d | truck_id=%d | truck=%q | total=%d cents\n",
        ev.OccurredAt, ev.Status, ev.OrderID, ev.UserID, ev.FoodTruckID, ev.TruckName, ev.TotalCents)
    return appendNotification(line)
}

func appendNotification(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "notifications.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
