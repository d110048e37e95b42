package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/conexao-adventure/booking-api/internal/repository"
)

// StartWhatsAppConsumer connects to RabbitMQ, declares the durable
// whatsapp.outbound queue and consumes it.  There is no real WhatsApp
// gateway; "delivery" logs the wa.me click-to-chat URL with the
// rendered text and marks the log row sent.  The function runs a
// reconnect loop with exponential backoff and never returns; failures
// in individual messages are rejected without requeue so a poison
// message cannot loop forever.
func StartWhatsAppConsumer(messages *repository.MessageRepo) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("whatsapp-consumer: dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, messages); err != nil {
			log.Warn().Err(err).Msg("whatsapp-consumer: consume loop ended, reconnecting")
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, messages *repository.MessageRepo) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("whatsapp-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(whatsappQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(whatsappQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := deliver(d.Body, messages); err != nil {
			log.Warn().Err(err).Msg("whatsapp-consumer: delivery failed")
			_ = d.Nack(false, false) // no requeue, avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func deliver(body []byte, messages *repository.MessageRepo) error {
	var ev WhatsAppOutboundEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	waURL := fmt.Sprintf("https://wa.me/%s?text=%s", ev.PhoneNumber, url.QueryEscape(ev.Text))
	log.Info().
		Uint64("message_id", ev.MessageID).
		Str("recipient", ev.RecipientName).
		Str("type", ev.MessageType).
		Str("wa_url", waURL).
		Msg("whatsapp message delivered")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := messages.MarkSent(ctx, ev.MessageID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}
