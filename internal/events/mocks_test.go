package events

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockWriter) Close() error {
	m.closed = true
	return nil
}

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type mockChannel struct {
	declared   []string
	declareErr error
	published  []published
	closed     bool
}

func (m *mockChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	m.declared = append(m.declared, name+":"+kind)
	return m.declareErr
}

func (m *mockChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	m.published = append(m.published, published{exchange, key, msg})
	return nil
}

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}
