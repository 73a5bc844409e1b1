// Package events publishes image lifecycle events over NATS JetStream.
// Publishing is optional: with no NATS URL configured every publish is a
// no-op, and a failed publish never fails the upload that triggered it.
package events

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const streamName = "image-events"

var (
	nc *nats.Conn
	js nats.JetStreamContext
)

// Connect dials NATS and makes sure the image-events stream exists.
func Connect(url string) error {
	if nc != nil && nc.IsConnected() {
		return nil
	}

	opts := []nats.Option{
		nats.Name("image-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return err
	}
	nc = conn

	jsCtx, err := nc.JetStream()
	if err != nil {
		nc.Close()
		nc = nil
		return err
	}
	js = jsCtx

	if err := ensureStream(); err != nil {
		log.Printf("[NATS] warning: failed to ensure stream: %v", err)
	}

	log.Println("[NATS] connected and JetStream initialized")
	return nil
}

func ensureStream() error {
	if _, err := js.StreamInfo(streamName); err == nil {
		return nil
	}

	_, err := js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"images.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// Publish sends an event on the given subject, e.g. "images.uploaded".
// Each message carries a fresh id for consumer-side idempotency.
func Publish(subject string, payload interface{}) error {
	if js == nil {
		return errors.New("jetstream not initialized")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := js.Publish(subject, data, nats.MsgId(uuid.New().String())); err != nil {
		log.Printf("[NATS] publish failed subject=%s err=%v", subject, err)
		return err
	}
	return nil
}

// Enabled reports whether a connection was established.
func Enabled() bool {
	return js != nil
}

// Close drains the connection on shutdown.
func Close() {
	if nc != nil && nc.IsConnected() {
		nc.Close()
	}
}
