package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// SplitBrokers parses a comma separated broker list from config.
func SplitBrokers(s string) []string {
	var brokers []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}

// EventMeta is the envelope metadata carried in message headers.
type EventMeta struct {
	EventID   string
	EventType string
}

func ExtractEventMeta(msg kafka.Message) EventMeta {
	var meta EventMeta
	for _, h := range msg.Headers {
		switch strings.ToLower(h.Key) {
		case "event_id":
			meta.EventID = string(h.Value)
		case "event_type":
			meta.EventType = string(h.Value)
		}
	}
	return meta
}
