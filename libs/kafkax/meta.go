package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// EventMeta identifies one event as it travels between services. EventID is
// the dedup key consumers record in their inbox table.
type EventMeta struct {
	EventID   string
	EventType string
}

// ExtractEventMeta reads the event_id and event_type headers, falling back
// to the message key and topic for messages produced by other tooling.
func ExtractEventMeta(msg kafka.Message) EventMeta {
	m := EventMeta{
		EventID:   HeaderValue(msg.Headers, "event_id"),
		EventType: HeaderValue(msg.Headers, "event_type"),
	}
	if m.EventID == "" {
		m.EventID = string(msg.Key)
	}
	if m.EventType == "" {
		m.EventType = msg.Topic
	}
	return m
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// SplitBrokers turns a comma-separated broker list into addresses, dropping
// empty entries.
func SplitBrokers(raw string) []string {
	var out []string
	for _, piece := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(piece); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
