package kafkax

import (
	"strings"

	"github.com/segmentio/kafka-go"
)

// RecordMeta identifies a consumed record for logging and tracing.
type RecordMeta struct {
	Topic     string
	Partition int
	Offset    int64
}

func ExtractRecordMeta(msg kafka.Message) RecordMeta {
	return RecordMeta{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset}
}

func HeaderValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
