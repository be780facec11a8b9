package kafkax

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// ReadyCheck dials the first broker and verifies that topic exists with
// exactly partitions partitions, the count outbox rows are partitioned for.
func ReadyCheck(brokers, topic string, partitions int) func(context.Context) error {
	return func(ctx context.Context) error {
		list := SplitBrokers(brokers)
		if len(list) == 0 {
			return errors.New("kafka brokers not configured")
		}
		dialer := kafka.Dialer{Timeout: 2 * time.Second}
		conn, err := dialer.DialContext(ctx, "tcp", list[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		found, err := conn.ReadPartitions(topic)
		if err != nil {
			return fmt.Errorf("read partitions of %s: %w", topic, err)
		}
		return checkPartitions(found, topic, partitions)
	}
}

func checkPartitions(found []kafka.Partition, topic string, want int) error {
	count := 0
	for _, p := range found {
		if p.Topic == topic {
			count++
		}
	}
	switch {
	case count == 0:
		return fmt.Errorf("topic %s not found", topic)
	case count != want:
		return fmt.Errorf("topic %s has %d partitions, outbox is configured for %d", topic, count, want)
	}
	return nil
}
