package kafkax

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Murmur2Partitioner assigns a root context identifier to a partition using
// the same murmur2 hash as the Java client's default partitioner, applied to
// the canonical string form of the identifier.
type Murmur2Partitioner struct {
	partitions []int
	balancer   kafka.Murmur2Balancer
}

func NewMurmur2Partitioner(count int) (*Murmur2Partitioner, error) {
	if count <= 0 {
		return nil, fmt.Errorf("partition count must be positive, got %d", count)
	}
	partitions := make([]int, count)
	for i := range partitions {
		partitions[i] = i
	}
	return &Murmur2Partitioner{
		partitions: partitions,
		balancer:   kafka.Murmur2Balancer{Consistent: true},
	}, nil
}

func (p *Murmur2Partitioner) Partition(rootContextID uuid.UUID) int {
	return p.balancer.Balance(kafka.Message{Key: []byte(rootContextID.String())}, p.partitions...)
}

func (p *Murmur2Partitioner) Count() int {
	return len(p.partitions)
}
