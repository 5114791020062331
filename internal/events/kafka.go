package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic names for the two notification streams.
const (
	TopicProjects    = "chainpass.projects"
	TopicCredentials = "chainpass.credentials"
)

// KafkaPublisher writes events to Kafka, one topic per stream, keyed so a
// single subject's events land on one partition in emission order.
type KafkaPublisher struct {
	client *kgo.Client
}

// NewKafkaPublisher connects to the brokers and ensures both topics exist.
func NewKafkaPublisher(ctx context.Context, brokers []string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(0),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	if _, err := adm.CreateTopics(ctx, 1, 1, nil, TopicProjects, TopicCredentials); err != nil {
		// Topic creation races with other instances; existing topics are fine.
		// Only a dead broker set should stop startup.
		if pingErr := client.Ping(ctx); pingErr != nil {
			client.Close()
			return nil, fmt.Errorf("kafka unreachable: %w", pingErr)
		}
	}

	return &KafkaPublisher{client: client}, nil
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	record := &kgo.Record{
		Topic: topicFor(event.Kind),
		Key:   []byte(event.Key),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce %s: %w", event.Kind, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}

func topicFor(kind Kind) string {
	if kind == KindCredentialIssued {
		return TopicCredentials
	}
	return TopicProjects
}
