//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"tradeinvoice/internal/platform/config"
	"tradeinvoice/internal/platform/kafka"
	"tradeinvoice/pkg/platform/audit"
	"tradeinvoice/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	producer *kafka.Producer
	topic    string
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
	s.topic = "tradeinvoice.lifecycle.test"

	var err error
	s.producer, err = kafka.NewProducer(config.Kafka{
		Brokers:  s.redpanda.Brokers,
		Topic:    s.topic,
		ClientID: "producer-suite",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.producer.EnsureTopic(context.Background(), 1, 1))
}

func (s *ProducerSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close(context.Background())
	}
}

func (s *ProducerSuite) TestEnsureTopicIsIdempotent() {
	s.NoError(s.producer.EnsureTopic(context.Background(), 1, 1))
}

func (s *ProducerSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.producer.Append(ctx, audit.Event{
		ID:        "evt-1",
		Category:  audit.CategoryLifecycle,
		Timestamp: time.Now(),
		Action:    string(audit.EventInvoiceVerified),
		ActorID:   "oracle-O",
		InvoiceID: 3,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var msg kafka.Message
	s.Require().NoError(json.Unmarshal(records[0].Value, &msg))
	s.Equal("invoice_verified", msg.Action)
	s.Equal(uint64(3), msg.InvoiceID)
	s.Equal([]byte("3"), records[0].Key)
}
