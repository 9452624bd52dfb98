package app

import (
	"testing"

	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	producer, err := initKafkaProducer(nil, log.WithField("test", "kafka"))
	require.NoError(t, err)
	require.Nil(t, producer)
}

func TestInitKafkaProducer_UnreachableBrokers(t *testing.T) {
	producer, err := initKafkaProducer([]string{"127.0.0.1:1"}, log.WithField("test", "kafka"))
	require.Error(t, err)
	require.Nil(t, producer)
}

func TestCloseKafka_NilProducer(t *testing.T) {
	require.NotPanics(t, func() {
		closeKafka(nil, log.WithField("test", "kafka"))
	})
}

func TestCloseKafka_MockProducer(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	producer := kafka.NewProducerFromSync(sp, log.WithField("test", "kafka"))

	require.NotPanics(t, func() {
		closeKafka(producer, log.WithField("test", "kafka"))
	})
}
