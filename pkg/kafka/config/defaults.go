package kafkaconfig

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultTopicReservations = "reservation-lifecycle"
	DefaultTopicDLQ          = "reservation-lifecycle-dlq"
	DefaultConsumerGroup     = "probook-notifier"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// -1 newest, -2 oldest
	DefaultConsumerStartOffset    = -2
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = 0
	DefaultConsumerSessionTimeout = 10 * time.Second
	DefaultConsumerMaxRetries     = 3
	DefaultConsumerRetryBackoff   = 200 * time.Millisecond
)
