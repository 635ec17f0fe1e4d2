package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/testutil"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func newTestTopicManager(conn ConnInterface) *TopicManager {
	return &TopicManager{conn: conn, logger: testutil.NewMockLogger()}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics(0, 0)
	require.Len(t, topics, 2)
	assert.Equal(t, TopicReloadEvents, topics[0].Name)
	assert.Equal(t, 1, topics[0].NumPartitions)
	assert.Equal(t, 1, topics[0].ReplicationFactor)
	assert.Equal(t, TopicReloadDeadLetter, topics[1].Name)
}

func TestCreateTopic_Success(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error {
			require.Len(t, topics, 1)
			assert.Equal(t, "test", topics[0].Topic)
			assert.Equal(t, []kafka.ConfigEntry{{ConfigName: "retention.ms", ConfigValue: "1000"}}, topics[0].ConfigEntries)
			return nil
		},
	}
	m := newTestTopicManager(conn)
	err := m.CreateTopic(context.Background(), TopicConfig{Name: "test", NumPartitions: 1, ReplicationFactor: 1, RetentionMs: 1000})
	assert.NoError(t, err)
}

func TestCreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error { return kafka.TopicAlreadyExists },
	}
	m := newTestTopicManager(conn)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "test", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestCreateTopic_FailureUnlessPresent(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(topics ...kafka.TopicConfig) error { return errors.New("not controller") },
	}
	m := newTestTopicManager(conn)
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "test", NumPartitions: 1, ReplicationFactor: 1}))

	conn.readFunc = func(topics ...string) ([]kafka.Partition, error) {
		return []kafka.Partition{{Topic: "test"}}, nil
	}
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "test", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestCreateTopic_Validation(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{})
	ctx := context.Background()
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{NumPartitions: 1, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: "x", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(ctx, TopicConfig{Name: "x", NumPartitions: 1}))
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	env, err := NewEventEnvelope("type", "src", payload{Name: "acetone"})
	require.NoError(t, err)

	msg, err := env.ToMessage("topic", []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "type", msg.Headers["event_type"])

	decoded, err := MessageToEventEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)

	var p payload
	require.NoError(t, decoded.DecodePayload(&p))
	assert.Equal(t, "acetone", p.Name)
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.Error(t, err)
	_, err = MessageToEventEnvelope(&Message{Value: []byte("{")})
	assert.Error(t, err)

	env := &EventEnvelope{Payload: []byte("null")}
	assert.Error(t, env.DecodePayload(&struct{}{}))
}
