package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chemsafe/internal/testutil"
)

type mockKafkaReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	fetchErr  error
	closed    bool
}

func (m *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if m.fetchErr != nil {
		err := m.fetchErr
		m.fetchErr = nil
		m.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *mockKafkaReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msgs...)
	return nil
}

func (m *mockKafkaReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockKafkaReader) Stats() kafka.ReaderStats { return kafka.ReaderStats{} }

func (m *mockKafkaReader) committedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.committed)
}

func newTestConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Brokers: []string{"localhost:9092"},
		GroupID: "chemsafe-test",
		Topics:  []string{TopicReloadEvents},
		Retry: RetryConfig{
			MaxRetries:   1,
			RetryBackoff: time.Millisecond,
		},
		FetchErrorCooldown: time.Millisecond,
	}
}

func TestValidateConsumerConfig(t *testing.T) {
	assert.NoError(t, ValidateConsumerConfig(newTestConsumerConfig()))

	cfg := newTestConsumerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = newTestConsumerConfig()
	cfg.GroupID = ""
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = newTestConsumerConfig()
	cfg.Topics = nil
	assert.Error(t, ValidateConsumerConfig(cfg))

	cfg = newTestConsumerConfig()
	cfg.AutoOffsetReset = "middle"
	assert.Error(t, ValidateConsumerConfig(cfg))
}

func TestConsumer_StartTwice(t *testing.T) {
	c := newConsumer(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil)
	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, ErrAlreadyRunning, c.Start(context.Background()))
	assert.NoError(t, c.Close())
}

func TestConsumer_DispatchesAndCommits(t *testing.T) {
	reader := &mockKafkaReader{
		fetchErr: errors.New("transient"),
		queue: []kafka.Message{
			{Topic: TopicReloadEvents, Value: []byte("a"), Headers: []kafka.Header{{Key: "event_type", Value: []byte(EventTypeReload)}}},
			{Topic: "unrouted", Value: []byte("b")},
		},
	}
	c := newConsumer(reader, newTestConsumerConfig(), nil, testutil.NewMockLogger())

	got := make(chan *Message, 1)
	c.Subscribe(TopicReloadEvents, func(ctx context.Context, msg *Message) error {
		got <- msg
		return nil
	})
	require.NoError(t, c.Start(context.Background()))

	select {
	case msg := <-got:
		assert.Equal(t, "a", string(msg.Value))
		assert.Equal(t, EventTypeReload, msg.Headers["event_type"])
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}

	assert.Eventually(t, func() bool { return reader.committedCount() == 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Close())
	assert.True(t, reader.closed)

	st := c.Stats()
	assert.Equal(t, int64(2), st.Consumed)
	assert.Equal(t, int64(1), st.Processed)
}

func TestProcessMessage_RetrySuccess(t *testing.T) {
	c := newConsumer(&mockKafkaReader{}, newTestConsumerConfig(), nil, nil)

	attempts := 0
	err := c.processMessage(context.Background(), &Message{}, func(ctx context.Context, msg *Message) error {
		attempts++
		if attempts < 2 {
			return errors.New("fail")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, int64(1), c.metrics.retried.Load())
}

func TestProcessMessage_DeadLetter(t *testing.T) {
	w := new(MockWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || msgs[0].Topic != TopicReloadDeadLetter {
			return false
		}
		for _, h := range msgs[0].Headers {
			if h.Key == "original_topic" && string(h.Value) == TopicReloadEvents {
				return true
			}
		}
		return false
	})).Return(nil)

	cfg := newTestConsumerConfig()
	cfg.Retry.DeadLetterTopic = TopicReloadDeadLetter
	c := newConsumer(&mockKafkaReader{}, cfg, newTestProducer(w), testutil.NewMockLogger())

	handlerErr := errors.New("always")
	err := c.processMessage(context.Background(),
		&Message{Topic: TopicReloadEvents, Value: []byte("x"), Headers: map[string]string{}},
		func(ctx context.Context, msg *Message) error { return handlerErr })

	assert.ErrorIs(t, err, handlerErr)
	assert.Equal(t, int64(1), c.metrics.deadLettered.Load())
	w.AssertExpectations(t)
}

func TestProcessMessage_ContextCancelled(t *testing.T) {
	cfg := newTestConsumerConfig()
	cfg.Retry.RetryBackoff = time.Hour
	c := newConsumer(&mockKafkaReader{}, cfg, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.processMessage(ctx, &Message{}, func(ctx context.Context, msg *Message) error {
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
