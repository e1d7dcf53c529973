package kafka

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	last []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.last = append([]kafka.Message{}, msgs...)
	return w.err
}

func TestProducer_Publish(t *testing.T) {
	fw := &fakeWriter{}
	p := newProducerWithWriter(fw)

	require.NoError(t, p.Publish(context.Background(), "api_key.changed", []byte("u1"), []byte("v")))
	require.Len(t, fw.last, 1)
	require.Equal(t, "api_key.changed", fw.last[0].Topic)
	require.Equal(t, []byte("u1"), fw.last[0].Key)
	require.Equal(t, []byte("v"), fw.last[0].Value)
}

func TestProducer_PublishError(t *testing.T) {
	fw := &fakeWriter{err: context.DeadlineExceeded}
	p := newProducerWithWriter(fw)

	err := p.Publish(context.Background(), "api_key.changed", []byte("u1"), []byte("{}"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, p.Close())
}

func TestNewProducer_Close(t *testing.T) {
	p := NewProducer([]string{"localhost:0"})
	require.NotNil(t, p)
	require.NoError(t, p.Close())
}
