package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testProducer(w *fakeWriter) (*Producer, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	cfg := defaultProducerConfig()
	cfg.Registerer = reg
	return newProducer(w, cfg), reg
}

func TestPublishEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p, _ := testProducer(w)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, "reports", []byte("1"), map[string]int{"tick": 1}))
	require.NoError(t, p.Publish(ctx, "reports", nil, "plain"))
	require.NoError(t, p.Publish(ctx, "reports", nil, []byte("raw")))

	require.Len(t, w.msgs, 3)
	assert.Equal(t, "reports", w.msgs[0].Topic)
	assert.Equal(t, []byte("1"), w.msgs[0].Key)
	assert.JSONEq(t, `{"tick":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "plain", string(w.msgs[1].Value))
	assert.Equal(t, "raw", string(w.msgs[2].Value))
}

func TestPublishRecordsMetrics(t *testing.T) {
	w := &fakeWriter{}
	p, _ := testProducer(w)

	require.NoError(t, p.PublishBatch(context.Background(), "reports", []Message{{Value: "a"}, {Value: "bb"}}))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.metrics.msgs.WithLabelValues("reports", "gzip", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.metrics.bytes.WithLabelValues("reports", "gzip")))

	w.err = errors.New("broker down")
	err := p.Publish(context.Background(), "reports", nil, "c")
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.metrics.errs.WithLabelValues("reports")))
}

func TestPublishRejectsUnencodable(t *testing.T) {
	p, _ := testProducer(&fakeWriter{})
	err := p.Publish(context.Background(), "reports", nil, make(chan int))
	assert.ErrorContains(t, err, "marshal value")
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(WithRegisterer(nil))
	assert.ErrorContains(t, err, "brokers are required")
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("bogus"))
}
