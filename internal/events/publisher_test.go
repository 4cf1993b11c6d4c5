package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/billflow/backend/internal/action"
	"github.com/wonny/billflow/backend/pkg/config"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed++
	return nil
}

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC) }

func queue() []action.Item {
	return []action.Item{
		{ID: "action-38a3859b0de2", ClientName: "Acme", ContractID: 5, Urgency: action.UrgencyCritical, RevenueImpact: 120000},
		{ID: "action-leak-13ed33788364", ClientName: "Globex", ContractID: 7, Urgency: action.UrgencyMedium, RevenueImpact: 30000},
	}
}

func TestKafkaPublisher_PublishActions(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "billflow.actions", fixedNow, nil)

	n, err := p.PublishActions(context.Background(), "snap-1", queue())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "action-38a3859b0de2", string(w.msgs[0].Key))
	assert.Equal(t, fixedNow(), w.msgs[0].Time)

	var ev ActionEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, "snap-1", ev.SnapshotID)
	assert.Equal(t, 2, ev.Rank)
	assert.Equal(t, "Globex", ev.Action.ClientName)
	assert.Equal(t, 30000.0, ev.Action.RevenueImpact)
}

func TestKafkaPublisher_Empty(t *testing.T) {
	w := &fakeWriter{}
	n, err := newKafkaPublisher(w, "t", fixedNow, nil).PublishActions(context.Background(), "s", nil)

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, w.msgs)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	_, err := newKafkaPublisher(w, "billflow.actions", fixedNow, nil).PublishActions(context.Background(), "s", queue())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "write 2 actions to billflow.actions")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, "t", fixedNow, nil)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	_, err := p.PublishActions(context.Background(), "s", queue())
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNew(t *testing.T) {
	pub, err := New(config.KafkaConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogPublisher{}, pub)

	n, err := pub.PublishActions(context.Background(), "s", queue())
	require.NoError(t, err)
	assert.Zero(t, n)

	pub, err = New(config.KafkaConfig{Brokers: []string{"localhost:9092"}, ActionsTopic: "billflow.actions"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &KafkaPublisher{}, pub)
	assert.NoError(t, pub.Close())
}
