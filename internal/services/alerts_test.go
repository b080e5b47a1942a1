package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uppath-hq/apiserver/internal/mq"
	"github.com/uppath-hq/apiserver/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCompanyLister struct {
	companies []types.Company
	err       error
}

func (f *fakeCompanyLister) List(context.Context) ([]types.Company, error) {
	return f.companies, f.err
}

type fakeFlagSource struct {
	flags  map[int][]types.LowMotivationFlag
	errFor map[int]error
}

func (f *fakeFlagSource) LowMotivationFlags(_ context.Context, companyID int) ([]types.LowMotivationFlag, error) {
	if err := f.errFor[companyID]; err != nil {
		return nil, err
	}
	return f.flags[companyID], nil
}

type publishedMessage struct {
	channel string
	data    []byte
	attrs   map[string]string
}

type fakeBroker struct {
	published  []publishedMessage
	publishErr error
}

func (f *fakeBroker) Publish(_ context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, publishedMessage{channel: channel, data: data, attrs: attrs})
	return "msg-1", nil
}

func (f *fakeBroker) Subscribe(context.Context, string, mq.Handler) error {
	return nil
}

func (f *fakeBroker) Close() error {
	return nil
}

func sampleFlag(name string, level int) types.LowMotivationFlag {
	return types.LowMotivationFlag{
		FullName:        name,
		MotivationLevel: level,
		RecordedAt:      time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestAlertPublisherPublishAll(t *testing.T) {
	lister := &fakeCompanyLister{companies: []types.Company{
		{ID: 1, Name: "UpPath"},
		{ID: 2, Name: "Acme"},
	}}
	source := &fakeFlagSource{flags: map[int][]types.LowMotivationFlag{
		1: {sampleFlag("Ana Silva", 2), sampleFlag("Bruno Costa", 4)},
	}}
	broker := &fakeBroker{}

	publisher := NewAlertPublisher(lister, source, mq.New(broker), testLogger())
	published, err := publisher.PublishAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	require.Len(t, broker.published, 2)

	first := broker.published[0]
	assert.Equal(t, AlertChannel, first.channel)
	assert.Equal(t, map[string]string{"company_id": "1"}, first.attrs)

	var alert LowMotivationAlert
	require.NoError(t, json.Unmarshal(first.data, &alert))
	assert.Equal(t, "UpPath", alert.CompanyName)
	assert.Equal(t, "Ana Silva", alert.FullName)
	assert.Equal(t, 2, alert.MotivationLevel)
}

func TestAlertPublisherSkipsFailedCompany(t *testing.T) {
	lister := &fakeCompanyLister{companies: []types.Company{
		{ID: 1, Name: "UpPath"},
		{ID: 2, Name: "Acme"},
	}}
	source := &fakeFlagSource{
		flags:  map[int][]types.LowMotivationFlag{2: {sampleFlag("Carla Dias", 3)}},
		errFor: map[int]error{1: errors.New("query timeout")},
	}
	broker := &fakeBroker{}

	publisher := NewAlertPublisher(lister, source, mq.New(broker), testLogger())
	published, err := publisher.PublishAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, published)
	require.Len(t, broker.published, 1)
	assert.Equal(t, map[string]string{"company_id": "2"}, broker.published[0].attrs)
}

func TestAlertPublisherListError(t *testing.T) {
	lister := &fakeCompanyLister{err: errors.New("db down")}

	publisher := NewAlertPublisher(lister, &fakeFlagSource{}, mq.New(&fakeBroker{}), testLogger())
	published, err := publisher.PublishAll(context.Background())
	assert.Error(t, err)
	assert.Zero(t, published)
}

func TestAlertPublisherPublishError(t *testing.T) {
	lister := &fakeCompanyLister{companies: []types.Company{{ID: 1, Name: "UpPath"}}}
	source := &fakeFlagSource{flags: map[int][]types.LowMotivationFlag{
		1: {sampleFlag("Ana Silva", 2)},
	}}
	broker := &fakeBroker{publishErr: errors.New("broker gone")}

	publisher := NewAlertPublisher(lister, source, mq.New(broker), testLogger())
	published, err := publisher.PublishAll(context.Background())
	assert.Error(t, err)
	assert.Zero(t, published)
}

func TestLogAlerts(t *testing.T) {
	handler := LogAlerts(testLogger())

	alert := LowMotivationAlert{
		CompanyID:       1,
		CompanyName:     "UpPath",
		FullName:        "Ana Silva",
		MotivationLevel: 2,
		RecordedAt:      time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(alert)
	require.NoError(t, err)

	assert.NoError(t, handler(context.Background(), mq.Message{ID: "msg-1", Data: data}))
}

func TestLogAlertsBadPayload(t *testing.T) {
	handler := LogAlerts(testLogger())

	// A broken payload is an error so the broker redelivers it.
	err := handler(context.Background(), mq.Message{ID: "msg-2", Data: []byte("{not json")})
	assert.Error(t, err)
}
