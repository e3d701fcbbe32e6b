package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c stubSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c stubSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c stubSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c stubSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(stubSchedulerConfig{})
	assert.Error(t, err)
}

func TestDispatchLeadEnrichmentEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(stubSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "enrichment"})
	require.NoError(t, err)
	defer client.Close()

	err = client.DispatchLeadEnrichment(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.NotEmpty(t, mr.Keys(), "expected task data in redis")
}

func TestDispatchDealMarginCheckEnqueues(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(stubSchedulerConfig{redisURL: "redis://" + mr.Addr(), queue: "enrichment"})
	require.NoError(t, err)
	defer client.Close()

	err = client.DispatchDealMarginCheck(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.NotEmpty(t, mr.Keys())
}

func TestNilClientDispatchIsNoOp(t *testing.T) {
	var client *Client
	assert.NoError(t, client.DispatchLeadEnrichment(context.Background(), uuid.New()))
	assert.NoError(t, client.Close())
}
