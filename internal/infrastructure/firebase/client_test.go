package firebase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMulticaster struct {
	batches [][]string
	resp    func(batch []string) *messaging.BatchResponse
	err     error
}

func (f *fakeMulticaster) SendEachForMulticast(ctx context.Context, msg *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	f.batches = append(f.batches, msg.Tokens)
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp(msg.Tokens), nil
	}
	return &messaging.BatchResponse{SuccessCount: len(msg.Tokens)}, nil
}

func TestChunkTokens(t *testing.T) {
	tokens := make([]string, 1201)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}

	chunks := chunkTokens(tokens, fcmBatchLimit)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 201)
	assert.Nil(t, chunkTokens(nil, fcmBatchLimit))
}

func TestClient_SendMulticast_Batches(t *testing.T) {
	fake := &fakeMulticaster{}
	c := &Client{msgClient: fake, log: zerolog.Nop()}

	err := c.SendMulticast(context.Background(), make([]string, 750), "t", "b", nil)

	require.NoError(t, err)
	assert.Len(t, fake.batches, 2)
}

func TestClient_SendMulticast_Empty(t *testing.T) {
	fake := &fakeMulticaster{}
	c := &Client{msgClient: fake, log: zerolog.Nop()}

	require.NoError(t, c.SendMulticast(context.Background(), nil, "t", "b", nil))
	assert.Empty(t, fake.batches)
}

func TestClient_SendMulticast_TransportError(t *testing.T) {
	c := &Client{msgClient: &fakeMulticaster{err: errors.New("unavailable")}, log: zerolog.Nop()}

	err := c.SendMulticast(context.Background(), []string{"a"}, "t", "b", nil)

	assert.ErrorContains(t, err, "unavailable")
}

func TestClient_SendMulticast_NonTokenFailureKeepsToken(t *testing.T) {
	var deactivated []string
	fake := &fakeMulticaster{resp: func(batch []string) *messaging.BatchResponse {
		return &messaging.BatchResponse{
			SuccessCount: 1,
			FailureCount: 1,
			Responses: []*messaging.SendResponse{
				{Success: true},
				{Error: errors.New("quota exceeded")},
			},
		}
	}}
	c := &Client{
		msgClient: fake,
		log:       zerolog.Nop(),
		deactivator: func(ctx context.Context, token string) error {
			deactivated = append(deactivated, token)
			return nil
		},
	}

	require.NoError(t, c.SendMulticast(context.Background(), []string{"a", "b"}, "t", "b", nil))
	assert.Empty(t, deactivated)
}
