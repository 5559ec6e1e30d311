package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBatch(t *testing.T) {
	t.Parallel()

	body := []byte(`{
		"events": [
			{"type": "follow", "replyToken": "T1", "source": {"userId": "U1"}},
			{"type": "message", "replyToken": "T2", "source": {"userId": "U2"}, "message": {"type": "text", "text": "hello"}},
			{"type": "postback", "replyToken": "T3", "source": {"userId": "U3"}, "postback": {"data": "action=start_consultation"}},
			{"type": "unfollow", "source": {"userId": "U4"}}
		]
	}`)

	events, err := DecodeBatch(body)
	require.NoError(t, err)
	require.Len(t, events, 4)

	assert.Equal(t, TypeFollow, events[0].Type)
	assert.Equal(t, "U1", events[0].UserID)
	assert.Equal(t, "T1", events[0].ReplyToken)

	assert.Equal(t, TypeMessage, events[1].Type)
	assert.Equal(t, "text", events[1].MessageType)
	assert.Equal(t, "hello", events[1].Text)

	assert.Equal(t, TypePostback, events[2].Type)
	assert.Equal(t, "action=start_consultation", events[2].PostbackData)

	assert.Equal(t, TypeUnfollow, events[3].Type)
	assert.Empty(t, events[3].ReplyToken)
}

func TestDecodeBatchUnknownType(t *testing.T) {
	t.Parallel()

	body := []byte(`{"events": [{"type": "videoPlayComplete", "source": {"userId": "U1"}}]}`)

	events, err := DecodeBatch(body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, TypeUnknown, events[0].Type)
	assert.Equal(t, "videoPlayComplete", events[0].RawType, "raw type should survive for logging")
	assert.Equal(t, "U1", events[0].UserID)
}

func TestDecodeBatchMissingFields(t *testing.T) {
	t.Parallel()

	// No source, no replyToken: decoding succeeds, the dispatcher skips it.
	body := []byte(`{"events": [{"type": "message", "message": {"type": "text", "text": "hi"}}]}`)

	events, err := DecodeBatch(body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].UserID)
	assert.Empty(t, events[0].ReplyToken)
}

func TestDecodeBatchEmpty(t *testing.T) {
	t.Parallel()

	events, err := DecodeBatch([]byte(`{"events":[]}`))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeBatchInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := DecodeBatch([]byte(`{"events": [`))
	assert.Error(t, err)
}
