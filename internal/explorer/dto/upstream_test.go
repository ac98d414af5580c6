package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuranest-explorer/internal/entity"
)

func TestJobList_AcceptsArrayAndEnvelope(t *testing.T) {
	var bare JobList
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"j1","status":"processing"}]`), &bare))
	require.Len(t, bare, 1)
	assert.Equal(t, entity.ImportProcessing, bare[0].Status)

	var wrapped JobList
	require.NoError(t, json.Unmarshal([]byte(`{"jobs":[{"id":"j1","status":"completed"},{"id":"j2","status":"failed","error_message":"bad header"}]}`), &wrapped))
	require.Len(t, wrapped, 2)
	require.NotNil(t, wrapped[1].ErrorMessage)
	assert.Equal(t, "bad header", *wrapped[1].ErrorMessage)

	var empty JobList
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Empty(t, empty)
}

func TestWatchlistList_AcceptsEnvelope(t *testing.T) {
	var l WatchlistList
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"user_id":"u1","topic_id":"t1","added_at":"2026-10-01T10:00:00Z"}]}`), &l))
	require.Len(t, l, 1)
	assert.Equal(t, "t1", l[0].TopicID)
}
