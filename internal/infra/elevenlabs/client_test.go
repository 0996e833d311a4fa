package elevenlabs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestClient_Synthesize(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey string
	var gotBody ttsRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("xi-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("mp3-audio-bytes"))
	}))
	defer ts.Close()

	client, err := NewClient("test-key", WithBaseURL(ts.URL), WithClientLogger(testLogger()))
	require.NoError(t, err)

	audio, err := client.Synthesize(context.Background(), "hello world", "voice-123")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-audio-bytes"), audio)
	assert.Equal(t, "/v1/text-to-speech/voice-123", gotPath)
	assert.Equal(t, "output_format=mp3_44100_128", gotQuery)
	assert.Equal(t, "test-key", gotAPIKey)
	assert.Equal(t, "hello world", gotBody.Text)
	assert.Equal(t, "eleven_multilingual_v2", gotBody.ModelID)
}

func TestClient_SynthesizeDefaultVoice(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("audio"))
	}))
	defer ts.Close()

	client, err := NewClient("test-key", WithBaseURL(ts.URL), WithClientLogger(testLogger()))
	require.NoError(t, err)

	_, err = client.Synthesize(context.Background(), "hello", "")
	require.NoError(t, err)

	assert.Equal(t, "/v1/text-to-speech/"+DefaultVoiceID, gotPath)
}

func TestClient_SynthesizeAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer ts.Close()

	client, err := NewClient("bad-key", WithBaseURL(ts.URL), WithClientLogger(testLogger()))
	require.NoError(t, err)

	_, err = client.Synthesize(context.Background(), "hello", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "invalid api key")
}
