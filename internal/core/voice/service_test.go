package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNarrator struct {
	narration string
	err       error
	lastDot   string
}

func (n *stubNarrator) Narrate(ctx context.Context, dotSource string) (string, error) {
	n.lastDot = dotSource
	return n.narration, n.err
}

type stubSynthesizer struct {
	audio       []byte
	err         error
	lastText    string
	lastVoiceID string
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	s.lastText = text
	s.lastVoiceID = voiceID
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_GenerateAudioSummary(t *testing.T) {
	dir := t.TempDir()
	narrator := &stubNarrator{narration: "This service parses code."}
	synth := &stubSynthesizer{audio: make([]byte, 32*1024)}

	svc := NewService(narrator, synth,
		WithAudiosDir(dir),
		WithClock(func() time.Time { return time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC) }),
		WithServiceLogger(testLogger()))

	result, err := svc.GenerateAudioSummary(context.Background(), "digraph G { A -> B; }", "voice-1")
	require.NoError(t, err)

	assert.Equal(t, "digraph G { A -> B; }", narrator.lastDot)
	assert.Equal(t, "This service parses code.", synth.lastText)
	assert.Equal(t, "voice-1", synth.lastVoiceID)
	assert.InDelta(t, 2.0, result.DurationSeconds, 0.001)
	assert.Equal(t, filepath.Join(dir, "summary_20240315_103045.mp3"), result.AudioPath)

	data, err := os.ReadFile(result.AudioPath)
	require.NoError(t, err)
	assert.Len(t, data, 32*1024)
}

func TestService_GenerateAudioSummaryRequiresDiagram(t *testing.T) {
	svc := NewService(&stubNarrator{}, &stubSynthesizer{}, WithServiceLogger(testLogger()))

	_, err := svc.GenerateAudioSummary(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrNoDiagram)
}

func TestService_SynthesizeRequiresText(t *testing.T) {
	svc := NewService(&stubNarrator{}, &stubSynthesizer{}, WithServiceLogger(testLogger()))

	_, err := svc.Synthesize(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoText)
}

func TestService_NarrationFailurePropagates(t *testing.T) {
	narrator := &stubNarrator{err: errors.New("model unavailable")}
	svc := NewService(narrator, &stubSynthesizer{}, WithServiceLogger(testLogger()))

	_, err := svc.GenerateAudioSummary(context.Background(), "digraph G {}", "")
	assert.ErrorContains(t, err, "failed to generate narration")
}

func TestService_SynthesizeWithoutAudiosDirSkipsSave(t *testing.T) {
	synth := &stubSynthesizer{audio: []byte("mp3-data")}
	svc := NewService(&stubNarrator{}, synth, WithServiceLogger(testLogger()))

	result, err := svc.Synthesize(context.Background(), "hello", "")
	require.NoError(t, err)

	assert.Empty(t, result.AudioPath)
	assert.Equal(t, []byte("mp3-data"), result.Audio)
}
