package hooks

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversInOrder(t *testing.T) {
	var got []string
	d := NewDispatcher(SinkFunc(func(n Notification) { got = append(got, "first:"+string(n.Kind)) }))
	d.Register(SinkFunc(func(n Notification) { got = append(got, "second:"+string(n.Kind)) }))
	d.Register(nil)

	d.Dispatch(Notification{Kind: KindPodKilled})

	assert.Equal(t, []string{"first:podKilled", "second:podKilled"}, got)
}

func TestDispatcherStampsTime(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var got Notification
	d := NewDispatcher(SinkFunc(func(n Notification) { got = n }))
	d.now = func() time.Time { return fixed }

	d.Dispatch(Notification{Kind: KindPlaybackCompleted})
	assert.Equal(t, fixed, got.At)

	explicit := fixed.Add(time.Hour)
	d.Dispatch(Notification{Kind: KindPlaybackCompleted, At: explicit})
	assert.Equal(t, explicit, got.At)
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *Dispatcher
	assert.NotPanics(t, func() { d.Dispatch(Notification{Kind: KindNodeDown}) })
}

func TestLogSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewLogSink(logger)

	sink.Notify(Notification{Kind: KindPodKilled, Resource: "pod/api", Message: "pod killed", Session: "s1"})
	sink.Notify(Notification{Kind: KindPlaybackCompleted, Resource: "pipeline/success", Message: "playback completed"})

	out := buf.String()
	require.Contains(t, out, "level=WARN msg=\"pod killed\" kind=podKilled resource=pod/api session=s1")
	require.Contains(t, out, "level=INFO msg=\"playback completed\" kind=playbackCompleted")
}
