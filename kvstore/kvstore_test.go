package kvstore

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wheelercj/parhelion/quotes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestMessageRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	msg := &discordgo.Message{
		ID:        "msg1",
		ChannelID: "chan1",
		Content:   "hello",
		Author:    &discordgo.User{ID: "user1"},
	}
	require.NoError(t, s.SetMessage(msg))

	got, err := s.GetMessage("chan1", "msg1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "user1", got.Author.ID)

	_, err = s.GetMessage("chan1", "other")
	assert.Error(t, err)
}

func TestSnipedRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	_, err := s.GetSniped("chan1")
	assert.Error(t, err)

	msg := &discordgo.Message{
		ID:        "msg1",
		ChannelID: "chan1",
		Content:   "deleted",
		Author:    &discordgo.User{ID: "user1"},
	}
	require.NoError(t, s.SetSniped(msg))

	got, err := s.GetSniped("chan1")
	require.NoError(t, err)
	assert.Equal(t, "deleted", got.Content)
}

func TestQuoteOfDayRoundTrip(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	_, err := s.GetQuoteOfDay()
	assert.Error(t, err)

	require.NoError(t, s.SetQuoteOfDay(&quotes.Quote{Text: "q", Author: "a"}))

	got, err := s.GetQuoteOfDay()
	require.NoError(t, err)
	assert.Equal(t, "q", got.Text)
	assert.Equal(t, "a", got.Author)
}

func TestCloseStopsBackgroundWork(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Close())

	// The gc loop's stop channel is closed exactly once; a second Close must
	// not panic on it.
	assert.NotPanics(t, func() { _ = s.Close() })
	select {
	case <-s.stop:
	default:
		t.Fatal("stop channel still open after Close")
	}
}
