package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gita/config"
	"gita/internal/domain"
	"gita/internal/port"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSession() *domain.Session {
	now := time.Date(2024, 5, 1, 12, 30, 15, 123456789, time.UTC)
	s := domain.NewSession("abc", now)
	s.RequestCount = 4
	s.Usage.VerseUsage["2.47"] = 2
	s.Usage.ChapterUsage[2] = 3
	s.Usage.LastServed = []domain.VerseID{"2.47", "3.19"}
	s.History = []domain.Turn{{
		Question: "What is my duty?",
		Answer:   domain.Answer{ShortAnswer: "Act.", DetailedExplanation: "Act without attachment."},
		Verses:   []domain.VerseID{"2.47"},
		At:       now,
	}}
	s.Context = [][]domain.VerseID{{"2.47", "3.19"}}
	return s
}

func TestBoltStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	want := sampleSession()
	require.NoError(t, s.Put(want))

	got, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", want.CreatedAt, got.CreatedAt)
	assert.Equal(t, 4, got.RequestCount)
	assert.Equal(t, want.Usage.VerseUsage, got.Usage.VerseUsage)
	assert.Equal(t, want.Usage.ChapterUsage, got.Usage.ChapterUsage)
	assert.Equal(t, want.Usage.LastServed, got.Usage.LastServed)
	require.Len(t, got.History, 1)
	assert.Equal(t, want.History[0].Answer, got.History[0].Answer)
	assert.Equal(t, want.Context, got.Context)
}

func TestBoltStore_NotFoundAndDelete(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	require.NoError(t, s.Put(sampleSession()))
	require.NoError(t, s.Delete("abc"))
	_, err = s.Get("abc")
	assert.ErrorIs(t, err, port.ErrSessionNotFound)

	assert.Error(t, s.Put(&domain.Session{}))
}

func TestBoltStore_ListAndClear(t *testing.T) {
	s := openTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		sess := sampleSession()
		sess.ID = id
		require.NoError(t, s.Put(sess))
	}

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.Clear())
	all, err = s.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(sampleSession()))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Usage.UsageCount("2.47"))
}

func TestMigrate(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := s.Migrate(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsMigration)
	assert.Equal(t, 0, result.OldVersion)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, info.Version)
	assert.Equal(t, ComputeCorpusHash(cfg), info.CorpusHash)

	result, err = s.CheckMigration(cfg)
	require.NoError(t, err)
	assert.False(t, result.NeedsMigration)
	assert.False(t, result.NeedsReset)
}

func TestMigrate_CorpusChangeDropsSessions(t *testing.T) {
	s := openTestStore(t)
	cfg := config.DefaultConfig()
	_, err := s.Migrate(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Put(sampleSession()))

	cfg.Corpus.MatchField = "meaning"
	result, err := s.Migrate(cfg)
	require.NoError(t, err)
	assert.True(t, result.NeedsReset)
	assert.Equal(t, "corpus configuration changed", result.Reason)

	all, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, all)

	info, err := s.GetSchemaInfo()
	require.NoError(t, err)
	assert.Equal(t, ComputeCorpusHash(cfg), info.CorpusHash)
}
