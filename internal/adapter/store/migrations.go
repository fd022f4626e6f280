package store

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/zeebo/blake3"
	"go.etcd.io/bbolt"

	"gita/config"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the session encoding.
const CurrentSchemaVersion = 1

var (
	keySchemaVersion = []byte("schema_version")
	keyCorpusHash    = []byte("corpus_hash")
)

// SchemaInfo stores the schema version and a fingerprint of the corpus
// settings the stored usage counts refer to.
type SchemaInfo struct {
	Version    int
	CorpusHash string
}

func (s *BoltStore) GetSchemaInfo() (*SchemaInfo, error) {
	var info SchemaInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if v := b.Get(keySchemaVersion); v != nil {
			n, err := strconv.Atoi(string(v))
			if err != nil {
				return fmt.Errorf("corrupt schema version %q: %w", v, err)
			}
			info.Version = n
		}
		if h := b.Get(keyCorpusHash); h != nil {
			info.CorpusHash = string(h)
		}
		return nil
	})
	return &info, err
}

func (s *BoltStore) SetSchemaInfo(info *SchemaInfo) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if err := b.Put(keySchemaVersion, []byte(strconv.Itoa(info.Version))); err != nil {
			return err
		}
		return b.Put(keyCorpusHash, []byte(info.CorpusHash))
	})
}

// ComputeCorpusHash fingerprints the settings that decide which verses
// exist. Verse IDs recorded under another corpus are meaningless.
func ComputeCorpusHash(cfg *config.Config) string {
	sum := blake3.Sum256([]byte(cfg.Corpus.Path + "\x00" + cfg.Corpus.MatchField))
	return hex.EncodeToString(sum[:8])
}

// MigrationResult describes the result of a migration check.
type MigrationResult struct {
	NeedsMigration bool
	NeedsReset     bool
	OldVersion     int
	NewVersion     int
	Reason         string
}

// CheckMigration compares the stored schema with this build and config.
func (s *BoltStore) CheckMigration(cfg *config.Config) (*MigrationResult, error) {
	info, err := s.GetSchemaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to get schema info: %w", err)
	}

	result := &MigrationResult{
		OldVersion: info.Version,
		NewVersion: CurrentSchemaVersion,
	}

	switch {
	case info.Version == 0:
		result.NeedsMigration = true
		result.Reason = "initializing schema version"
	case info.Version < CurrentSchemaVersion:
		result.NeedsMigration = true
		result.Reason = fmt.Sprintf("schema upgrade from v%d to v%d", info.Version, CurrentSchemaVersion)
	case info.Version > CurrentSchemaVersion:
		result.NeedsReset = true
		result.Reason = fmt.Sprintf("database created by newer version (v%d > v%d)", info.Version, CurrentSchemaVersion)
		return result, nil
	}

	if info.CorpusHash != "" && info.CorpusHash != ComputeCorpusHash(cfg) {
		result.NeedsReset = true
		result.Reason = "corpus configuration changed"
	}
	return result, nil
}

// Migrate brings the schema up to date. When the corpus changed, stored
// sessions are dropped because their usage counts name foreign verses.
func (s *BoltStore) Migrate(cfg *config.Config) (*MigrationResult, error) {
	result, err := s.CheckMigration(cfg)
	if err != nil {
		return nil, err
	}
	if result.NeedsReset {
		if err := s.Clear(); err != nil {
			return nil, fmt.Errorf("failed to reset sessions: %w", err)
		}
	}
	if !result.NeedsMigration && !result.NeedsReset {
		return result, nil
	}
	return result, s.SetSchemaInfo(&SchemaInfo{
		Version:    CurrentSchemaVersion,
		CorpusHash: ComputeCorpusHash(cfg),
	})
}
