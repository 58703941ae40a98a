package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

// The voice catalog shares the pipeline database; the store implements both
// ports.
var _ outbound.VoiceStorePort = (*SQLitePipelineStore)(nil)

func (s *SQLitePipelineStore) CreateVoice(ctx context.Context, voice *domain.Voice) error {
	timestamp := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO voices (voice_id, name, portrait_key, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		voice.VoiceID, voice.Name, voice.PortraitKey, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert voice: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) GetVoice(ctx context.Context, voiceID string) (*domain.Voice, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT voice_id, name, portrait_key, created_at, updated_at FROM voices WHERE voice_id = ?`,
		voiceID,
	)
	voice, err := scanVoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get voice: %w", err)
	}
	return voice, nil
}

func (s *SQLitePipelineStore) ListVoices(ctx context.Context) ([]*domain.Voice, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT voice_id, name, portrait_key, created_at, updated_at FROM voices ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer rows.Close()

	var voices []*domain.Voice
	for rows.Next() {
		voice, err := scanVoice(rows)
		if err != nil {
			return nil, err
		}
		voices = append(voices, voice)
	}
	return voices, rows.Err()
}

// SetVoicePortrait replaces the portrait reference; false means the voice
// does not exist.
func (s *SQLitePipelineStore) SetVoicePortrait(ctx context.Context, voiceID, portraitKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE voices SET portrait_key = ?, updated_at = ? WHERE voice_id = ?`,
		portraitKey, now(), voiceID,
	)
	if err != nil {
		return false, fmt.Errorf("set voice portrait: %w", err)
	}
	return oneRow(res)
}

func scanVoice(row rowScanner) (*domain.Voice, error) {
	var (
		voice                domain.Voice
		createdAt, updatedAt string
	)
	err := row.Scan(&voice.VoiceID, &voice.Name, &voice.PortraitKey, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	voice.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	voice.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &voice, nil
}
