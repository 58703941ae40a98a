package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/config"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS scripts (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    length_minutes  INTEGER NOT NULL,
    status          TEXT NOT NULL,
    raw_script_json TEXT NOT NULL DEFAULT '',
    episode_key     TEXT NOT NULL DEFAULT '',
    error_message   TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lines (
    id              TEXT PRIMARY KEY,
    script_id       TEXT NOT NULL REFERENCES scripts(id),
    speaker_role    TEXT NOT NULL,
    speaker_name    TEXT NOT NULL DEFAULT '',
    voice_id        TEXT NOT NULL,
    text            TEXT NOT NULL,
    line_order      INTEGER NOT NULL,
    tts_status      TEXT NOT NULL,
    audio_key       TEXT NOT NULL DEFAULT '',
    avatar_status   TEXT NOT NULL,
    avatar_job_id   TEXT NOT NULL DEFAULT '',
    avatar_asset_id TEXT NOT NULL DEFAULT '',
    avatar_progress REAL NOT NULL DEFAULT 0,
    video_key       TEXT NOT NULL DEFAULT '',
    portrait_key    TEXT NOT NULL DEFAULT '',
    error_message   TEXT NOT NULL DEFAULT '',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL,
    UNIQUE (script_id, line_order)
);

CREATE TABLE IF NOT EXISTS voices (
    voice_id     TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    portrait_key TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lines_script ON lines(script_id);
CREATE INDEX IF NOT EXISTS idx_lines_avatar_status ON lines(avatar_status);
`

const lineColumns = `id, script_id, speaker_role, speaker_name, voice_id, text, line_order,
    tts_status, audio_key, avatar_status, avatar_job_id, avatar_asset_id, avatar_progress,
    video_key, portrait_key, error_message, created_at, updated_at`

const scriptColumns = `id, title, length_minutes, status, raw_script_json, episode_key,
    error_message, created_at, updated_at`

// SQLitePipelineStore persists scripts and lines in SQLite. Transitions that
// gate downstream dispatch are conditional updates keyed on the expected
// predecessor status, so two concurrent workers can never both claim the
// same row.
type SQLitePipelineStore struct {
	db *sql.DB
}

func NewSQLitePipelineStore(dbConfig *config.DatabaseConfig) (*SQLitePipelineStore, error) {
	// busy_timeout and foreign_keys are per-connection, so they must travel
	// in the DSN to reach every connection database/sql opens lazily.
	dsn := dbConfig.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLitePipelineStore{db: db}, nil
}

func (s *SQLitePipelineStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ outbound.PipelineStorePort = (*SQLitePipelineStore)(nil)

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// CreateScript inserts the script and its lines in one transaction so a
// script can never be observed without its full ordered line set.
func (s *SQLitePipelineStore) CreateScript(ctx context.Context, script *domain.Script, lines []*domain.Line) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	timestamp := now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO scripts (id, title, length_minutes, status, raw_script_json, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		script.ID, script.Title, script.LengthMinutes, domain.ScriptPending, script.RawScriptJSON, timestamp, timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}

	for _, line := range lines {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO lines (id, script_id, speaker_role, speaker_name, voice_id, text, line_order,
                tts_status, avatar_status, portrait_key, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, script.ID, line.SpeakerRole, line.SpeakerName, line.VoiceID, line.Text, line.LineOrder,
			domain.TTSPending, domain.AvatarPending, line.PortraitKey, timestamp, timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", line.LineOrder, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit script: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) GetScript(ctx context.Context, scriptID string) (*domain.Script, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+scriptColumns+` FROM scripts WHERE id = ?`, scriptID)
	script, err := scanScript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get script: %w", err)
	}
	return script, nil
}

func (s *SQLitePipelineStore) ListScripts(ctx context.Context, status domain.ScriptStatus) ([]*domain.Script, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT `+scriptColumns+` FROM scripts ORDER BY created_at`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+scriptColumns+` FROM scripts WHERE status = ? ORDER BY created_at`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("list scripts: %w", err)
	}
	defer rows.Close()

	var scripts []*domain.Script
	for rows.Next() {
		script, err := scanScript(rows)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, rows.Err()
}

func (s *SQLitePipelineStore) GetLine(ctx context.Context, lineID string) (*domain.Line, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lineColumns+` FROM lines WHERE id = ?`, lineID)
	line, err := scanLine(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get line: %w", err)
	}
	return line, nil
}

// LinesByScript returns the script's lines strictly by line_order; arrival
// order plays no part anywhere downstream.
func (s *SQLitePipelineStore) LinesByScript(ctx context.Context, scriptID string) ([]*domain.Line, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM lines WHERE script_id = ? ORDER BY line_order`, scriptID)
	if err != nil {
		return nil, fmt.Errorf("lines by script: %w", err)
	}
	defer rows.Close()

	var lines []*domain.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *SQLitePipelineStore) ClaimLineTTS(ctx context.Context, lineID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lines SET tts_status = ?, updated_at = ? WHERE id = ? AND tts_status = ?`,
		domain.TTSProcessing, now(), lineID, domain.TTSPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim tts: %w", err)
	}
	return oneRow(res)
}

// CompleteLineTTS records the audio artifact and hands the line to the avatar
// stage in the same statement.
func (s *SQLitePipelineStore) CompleteLineTTS(ctx context.Context, lineID, audioKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lines SET tts_status = ?, audio_key = ?, avatar_status = ?, updated_at = ?
         WHERE id = ? AND tts_status = ?`,
		domain.TTSComplete, audioKey, domain.AvatarReady, now(), lineID, domain.TTSProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("complete tts: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) FailLineTTS(ctx context.Context, lineID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lines SET tts_status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND tts_status = ?`,
		domain.TTSFailed, reason, now(), lineID, domain.TTSProcessing,
	)
	if err != nil {
		return fmt.Errorf("fail tts: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) ClaimLineAvatar(ctx context.Context, lineID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_status = ?, updated_at = ?
         WHERE id = ? AND avatar_status = ? AND tts_status = ?`,
		domain.AvatarRunning, now(), lineID, domain.AvatarReady, domain.TTSComplete,
	)
	if err != nil {
		return false, fmt.Errorf("claim avatar: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) SetAvatarJob(ctx context.Context, lineID, jobID, assetID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_job_id = ?, avatar_asset_id = ?, updated_at = ? WHERE id = ?`,
		jobID, assetID, now(), lineID,
	)
	if err != nil {
		return fmt.Errorf("set avatar job: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) SetAvatarProgress(ctx context.Context, lineID string, progress float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_progress = ?, updated_at = ? WHERE id = ? AND avatar_status = ?`,
		progress, now(), lineID, domain.AvatarRunning,
	)
	if err != nil {
		return fmt.Errorf("set avatar progress: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) CompleteLineAvatar(ctx context.Context, lineID, videoKey string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_status = ?, video_key = ?, avatar_progress = 1, updated_at = ?
         WHERE id = ? AND avatar_status = ?`,
		domain.AvatarComplete, videoKey, now(), lineID, domain.AvatarRunning,
	)
	if err != nil {
		return false, fmt.Errorf("complete avatar: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) FailLineAvatar(ctx context.Context, lineID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND avatar_status = ?`,
		domain.AvatarFailed, reason, now(), lineID, domain.AvatarRunning,
	)
	if err != nil {
		return fmt.Errorf("fail avatar: %w", err)
	}
	return nil
}

// RequeueFailedAvatar is the administrative retry edge: failed lines go back
// to ready_for_processing with the old job handle and error cleared.
func (s *SQLitePipelineStore) RequeueFailedAvatar(ctx context.Context, lineID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lines SET avatar_status = ?, avatar_job_id = '', avatar_asset_id = '',
            avatar_progress = 0, error_message = '', updated_at = ?
         WHERE id = ? AND avatar_status = ? AND tts_status = ?`,
		domain.AvatarReady, now(), lineID, domain.AvatarFailed, domain.TTSComplete,
	)
	if err != nil {
		return false, fmt.Errorf("requeue avatar: %w", err)
	}
	return oneRow(res)
}

// LinesInAvatarProcessing is the reconciler sweep query: in-flight lines with
// a recorded provider job handle.
func (s *SQLitePipelineStore) LinesInAvatarProcessing(ctx context.Context) ([]*domain.Line, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM lines WHERE avatar_status = ? AND avatar_job_id != '' ORDER BY created_at`,
		domain.AvatarRunning,
	)
	if err != nil {
		return nil, fmt.Errorf("lines in avatar processing: %w", err)
	}
	defer rows.Close()

	var lines []*domain.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *SQLitePipelineStore) MarkScriptProcessing(ctx context.Context, scriptID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.ScriptProcessing, now(), scriptID, domain.ScriptPending,
	)
	if err != nil {
		return false, fmt.Errorf("mark script processing: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) MarkScriptTTSProcessing(ctx context.Context, scriptID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.ScriptTTSProcessing, now(), scriptID, domain.ScriptProcessing,
	)
	if err != nil {
		return false, fmt.Errorf("mark script tts processing: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) CountLines(ctx context.Context, scriptID string) (int, int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(CASE WHEN avatar_status = ? THEN 1 ELSE 0 END), 0)
         FROM lines WHERE script_id = ?`,
		domain.AvatarComplete, scriptID,
	)
	var total, done int
	if err := row.Scan(&total, &done); err != nil {
		return 0, 0, fmt.Errorf("count lines: %w", err)
	}
	return total, done, nil
}

// AdmitScriptForStitch is the exactly-once gate: the status moves to
// stitching only if it is not already in a stitch state, in a single
// conditional update, so near-simultaneous evaluations admit once.
func (s *SQLitePipelineStore) AdmitScriptForStitch(ctx context.Context, scriptID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET status = ?, updated_at = ? WHERE id = ? AND status NOT IN (?, ?, ?)`,
		domain.ScriptStitching, now(), scriptID,
		domain.ScriptStitching, domain.ScriptComplete, domain.ScriptStitchingFailed,
	)
	if err != nil {
		return false, fmt.Errorf("admit script for stitch: %w", err)
	}
	return oneRow(res)
}

func (s *SQLitePipelineStore) CompleteScript(ctx context.Context, scriptID, episodeKey string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET status = ?, episode_key = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.ScriptComplete, episodeKey, now(), scriptID, domain.ScriptStitching,
	)
	if err != nil {
		return fmt.Errorf("complete script: %w", err)
	}
	return nil
}

func (s *SQLitePipelineStore) FailScriptStitch(ctx context.Context, scriptID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE scripts SET status = ?, error_message = ?, updated_at = ? WHERE id = ? AND status = ?`,
		domain.ScriptStitchingFailed, reason, now(), scriptID, domain.ScriptStitching,
	)
	if err != nil {
		return fmt.Errorf("fail script stitch: %w", err)
	}
	return nil
}

func oneRow(res sql.Result) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScript(row rowScanner) (*domain.Script, error) {
	var (
		script               domain.Script
		createdAt, updatedAt string
	)
	err := row.Scan(&script.ID, &script.Title, &script.LengthMinutes, &script.Status,
		&script.RawScriptJSON, &script.EpisodeKey, &script.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	script.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	script.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &script, nil
}

func scanLine(row rowScanner) (*domain.Line, error) {
	var (
		line                 domain.Line
		createdAt, updatedAt string
	)
	err := row.Scan(&line.ID, &line.ScriptID, &line.SpeakerRole, &line.SpeakerName, &line.VoiceID,
		&line.Text, &line.LineOrder, &line.TTSStatus, &line.AudioKey, &line.AvatarStatus,
		&line.AvatarJobID, &line.AvatarAssetID, &line.AvatarProgress, &line.VideoKey,
		&line.PortraitKey, &line.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	line.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	line.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &line, nil
}
