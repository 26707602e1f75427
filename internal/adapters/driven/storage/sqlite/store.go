package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/arclight-labs/coach-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/arclight-labs/coach-cli/internal/core/domain"
	"github.com/arclight-labs/coach-cli/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.coach/data/coach.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".coach", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "coach.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CorpusStore returns a CorpusStore interface backed by this store.
func (s *Store) CorpusStore() driven.CorpusStore {
	return &corpusStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// PersonaStore returns a PersonaStore interface backed by this store.
func (s *Store) PersonaStore() driven.PersonaStore {
	return &personaStore{store: s}
}

// ConversationStore returns a ConversationStore interface backed by this store.
func (s *Store) ConversationStore() driven.ConversationStore {
	return &conversationStore{store: s}
}

// IndexStore returns an IndexStore interface backed by this store.
func (s *Store) IndexStore() driven.IndexStore {
	return &indexStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Corpus Store ====================

// corpusStore implements driven.CorpusStore.
type corpusStore struct {
	store *Store
}

var _ driven.CorpusStore = (*corpusStore)(nil)

// SaveCreator stores or updates a creator.
func (s *corpusStore) SaveCreator(ctx context.Context, creator domain.Creator) error {
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO creators (id, username, platform, display_name, bio, follower_count, created_at, last_scraped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			platform = excluded.platform,
			display_name = excluded.display_name,
			bio = excluded.bio,
			follower_count = excluded.follower_count,
			last_scraped = excluded.last_scraped
	`, creator.ID, creator.Username, creator.Platform, creator.DisplayName,
		creator.Bio, creator.FollowerCount, creator.CreatedAt, nullTime(creator.LastScraped))

	if err != nil {
		return fmt.Errorf("saving creator: %w", err)
	}
	return nil
}

// GetCreator retrieves a creator by ID.
func (s *corpusStore) GetCreator(ctx context.Context, id string) (*domain.Creator, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, username, platform, display_name, bio, follower_count, created_at, last_scraped
		FROM creators WHERE id = ?
	`, id)
	return scanCreator(row.Scan)
}

// GetCreatorByUsername retrieves a creator by username.
func (s *corpusStore) GetCreatorByUsername(ctx context.Context, username string) (*domain.Creator, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, username, platform, display_name, bio, follower_count, created_at, last_scraped
		FROM creators WHERE username = ?
	`, username)
	return scanCreator(row.Scan)
}

// ListCreators returns all tracked creators ordered by username.
func (s *corpusStore) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, username, platform, display_name, bio, follower_count, created_at, last_scraped
		FROM creators ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("listing creators: %w", err)
	}
	defer rows.Close()

	var creators []domain.Creator
	for rows.Next() {
		creator, err := scanCreator(rows.Scan)
		if err != nil {
			return nil, err
		}
		creators = append(creators, *creator)
	}
	return creators, rows.Err()
}

// SaveItems appends content items, skipping ids that already exist.
func (s *corpusStore) SaveItems(ctx context.Context, items []domain.ContentItem) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO content_items (
			id, creator_id, media_type, caption, transcript,
			likes, comments, shares, views, engagement_rate,
			hashtags, mentions, permalink, duration_seconds, posted_at, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		hashtags, err := marshalJSON(item.Hashtags)
		if err != nil {
			return fmt.Errorf("marshalling hashtags for %s: %w", item.ID, err)
		}
		mentions, err := marshalJSON(item.Mentions)
		if err != nil {
			return fmt.Errorf("marshalling mentions for %s: %w", item.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			item.ID, item.CreatorID, string(item.MediaType), item.Caption, item.Transcript,
			item.Engagement.Likes, item.Engagement.Comments, item.Engagement.Shares,
			item.Engagement.Views, item.Engagement.Rate,
			hashtags, mentions, item.Permalink, item.DurationSeconds,
			nullTime(item.PostedAt), nullTime(item.ScrapedAt),
		); err != nil {
			return fmt.Errorf("saving item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing items: %w", err)
	}
	return nil
}

// GetItem retrieves a content item by ID.
func (s *corpusStore) GetItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, creator_id, media_type, caption, transcript,
			likes, comments, shares, views, engagement_rate,
			hashtags, mentions, permalink, duration_seconds, posted_at, scraped_at
		FROM content_items WHERE id = ?
	`, id)
	return scanItem(row.Scan)
}

// ListItems returns a creator's items, newest first.
func (s *corpusStore) ListItems(ctx context.Context, creatorID string) ([]domain.ContentItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, creator_id, media_type, caption, transcript,
			likes, comments, shares, views, engagement_rate,
			hashtags, mentions, permalink, duration_seconds, posted_at, scraped_at
		FROM content_items WHERE creator_id = ?
		ORDER BY posted_at DESC, id
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Stats summarises a creator's corpus.
func (s *corpusStore) Stats(ctx context.Context, creatorID string) (domain.CorpusStats, error) {
	var stats domain.CorpusStats
	row := s.store.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN media_type IN ('video', 'reel') THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN transcript != '' THEN 1 ELSE 0 END), 0)
		FROM content_items WHERE creator_id = ?
	`, creatorID)
	if err := row.Scan(&stats.TotalItems, &stats.VideoItems, &stats.TranscribedItems); err != nil {
		return stats, fmt.Errorf("reading corpus stats: %w", err)
	}

	row = s.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE creator_id = ?`, creatorID)
	if err := row.Scan(&stats.ChunkCount); err != nil {
		return stats, fmt.Errorf("reading chunk count: %w", err)
	}
	return stats, nil
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// ReplaceChunks atomically replaces all chunks for a creator.
func (s *chunkStore) ReplaceChunks(ctx context.Context, creatorID string, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE creator_id = ?`, creatorID); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, creator_id, source_ids, text, kind, topic_tags, position, tokens, quality, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		sourceIDs, err := marshalJSON(chunk.SourceIDs)
		if err != nil {
			return fmt.Errorf("marshalling source ids for %s: %w", chunk.ID, err)
		}
		topicTags, err := marshalJSON(chunk.TopicTags)
		if err != nil {
			return fmt.Errorf("marshalling topic tags for %s: %w", chunk.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.CreatorID, sourceIDs, chunk.Text, string(chunk.Kind),
			topicTags, chunk.Position, chunk.Tokens, chunk.Quality,
			float32SliceToBytes(chunk.Embedding),
		); err != nil {
			return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *chunkStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, creator_id, source_ids, text, kind, topic_tags, position, tokens, quality, embedding
		FROM chunks WHERE id = ?
	`, id)
	return scanChunk(row.Scan)
}

// ListChunks returns all chunks for a creator in position order.
func (s *chunkStore) ListChunks(ctx context.Context, creatorID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, creator_id, source_ids, text, kind, topic_tags, position, tokens, quality, embedding
		FROM chunks WHERE creator_id = ?
		ORDER BY kind, position, id
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows.Scan)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

// DeleteChunks removes all chunks for a creator.
func (s *chunkStore) DeleteChunks(ctx context.Context, creatorID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE creator_id = ?`, creatorID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// ==================== Persona Store ====================

// personaStore implements driven.PersonaStore.
type personaStore struct {
	store *Store
}

var _ driven.PersonaStore = (*personaStore)(nil)

// SaveProfile stores a new profile version.
func (s *personaStore) SaveProfile(ctx context.Context, profile *domain.PersonaProfile) error {
	expertise, err := marshalJSON(profile.ExpertiseAreas)
	if err != nil {
		return fmt.Errorf("marshalling expertise areas: %w", err)
	}
	frameworks, err := marshalJSON(profile.Frameworks)
	if err != nil {
		return fmt.Errorf("marshalling frameworks: %w", err)
	}
	phrases, err := marshalJSON(profile.SignaturePhrases)
	if err != nil {
		return fmt.Errorf("marshalling signature phrases: %w", err)
	}
	results, err := marshalJSON(profile.KeyResults)
	if err != nil {
		return fmt.Errorf("marshalling key results: %w", err)
	}

	createdAt := profile.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO persona_profiles (
			creator_id, version, expertise_areas, frameworks, teaching_style,
			signature_phrases, key_results, system_prompt, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, profile.CreatorID, profile.Version, expertise, frameworks, profile.TeachingStyle,
		phrases, results, profile.SystemPrompt, createdAt)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return fmt.Errorf("profile v%d for %s: %w", profile.Version, profile.CreatorID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the latest profile for a creator.
func (s *personaStore) GetProfile(ctx context.Context, creatorID string) (*domain.PersonaProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT creator_id, version, expertise_areas, frameworks, teaching_style,
			signature_phrases, key_results, system_prompt, created_at
		FROM persona_profiles WHERE creator_id = ?
		ORDER BY version DESC LIMIT 1
	`, creatorID)
	return scanProfile(row.Scan)
}

// GetProfileVersion retrieves a specific profile version.
func (s *personaStore) GetProfileVersion(ctx context.Context, creatorID string, version int) (*domain.PersonaProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT creator_id, version, expertise_areas, frameworks, teaching_style,
			signature_phrases, key_results, system_prompt, created_at
		FROM persona_profiles WHERE creator_id = ? AND version = ?
	`, creatorID, version)
	return scanProfile(row.Scan)
}

// ==================== Conversation Store ====================

// conversationStore implements driven.ConversationStore.
type conversationStore struct {
	store *Store
}

var _ driven.ConversationStore = (*conversationStore)(nil)

// SaveSession stores a session.
func (s *conversationStore) SaveSession(ctx context.Context, session domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (id, creator_id, title, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title
	`, session.ID, session.CreatorID, session.Title, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *conversationStore) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, creator_id, title, created_at FROM sessions WHERE id = ?
	`, id)

	var session domain.Session
	if err := row.Scan(&session.ID, &session.CreatorID, &session.Title, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &session, nil
}

// ListSessions returns a creator's sessions, newest first.
func (s *conversationStore) ListSessions(ctx context.Context, creatorID string) ([]domain.Session, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, creator_id, title, created_at FROM sessions
		WHERE creator_id = ? ORDER BY created_at DESC, id
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(&session.ID, &session.CreatorID, &session.Title, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// AppendMessage adds a message to a session.
func (s *conversationStore) AppendMessage(ctx context.Context, msg domain.Message) error {
	chunkIDs, err := marshalJSON(msg.ChunkIDs)
	if err != nil {
		return fmt.Errorf("marshalling chunk ids: %w", err)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, chunk_ids, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, chunkIDs, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// ListMessages returns a session's messages in insertion order.
func (s *conversationStore) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, chunk_ids, created_at
		FROM messages WHERE session_id = ?
		ORDER BY created_at, rowid
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var role, chunkIDs string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &chunkIDs, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Role = domain.MessageRole(role)
		if err := unmarshalJSON(chunkIDs, &msg.ChunkIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk ids: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// ==================== Index Store ====================

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// Put stores the serialized index for a creator.
func (s *indexStore) Put(ctx context.Context, creatorID string, blob []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO kb_indexes (creator_id, blob, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(creator_id) DO UPDATE SET
			blob = excluded.blob,
			updated_at = excluded.updated_at
	`, creatorID, blob, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	return nil
}

// Get retrieves the serialized index for a creator.
func (s *indexStore) Get(ctx context.Context, creatorID string) ([]byte, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT blob FROM kb_indexes WHERE creator_id = ?`, creatorID)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return blob, nil
}

// Delete removes the serialized index for a creator.
func (s *indexStore) Delete(ctx context.Context, creatorID string) error {
	if _, err := s.store.db.ExecContext(ctx,
		`DELETE FROM kb_indexes WHERE creator_id = ?`, creatorID); err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// marshalJSON encodes v as JSON. Nil slices encode as "null".
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalJSON decodes a JSON column, tolerating "null" and empty strings.
func unmarshalJSON(data string, v any) error {
	if data == "" || data == jsonNull {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanCreator scans a creator row using the given scan function.
func scanCreator(scan func(...any) error) (*domain.Creator, error) {
	var creator domain.Creator
	var lastScraped sql.NullTime
	if err := scan(&creator.ID, &creator.Username, &creator.Platform, &creator.DisplayName,
		&creator.Bio, &creator.FollowerCount, &creator.CreatedAt, &lastScraped); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning creator: %w", err)
	}
	if lastScraped.Valid {
		creator.LastScraped = lastScraped.Time
	}
	return &creator, nil
}

// scanItem scans a content item row using the given scan function.
func scanItem(scan func(...any) error) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var mediaType, hashtags, mentions string
	var postedAt, scrapedAt sql.NullTime

	if err := scan(&item.ID, &item.CreatorID, &mediaType, &item.Caption, &item.Transcript,
		&item.Engagement.Likes, &item.Engagement.Comments, &item.Engagement.Shares,
		&item.Engagement.Views, &item.Engagement.Rate,
		&hashtags, &mentions, &item.Permalink, &item.DurationSeconds,
		&postedAt, &scrapedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	item.MediaType = domain.MediaType(mediaType)
	if err := unmarshalJSON(hashtags, &item.Hashtags); err != nil {
		return nil, fmt.Errorf("unmarshalling hashtags: %w", err)
	}
	if err := unmarshalJSON(mentions, &item.Mentions); err != nil {
		return nil, fmt.Errorf("unmarshalling mentions: %w", err)
	}
	if postedAt.Valid {
		item.PostedAt = postedAt.Time
	}
	if scrapedAt.Valid {
		item.ScrapedAt = scrapedAt.Time
	}
	return &item, nil
}

// scanChunk scans a chunk row using the given scan function.
func scanChunk(scan func(...any) error) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var kind, sourceIDs, topicTags string
	var embeddingBlob []byte

	if err := scan(&chunk.ID, &chunk.CreatorID, &sourceIDs, &chunk.Text, &kind,
		&topicTags, &chunk.Position, &chunk.Tokens, &chunk.Quality, &embeddingBlob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Kind = domain.ChunkKind(kind)
	if err := unmarshalJSON(sourceIDs, &chunk.SourceIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling source ids: %w", err)
	}
	if err := unmarshalJSON(topicTags, &chunk.TopicTags); err != nil {
		return nil, fmt.Errorf("unmarshalling topic tags: %w", err)
	}
	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
	return &chunk, nil
}

// scanProfile scans a persona profile row using the given scan function.
func scanProfile(scan func(...any) error) (*domain.PersonaProfile, error) {
	var profile domain.PersonaProfile
	var expertise, frameworks, phrases, results string

	if err := scan(&profile.CreatorID, &profile.Version, &expertise, &frameworks,
		&profile.TeachingStyle, &phrases, &results, &profile.SystemPrompt, &profile.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning profile: %w", err)
	}

	if err := unmarshalJSON(expertise, &profile.ExpertiseAreas); err != nil {
		return nil, fmt.Errorf("unmarshalling expertise areas: %w", err)
	}
	if err := unmarshalJSON(frameworks, &profile.Frameworks); err != nil {
		return nil, fmt.Errorf("unmarshalling frameworks: %w", err)
	}
	if err := unmarshalJSON(phrases, &profile.SignaturePhrases); err != nil {
		return nil, fmt.Errorf("unmarshalling signature phrases: %w", err)
	}
	if err := unmarshalJSON(results, &profile.KeyResults); err != nil {
		return nil, fmt.Errorf("unmarshalling key results: %w", err)
	}
	return &profile, nil
}

// nullTime maps a zero time to NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
