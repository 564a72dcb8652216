package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tin-dog/internal/domain/matching"
)

// MatchingRepo implementa los repos de matching sobre las tablas
// likes, matches, conversations y messages.
type MatchingRepo struct {
	db *sql.DB
}

func NewMatchingRepo(db *sql.DB) *MatchingRepo {
	return &MatchingRepo{db: db}
}

// Swipes, Matches y Conversations separan las interfaces que comparten nombres
// de método (GetByID, Count).
func (r *MatchingRepo) Swipes() matching.SwipeRepository { return swipesRepo{r.db} }
func (r *MatchingRepo) Matches() matching.MatchRepository { return matchesRepo{r.db} }
func (r *MatchingRepo) Conversations() matching.ConversationRepository { return conversationsRepo{r.db} }
func (r *MatchingRepo) Pairs() matching.PairStore { return pairsRepo{r.db} }

type swipesRepo struct{ db *sql.DB }

func (r swipesRepo) RecordLike(ctx context.Context, s matching.Swipe) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO likes (actor_user_id, dog_id, target_owner_id, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (actor_user_id, dog_id) DO NOTHING
	`, s.ActorUserID, s.DogID, toNullString(s.TargetOwnerID), s.CreatedAt)
	return err
}

func (r swipesRepo) HasLikeOnOwner(ctx context.Context, actorUserID, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, nil
	}
	var ok bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM likes WHERE actor_user_id = $1 AND target_owner_id = $2
		)
	`, actorUserID, ownerID).Scan(&ok)
	return ok, err
}

type matchesRepo struct{ db *sql.DB }

const matchColumns = `id, participant_a, participant_b, dog_id, strategy, status, created_at`

func (r matchesRepo) GetByID(ctx context.Context, id string) (matching.Match, error) {
	return scanMatch(r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
}

func (r matchesRepo) FindBetween(ctx context.Context, a, b string) (matching.Match, error) {
	lo, hi := sortedPair(a, b)
	return scanMatch(r.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE pair_lo = $1 AND pair_hi = $2`, lo, hi))
}

func (r matchesRepo) ListByParticipant(ctx context.Context, participantID string) ([]matching.Match, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY created_at ASC, id ASC
	`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r matchesRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n)
	return n, err
}

func scanMatch(row rowScanner) (matching.Match, error) {
	var m matching.Match
	err := row.Scan(
		&m.ID,
		&m.Participants[0],
		&m.Participants[1],
		&m.DogID,
		&m.Strategy,
		&m.Status,
		&m.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return matching.Match{}, matching.ErrMatchNotFound
	}
	return m, err
}

type conversationsRepo struct{ db *sql.DB }

const convColumns = `id, match_id, participant_a, participant_b, created_at`

func (r conversationsRepo) GetByID(ctx context.Context, id string) (matching.Conversation, error) {
	return scanConversation(r.db.QueryRowContext(ctx, `SELECT `+convColumns+` FROM conversations WHERE id = $1`, id))
}

func (r conversationsRepo) GetByMatchID(ctx context.Context, matchID string) (matching.Conversation, error) {
	return scanConversation(r.db.QueryRowContext(ctx, `SELECT `+convColumns+` FROM conversations WHERE match_id = $1`, matchID))
}

func (r conversationsRepo) AppendMessage(ctx context.Context, m matching.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, seq, sender_id, content, ts, read)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, m.ID, m.ConversationID, m.Seq, m.SenderID, m.Content, m.Timestamp, m.Read)
	if isUniqueViolation(err) {
		return fmt.Errorf("message seq %d already taken: %w", m.Seq, err)
	}
	return err
}

const messageColumns = `id, conversation_id, seq, sender_id, content, ts, read`

func (r conversationsRepo) ListMessages(ctx context.Context, conversationID string) ([]matching.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r conversationsRepo) LastMessage(ctx context.Context, conversationID string) (matching.Message, bool, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, conversationID))
	if errors.Is(err, sql.ErrNoRows) {
		return matching.Message{}, false, nil
	}
	if err != nil {
		return matching.Message{}, false, err
	}
	return m, true, nil
}

func (r conversationsRepo) MarkRead(ctx context.Context, conversationID, readerID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET read = TRUE
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
	`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (r conversationsRepo) CountUnread(ctx context.Context, conversationID, readerID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE conversation_id = $1 AND sender_id <> $2 AND read = FALSE
	`, conversationID, readerID).Scan(&n)
	return n, err
}

func (r conversationsRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, err
}

func scanConversation(row rowScanner) (matching.Conversation, error) {
	var c matching.Conversation
	err := row.Scan(&c.ID, &c.MatchID, &c.Participants[0], &c.Participants[1], &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return matching.Conversation{}, matching.ErrNotFound
	}
	return c, err
}

// scanMessage deja pasar sql.ErrNoRows; LastMessage lo interpreta.
func scanMessage(row rowScanner) (matching.Message, error) {
	var m matching.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.SenderID, &m.Content, &m.Timestamp, &m.Read)
	return m, err
}

type pairsRepo struct{ db *sql.DB }

// CreatePair inserta match y conversación en una transacción.
func (r pairsRepo) CreatePair(ctx context.Context, m matching.Match, c matching.Conversation) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	lo, hi := sortedPair(m.Participants[0], m.Participants[1])
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO matches (id, participant_a, participant_b, pair_lo, pair_hi, dog_id, strategy, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, m.ID, m.Participants[0], m.Participants[1], lo, hi, m.DogID, m.Strategy, m.Status, m.CreatedAt); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, match_id, participant_a, participant_b, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, c.ID, c.MatchID, c.Participants[0], c.Participants[1], c.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

func sortedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
