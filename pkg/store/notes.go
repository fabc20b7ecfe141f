package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Note is a short post shown on the desktop.
type Note struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

func scanNote(row scanner) (*Note, error) {
	var (
		n       Note
		tags    string
		created int64
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &tags, &created); err != nil {
		return nil, err
	}
	n.Tags = decodeTags(tags)
	n.CreatedAt = time.Unix(0, created).UTC()
	return &n, nil
}

// CreateNote stores a note. Title and content are required.
func (s *Store) CreateNote(ctx context.Context, n Note) (*Note, error) {
	const op = "CreateNote"

	if blank(n.Title) || blank(n.Content) {
		return nil, invalid(op, "title and content are required")
	}

	n.ID = newID()
	n.Tags = normalizeTags(n.Tags)
	n.CreatedAt = s.now().UTC()

	tags, err := encodeTags(n.Tags)
	if err != nil {
		return nil, wrap(op, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO notes (id, title, content, tags, created_at) VALUES (?, ?, ?, ?, ?)",
		n.ID, n.Title, n.Content, tags, n.CreatedAt.UnixNano())
	if err != nil {
		return nil, wrap(op, err)
	}
	return &n, nil
}

// GetNote returns the note with id.
func (s *Store) GetNote(ctx context.Context, id string) (*Note, error) {
	const op = "GetNote"

	row := s.db.QueryRowContext(ctx,
		"SELECT id, title, content, tags, created_at FROM notes WHERE id = ?", id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, "note")
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return n, nil
}

// ListNotes returns all notes, newest first.
func (s *Store) ListNotes(ctx context.Context) ([]Note, error) {
	const op = "ListNotes"

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, content, tags, created_at FROM notes ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return notes, nil
}

// DeleteNote removes the note with id.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "DeleteNote", "notes", "note", id)
}
