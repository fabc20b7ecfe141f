package store

import (
	"context"
	"net/mail"
	"strings"
	"time"
)

// Contact is a message left through the contact form.
type Contact struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateContact stores a contact message. All fields are required and the
// email must parse as an address.
func (s *Store) CreateContact(ctx context.Context, c Contact) (*Contact, error) {
	const op = "CreateContact"

	if blank(c.Name) || blank(c.Email) || blank(c.Message) {
		return nil, invalid(op, "name, email and message are required")
	}
	c.Email = strings.TrimSpace(c.Email)
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return nil, invalid(op, "invalid email address")
	}

	c.ID = newID()
	c.CreatedAt = s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Email, c.Message, c.CreatedAt.UnixNano())
	if err != nil {
		return nil, wrap(op, err)
	}
	return &c, nil
}

// ListContacts returns all contact messages, newest first.
func (s *Store) ListContacts(ctx context.Context) ([]Contact, error) {
	const op = "ListContacts"

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, message, created_at FROM contacts ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	contacts := []Contact{}
	for rows.Next() {
		var (
			c       Contact
			created int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Message, &created); err != nil {
			return nil, wrap(op, err)
		}
		c.CreatedAt = time.Unix(0, created).UTC()
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return contacts, nil
}

// DeleteContact removes the contact message with id.
func (s *Store) DeleteContact(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "DeleteContact", "contacts", "contact", id)
}
