package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
)

// ProjectStatus is the lifecycle stage of a project.
type ProjectStatus string

const (
	StatusConcept    ProjectStatus = "Concept"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
	StatusOnHold     ProjectStatus = "On Hold"
)

var projectStatuses = []ProjectStatus{StatusConcept, StatusInProgress, StatusCompleted, StatusOnHold}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	return lo.Contains(projectStatuses, s)
}

// Project is a portfolio entry.
type Project struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags"`
	Link        string        `json:"link,omitempty"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

const projectColumns = "id, title, description, tags, link, status, created_at"

func scanProject(row scanner) (*Project, error) {
	var (
		p       Project
		tags    string
		created int64
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &tags, &p.Link, &p.Status, &created); err != nil {
		return nil, err
	}
	p.Tags = decodeTags(tags)
	p.CreatedAt = time.Unix(0, created).UTC()
	return &p, nil
}

// CreateProject validates and inserts p. ID, CreatedAt and a missing Status
// are filled in.
func (s *Store) CreateProject(ctx context.Context, p Project) (*Project, error) {
	const op = "CreateProject"

	if blank(p.Title) || blank(p.Description) {
		return nil, invalid(op, "title and description are required")
	}
	if p.Status == "" {
		p.Status = StatusInProgress
	}
	if !p.Status.Valid() {
		return nil, invalid(op, fmt.Sprintf("unknown status %q", p.Status))
	}

	p.ID = newID()
	p.Tags = normalizeTags(p.Tags)
	p.CreatedAt = s.now().UTC()

	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, wrap(op, err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Description, tags, p.Link, string(p.Status), p.CreatedAt.UnixNano())
	if err != nil {
		return nil, wrap(op, err)
	}
	return &p, nil
}

// GetProject returns the project with id.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	const op = "GetProject"

	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(op, "project")
	}
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	const op = "ListProjects"

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return projects, nil
}

// UpdateProject overwrites the fields of patch that are non-empty. A nil
// Tags slice leaves the tags unchanged.
func (s *Store) UpdateProject(ctx context.Context, id string, patch Project) (*Project, error) {
	const op = "UpdateProject"

	current, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if !blank(patch.Title) {
		current.Title = patch.Title
	}
	if !blank(patch.Description) {
		current.Description = patch.Description
	}
	if patch.Link != "" {
		current.Link = patch.Link
	}
	if patch.Tags != nil {
		current.Tags = normalizeTags(patch.Tags)
	}
	if patch.Status != "" {
		if !patch.Status.Valid() {
			return nil, invalid(op, fmt.Sprintf("unknown status %q", patch.Status))
		}
		current.Status = patch.Status
	}

	tags, err := encodeTags(current.Tags)
	if err != nil {
		return nil, wrap(op, err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE projects SET title = ?, description = ?, tags = ?, link = ?, status = ? WHERE id = ?",
		current.Title, current.Description, tags, current.Link, string(current.Status), id)
	if err != nil {
		return nil, wrap(op, err)
	}
	return current, nil
}

// DeleteProject removes the project with id.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "DeleteProject", "projects", "project", id)
}

func (s *Store) deleteByID(ctx context.Context, op, table, what, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return notFound(op, what)
	}
	return nil
}
