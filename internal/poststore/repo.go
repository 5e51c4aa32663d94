package poststore

import (
	"fmt"

	"github.com/starford/mannaz/internal/apperr"
	"github.com/starford/mannaz/internal/models"
)

// CreateInvisible inserts an invisible row and returns its id.
func (db *DB) CreateInvisible(author, date, content string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO posts (author, date, content, hasimage, hasavatar, visible)
		VALUES (?, ?, ?, 0, 0, 0)
	`, author, date, content)
	if err != nil {
		return 0, fmt.Errorf("%w: insert post: %v", apperr.ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: read generated id: %v", apperr.ErrStore, err)
	}
	return id, nil
}

// Finalize records which media files were written and makes the post visible.
func (db *DB) Finalize(id int64, hasImage, hasAvatar bool) error {
	res, err := db.conn.Exec(`
		UPDATE posts SET hasimage = ?, hasavatar = ?, visible = 1 WHERE id = ?
	`, hasImage, hasAvatar, id)
	if err != nil {
		return fmt.Errorf("%w: finalize post %d: %v", apperr.ErrStore, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: finalize post %d: %v", apperr.ErrStore, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: finalize post %d: no such row", apperr.ErrStore, id)
	}
	return nil
}

// ListVisible returns visible posts ordered by date descending.
// Dates are fixed-width YYYY-MM-DD strings, so the lexicographic sort
// coincides with chronological order; id breaks ties deterministically.
func (db *DB) ListVisible() ([]models.Post, error) {
	rows, err := db.conn.Query(`
		SELECT id, author, date, hasimage, hasavatar, content
		FROM posts
		WHERE visible = 1
		ORDER BY date DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list posts: %v", apperr.ErrStore, err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p := models.Post{Visible: true}
		if err := rows.Scan(&p.ID, &p.Author, &p.Date, &p.HasImage, &p.HasAvatar, &p.Content); err != nil {
			return nil, fmt.Errorf("%w: scan post: %v", apperr.ErrStore, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list posts: %v", apperr.ErrStore, err)
	}
	return out, nil
}
