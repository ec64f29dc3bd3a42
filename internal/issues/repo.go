package issues

import (
	"database/sql"
	"fmt"

	"comicvault/pkg/models"
)

// Progress is the derived read-state for one (user, comic).
type Progress struct {
	ReadIssues []int `json:"readIssues"`
	TotalRead  int   `json:"totalRead"`
}

// Toggle flips the read state of one issue, creating the row as read on first
// touch. It also bumps the parent user_comics.updated_at so recency ordering
// in collection listings stays honest.
func Toggle(db *sql.DB, userID string, comicID int64, issueNumber int) (models.UserIssue, error) {
	var existing models.UserIssue
	var readAt sql.NullTime
	err := db.QueryRow(`
	SELECT id, user_id, comic_id, issue_number, is_read, read_date
	FROM user_issues
	WHERE user_id = ? AND comic_id = ? AND issue_number = ?
	`, userID, comicID, issueNumber).
		Scan(&existing.ID, &existing.UserID, &existing.ComicID, &existing.IssueNumber, &existing.IsRead, &readAt)

	switch {
	case err == sql.ErrNoRows:
		// first toggle always marks as read
		_, err = db.Exec(`
		INSERT INTO user_issues(user_id, comic_id, issue_number, is_read, read_date)
		VALUES(?,?,?,1,CURRENT_TIMESTAMP)
		`, userID, comicID, issueNumber)
	case err == nil:
		_, err = db.Exec(`
		UPDATE user_issues SET
			is_read = NOT is_read,
			read_date = CASE WHEN is_read THEN NULL ELSE CURRENT_TIMESTAMP END
		WHERE id = ?
		`, existing.ID)
	}
	if err != nil {
		return models.UserIssue{}, err
	}

	if _, err := db.Exec(`
	UPDATE user_comics SET updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ? AND comic_id = ?
	`, userID, comicID); err != nil {
		return models.UserIssue{}, err
	}

	return Get(db, userID, comicID, issueNumber)
}

// Get fetches a single issue row.
func Get(db *sql.DB, userID string, comicID int64, issueNumber int) (models.UserIssue, error) {
	var ui models.UserIssue
	var readAt sql.NullTime
	err := db.QueryRow(`
	SELECT id, user_id, comic_id, issue_number, is_read, read_date
	FROM user_issues
	WHERE user_id = ? AND comic_id = ? AND issue_number = ?
	`, userID, comicID, issueNumber).
		Scan(&ui.ID, &ui.UserID, &ui.ComicID, &ui.IssueNumber, &ui.IsRead, &readAt)
	if err != nil {
		return models.UserIssue{}, err
	}
	if readAt.Valid {
		t := readAt.Time
		ui.ReadAt = &t
	}
	return ui, nil
}

// GetProgress returns the issue numbers marked read, ascending, with the
// count. No pagination; issue counts stay within a few hundred.
func GetProgress(db *sql.DB, userID string, comicID int64) (Progress, error) {
	rows, err := db.Query(`
	SELECT issue_number FROM user_issues
	WHERE user_id = ? AND comic_id = ? AND is_read = 1
	ORDER BY issue_number ASC
	`, userID, comicID)
	if err != nil {
		return Progress{}, err
	}
	defer rows.Close()

	p := Progress{ReadIssues: []int{}}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return Progress{}, err
		}
		p.ReadIssues = append(p.ReadIssues, n)
	}
	if err := rows.Err(); err != nil {
		return Progress{}, err
	}
	p.TotalRead = len(p.ReadIssues)
	return p, nil
}

// MarkAllRead marks issues 1..totalIssues read in one transaction, so a
// completed transition never leaves a half-marked run behind.
func MarkAllRead(db *sql.DB, userID string, comicID int64, totalIssues int) (int, error) {
	if totalIssues <= 0 {
		return 0, fmt.Errorf("invalid total issues: %d", totalIssues)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
	INSERT INTO user_issues(user_id, comic_id, issue_number, is_read, read_date)
	VALUES(?,?,?,1,CURRENT_TIMESTAMP)
	ON CONFLICT(user_id, comic_id, issue_number)
	DO UPDATE SET is_read=1,
	              read_date=COALESCE(user_issues.read_date, CURRENT_TIMESTAMP)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare mark read: %w", err)
	}
	defer stmt.Close()

	for n := 1; n <= totalIssues; n++ {
		if _, err := stmt.Exec(userID, comicID, n); err != nil {
			return 0, fmt.Errorf("mark issue %d: %w", n, err)
		}
	}

	if _, err := tx.Exec(`
	UPDATE user_comics SET updated_at = CURRENT_TIMESTAMP
	WHERE user_id = ? AND comic_id = ?
	`, userID, comicID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return totalIssues, nil
}

// CountRead returns the user's read-issue count for one comic.
func CountRead(db *sql.DB, userID string, comicID int64) (int, error) {
	var n int
	err := db.QueryRow(`
	SELECT COUNT(*) FROM user_issues
	WHERE user_id = ? AND comic_id = ? AND is_read = 1
	`, userID, comicID).Scan(&n)
	return n, err
}
