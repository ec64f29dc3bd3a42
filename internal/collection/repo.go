package collection

import (
	"database/sql"
	"errors"
	"fmt"

	"comicvault/pkg/models"
)

// ErrNotFound covers ownership-scoped lookups that matched no row. A missing
// row and a row owned by someone else are deliberately indistinguishable.
var ErrNotFound = errors.New("collection entry not found")

// StatusCheck is the answer to "does this user track this comic".
type StatusCheck struct {
	InCollection bool    `json:"inCollection"`
	Status       *string `json:"status"`
	Rating       *int    `json:"rating"`
}

// ListItem is a user_comics row joined with its comic and enriched with
// progress counts.
type ListItem struct {
	models.UserComic
	Comic       models.Comic `json:"comics"`
	IssuesRead  int          `json:"issues_read"`
	TotalIssues int          `json:"total_issues"`
}

// ReadingItem is a currently-reading comic with its progress summary.
type ReadingItem struct {
	models.Comic
	ReadCount  int    `json:"readCount"`
	TotalCount int    `json:"totalCount"`
	Progress   string `json:"progress"`
}

// Stats aggregates a user's whole collection for the dashboard.
type Stats struct {
	TotalComics     int            `json:"total_comics"`
	ByStatus        map[string]int `json:"by_status"`
	TotalIssuesRead int            `json:"total_issues_read"`
}

// AddOrUpdate inserts a membership row or overwrites the status of the
// existing one, and returns the resulting row so callers get both ids in one
// round trip.
func AddOrUpdate(db *sql.DB, userID string, comicID int64, status string) (models.UserComic, error) {
	_, err := db.Exec(`
	INSERT INTO user_comics(user_id, comic_id, status)
	VALUES(?,?,?)
	ON CONFLICT(user_id, comic_id)
	DO UPDATE SET status=excluded.status,
	              updated_at=CURRENT_TIMESTAMP
	`, userID, comicID, status)
	if err != nil {
		return models.UserComic{}, err
	}
	return getByUserAndComic(db, userID, comicID)
}

// SetStatus updates status, rating and the transition timestamps on a row the
// caller owns. started_reading_date is set once on the first move into
// "reading"; completed_date refreshes on every move into "completed".
func SetStatus(db *sql.DB, userID string, userComicID int64, status string, rating *int) (models.UserComic, error) {
	var nr sql.NullInt64
	if rating != nil {
		nr = sql.NullInt64{Int64: int64(*rating), Valid: true}
	}
	res, err := db.Exec(`
	UPDATE user_comics SET
		status = ?,
		updated_at = CURRENT_TIMESTAMP,
		personal_rating = COALESCE(?, personal_rating),
		started_reading_date = CASE
			WHEN ? = 'reading' AND started_reading_date IS NULL THEN CURRENT_TIMESTAMP
			ELSE started_reading_date END,
		completed_date = CASE
			WHEN ? = 'completed' THEN CURRENT_TIMESTAMP
			ELSE completed_date END
	WHERE id = ? AND user_id = ?
	`, status, nr, status, status, userComicID, userID)
	if err != nil {
		return models.UserComic{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.UserComic{}, err
	} else if n == 0 {
		return models.UserComic{}, ErrNotFound
	}
	return GetByID(db, userID, userComicID)
}

// CheckStatus reports membership for the comic with the given provider id.
// Absence is a valid answer, not an error.
func CheckStatus(db *sql.DB, userID string, comicvineID int64) (StatusCheck, error) {
	var status string
	var rating sql.NullInt64
	err := db.QueryRow(`
	SELECT uc.status, uc.personal_rating
	FROM user_comics uc
	JOIN comics c ON c.id = uc.comic_id
	WHERE uc.user_id = ? AND c.comicvine_id = ?
	`, userID, comicvineID).Scan(&status, &rating)
	if err == sql.ErrNoRows {
		return StatusCheck{}, nil
	}
	if err != nil {
		return StatusCheck{}, err
	}
	out := StatusCheck{InCollection: true, Status: &status}
	if rating.Valid {
		r := int(rating.Int64)
		out.Rating = &r
	}
	return out, nil
}

// List returns the user's collection, newest first, with read-issue counts
// merged in. Counts come from one query over the user's read issues instead of
// one query per comic.
func List(db *sql.DB, userID, statusFilter string) ([]ListItem, error) {
	q := `
	SELECT uc.id, uc.user_id, uc.comic_id, uc.status, uc.personal_rating,
	       uc.added_date, uc.started_reading_date, uc.completed_date, uc.updated_at,
	       c.id, c.comicvine_id, c.title, c.publisher, c.start_year, c.issue_count,
	       c.description, c.image_url, c.api_detail_url, c.created_at
	FROM user_comics uc
	JOIN comics c ON c.id = uc.comic_id
	WHERE uc.user_id = ?`
	args := []any{userID}
	if statusFilter != "" {
		q += " AND uc.status = ?"
		args = append(args, statusFilter)
	}
	q += " ORDER BY uc.added_date DESC, uc.id DESC"

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListItem
	for rows.Next() {
		var it ListItem
		if err := scanUserComic(rows, &it.UserComic, &it.Comic); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := readCounts(db, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].IssuesRead = counts[items[i].ComicID]
		items[i].TotalIssues = items[i].Comic.IssueCount
	}
	return items, nil
}

// CurrentlyReading returns the user's "reading" comics with readCount,
// totalCount and a "read/total" display string ("0/0" when the total is
// unknown).
func CurrentlyReading(db *sql.DB, userID string) ([]ReadingItem, error) {
	rows, err := db.Query(`
	SELECT c.id, c.comicvine_id, c.title, c.publisher, c.start_year, c.issue_count,
	       c.description, c.image_url, c.api_detail_url, c.created_at
	FROM user_comics uc
	JOIN comics c ON c.id = uc.comic_id
	WHERE uc.user_id = ? AND uc.status = ?
	ORDER BY uc.added_date DESC, uc.id DESC
	`, userID, models.StatusReading)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ReadingItem
	for rows.Next() {
		var it ReadingItem
		if err := scanComic(rows, &it.Comic); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts, err := readCounts(db, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].ReadCount = counts[items[i].ID]
		items[i].TotalCount = items[i].IssueCount
		items[i].Progress = FormatProgress(items[i].ReadCount, items[i].TotalCount)
	}
	return items, nil
}

// Remove deletes a membership row the caller owns, along with the caller's
// issue rows for that comic so stale read counts cannot resurface on re-add.
func Remove(db *sql.DB, userID string, userComicID int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var comicID int64
	err = tx.QueryRow(`SELECT comic_id FROM user_comics WHERE id = ? AND user_id = ?`,
		userComicID, userID).Scan(&comicID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM user_issues WHERE user_id = ? AND comic_id = ?`, userID, comicID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM user_comics WHERE id = ?`, userComicID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetStats aggregates per-status counts and the total number of read issues.
func GetStats(db *sql.DB, userID string) (Stats, error) {
	s := Stats{ByStatus: map[string]int{}}

	rows, err := db.Query(`SELECT status, COUNT(*) FROM user_comics WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return Stats{}, err
		}
		s.ByStatus[status] = n
		s.TotalComics += n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	err = db.QueryRow(`SELECT COUNT(*) FROM user_issues WHERE user_id = ? AND is_read = 1`, userID).
		Scan(&s.TotalIssuesRead)
	return s, err
}

// GetByID fetches a single owned row.
func GetByID(db *sql.DB, userID string, userComicID int64) (models.UserComic, error) {
	row := db.QueryRow(`
	SELECT id, user_id, comic_id, status, personal_rating,
	       added_date, started_reading_date, completed_date, updated_at
	FROM user_comics WHERE id = ? AND user_id = ?`, userComicID, userID)
	uc, err := scanUserComicOnly(row)
	if err == sql.ErrNoRows {
		return models.UserComic{}, ErrNotFound
	}
	return uc, err
}

// FormatProgress renders the "read/total" pair shown next to a cover.
func FormatProgress(read, total int) string {
	if total <= 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", read, total)
}

func getByUserAndComic(db *sql.DB, userID string, comicID int64) (models.UserComic, error) {
	row := db.QueryRow(`
	SELECT id, user_id, comic_id, status, personal_rating,
	       added_date, started_reading_date, completed_date, updated_at
	FROM user_comics WHERE user_id = ? AND comic_id = ?`, userID, comicID)
	return scanUserComicOnly(row)
}

// readCounts maps comic id to the user's read-issue count in one pass.
func readCounts(db *sql.DB, userID string) (map[int64]int, error) {
	rows, err := db.Query(`SELECT comic_id FROM user_issues WHERE user_id = ? AND is_read = 1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var comicID int64
		if err := rows.Scan(&comicID); err != nil {
			return nil, err
		}
		counts[comicID]++
	}
	return counts, rows.Err()
}
