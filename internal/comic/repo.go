package comic

import (
	"database/sql"
	"encoding/json"

	"comicvault/pkg/models"
)

// RawComic is the provider payload as the client forwards it. ComicVine search
// results and detail records name the same fields differently, and two of them
// arrive either as an object or a bare string, so those stay raw until
// normalization.
type RawComic struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Title         string          `json:"title"`
	Publisher     json.RawMessage `json:"publisher"`
	StartYear     string          `json:"start_year"`
	Year          string          `json:"year"`
	CountOfIssues int             `json:"count_of_issues"`
	IssueCount    int             `json:"issueCount"`
	Description   string          `json:"description"`
	Deck          string          `json:"deck"`
	Image         json.RawMessage `json:"image"`
	APIDetailURL  string          `json:"api_detail_url"`
}

// Normalize coalesces the alternate provider field names into the canonical
// comics schema.
func Normalize(raw RawComic) models.Comic {
	m := models.Comic{
		ComicvineID:  raw.ID,
		Title:        coalesce(raw.Name, raw.Title),
		Publisher:    objectOrString(raw.Publisher, "name"),
		StartYear:    coalesce(raw.StartYear, raw.Year),
		IssueCount:   raw.CountOfIssues,
		Description:  coalesce(raw.Description, raw.Deck),
		ImageURL:     objectOrString(raw.Image, "medium_url"),
		APIDetailURL: raw.APIDetailURL,
	}
	if m.IssueCount == 0 {
		m.IssueCount = raw.IssueCount
	}
	return m
}

// Resolve returns the internal id for the comic with raw's provider id,
// inserting a normalized row on first reference. INSERT OR IGNORE against the
// comicvine_id unique index means concurrent first adds cannot create
// duplicate rows; the loser's insert is a no-op and the re-select finds the
// winner's row.
func Resolve(db *sql.DB, raw RawComic) (int64, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM comics WHERE comicvine_id = ?`, raw.ID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	m := Normalize(raw)
	if _, err := db.Exec(`
		INSERT OR IGNORE INTO comics (comicvine_id, title, publisher, start_year, issue_count, description, image_url, api_detail_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ComicvineID, m.Title, m.Publisher, m.StartYear, m.IssueCount, m.Description, m.ImageURL, m.APIDetailURL,
	); err != nil {
		return 0, err
	}

	err = db.QueryRow(`SELECT id FROM comics WHERE comicvine_id = ?`, raw.ID).Scan(&id)
	return id, err
}

func GetByID(db *sql.DB, id int64) (models.Comic, error) {
	var m models.Comic
	err := db.QueryRow(`
		SELECT id, comicvine_id, title, publisher, start_year, issue_count, description, image_url, api_detail_url, created_at
		FROM comics WHERE id = ?`, id).
		Scan(&m.ID, &m.ComicvineID, &m.Title, &m.Publisher, &m.StartYear, &m.IssueCount,
			&m.Description, &m.ImageURL, &m.APIDetailURL, &m.CreatedAt)
	return m, err
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// objectOrString extracts key from a JSON object, or returns the value itself
// when it is a bare JSON string.
func objectOrString(raw json.RawMessage, key string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj[key].(string); ok {
			return v
		}
	}
	return ""
}
