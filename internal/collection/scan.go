package collection

import (
	"database/sql"

	"comicvault/pkg/models"
)

// Scan helpers shared by the list and single-row queries. Nullable columns go
// through sql.Null* and land as pointers on the models.

func scanUserComic(rows *sql.Rows, uc *models.UserComic, c *models.Comic) error {
	var rating sql.NullInt64
	var started, completed sql.NullTime
	err := rows.Scan(
		&uc.ID, &uc.UserID, &uc.ComicID, &uc.Status, &rating,
		&uc.AddedAt, &started, &completed, &uc.UpdatedAt,
		&c.ID, &c.ComicvineID, &c.Title, &c.Publisher, &c.StartYear, &c.IssueCount,
		&c.Description, &c.ImageURL, &c.APIDetailURL, &c.CreatedAt,
	)
	if err != nil {
		return err
	}
	applyNullable(uc, rating, started, completed)
	return nil
}

func scanComic(rows *sql.Rows, c *models.Comic) error {
	return rows.Scan(
		&c.ID, &c.ComicvineID, &c.Title, &c.Publisher, &c.StartYear, &c.IssueCount,
		&c.Description, &c.ImageURL, &c.APIDetailURL, &c.CreatedAt,
	)
}

func scanUserComicOnly(row *sql.Row) (models.UserComic, error) {
	var uc models.UserComic
	var rating sql.NullInt64
	var started, completed sql.NullTime
	err := row.Scan(
		&uc.ID, &uc.UserID, &uc.ComicID, &uc.Status, &rating,
		&uc.AddedAt, &started, &completed, &uc.UpdatedAt,
	)
	if err != nil {
		return models.UserComic{}, err
	}
	applyNullable(&uc, rating, started, completed)
	return uc, nil
}

func applyNullable(uc *models.UserComic, rating sql.NullInt64, started, completed sql.NullTime) {
	if rating.Valid {
		r := int(rating.Int64)
		uc.PersonalRating = &r
	}
	if started.Valid {
		t := started.Time
		uc.StartedReadingAt = &t
	}
	if completed.Valid {
		t := completed.Time
		uc.CompletedAt = &t
	}
}
