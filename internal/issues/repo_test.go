package issues

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"comicvault/internal/comic"
	"comicvault/pkg/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate(): %v", err)
	}
	return db
}

func addComic(t *testing.T, db *sql.DB, comicvineID int64, issueCount int) int64 {
	t.Helper()
	id, err := comic.Resolve(db, comic.RawComic{ID: comicvineID, Name: "test", CountOfIssues: issueCount})
	if err != nil {
		t.Fatalf("Resolve(): %v", err)
	}
	return id
}

func TestToggle_IsSelfInverse(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 10)

	first, err := Toggle(db, "u1", comicID, 3)
	if err != nil {
		t.Fatalf("Toggle() first: %v", err)
	}
	if !first.IsRead {
		t.Fatal("first toggle should mark as read")
	}
	if first.ReadAt == nil {
		t.Fatal("read_date not set on first toggle")
	}

	second, err := Toggle(db, "u1", comicID, 3)
	if err != nil {
		t.Fatalf("Toggle() second: %v", err)
	}
	if second.IsRead {
		t.Fatal("second toggle should mark as unread")
	}
	if second.ReadAt != nil {
		t.Fatalf("read_date not cleared on unread: %v", second.ReadAt)
	}
	if first.ID != second.ID {
		t.Fatalf("toggle created a second row: %d vs %d", first.ID, second.ID)
	}

	third, err := Toggle(db, "u1", comicID, 3)
	if err != nil {
		t.Fatalf("Toggle() third: %v", err)
	}
	if !third.IsRead || third.ReadAt == nil {
		t.Fatalf("third toggle = %+v, want read with timestamp", third)
	}
}

func TestGetProgress_SortedAscending(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 10)

	for _, n := range []int{3, 1, 5} {
		if _, err := Toggle(db, "u1", comicID, n); err != nil {
			t.Fatalf("Toggle(%d): %v", n, err)
		}
	}

	p, err := GetProgress(db, "u1", comicID)
	if err != nil {
		t.Fatalf("GetProgress(): %v", err)
	}
	if !reflect.DeepEqual(p.ReadIssues, []int{1, 3, 5}) {
		t.Fatalf("ReadIssues = %v, want [1 3 5]", p.ReadIssues)
	}
	if p.TotalRead != 3 {
		t.Fatalf("TotalRead = %d, want 3", p.TotalRead)
	}
}

func TestGetProgress_EmptyIsNotNil(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 10)

	p, err := GetProgress(db, "u1", comicID)
	if err != nil {
		t.Fatalf("GetProgress(): %v", err)
	}
	if p.ReadIssues == nil || len(p.ReadIssues) != 0 || p.TotalRead != 0 {
		t.Fatalf("GetProgress() = %+v, want empty slice", p)
	}
}

func TestMarkAllRead(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 5)

	// issue 2 was read before the bulk mark; its original read_date must
	// survive
	if _, err := Toggle(db, "u1", comicID, 2); err != nil {
		t.Fatalf("Toggle(): %v", err)
	}
	before, err := Get(db, "u1", comicID, 2)
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}

	marked, err := MarkAllRead(db, "u1", comicID, 5)
	if err != nil {
		t.Fatalf("MarkAllRead(): %v", err)
	}
	if marked != 5 {
		t.Fatalf("marked = %d, want 5", marked)
	}

	p, err := GetProgress(db, "u1", comicID)
	if err != nil {
		t.Fatalf("GetProgress(): %v", err)
	}
	if !reflect.DeepEqual(p.ReadIssues, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("ReadIssues = %v, want [1 2 3 4 5]", p.ReadIssues)
	}

	after, err := Get(db, "u1", comicID, 2)
	if err != nil {
		t.Fatalf("Get() after: %v", err)
	}
	if after.ReadAt == nil || before.ReadAt == nil || !after.ReadAt.Equal(*before.ReadAt) {
		t.Fatalf("read_date rewritten by bulk mark: %v -> %v", before.ReadAt, after.ReadAt)
	}
}

func TestMarkAllRead_RejectsNonPositiveTotal(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 0)

	if _, err := MarkAllRead(db, "u1", comicID, 0); err == nil {
		t.Fatal("MarkAllRead(0) should fail")
	}
}

func TestToggle_TouchesParentUpdatedAt(t *testing.T) {
	db := openTestDB(t)
	comicID := addComic(t, db, 1, 10)

	if _, err := db.Exec(`
	INSERT INTO user_comics(user_id, comic_id, status, updated_at)
	VALUES('u1', ?, 'reading', '2020-01-01 00:00:00')`, comicID); err != nil {
		t.Fatalf("seed user_comics: %v", err)
	}

	if _, err := Toggle(db, "u1", comicID, 1); err != nil {
		t.Fatalf("Toggle(): %v", err)
	}

	var updatedAt time.Time
	if err := db.QueryRow(`SELECT updated_at FROM user_comics WHERE user_id = 'u1' AND comic_id = ?`, comicID).
		Scan(&updatedAt); err != nil {
		t.Fatalf("read updated_at: %v", err)
	}
	if !updatedAt.After(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("updated_at not touched by toggle: %v", updatedAt)
	}
}
