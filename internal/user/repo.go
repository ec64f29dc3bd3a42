package user

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"comicvault/pkg/models"
)

func CreateUser(db *sql.DB, id, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`INSERT INTO users(id, username, password_hash) VALUES(?,?,?)`,
		id, username, string(hash)); err != nil {
		return err
	}
	// profile row is created up front so profile reads never miss
	_, err = db.Exec(`INSERT INTO profiles(user_id, display_name) VALUES(?,?)`, id, username)
	return err
}

func VerifyLogin(db *sql.DB, username, password string) (models.User, error) {
	var u models.User
	err := db.QueryRow(`SELECT id, username, password_hash FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, errors.New("invalid credentials")
	}
	return u, nil
}

func GetProfile(db *sql.DB, userID string) (models.Profile, error) {
	var p models.Profile
	err := db.QueryRow(`SELECT user_id, display_name, avatar_url, bio FROM profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.DisplayName, &p.AvatarURL, &p.Bio)
	return p, err
}

func UpdateProfile(db *sql.DB, p models.Profile) error {
	_, err := db.Exec(`
	INSERT INTO profiles(user_id, display_name, avatar_url, bio)
	VALUES(?,?,?,?)
	ON CONFLICT(user_id)
	DO UPDATE SET display_name=excluded.display_name,
	              avatar_url=excluded.avatar_url,
	              bio=excluded.bio
	`, p.UserID, p.DisplayName, p.AvatarURL, p.Bio)
	return err
}
