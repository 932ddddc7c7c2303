package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. Password and RefreshToken never leave the
// server: they are skipped by the JSON encoder and excluded from sanitized reads.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FullName     string             `json:"fullName" bson:"fullName"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password,omitempty"`
	Avatar       string             `json:"avatar" bson:"avatar"`
	CoverImage   string             `json:"coverImage" bson:"coverImage"`
	RefreshToken string             `json:"-" bson:"refreshToken,omitempty"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NewUser builds a user with normalized identity fields. The username is
// stored lowercase so uniqueness is case-insensitive.
func NewUser(fullName, username, email, password string) User {
	return User{
		FullName: strings.TrimSpace(fullName),
		Username: NormalizeUsername(username),
		Email:    NormalizeEmail(email),
		Password: password,
	}
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword replaces the plaintext password with its bcrypt hash.
func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// Sanitized returns a copy without credential fields.
func (u User) Sanitized() User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}
