package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user's role on the board
type RoleType string

const (
	RoleUser     RoleType = "USER"     // Job seeker
	RoleEmployer RoleType = "EMPLOYER" // Can manage companies and jobs
)

type User struct {
	ID             string       `json:"id,omitempty"`             // Unique identifier for the user
	Email          string       `json:"email,omitempty"`          // User's email address
	PasswordHash   string       `json:"-"`                        // Hashed version of the user's password - never serialize
	FirstName      string       `json:"firstName,omitempty"`      // First name of the user
	LastName       string       `json:"lastName,omitempty"`       // Last name of the user
	Headline       string       `json:"headline,omitempty"`       // Short professional headline
	About          string       `json:"about,omitempty"`          // Free-text profile summary
	Location       string       `json:"location,omitempty"`       // Where the user is based
	ProfilePicture string       `json:"profilePicture,omitempty"` // URL of the profile picture
	Role           RoleType     `json:"role,omitempty"`           // USER or EMPLOYER
	Educations     []Education  `json:"educations,omitempty"`
	Experiences    []Experience `json:"experiences,omitempty"`
	Skills         []Skill      `json:"skills,omitempty"`
	CreatedAt      time.Time    `json:"createdAt,omitempty"`
	UpdatedAt      time.Time    `json:"updatedAt,omitempty"`
}

func (u *User) IsEmployer() bool {
	return u != nil && u.Role == RoleEmployer
}

// Education is a single entry in the user's education history.
type Education struct {
	ID           string `json:"id,omitempty"`
	School       string `json:"school,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear,omitempty"`
	EndYear      int    `json:"endYear,omitempty"`
}

// Experience is a single entry in the user's work history.
type Experience struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty"`
}

type Skill struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsLower(char) {
			hasLower = true
		}
		if unicode.IsNumber(char) {
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower {
		return fmt.Errorf("password must contain both uppercase and lowercase letters")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
