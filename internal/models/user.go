package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
	ProviderLocal  = "local"

	DefaultAge = 18
)

// User is an account created by OAuth sign-in or local registration.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	GivenName    string             `bson:"given_name,omitempty" json:"given_name,omitempty"`
	FamilyName   string             `bson:"family_name,omitempty" json:"family_name,omitempty"`
	Picture      string             `bson:"picture,omitempty" json:"picture,omitempty"`
	Locale       string             `bson:"locale,omitempty" json:"locale,omitempty"`
	Age          int                `bson:"age,omitempty" json:"age,omitempty"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	PasswordHash string             `bson:"password,omitempty" json:"-"`
	Provider     string             `bson:"provider,omitempty" json:"provider,omitempty"`

	Profile `bson:",inline"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile holds the user-editable fields.
type Profile struct {
	Bio                  string     `bson:"bio,omitempty" json:"bio,omitempty"`
	DateOfBirth          *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Phone                string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Location             string     `bson:"location,omitempty" json:"location,omitempty"`
	Website              string     `bson:"website,omitempty" json:"website,omitempty"`
	Company              string     `bson:"company,omitempty" json:"company,omitempty"`
	JobTitle             string     `bson:"job_title,omitempty" json:"job_title,omitempty"`
	InvestmentExperience string     `bson:"investment_experience,omitempty" json:"investment_experience,omitempty"`
	RiskTolerance        string     `bson:"risk_tolerance,omitempty" json:"risk_tolerance,omitempty"`
	InterestedSectors    []string   `bson:"interested_sectors,omitempty" json:"interested_sectors,omitempty"`
	ProfileVisibility    string     `bson:"profile_visibility,omitempty" json:"profile_visibility,omitempty"`
	EmailNotifications   *bool      `bson:"email_notifications,omitempty" json:"email_notifications,omitempty"`
}

// DisplayName prefers the given name, as the sign-in token does.
func (u *User) DisplayName() string {
	if u.GivenName != "" {
		return u.GivenName
	}
	return u.Name
}
