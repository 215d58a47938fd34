package schemas

import (
	"strings"
	"time"
)

// AuthID is the primary user key, "<provider>:<providerLocalId>".
// The prefix decides how the user authenticates and never changes.
type AuthID string

type Provider string

const (
	ProviderApp      Provider = "app"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "fb"
)

// OmittedEmail marks users whose upstream provider withheld the email.
const OmittedEmail = "0"

func MakeAuthID(provider Provider, localID string) AuthID {
	return AuthID(string(provider) + ":" + localID)
}

func (id AuthID) Provider() Provider {
	i := strings.IndexByte(string(id), ':')
	if i < 0 {
		return ""
	}
	return Provider(id[:i])
}

type User struct {
	AuthID   AuthID    `bson:"authId" json:"authId"`
	Name     string    `bson:"name" json:"name"`
	Password string    `bson:"password" json:"-"`
	Email    string    `bson:"email" json:"email"`
	Created  time.Time `bson:"created" json:"created"`
}

// UserData is the client-facing user representation. The password
// digest never leaves the service.
type UserData struct {
	AuthID  string `json:"authId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Created string `json:"created"`
}

func (u *User) ToUserData() UserData {
	return UserData{
		AuthID:  string(u.AuthID),
		Name:    u.Name,
		Email:   u.Email,
		Created: u.Created.UTC().Format(time.RFC3339),
	}
}

func (u User) Copy() *User {
	return &u
}
