package schemas

import (
	"time"
)

// Author is the denormalized snapshot of the creating user embedded in
// every post. It is a copy taken at creation time, not a live
// reference; a later rename reaches it only through the best-effort
// propagation worker.
type Author struct {
	AuthID AuthID `bson:"authId" json:"authId"`
	Name   string `bson:"name" json:"name"`
}

type Post struct {
	ID        PostId    `bson:"_id" json:"id"`
	Version   int       `bson:"version" json:"version"`
	Title     string    `bson:"title" json:"title"`
	Content   string    `bson:"content" json:"content"`
	Category  string    `bson:"category" json:"category"`
	Author    Author    `bson:"author" json:"author"`
	Created   time.Time `bson:"created" json:"created"`
	Expiry    time.Time `bson:"expiry" json:"expiry"`
	Anonymous bool      `bson:"anonymous" json:"anonymous"`
}

// PostView is what consumers see after the read-side transform:
// anonymous authors masked, timestamps formatted, expiry derived.
type PostView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Category  string `json:"category"`
	Author    Author `json:"author"`
	Created   string `json:"created"`
	Expiry    string `json:"expiry"`
	IsExpired bool   `json:"isExpired"`
}

func (p Post) Copy() *Post {
	return &p
}
