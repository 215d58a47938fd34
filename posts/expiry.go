package posts

import (
	"fmt"
	"time"
)

// Posts never outlive their expiry offset, chosen at creation from
// this fixed table. "permanent" is an offset no reader will outlive
// rather than a special case in the data model.
const permanentOffset = 100 * 365 * 24 * time.Hour

type ExpiryOption struct {
	Name   string        `json:"name"`
	Offset time.Duration `json:"offset"`
}

var ExpiryOptions = []ExpiryOption{
	{Name: "permanent", Offset: permanentOffset},
	{Name: "one month", Offset: 30 * 24 * time.Hour},
	{Name: "one day", Offset: 24 * time.Hour},
	{Name: "six hours", Offset: 6 * time.Hour},
	{Name: "one hour", Offset: time.Hour},
	{Name: "thirty minutes", Offset: 30 * time.Minute},
	{Name: "ten minutes", Offset: 10 * time.Minute},
}

var Categories = []string{"share", "original", "newbie"}

// Uncategorized is displayed for posts saved without a category.
const Uncategorized = "uncategorized"

func offsetFor(selector int) (time.Duration, error) {
	if selector < 0 || selector >= len(ExpiryOptions) {
		return 0, fmt.Errorf("%w: expiry", ErrInvalidDraft)
	}
	return ExpiryOptions[selector].Offset, nil
}

// Settings feeds the compose form: selectable categories and the
// expiry table in selector order.
type Settings struct {
	Categories []string       `json:"categories"`
	Expiry     []ExpiryOption `json:"expiry"`
}

func PostSettings() Settings {
	return Settings{
		Categories: Categories,
		Expiry:     ExpiryOptions,
	}
}
