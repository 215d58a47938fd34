// Package authz holds the single ownership rule of the service: an
// identity may only mutate its own resources. There are no roles and
// no delegation; every mutation path checks here before touching a
// store.
package authz

import (
	"grumbler/schemas"
)

func Allowed(acting schemas.AuthID, target schemas.AuthID) bool {
	return acting != "" && acting == target
}
