package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grumbler/passwords"
	"grumbler/schemas"
	"grumbler/storage"
)

// AuthEvent is a sealed variant over the two identity provenances:
// a local account signup or an already-parsed OAuth profile.
type AuthEvent interface {
	isAuthEvent()
}

type LocalSignup struct {
	Account  string
	Password string
	Name     string
	Email    string
}

func (LocalSignup) isAuthEvent() {}

type OAuthProfile struct {
	Provider    schemas.Provider
	ProviderID  string
	DisplayName string
	Email       string
}

func (OAuthProfile) isAuthEvent() {}

// RenamePublisher hands the second half of the rename saga to the
// background worker.
type RenamePublisher interface {
	PublishPropagateAuthorRename(authId schemas.AuthID, name string) error
}

type UserInfo struct {
	User      schemas.UserData `json:"user"`
	PostCount int              `json:"postCount"`
}

type Stats struct {
	UserCount int `json:"userCount"`
	PostCount int `json:"postCount"`
}

type UsersManager struct {
	usersStorage storage.UserStorage
	postsStorage storage.PostStorage
	hasher       passwords.Hasher
	publisher    RenamePublisher
}

func NewUsersManager(usersStorage storage.UserStorage, postsStorage storage.PostStorage, hasher passwords.Hasher, publisher RenamePublisher) *UsersManager {
	return &UsersManager{
		usersStorage: usersStorage,
		postsStorage: postsStorage,
		hasher:       hasher,
		publisher:    publisher,
	}
}

// Reconcile maps an auth event onto exactly one stored user, creating
// it when absent. Reconciling the same OAuth profile twice is a pure
// lookup the second time.
func (um *UsersManager) Reconcile(ctx context.Context, event AuthEvent) (*schemas.User, error) {
	switch e := event.(type) {
	case LocalSignup:
		return um.reconcileLocal(ctx, e)
	case OAuthProfile:
		return um.reconcileOAuth(ctx, e)
	default:
		return nil, fmt.Errorf("unsupported auth event %T", event)
	}
}

func (um *UsersManager) reconcileLocal(ctx context.Context, signup LocalSignup) (*schemas.User, error) {
	authId := schemas.MakeAuthID(schemas.ProviderApp, signup.Account)
	if err := validateAuthId(string(authId), "account"); err != nil {
		return nil, err
	}
	if err := validatePassword(signup.Password); err != nil {
		return nil, err
	}
	if err := validateEmail(signup.Email); err != nil {
		return nil, err
	}

	_, err := um.usersStorage.FindUser(ctx, authId)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentity, authId)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	digest, err := um.hasher.Hash(signup.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %s", err.Error())
	}

	name := signup.Name
	if name == "" {
		name = signup.Account
	}
	newUser := &schemas.User{
		AuthID:   authId,
		Name:     name,
		Password: digest,
		Email:    signup.Email,
		Created:  time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := um.usersStorage.InsertUser(ctx, newUser); err != nil {
		if errors.Is(err, storage.ErrCollision) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentity, authId)
		}
		return nil, err
	}
	return newUser, nil
}

func (um *UsersManager) reconcileOAuth(ctx context.Context, profile OAuthProfile) (*schemas.User, error) {
	authId := schemas.MakeAuthID(profile.Provider, profile.ProviderID)
	if err := validateAuthId(string(authId), "providerId"); err != nil {
		return nil, err
	}

	existing, err := um.usersStorage.FindUser(ctx, authId)
	if err == nil {
		// first-write-wins: no name or email sync on later logins
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	email := profile.Email
	if email == "" {
		email = schemas.OmittedEmail
	}
	newUser := &schemas.User{
		AuthID:  authId,
		Name:    profile.DisplayName,
		Email:   email,
		Created: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := um.usersStorage.InsertUser(ctx, newUser); err != nil {
		if errors.Is(err, storage.ErrCollision) {
			// lost a race against the same profile, the record is there now
			return um.usersStorage.FindUser(ctx, authId)
		}
		return nil, err
	}
	return newUser, nil
}

// Login checks local credentials. Every failure collapses into
// ErrBadCredentials so accounts cannot be probed.
func (um *UsersManager) Login(ctx context.Context, account string, password string) (*schemas.User, error) {
	authId := schemas.MakeAuthID(schemas.ProviderApp, account)
	if err := validateAuthId(string(authId), "account"); err != nil {
		return nil, ErrBadCredentials
	}

	user, err := um.usersStorage.FindUser(ctx, authId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !um.hasher.Compare(password, user.Password) {
		return nil, ErrBadCredentials
	}
	return user, nil
}

func (um *UsersManager) GetUser(ctx context.Context, authId schemas.AuthID) (*schemas.User, error) {
	if string(authId) == "0" {
		// the masked identity of anonymous posts is not addressable
		return nil, fmt.Errorf("%w: user %s", storage.ErrNotFound, authId)
	}
	if err := validateAuthId(string(authId), "authId"); err != nil {
		return nil, err
	}
	return um.usersStorage.FindUser(ctx, authId)
}

func (um *UsersManager) GetUserInfo(ctx context.Context, authId schemas.AuthID) (*UserInfo, error) {
	user, err := um.GetUser(ctx, authId)
	if err != nil {
		return nil, err
	}
	postCount, err := um.postsStorage.CountPosts(ctx, storage.PostFilter{AuthorID: authId})
	if err != nil {
		return nil, err
	}
	return &UserInfo{User: user.ToUserData(), PostCount: postCount}, nil
}

// UpdateName is a two-step saga: the user document is written first,
// then the denormalized author snapshots on that user's posts are
// refreshed by the worker. A crash between the two steps leaves them
// inconsistent; that window is accepted, not repaired.
func (um *UsersManager) UpdateName(ctx context.Context, authId schemas.AuthID, name string) (*schemas.User, error) {
	if name == "" {
		return nil, invalidField("name")
	}

	updatedUser, err := um.usersStorage.UpdateUserName(ctx, authId, name)
	if err != nil {
		return nil, err
	}

	if err := um.publisher.PublishPropagateAuthorRename(authId, name); err != nil {
		return nil, fmt.Errorf("rename propagation not scheduled: %s", err.Error())
	}
	return updatedUser, nil
}

func (um *UsersManager) Delete(ctx context.Context, authId schemas.AuthID) error {
	return um.usersStorage.DeleteUser(ctx, authId)
}

func (um *UsersManager) About(ctx context.Context) (*Stats, error) {
	userCount, err := um.usersStorage.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	postCount, err := um.postsStorage.CountPosts(ctx, storage.PostFilter{})
	if err != nil {
		return nil, err
	}
	return &Stats{UserCount: userCount, PostCount: postCount}, nil
}
