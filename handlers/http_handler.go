package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"grumbler/authz"
	"grumbler/posts"
	"grumbler/schemas"
	"grumbler/storage"
	"grumbler/users"
)

// Identity is carried per request in this header. Session transport
// is the calling layer's business, not this core's.
const userIdHeader = "X-User-Id"

const transientFailureMessage = "service temporarily unavailable, please retry later"

func NewHTTPHandler(postsManager *posts.PostsManager, usersManager *users.UsersManager) *HTTPHandler {
	return &HTTPHandler{
		postsManager: postsManager,
		usersManager: usersManager,
	}
}

type HTTPHandler struct {
	postsManager *posts.PostsManager
	usersManager *users.UsersManager
}

type RegisterRequestData struct {
	Account  string `json:"account"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type LoginRequestData struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type OAuthRequestData struct {
	Provider    string `json:"provider"`
	ProviderID  string `json:"providerId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type CreatePostRequestData struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	Category     string `json:"category"`
	Expiry       int    `json:"expiry"`
	Anonymous    bool   `json:"anonymous"`
	CaptchaToken string `json:"captchaToken"`
}

type UpdateUserRequestData struct {
	Name string `json:"name"`
}

func writeJSON(rw http.ResponseWriter, payload interface{}) {
	rawResponse, _ := json.Marshal(payload)
	rw.Header().Set("Content-Type", "application/json")
	_, _ = rw.Write(rawResponse)
}

// writeDomainError maps the error taxonomy onto statuses. Store
// failures stay opaque: the client sees a generic transient message.
func writeDomainError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrInvalidField), errors.Is(err, posts.ErrInvalidDraft):
		http.Error(rw, err.Error(), http.StatusBadRequest)
	case errors.Is(err, posts.ErrVerificationFailed):
		http.Error(rw, err.Error(), http.StatusBadRequest)
	case errors.Is(err, users.ErrBadCredentials):
		http.Error(rw, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, posts.ErrNotOwner):
		http.Error(rw, err.Error(), http.StatusForbidden)
	case errors.Is(err, storage.ErrNotFound):
		http.Error(rw, err.Error(), http.StatusNotFound)
	case errors.Is(err, users.ErrDuplicateIdentity):
		http.Error(rw, err.Error(), http.StatusConflict)
	default:
		http.Error(rw, transientFailureMessage, http.StatusInternalServerError)
	}
}

func actingAuthId(r *http.Request) schemas.AuthID {
	return schemas.AuthID(r.Header.Get(userIdHeader))
}

func pageNoFromQuery(r *http.Request) int {
	rawPage := r.URL.Query().Get("page")
	if rawPage == "" {
		return 1
	}
	parsedPage, err := strconv.Atoi(rawPage)
	if err != nil || parsedPage < 1 {
		return 1
	}
	return parsedPage
}

func (h *HTTPHandler) HandleRegister(rw http.ResponseWriter, r *http.Request) {
	var data RegisterRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}

	user, err := h.usersManager.Reconcile(r.Context(), users.LocalSignup{
		Account:  data.Account,
		Password: data.Password,
		Name:     data.Name,
		Email:    data.Email,
	})
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, user.ToUserData())
}

func (h *HTTPHandler) HandleLogin(rw http.ResponseWriter, r *http.Request) {
	var data LoginRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}

	user, err := h.usersManager.Login(r.Context(), data.Account, data.Password)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, user.ToUserData())
}

// HandleOAuth reconciles an externally-parsed OAuth profile. The
// handshake itself happens upstream; this endpoint receives its
// product.
func (h *HTTPHandler) HandleOAuth(rw http.ResponseWriter, r *http.Request) {
	var data OAuthRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}

	provider := schemas.Provider(data.Provider)
	if provider != schemas.ProviderGoogle && provider != schemas.ProviderFacebook {
		http.Error(rw, "unsupported provider", http.StatusBadRequest)
		return
	}

	user, err := h.usersManager.Reconcile(r.Context(), users.OAuthProfile{
		Provider:    provider,
		ProviderID:  data.ProviderID,
		DisplayName: data.DisplayName,
		Email:       data.Email,
	})
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, user.ToUserData())
}

func (h *HTTPHandler) HandleAbout(rw http.ResponseWriter, r *http.Request) {
	stats, err := h.usersManager.About(r.Context())
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, stats)
}

func (h *HTTPHandler) HandleListPosts(rw http.ResponseWriter, r *http.Request) {
	page, err := h.postsManager.QueryPublic(r.Context(), pageNoFromQuery(r))
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, page)
}

func (h *HTTPHandler) HandlePostSettings(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, posts.PostSettings())
}

func (h *HTTPHandler) HandleCreatePost(rw http.ResponseWriter, r *http.Request) {
	acting := actingAuthId(r)
	if acting == "" {
		http.Error(rw, "no auth", http.StatusUnauthorized)
		return
	}

	var data CreatePostRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}

	author, err := h.usersManager.GetUser(r.Context(), acting)
	if err != nil {
		writeDomainError(rw, err)
		return
	}

	newPost, err := h.postsManager.Create(r.Context(), posts.Draft{
		Title:          data.Title,
		Content:        data.Content,
		Category:       data.Category,
		ExpirySelector: data.Expiry,
		Anonymous:      data.Anonymous,
		CaptchaToken:   data.CaptchaToken,
	}, author)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, h.postsManager.PresentNow(newPost))
}

func (h *HTTPHandler) HandleDeletePost(rw http.ResponseWriter, r *http.Request) {
	acting := actingAuthId(r)
	if acting == "" {
		http.Error(rw, "no auth", http.StatusUnauthorized)
		return
	}

	postId, err := schemas.IDFromRawString(mux.Vars(r)["postId"])
	if err != nil {
		http.Error(rw, "incorrect post id", http.StatusBadRequest)
		return
	}

	if err := h.postsManager.Remove(r.Context(), postId, acting); err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HandleGetUser(rw http.ResponseWriter, r *http.Request) {
	userId := schemas.AuthID(mux.Vars(r)["userId"])

	info, err := h.usersManager.GetUserInfo(r.Context(), userId)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, info)
}

// HandleGetUserPosts lists one user's posts, expired included. Only
// the owner may look: the guard runs before any store access.
func (h *HTTPHandler) HandleGetUserPosts(rw http.ResponseWriter, r *http.Request) {
	userId := schemas.AuthID(mux.Vars(r)["userId"])
	if !authz.Allowed(actingAuthId(r), userId) {
		http.Error(rw, "you shall not pass", http.StatusForbidden)
		return
	}

	page, err := h.postsManager.QueryByAuthor(r.Context(), userId, pageNoFromQuery(r))
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, page)
}

func (h *HTTPHandler) HandleUpdateUser(rw http.ResponseWriter, r *http.Request) {
	userId := schemas.AuthID(mux.Vars(r)["userId"])
	if !authz.Allowed(actingAuthId(r), userId) {
		http.Error(rw, "you shall not pass", http.StatusForbidden)
		return
	}

	var data UpdateUserRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		http.Error(rw, "bad body", http.StatusBadRequest)
		return
	}

	updatedUser, err := h.usersManager.UpdateName(r.Context(), userId, data.Name)
	if err != nil {
		writeDomainError(rw, err)
		return
	}
	writeJSON(rw, updatedUser.ToUserData())
}

func (h *HTTPHandler) HandleDeleteUser(rw http.ResponseWriter, r *http.Request) {
	userId := schemas.AuthID(mux.Vars(r)["userId"])
	if !authz.Allowed(actingAuthId(r), userId) {
		http.Error(rw, "you shall not pass", http.StatusForbidden)
		return
	}

	if err := h.usersManager.Delete(r.Context(), userId); err != nil {
		writeDomainError(rw, err)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HandlePing(rw http.ResponseWriter, r *http.Request) {
	rw.WriteHeader(http.StatusOK)
}
