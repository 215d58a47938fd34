package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const siteVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Verifier reports whether a captcha response token checks out.
// Transport errors, timeouts and bad responses all count as a failed
// verification, never as an error to retry here.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

type Recaptcha struct {
	secret string
	client *http.Client
}

func NewRecaptcha(secret string) *Recaptcha {
	return &Recaptcha{
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type siteVerifyResponse struct {
	Success bool `json:"success"`
}

func (r *Recaptcha) Verify(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}

	form := url.Values{}
	form.Set("secret", r.secret)
	form.Set("response", token)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, siteVerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := r.client.Do(request)
	if err != nil {
		return false
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return false
	}

	var verdict siteVerifyResponse
	if err := json.NewDecoder(response.Body).Decode(&verdict); err != nil {
		return false
	}
	return verdict.Success
}
