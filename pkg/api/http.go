package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// AppTokenHeader carries the app token on every backend request.
const AppTokenHeader = "X-App-Token"

// HTTPBackend calls a remote backend over HTTP, retrying transient failures.
type HTTPBackend struct {
	baseURL  string
	appToken string
	client   *retryablehttp.Client
}

// NewHTTPBackend builds a backend rooted at baseURL. retries is the number
// of extra attempts on connection errors and 5xx responses.
func NewHTTPBackend(baseURL, appToken string, retries int) *HTTPBackend {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = time.Second
	client.Logger = nil

	return &HTTPBackend{
		baseURL:  baseURL,
		appToken: appToken,
		client:   client,
	}
}

func (b *HTTPBackend) CheckUpdate(ctx context.Context) (UpdateInfo, error) {
	body, err := b.do(ctx, http.MethodGet, "/version", nil)
	if err != nil {
		return UpdateInfo{}, err
	}
	return ParseUpdateInfo(body)
}

func (b *HTTPBackend) FetchTutorial(ctx context.Context) ([]TutorialItem, error) {
	body, err := b.do(ctx, http.MethodGet, "/tutorial", nil)
	if err != nil {
		return nil, err
	}
	return ParseTutorial(body)
}

func (b *HTTPBackend) ExchangeToken(ctx context.Context, info LoginInfo) error {
	payload := map[string]interface{}{"appToken": b.appToken}
	if len(info) > 0 {
		payload["loginInfo"] = info
	}
	_, err := b.do(ctx, http.MethodPost, "/auth/exchange", payload)
	return err
}

func (b *HTTPBackend) Login(ctx context.Context, email, password string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	_, err := b.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil && isStatus(err, http.StatusUnauthorized) {
		return ErrInvalidCredentials
	}
	return err
}

type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: %v %d", e.path, ErrUnexpectedStatus, e.code)
}

func (e *statusError) Unwrap() error { return ErrUnexpectedStatus }

func isStatus(err error, code int) bool {
	se, ok := err.(*statusError)
	return ok && se.code == code
}

func (b *HTTPBackend) do(ctx context.Context, method, path string, payload interface{}) (string, error) {
	var raw interface{}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("%s: encode body: %w", path, err)
		}
		raw = data
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, b.baseURL+path, raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	req.Header.Set(AppTokenHeader, b.appToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &statusError{code: resp.StatusCode, path: path}
	}
	return string(body), nil
}
