package api

import (
	"context"
	"embed"
	"time"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// FixtureUpdate returns the bundled version document.
func FixtureUpdate() (UpdateInfo, error) {
	data, err := fixtures.ReadFile("fixtures/update.json")
	if err != nil {
		return UpdateInfo{}, err
	}
	return ParseUpdateInfo(string(data))
}

// FixtureTutorial returns the bundled tutorial content.
func FixtureTutorial() ([]TutorialItem, error) {
	data, err := fixtures.ReadFile("fixtures/tutorial.json")
	if err != nil {
		return nil, err
	}
	return ParseTutorial(string(data))
}

// MockBackend answers from the bundled fixtures after fixed delays.
type MockBackend struct {
	UpdateDelay   time.Duration
	TutorialDelay time.Duration
	ExchangeDelay time.Duration
	LoginDelay    time.Duration
}

// NewMockBackend returns a mock with the stock simulated latencies.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		UpdateDelay:   300 * time.Millisecond,
		TutorialDelay: 500 * time.Millisecond,
		ExchangeDelay: 500 * time.Millisecond,
		LoginDelay:    500 * time.Millisecond,
	}
}

func (m *MockBackend) CheckUpdate(ctx context.Context) (UpdateInfo, error) {
	if err := sleep(ctx, m.UpdateDelay); err != nil {
		return UpdateInfo{}, err
	}
	return FixtureUpdate()
}

func (m *MockBackend) FetchTutorial(ctx context.Context) ([]TutorialItem, error) {
	if err := sleep(ctx, m.TutorialDelay); err != nil {
		return nil, err
	}
	return FixtureTutorial()
}

func (m *MockBackend) ExchangeToken(ctx context.Context, _ LoginInfo) error {
	return sleep(ctx, m.ExchangeDelay)
}

func (m *MockBackend) Login(ctx context.Context, email, password string) error {
	if err := ValidateCredentials(email, password); err != nil {
		return err
	}
	return sleep(ctx, m.LoginDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
