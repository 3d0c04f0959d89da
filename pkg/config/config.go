package config

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide shell configuration. It is loaded once at
// startup and passed by value; nothing mutates it afterwards.
type Config struct {
	// SplashMinDuration is the floor on how long the splash screen stays up.
	SplashMinDuration time.Duration
	RequireLogin      bool
	ShowTutorial      bool
	AppVersion        string

	// MainURL is loaded in the Main screen unless a deep link supplies another.
	MainURL string
	// AllowedDomains are matched as substrings of navigation requests.
	AllowedDomains []string

	APIURL     string
	AppToken   string
	UseMockAPI bool
	APIRetries int

	// Platform is reported to web content as the device type.
	Platform string

	// NotificationDelay schedules one simulated in-app notification. Zero disables it.
	NotificationDelay   time.Duration
	NotificationTitle   string
	NotificationMessage string
}

// SetDefaults registers default values for every key Load reads.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("splash.min_duration", "3s")
	v.SetDefault("app.require_login", true)
	v.SetDefault("app.show_tutorial", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("webview.main_url", "https://m.naver.com")
	v.SetDefault("webview.allowed_domains", []string{"naver.com", "nid.naver.com"})
	v.SetDefault("api.url", "https://api.example.com")
	v.SetDefault("api.app_token", "mock-app-token-12345")
	v.SetDefault("api.use_mock", true)
	v.SetDefault("api.retries", 2)
	v.SetDefault("bridge.platform", runtime.GOOS)
	v.SetDefault("notification.delay", "10s")
	v.SetDefault("notification.title", "A surprise gift has arrived!")
	v.SetDefault("notification.message", "Open the app now to get a discount coupon. (tap to view)")
}

// Load reads the configuration from v. Defaults are applied first, so an
// empty viper instance yields the stock configuration.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	cfg := Config{
		SplashMinDuration:   v.GetDuration("splash.min_duration"),
		RequireLogin:        v.GetBool("app.require_login"),
		ShowTutorial:        v.GetBool("app.show_tutorial"),
		AppVersion:          strings.TrimSpace(v.GetString("app.version")),
		MainURL:             strings.TrimSpace(v.GetString("webview.main_url")),
		AllowedDomains:      cleanList(v.GetStringSlice("webview.allowed_domains")),
		APIURL:              strings.TrimRight(strings.TrimSpace(v.GetString("api.url")), "/"),
		AppToken:            v.GetString("api.app_token"),
		UseMockAPI:          v.GetBool("api.use_mock"),
		APIRetries:          v.GetInt("api.retries"),
		Platform:            strings.ToLower(strings.TrimSpace(v.GetString("bridge.platform"))),
		NotificationDelay:   v.GetDuration("notification.delay"),
		NotificationTitle:   v.GetString("notification.title"),
		NotificationMessage: v.GetString("notification.message"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first problem that would make the shell misbehave.
func (c Config) Validate() error {
	if c.SplashMinDuration < 0 {
		return errors.New("splash.min_duration must not be negative")
	}
	if c.AppVersion == "" {
		return errors.New("app.version is required")
	}
	if c.MainURL == "" {
		return errors.New("webview.main_url is required")
	}
	if _, err := url.ParseRequestURI(c.MainURL); err != nil {
		return fmt.Errorf("webview.main_url: %w", err)
	}
	if !c.UseMockAPI && c.APIURL == "" {
		return errors.New("api.url is required when api.use_mock is false")
	}
	if c.APIRetries < 0 {
		return errors.New("api.retries must not be negative")
	}
	if c.Platform == "" {
		return errors.New("bridge.platform is required")
	}
	return nil
}

// Default returns the stock configuration.
func Default() Config {
	cfg, err := Load(viper.New())
	if err != nil {
		// Defaults are static; failing here is a programming error.
		panic(err)
	}
	return cfg
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		// Env overrides arrive as a single comma separated value.
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
