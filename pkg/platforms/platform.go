package platforms

import (
	"context"
)

// ShareContent is what the native share sheet receives.
type ShareContent struct {
	Message string
	URL     string
}

// Host defines the native capabilities the shell bridges into web content,
// abstracting away the device the shell is running on.
type Host interface {
	// Name identifies the platform, e.g. "ios", "android" or "linux".
	// It is reported to web content as the device type.
	Name() string
	// OpenURL opens url in an external browsing context.
	OpenURL(ctx context.Context, url string) error
	Share(ctx context.Context, content ShareContent) error
	// Notify shows a short notice to the user. It never blocks on user input.
	Notify(title, message string)
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// NopLogger silently discards all messages.
type NopLogger struct{}

func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debugf(string, ...interface{}) {}
