package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sw33tLie/appshell/pkg/platforms"
)

// Sender is the reverse path of the bridge channel, host to web content.
type Sender interface {
	Send(ctx context.Context, msg []byte) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg []byte) error

func (f SenderFunc) Send(ctx context.Context, msg []byte) error { return f(ctx, msg) }

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the log sink. CONSOLE_LOG messages end up here too.
func WithLogger(l platforms.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithLoginHook is called with the token of every LOGIN message.
func WithLoginHook(fn func(token string)) Option {
	return func(d *Dispatcher) { d.onLogin = fn }
}

// WithDeviceToken fixes the token reported to GET_DEVICE_TOKEN.
func WithDeviceToken(token string) Option {
	return func(d *Dispatcher) { d.deviceToken = token }
}

// WithObserver is called for every message that parsed successfully,
// before it is dispatched.
func WithObserver(fn func(Message)) Option {
	return func(d *Dispatcher) { d.observe = fn }
}

type outbound struct {
	ctx context.Context
	msg []byte
}

// Dispatcher interprets inbound bridge messages on behalf of a host.
// Handle and Dispatch never return errors: every failure is logged and
// contained. It is safe for concurrent use.
type Dispatcher struct {
	host        platforms.Host
	sender      Sender
	log         platforms.Logger
	onLogin     func(string)
	observe     func(Message)
	deviceToken string

	// Replies are delivered in order by a single drain goroutine.
	mu       sync.Mutex
	queue    []outbound
	draining bool
	inflight sync.WaitGroup
}

// NewDispatcher builds a dispatcher for host that replies through sender.
func NewDispatcher(host platforms.Host, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		host:   host,
		sender: sender,
		log:    platforms.NopLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.deviceToken == "" {
		d.deviceToken = NewDeviceToken(host.Name(), "")
	}
	return d
}

// Handle parses and dispatches one raw message from web content.
func (d *Dispatcher) Handle(ctx context.Context, raw []byte) {
	msg, err := Parse(raw)
	if err != nil {
		d.log.Errorf("[Bridge] Parse error: %v", err)
		return
	}
	d.Dispatch(ctx, msg)
}

// Dispatch runs the effect of a parsed message.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) {
	if d.observe != nil {
		d.observe(msg)
	}
	d.log.Debugf("[Bridge] Received: %s %v", msg.Command, msg.Payload)

	if err := d.dispatch(ctx, msg); err != nil {
		if errors.Is(err, ErrMissingField) {
			d.log.Debugf("[Bridge] Skipped: %v", err)
			return
		}
		d.log.Errorf("[Bridge] %s failed: %v", msg.Command, err)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg Message) error {
	switch msg.Command {
	case CmdLogin:
		token, err := msg.require("token")
		if err != nil {
			return err
		}
		d.host.Notify("Bridge", "Login requested: "+token)
		if d.onLogin != nil {
			d.onLogin(token)
		}
		return nil

	case CmdOpenBrowser:
		url, err := msg.require("url")
		if err != nil {
			return err
		}
		return d.host.OpenURL(ctx, url)

	case CmdShare:
		message, err := msg.require("message")
		if err != nil {
			return err
		}
		url, _ := msg.String("url")
		return d.host.Share(ctx, platforms.ShareContent{Message: message, URL: url})

	case CmdConsoleLog:
		message, _ := msg.String("message")
		d.log.Infof("[WebLog] %s", message)
		return nil

	case CmdGetDeviceToken:
		reply, err := json.Marshal(DeviceTokenReply{
			Type:       TypeDeviceToken,
			Token:      d.deviceToken,
			DeviceType: d.host.Name(),
		})
		if err != nil {
			return fmt.Errorf("encode reply: %w", err)
		}
		d.enqueue(ctx, reply)
		return nil

	default:
		d.log.Warnf("[Bridge] Unknown command: %s", msg.Command)
		return nil
	}
}

func (d *Dispatcher) enqueue(ctx context.Context, msg []byte) {
	d.inflight.Add(1)
	d.mu.Lock()
	d.queue = append(d.queue, outbound{ctx: ctx, msg: msg})
	start := !d.draining
	d.draining = true
	d.mu.Unlock()

	if start {
		go d.drain()
	}
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		out := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		if err := d.sender.Send(out.ctx, out.msg); err != nil {
			d.log.Errorf("[Bridge] Reply failed: %v", err)
		}
		d.inflight.Done()
	}
}

// Wait blocks until every queued reply has been handed to the sender.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
