// Package bridge implements the message protocol between web content hosted
// in the Main screen and the native shell.
//
// Web content posts JSON objects of the form
//
//	{"command": "OPEN_BROWSER", "payload": {"url": "https://..."}}
//
// through the webview's one-way message channel. "type" is accepted in
// place of "command"; when both are present "command" wins. The only
// command with a reply is GET_DEVICE_TOKEN, answered through the reverse
// path of the channel.
package bridge

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Command names understood by the dispatcher.
const (
	CmdLogin          = "LOGIN"
	CmdOpenBrowser    = "OPEN_BROWSER"
	CmdShare          = "SHARE"
	CmdConsoleLog     = "CONSOLE_LOG"
	CmdGetDeviceToken = "GET_DEVICE_TOKEN"

	// TypeDeviceToken tags the reply to CmdGetDeviceToken.
	TypeDeviceToken = "DEVICE_TOKEN"
)

var (
	ErrMalformed    = errors.New("malformed bridge message")
	ErrMissingField = errors.New("missing payload field")
)

// Message is a normalized inbound bridge message.
type Message struct {
	Command string
	Payload map[string]interface{}
}

// Parse decodes raw into a Message, resolving the command/type alias.
func Parse(raw []byte) (Message, error) {
	if !gjson.ValidBytes(raw) {
		return Message{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Message{}, fmt.Errorf("%w: expected an object", ErrMalformed)
	}

	cmd := doc.Get("command")
	if cmd.Type != gjson.String || cmd.Str == "" {
		cmd = doc.Get("type")
	}
	if cmd.Type != gjson.String || cmd.Str == "" {
		return Message{}, fmt.Errorf("%w: no command", ErrMalformed)
	}

	msg := Message{Command: cmd.Str}
	if payload := doc.Get("payload"); payload.IsObject() {
		if m, ok := payload.Value().(map[string]interface{}); ok {
			msg.Payload = m
		}
	}
	return msg, nil
}

// String returns a string payload field. Non-string values and missing
// fields report false.
func (m Message) String(key string) (string, bool) {
	v, ok := m.Payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// require returns a non-empty string field or ErrMissingField.
func (m Message) require(key string) (string, error) {
	s, ok := m.String(key)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %w %q", m.Command, ErrMissingField, key)
	}
	return s, nil
}

// DeviceTokenReply is the only outbound message.
type DeviceTokenReply struct {
	Type       string `json:"type"`
	Token      string `json:"token"`
	DeviceType string `json:"deviceType"`
}
