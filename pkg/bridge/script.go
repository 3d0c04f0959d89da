package bridge

import (
	"context"
	"fmt"
)

// ReactNativePost posts through the React Native webview channel.
const ReactNativePost = "function(data) { window.ReactNativeWebView.postMessage(data); }"

// FetchPost posts each message to path on the serving origin and feeds the
// newline separated replies back into AppBridge.receive.
func FetchPost(path string) string {
	return fmt.Sprintf(`function(data) {
    fetch(%q, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: data})
      .then(function(res) { return res.text(); })
      .then(function(text) {
        text.split('\n').forEach(function(line) {
          if (line) { window.AppBridge.receive(line); }
        });
      });
  }`, path)
}

const scriptTemplate = `(function() {
  if (window.AppBridge) { return; }
  var listeners = [];
  var post = %s;
  window.AppBridge = {
    send: function(command, payload) {
      post(JSON.stringify({command: command, payload: payload}));
    },
    login: function(token) { this.send(%q, {token: token}); },
    openBrowser: function(url) { this.send(%q, {url: url}); },
    share: function(message, url) { this.send(%q, {message: message, url: url}); },
    log: function(message) { this.send(%q, {message: String(message)}); },
    getDeviceToken: function() { this.send(%q, {}); },
    onMessage: function(fn) { listeners.push(fn); },
    receive: function(data) {
      var msg = typeof data === 'string' ? JSON.parse(data) : data;
      listeners.forEach(function(fn) { fn(msg); });
    }
  };
})();
true;`

// InjectedScript returns the JavaScript that gives web content its
// window.AppBridge API. post is a JavaScript function expression taking the
// serialized message, e.g. ReactNativePost.
func InjectedScript(post string) string {
	return fmt.Sprintf(scriptTemplate, post,
		CmdLogin, CmdOpenBrowser, CmdShare, CmdConsoleLog, CmdGetDeviceToken)
}

// ReceiveScript wraps an outbound message in JavaScript that delivers it to
// AppBridge listeners, for hosts whose reverse path is script evaluation.
func ReceiveScript(msg []byte) string {
	return fmt.Sprintf("window.AppBridge && window.AppBridge.receive(%s);", msg)
}

// ScriptSender delivers replies by evaluating ReceiveScript in the webview.
type ScriptSender struct {
	Eval func(ctx context.Context, js string) error
}

func (s ScriptSender) Send(ctx context.Context, msg []byte) error {
	return s.Eval(ctx, ReceiveScript(msg))
}
