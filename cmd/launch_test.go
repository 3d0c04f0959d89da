package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sw33tLie/appshell/internal/host"
	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/bridge"
	"github.com/sw33tLie/appshell/pkg/config"
	"github.com/sw33tLie/appshell/pkg/gating"
)

func TestPrompterFor(t *testing.T) {
	p, err := prompterFor("store")
	require.NoError(t, err)
	choice, err := p.PromptUpdate(context.Background(), api.UpdateInfo{LatestVersion: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, gating.ChoiceStore, choice)

	p, err = prompterFor("later")
	require.NoError(t, err)
	choice, err = p.PromptUpdate(context.Background(), api.UpdateInfo{})
	require.NoError(t, err)
	assert.Equal(t, gating.ChoiceLater, choice)

	_, err = prompterFor("never")
	assert.Error(t, err)
}

func TestNewBackend(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &api.MockBackend{}, newBackend(cfg))

	cfg.UseMockAPI = false
	assert.IsType(t, &api.HTTPBackend{}, newBackend(cfg))
}

func TestEvalSenderDeliversRepliesAsScript(t *testing.T) {
	var out bytes.Buffer
	d := bridge.NewDispatcher(host.NewTerminal("ios", &bytes.Buffer{}, false), evalSender(&out),
		bridge.WithDeviceToken("dev"))

	d.Handle(context.Background(), []byte(`{"type":"GET_DEVICE_TOKEN"}`))
	d.Wait()

	assert.Equal(t,
		"Eval: window.AppBridge && window.AppBridge.receive("+
			`{"type":"DEVICE_TOKEN","token":"dev","deviceType":"ios"});`+"\n",
		out.String())
}
