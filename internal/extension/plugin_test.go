package extension

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/config"
	"github.com/defaultxr/multiplicative/internal/console"
	"github.com/defaultxr/multiplicative/internal/lisp"
	"github.com/defaultxr/multiplicative/internal/mpv"
)

// scriptedPlayer is the far end of the IPC pipe. It acknowledges every
// command with success, records the command names and arguments, and lets
// the test inject events.
type scriptedPlayer struct {
	t        *testing.T
	conn     net.Conn
	writeMu  sync.Mutex
	commands chan []any

	mu         sync.Mutex
	properties map[string]string
}

func newScriptedPlayer(t *testing.T, conn net.Conn) *scriptedPlayer {
	player := &scriptedPlayer{
		t:          t,
		conn:       conn,
		commands:   make(chan []any, 64),
		properties: map[string]string{},
	}
	go player.serve()
	return player
}

// setProperty serves raw as the property's value. raw must be a single line
// of JSON; the IPC framing is newline-delimited.
func (p *scriptedPlayer) setProperty(name, raw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.properties[name] = raw
}

func (p *scriptedPlayer) serve() {
	scanner := bufio.NewScanner(p.conn)
	for scanner.Scan() {
		var req struct {
			Command   []any `json:"command"`
			RequestID int64 `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		p.commands <- req.Command

		if len(req.Command) == 2 && req.Command[0] == "get_property" {
			name, _ := req.Command[1].(string)
			p.mu.Lock()
			raw, ok := p.properties[name]
			p.mu.Unlock()
			if ok {
				p.writeLine(fmt.Sprintf(`{"request_id":%d,"error":"success","data":%s}`, req.RequestID, raw))
				continue
			}
			p.writeLine(fmt.Sprintf(`{"request_id":%d,"error":"property unavailable"}`, req.RequestID))
			continue
		}
		p.writeLine(fmt.Sprintf(`{"request_id":%d,"error":"success"}`, req.RequestID))
	}
}

func (p *scriptedPlayer) writeLine(line string) {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_, _ = p.conn.Write([]byte(line + "\n"))
}

func (p *scriptedPlayer) sendClientMessage(args ...string) {
	encoded, err := json.Marshal(args)
	require.NoError(p.t, err)
	p.writeLine(fmt.Sprintf(`{"event":"client-message","args":%s}`, encoded))
}

// expectCommand waits for the next command whose name matches and returns
// its arguments.
func (p *scriptedPlayer) expectCommand(name string) []any {
	p.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case cmd := <-p.commands:
			if len(cmd) > 0 && cmd[0] == name {
				return cmd[1:]
			}
		case <-deadline:
			p.t.Fatalf("timed out waiting for command %q", name)
		}
	}
}

func startTestPlugin(t *testing.T) (*scriptedPlayer, *mpv.Client, context.CancelFunc) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	player := newScriptedPlayer(t, serverConn)
	client := mpv.NewClient(clientConn, zap.NewNop())

	cfg := config.DefaultConfig()
	cfg.Screensaver.Enabled = false
	cfg.History.Enabled = false

	env := lisp.NewStandardEnv()
	RegisterHostBindings(env, client)
	bridge := console.NewBridge(env, zap.NewNop())
	host := mpv.NewTextInput(client, zap.NewNop())
	sink := console.NewSink(host, zap.NewNop())
	controller := console.NewController(host, bridge, sink, zap.NewNop())

	plugin := New(client, cfg, controller, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = plugin.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		client.Close()
	})
	return player, client, cancel
}

func TestPluginRegistersConfiguredKeybindings(t *testing.T) {
	player, _, _ := startTestPlugin(t)

	args := player.expectCommand("keybind")
	require.Len(t, args, 2)
	assert.Equal(t, "`", args[0])
	assert.Equal(t, "script-message multiplicative-console-open", args[1])
}

func TestPluginConsoleEndToEnd(t *testing.T) {
	player, _, _ := startTestPlugin(t)
	player.expectCommand("keybind")

	// pressing the bound key opens the console
	player.sendClientMessage("multiplicative-console-open")
	args := player.expectCommand("script-message-to")
	require.GreaterOrEqual(t, len(args), 4)
	assert.Equal(t, "console", args[0])
	assert.Equal(t, "get-input", args[1])
	assert.Equal(t, console.PromptFresh, args[3])

	// submitting a form logs its result
	player.sendClientMessage("multiplicative-input-event", "submit", "(+ 1 2)")
	logged := player.expectCommand("script-message-to")
	require.GreaterOrEqual(t, len(logged), 3)
	assert.Equal(t, "log-line", logged[1])
	assert.Equal(t, "Result 1: 3", logged[2])
}

func TestPluginConsoleMultiLineEndToEnd(t *testing.T) {
	player, _, _ := startTestPlugin(t)
	player.expectCommand("keybind")

	player.sendClientMessage("multiplicative-console-open")
	player.expectCommand("script-message-to")

	player.sendClientMessage("multiplicative-input-event", "submit", "(+ 1")
	args := player.expectCommand("script-message-to")
	require.GreaterOrEqual(t, len(args), 4)
	assert.Equal(t, console.PromptMore, args[3], "prompt should switch while a form is unfinished")

	player.sendClientMessage("multiplicative-input-event", "submit", "2)")
	for {
		args = player.expectCommand("script-message-to")
		require.GreaterOrEqual(t, len(args), 3)
		if args[1] == "log-line" {
			assert.Equal(t, "Result 1: 3", args[2])
			return
		}
	}
}

func TestPluginPlaylistJumpMessage(t *testing.T) {
	player, _, _ := startTestPlugin(t)
	player.expectCommand("keybind")
	player.setProperty("playlist", `[{"filename":"/media/alpha.mkv"},{"filename":"/media/beta.mkv"}]`)

	player.sendClientMessage("multiplicative-playlist-jump", "beta")
	player.expectCommand("get_property")

	args := player.expectCommand("set_property")
	require.Len(t, args, 2)
	assert.Equal(t, "playlist-pos", args[0])
	assert.Equal(t, float64(1), args[1])
}

func TestPluginUnknownActionFailsFast(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	newScriptedPlayer(t, serverConn)
	client := mpv.NewClient(clientConn, zap.NewNop())
	defer client.Close()

	cfg := config.DefaultConfig()
	cfg.Keybindings = map[string]string{"q": "no-such-action"}

	env := lisp.NewStandardEnv()
	bridge := console.NewBridge(env, zap.NewNop())
	host := mpv.NewTextInput(client, zap.NewNop())
	controller := console.NewController(host, bridge, console.NewSink(host, zap.NewNop()), zap.NewNop())

	plugin := New(client, cfg, controller, nil, zap.NewNop())
	err := plugin.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no-such-action"))
}
