// Package mpv implements a client for mpv's line-delimited JSON IPC
// protocol over a unix socket: commands with reply matching, property
// access and observation, key bindings and script messages, and the
// on-screen display.
//
// All asynchronous events are dispatched serially from a single goroutine,
// so handlers never observe overlapping callbacks. Handlers may freely
// issue commands; replies are read on a separate goroutine.
package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrClosed is returned by commands once the connection is gone.
var ErrClosed = errors.New("mpv: connection closed")

// ClientName identifies this client in script messages and key binding
// commands.
const ClientName = "multiplicative"

// eventQueueSize bounds the event dispatch queue. Events beyond it are
// dropped with a warning rather than stalling the reply reader.
const eventQueueSize = 256

// Client is a connection to a running mpv instance.
type Client struct {
	conn   net.Conn
	logger *zap.Logger

	writeMu sync.Mutex

	nextRequestID atomic.Int64
	nextObserveID atomic.Int64

	mu        sync.Mutex
	pending   map[int64]chan message
	observers map[int64]func(data json.RawMessage)
	messages  map[string]func(args []string)
	events    map[string][]func(ev Event)

	queue     chan message
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the mpv IPC socket at socketPath.
func Dial(socketPath string, logger *zap.Logger) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to connect to %s: %w", socketPath, err)
	}
	return NewClient(conn, logger), nil
}

// NewClient wraps an established connection and starts the read and
// dispatch loops.
func NewClient(conn net.Conn, logger *zap.Logger) *Client {
	c := &Client{
		conn:      conn,
		logger:    logger,
		pending:   make(map[int64]chan message),
		observers: make(map[int64]func(json.RawMessage)),
		messages:  make(map[string]func([]string)),
		events:    make(map[string][]func(Event)),
		queue:     make(chan message, eventQueueSize),
		done:      make(chan struct{}),
	}
	go c.readLoop()
	go c.dispatchLoop()
	return c
}

// Close shuts the connection down. Pending commands fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the connection is gone, either through Close or
// because the player went away.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Command sends one command and waits for its reply, returning the reply's
// data payload.
func (c *Client) Command(args ...any) (json.RawMessage, error) {
	select {
	case <-c.done:
		return nil, ErrClosed
	default:
	}

	id := c.nextRequestID.Add(1)
	ch := make(chan message, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	cleanup := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("mpv: failed to encode command: %w", err)
	}

	c.writeMu.Lock()
	_, err = c.conn.Write(append(payload, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		cleanup()
		select {
		case <-c.done:
			return nil, ErrClosed
		default:
		}
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	select {
	case reply := <-ch:
		if reply.Error != "" && reply.Error != "success" {
			return nil, fmt.Errorf("mpv: command %v: %s", args[0], reply.Error)
		}
		return reply.Data, nil
	case <-c.done:
		cleanup()
		return nil, ErrClosed
	}
}

// GetProperty returns a property value as raw JSON.
func (c *Client) GetProperty(name string) (json.RawMessage, error) {
	return c.Command("get_property", name)
}

// GetPropertyString returns a string property.
func (c *Client) GetPropertyString(name string) (string, error) {
	data, err := c.GetProperty(name)
	if err != nil {
		return "", err
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return "", fmt.Errorf("mpv: property %s is not a string: %w", name, err)
	}
	return value, nil
}

// GetPropertyFloat returns a numeric property.
func (c *Client) GetPropertyFloat(name string) (float64, error) {
	data, err := c.GetProperty(name)
	if err != nil {
		return 0, err
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return 0, fmt.Errorf("mpv: property %s is not a number: %w", name, err)
	}
	return value, nil
}

// GetPropertyBool returns a boolean property.
func (c *Client) GetPropertyBool(name string) (bool, error) {
	data, err := c.GetProperty(name)
	if err != nil {
		return false, err
	}
	var value bool
	if err := json.Unmarshal(data, &value); err != nil {
		return false, fmt.Errorf("mpv: property %s is not a boolean: %w", name, err)
	}
	return value, nil
}

// SetProperty sets a property.
func (c *Client) SetProperty(name string, value any) error {
	_, err := c.Command("set_property", name, value)
	return err
}

// ObserveProperty registers fn to be called with the new value whenever the
// property changes. fn runs on the event dispatch goroutine.
func (c *Client) ObserveProperty(name string, fn func(data json.RawMessage)) error {
	id := c.nextObserveID.Add(1)

	c.mu.Lock()
	c.observers[id] = fn
	c.mu.Unlock()

	if _, err := c.Command("observe_property", id, name); err != nil {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
		return err
	}
	return nil
}

// HandleEvent registers fn for a named player event (file-loaded, end-file,
// pause, ...). fn runs on the event dispatch goroutine.
func (c *Client) HandleEvent(name string, fn func(ev Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[name] = append(c.events[name], fn)
}

// RegisterMessage registers fn for script messages whose first argument is
// name. Remaining arguments are passed through.
func (c *Client) RegisterMessage(name string, fn func(args []string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[name] = fn
}

// UnregisterMessage removes a script message handler.
func (c *Client) UnregisterMessage(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.messages, name)
}

// BindKey binds a key to fn through a script message named action.
func (c *Client) BindKey(key, action string, fn func()) error {
	c.RegisterMessage(action, func([]string) { fn() })
	if _, err := c.Command("keybind", key, fmt.Sprintf("script-message %s", action)); err != nil {
		c.UnregisterMessage(action)
		return err
	}
	return nil
}

// OSDMessage shows text on the player's on-screen display.
func (c *Client) OSDMessage(text string, seconds float64) error {
	_, err := c.Command("show-text", text, int(seconds*1000))
	return err
}

// readLoop reads IPC lines, delivering replies to their waiting commands
// and queueing events for the dispatch loop.
func (c *Client) readLoop() {
	defer c.Close()

	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			c.logger.Warn("mpv: discarding malformed ipc line", zap.Error(err))
			continue
		}

		if msg.Event == "" {
			c.mu.Lock()
			ch, ok := c.pending[msg.RequestID]
			delete(c.pending, msg.RequestID)
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		select {
		case c.queue <- msg:
		default:
			c.logger.Warn("mpv: event queue full, dropping event", zap.String("event", msg.Event))
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Debug("mpv: read loop ended", zap.Error(err))
	}
}

// dispatchLoop delivers queued events to their handlers, one at a time.
func (c *Client) dispatchLoop() {
	for {
		select {
		case msg := <-c.queue:
			c.dispatch(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Client) dispatch(msg message) {
	switch msg.Event {
	case "property-change":
		c.mu.Lock()
		fn := c.observers[msg.ID]
		c.mu.Unlock()
		if fn != nil {
			fn(msg.Data)
		}
	case "client-message":
		if len(msg.Args) == 0 {
			return
		}
		c.mu.Lock()
		fn := c.messages[msg.Args[0]]
		c.mu.Unlock()
		if fn != nil {
			fn(msg.Args[1:])
		}
	default:
		c.mu.Lock()
		handlers := append([]func(Event){}, c.events[msg.Event]...)
		c.mu.Unlock()
		for _, fn := range handlers {
			fn(Event{Name: msg.Event, Data: msg.Data, Reason: msg.Reason})
		}
	}
}
