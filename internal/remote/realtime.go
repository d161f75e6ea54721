package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	ws "github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	pingInterval = 30 * time.Second

	redialBase = time.Second
	redialCap  = time.Minute
)

// Subscribe opens a push subscription on the collection. The topic "*"
// (or "") covers every record in the collection. The callback runs on the
// realtime read goroutine for each matching event. The returned function
// cancels this subscription; the underlying connection is closed once the
// last subscription is gone.
func (col *Collection) Subscribe(topic string, cb func(Event)) (func(), error) {
	key := col.name
	if topic != "" && topic != "*" {
		key = col.name + "/" + topic
	}
	return col.client.rt.subscribe(key, cb)
}

// realtimeFrame is one message from the push channel.
type realtimeFrame struct {
	Topic  string `json:"topic"`
	Action string `json:"action"`
	Record Record `json:"record"`
}

// subscribeFrame tells the server the full set of topics this client wants.
type subscribeFrame struct {
	ClientID      string   `json:"clientId"`
	Subscriptions []string `json:"subscriptions"`
}

// realtimeConn multiplexes all collection subscriptions over one websocket.
type realtimeConn struct {
	client *Client

	mu       sync.Mutex
	conn     *ws.Conn
	cancel   context.CancelFunc
	clientID string
	subs     map[string]map[string]func(Event) // topic key -> sub id -> callback
}

func newRealtimeConn(c *Client) *realtimeConn {
	return &realtimeConn{
		client: c,
		subs:   make(map[string]map[string]func(Event)),
	}
}

func (rc *realtimeConn) subscribe(key string, cb func(Event)) (func(), error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.conn == nil {
		if err := rc.dialLocked(); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	if rc.subs[key] == nil {
		rc.subs[key] = make(map[string]func(Event))
	}
	rc.subs[key][id] = cb

	if err := rc.sendSubscriptionsLocked(); err != nil {
		delete(rc.subs[key], id)
		if len(rc.subs[key]) == 0 {
			delete(rc.subs, key)
		}
		if len(rc.subs) == 0 {
			rc.closeLocked()
		}
		return nil, err
	}

	return func() { rc.unsubscribe(key, id) }, nil
}

func (rc *realtimeConn) unsubscribe(key, id string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.subs[key] != nil {
		delete(rc.subs[key], id)
		if len(rc.subs[key]) == 0 {
			delete(rc.subs, key)
		}
	}

	if len(rc.subs) == 0 {
		rc.closeLocked()
		return
	}
	if err := rc.sendSubscriptionsLocked(); err != nil {
		rc.client.logger.Warn("realtime: update subscriptions", "error", err)
	}
}

// dialLocked opens the websocket and starts the read and ping goroutines.
// Caller holds rc.mu.
func (rc *realtimeConn) dialLocked() error {
	wsURL := strings.Replace(rc.client.baseURL, "http", "ws", 1) + "/api/realtime"

	ctx, cancel := context.WithCancel(context.Background())
	dialCtx, dialCancel := context.WithTimeout(ctx, requestTimeout)
	defer dialCancel()

	opts := &ws.DialOptions{}
	if tok := rc.client.auth.Token(); tok != "" {
		opts.HTTPHeader = http.Header{"Authorization": []string{"Bearer " + tok}}
	}

	conn, _, err := ws.Dial(dialCtx, wsURL, opts)
	if err != nil {
		cancel()
		return err
	}

	rc.conn = conn
	rc.cancel = cancel
	rc.clientID = uuid.NewString()

	go rc.readPump(ctx, conn)
	go rc.pingLoop(ctx, conn)
	return nil
}

// closeLocked tears down the connection. Caller holds rc.mu.
func (rc *realtimeConn) closeLocked() {
	if rc.conn == nil {
		return
	}
	rc.cancel()
	rc.conn.Close(ws.StatusNormalClosure, "unsubscribed")
	rc.conn = nil
	rc.cancel = nil
}

// sendSubscriptionsLocked pushes the current topic set to the server.
// Caller holds rc.mu.
func (rc *realtimeConn) sendSubscriptionsLocked() error {
	keys := make([]string, 0, len(rc.subs))
	for key := range rc.subs {
		keys = append(keys, key)
	}
	data, err := json.Marshal(subscribeFrame{ClientID: rc.clientID, Subscriptions: keys})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return rc.conn.Write(ctx, ws.MessageText, data)
}

// readPump reads push frames and dispatches them to matching callbacks.
// On a spontaneous connection loss it starts a redial loop, so registered
// subscriptions keep receiving events without the caller resubscribing.
func (rc *realtimeConn) readPump(ctx context.Context, conn *ws.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			// Must be checked before closeLocked cancels ctx: a canceled
			// context here means a deliberate teardown, not a drop.
			deliberate := ctx.Err() != nil

			rc.mu.Lock()
			dropped := rc.conn == conn
			if dropped {
				rc.closeLocked()
			}
			remaining := len(rc.subs)
			rc.mu.Unlock()

			if !deliberate {
				rc.client.logger.Warn("realtime: connection lost", "error", err)
				if dropped && remaining > 0 {
					go rc.redial()
				}
			}
			return
		}

		var frame realtimeFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			rc.client.logger.Warn("realtime: bad frame", "error", err)
			continue
		}

		rc.mu.Lock()
		var cbs []func(Event)
		for _, cb := range rc.subs[frame.Topic] {
			cbs = append(cbs, cb)
		}
		// Collection-wide subscriptions also match record-scoped frames.
		if i := strings.IndexByte(frame.Topic, '/'); i > 0 {
			for _, cb := range rc.subs[frame.Topic[:i]] {
				cbs = append(cbs, cb)
			}
		}
		rc.mu.Unlock()

		evt := Event{Action: frame.Action, Record: frame.Record}
		for _, cb := range cbs {
			cb(evt)
		}
	}
}

// redial reopens a dropped connection with exponential backoff and resends
// the subscription set. It keeps trying until the connection is back or
// every subscription has been cancelled in the meantime; while it runs,
// the pull reconciler covers for the missed events.
func (rc *realtimeConn) redial() {
	_ = retry.Do(context.Background(), retry.WithCappedDuration(redialCap, retry.NewExponential(redialBase)), func(ctx context.Context) error {
		rc.mu.Lock()
		defer rc.mu.Unlock()

		if len(rc.subs) == 0 || rc.conn != nil {
			return nil
		}
		if err := rc.dialLocked(); err != nil {
			return retry.RetryableError(err)
		}
		if err := rc.sendSubscriptionsLocked(); err != nil {
			rc.closeLocked()
			return retry.RetryableError(err)
		}
		rc.client.logger.Info("realtime: reconnected", "subscriptions", len(rc.subs))
		return nil
	})
}

// pingLoop sends periodic pings to detect stale connections.
func (rc *realtimeConn) pingLoop(ctx context.Context, conn *ws.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
