package jlr

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
)

// push stream silence threshold before reconnecting
const pushStaleTimeout = 15 * time.Minute

// PushHandler consumes a push notification. status is nil if the message
// did not carry a status payload.
type PushHandler func(vin string, status *api.Status)

type pushMessage struct {
	VIN         string          `json:"vin"`
	ServiceType string          `json:"serviceType"`
	Status      *StatusResponse `json:"status"`
}

// PushListener subscribes to the vendor's push message stream
type PushListener struct {
	log     *util.Logger
	conn    *Connection
	handler PushHandler
	waiter  *util.Waiter
}

// NewPushListener creates a push stream subscription handler
func (c *Connection) NewPushListener(log *util.Logger, handler PushHandler) *PushListener {
	return &PushListener{
		log:     log,
		conn:    c,
		handler: handler,
		waiter:  util.NewWaiter(pushStaleTimeout),
	}
}

// websocketURI fetches the per-user push endpoint
func (l *PushListener) websocketURI() (string, error) {
	var res struct {
		URL string `json:"url"`
	}

	uri := fmt.Sprintf("%s/users/%s/websocket", l.conn.baseURI, l.conn.identity.UserID())
	err := l.conn.GetJSON(uri, &res)

	if err == nil && res.URL == "" {
		err = api.ErrNotAvailable
	}

	return res.URL, err
}

// Listen connects the stream and dispatches messages until stopC closes.
// Connection errors and stream silence trigger a reconnect.
func (l *PushListener) Listen(stopC <-chan struct{}) {
	for {
		select {
		case <-stopC:
			return
		default:
		}

		if err := l.listen(stopC); err != nil {
			l.log.ERROR.Printf("push stream: %v", err)
		}

		select {
		case <-stopC:
			return
		case <-time.After(10 * time.Second):
		}
	}
}

func (l *PushListener) listen(stopC <-chan struct{}) error {
	uri, err := l.websocketURI()
	if err != nil {
		return err
	}

	token, err := l.conn.identity.Token()
	if err != nil {
		return err
	}

	headers := map[string][]string{
		"Authorization": {"Bearer " + token.AccessToken},
		"X-Device-Id":   {l.conn.identity.DeviceID()},
	}

	conn, _, err := websocket.DefaultDialer.Dial(uri, headers)
	if err != nil {
		return err
	}
	defer conn.Close()

	l.log.DEBUG.Println("push stream connected")

	msgC := make(chan []byte)
	errC := make(chan error, 1)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				errC <- err
				return
			}
			msgC <- msg
		}
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-stopC:
			return nil
		case err := <-errC:
			return err
		case <-ticker.C:
			if overdue := l.waiter.Overdue(); overdue > 0 {
				return fmt.Errorf("stream silent for %v", overdue.Round(time.Second))
			}
		case msg := <-msgC:
			l.waiter.Update()
			l.dispatch(msg)
		}
	}
}

func (l *PushListener) dispatch(msg []byte) {
	var push pushMessage
	if err := json.Unmarshal(msg, &push); err != nil {
		l.log.TRACE.Printf("push stream: ignoring message: %v", err)
		return
	}

	if push.VIN == "" {
		return
	}

	l.log.DEBUG.Printf("push message %s for %s", push.ServiceType, util.Redact(push.VIN))

	var status *api.Status
	if push.Status != nil {
		s := push.Status.Decode()
		status = &s
	}

	l.handler(push.VIN, status)
}
