package wsrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrInvalidPayload     = errors.New("invalid payload")
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, input T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type ErrorHandler func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes       map[string]HandlerFunc[json.RawMessage]
	middlewares  []Middleware
	errorHandler ErrorHandler
}

func New() *WSRouter {
	return &WSRouter{
		routes:       make(map[string]HandlerFunc[json.RawMessage]),
		errorHandler: func(context.Context, *websocket.Conn, error) {},
	}
}

// Use appends middlewares; the first one added runs outermost.
func (r *WSRouter) Use(mws ...Middleware) {
	r.middlewares = append(r.middlewares, mws...)
}

func (r *WSRouter) OnError(fn ErrorHandler) {
	r.errorHandler = fn
}

// Handle registers a typed handler. The payload is decoded into T before the
// middleware chain runs; an absent payload leaves T zero.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	r.routes[messageType] = func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
		var input T
		if len(payload) > 0 && string(payload) != "null" {
			if err := json.Unmarshal(payload, &input); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
			}
		}

		h := HandlerFunc[any](func(ctx context.Context, conn *websocket.Conn, input any) error {
			return handler(ctx, conn, input.(T))
		})
		for i := len(r.middlewares) - 1; i >= 0; i-- {
			h = r.middlewares[i](h)
		}

		return h(ctx, conn, input)
	}
}

// ServeConn reads messages until the connection fails and dispatches each
// one by type. Handler errors go to the error handler and do not end the
// connection.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		msgCtx := context.WithValue(ctx, messageTypeKey, msg.Type)

		handler, exists := r.routes[msg.Type]
		if !exists {
			r.errorHandler(msgCtx, conn, fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type))
			continue
		}

		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.errorHandler(msgCtx, conn, err)
		}
	}
}
