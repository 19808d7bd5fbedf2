package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sharetube/multiview/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	mu       sync.RWMutex
	logger   *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
		logger:   logger,
	}
}

// Add registers the viewer's connection. A viewer has at most one.
func (r *repo) Add(conn *websocket.Conn, viewerID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "viewerID", viewerID)
	if r.connList[conn] != "" || r.idList[viewerID] != nil {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = viewerID
	r.idList[viewerID] = conn

	r.logger.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) RemoveByConn(conn *websocket.Conn) error {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	viewerID, ok := r.connList[conn]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, viewerID)

	r.logger.Debug(funcName, "result", viewerID)
	return nil
}

func (r *repo) GetViewerID(conn *websocket.Conn) (string, error) {
	funcName := "connection.inmemory.GetViewerID"
	r.mu.RLock()
	defer r.mu.RUnlock()

	viewerID, ok := r.connList[conn]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	return viewerID, nil
}

func (r *repo) GetConn(viewerID string) (*websocket.Conn, error) {
	funcName := "connection.inmemory.GetConn"
	r.mu.RLock()
	defer r.mu.RUnlock()

	r.logger.Debug(funcName, "viewerID", viewerID)
	conn, ok := r.idList[viewerID]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.idList)
}
