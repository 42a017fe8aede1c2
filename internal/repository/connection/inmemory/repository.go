package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/repository/connection"
)

// repo is the in-memory bimap between open websocket connections and
// member ids, with a member->room index for session resolution.
type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*websocket.Conn
	roomList map[string]string
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*websocket.Conn),
		roomList: make(map[string]string),
	}
}

func (r *repo) Add(conn *websocket.Conn, memberId, roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[conn] != "" || r.idList[memberId] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[conn] = memberId
	r.idList[memberId] = conn
	r.roomList[memberId] = roomId

	return nil
}

func (r *repo) RemoveByMemberId(memberId string) (*websocket.Conn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.idList[memberId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, memberId)
	delete(r.roomList, memberId)

	return conn, nil
}

func (r *repo) GetMemberId(conn *websocket.Conn) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	memberId, ok := r.connList[conn]
	if !ok {
		return "", connection.ErrNotFound
	}

	return memberId, nil
}

func (r *repo) GetConn(memberId string) (*websocket.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.idList[memberId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) GetRoomId(memberId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomId, ok := r.roomList[memberId]
	if !ok {
		return "", connection.ErrNotFound
	}

	return roomId, nil
}
