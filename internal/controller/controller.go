package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/satvikdua06/server/internal/service/room"
	"github.com/satvikdua06/server/internal/service/search"
	"github.com/satvikdua06/server/pkg/validator"
	"github.com/satvikdua06/server/pkg/wsrouter"
)

type iRoomService interface {
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	DisconnectMember(context.Context, *room.DisconnectMemberParams) (room.DisconnectMemberResponse, error)
	UpdateMedia(context.Context, *room.UpdateMediaParams) (room.UpdateMediaResponse, error)
	UpdatePlayback(context.Context, *room.UpdatePlaybackParams) (room.UpdatePlaybackResponse, error)
	Seek(context.Context, *room.SeekParams) (room.SeekResponse, error)
	PeriodicUpdate(context.Context, *room.PeriodicUpdateParams) (room.PeriodicUpdateResponse, error)
	SyncRequest(context.Context, *room.SyncRequestParams) (room.SyncRequestResponse, error)
	SendChat(context.Context, *room.SendChatParams) (room.SendChatResponse, error)
	Stats(context.Context) room.StatsResponse
}

type iSearchService interface {
	Search(ctx context.Context, query string) ([]search.Track, error)
}

type controller struct {
	roomService   iRoomService
	searchService iSearchService
	upgrader      websocket.Upgrader
	validate      *validator.Validator
	logger        *slog.Logger
	wsmux         *wsrouter.WSRouter
	// conn -> *sync.Mutex; gorilla allows a single concurrent writer
	connWriteLocks *sync.Map
}

func NewController(roomService iRoomService, searchService iSearchService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:    roomService,
		searchService:  searchService,
		validate:       validator.NewValidator(),
		logger:         logger,
		connWriteLocks: &sync.Map{},
	}
	c.wsmux = c.getWSRouter()

	return c
}
