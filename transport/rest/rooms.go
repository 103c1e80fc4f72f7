package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/renju-backend/internal/apperror"
	"github.com/rocketscienceinc/renju-backend/internal/usecase"
)

func (that *Server) listRooms(ctx *gin.Context) {
	rooms, err := that.lobby.ListRooms(ctx.Request.Context())
	if err != nil {
		that.logger.Error("failed to list rooms", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	// optional filter, e.g. ?status=waiting
	if status := ctx.Query("status"); status != "" {
		filtered := make([]usecase.RoomSummary, 0, len(rooms))
		for _, room := range rooms {
			if room.Status == status {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
}

func (that *Server) getRoom(ctx *gin.Context) {
	state, err := that.lobby.GetRoom(ctx.Request.Context(), ctx.Param("id"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	}

	if err != nil {
		that.logger.Error("failed to get room", "room_id", ctx.Param("id"), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, state)
}
