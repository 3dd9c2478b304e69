package http

import (
	"net/http"

	"roomgate/internal/core/domain"
	"roomgate/internal/core/ports"
	"roomgate/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	admission ports.AdmissionService
}

func NewRoomHandler(admission ports.AdmissionService) *RoomHandler {
	return &RoomHandler{admission: admission}
}

func (h *RoomHandler) SetupRoutes(api *gin.RouterGroup) {
	api.POST("/rooms", h.CreateRoom)
	api.POST("/rooms/check", h.CheckRoom)
	api.POST("/rooms/:room/join", h.RequestJoin)
	api.GET("/rooms/:room/pending", h.ListPending)
	api.POST("/rooms/:room/approve", h.Approve)
	api.POST("/rooms/:room/reject", h.Reject)
	api.GET("/rooms/:room/credential", h.ClaimCredential)
	api.DELETE("/rooms/:room", h.EndRoom)
	api.POST("/rooms/:room/participants/remove", h.RemoveParticipant)
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		RoomName string `json:"room_name" binding:"required,min=1,max=128"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	handle, err := h.admission.CreateRoom(c.Request.Context(), domain.RoomName(req.RoomName), caller.Identity())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"room":       handle.Room,
		"credential": handle.Credential,
		"join_url":   handle.JoinURL,
	})
}

func (h *RoomHandler) CheckRoom(c *gin.Context) {
	var req struct {
		RoomName string `json:"room_name" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	available, err := h.admission.CheckRoom(c.Request.Context(), domain.RoomName(req.RoomName))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"available": available})
}

func (h *RoomHandler) RequestJoin(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	guest := domain.Guest{
		Identity: caller.Identity(),
		Name:     caller.Name,
		Email:    caller.Email,
	}

	result, err := h.admission.RequestJoin(c.Request.Context(), room, guest)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusAccepted
	if result.Status == domain.JoinAlreadyApproved {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"status": result.Status})
}

func (h *RoomHandler) ListPending(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	guests, err := h.admission.ListPending(c.Request.Context(), room)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": guests})
}

func (h *RoomHandler) Approve(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	var req struct {
		Identity string `json:"identity" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admission.Approve(c.Request.Context(), room, domain.Identity(req.Identity)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "approved"})
}

func (h *RoomHandler) Reject(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	var req struct {
		Identity string `json:"identity" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admission.Reject(c.Request.Context(), room, domain.Identity(req.Identity)); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (h *RoomHandler) ClaimCredential(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	result, err := h.admission.Claim(c.Request.Context(), room, caller.Identity())
	if err != nil {
		c.Error(err)
		return
	}

	if !result.Ready {
		// Not an error: the guest keeps polling until its own timeout.
		c.JSON(http.StatusOK, gin.H{"ready": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ready":      true,
		"credential": result.Credential,
	})
}

func (h *RoomHandler) EndRoom(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if err := h.admission.EndRoom(c.Request.Context(), room, caller.Identity()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ended"})
}

func (h *RoomHandler) RemoveParticipant(c *gin.Context) {
	room := domain.RoomName(c.Param("room"))

	var req struct {
		Identity string `json:"identity" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	err := h.admission.RemoveParticipant(c.Request.Context(), room, caller.Identity(), domain.Identity(req.Identity))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
