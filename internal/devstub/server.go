// Package devstub is an in-memory rendition of the LinkUp backend REST API,
// route- and status-compatible with the production service. It backs local
// development and the client tests; nothing here persists.
package devstub

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

// pngPixel is a valid 1x1 black PNG, served in place of a rendered QR image.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type storedGroup struct {
	group   linkupapi.Group
	user1ID int64
	user2ID int64
}

type Server struct {
	engine *gin.Engine
	log    zerolog.Logger

	mu          sync.Mutex
	users       map[int64]*linkupapi.Profile
	groups      map[int64]*storedGroup
	nextUserID  int64
	nextGroupID int64
}

func New(origin string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:      gin.New(),
		log:         logger.Component("devstub"),
		users:       make(map[int64]*linkupapi.Profile),
		groups:      make(map[int64]*storedGroup),
		nextUserID:  1,
		nextGroupID: 1,
	}

	s.engine.Use(requestLogger())
	s.engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origin == "" || origin == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{origin}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	s.engine.Use(cors.New(corsConfig))

	s.registerRoutes()
	return s
}

// Handler exposes the stub as an http.Handler for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("Starting stub API server")
	return s.engine.Run(addr)
}

func (s *Server) registerRoutes() {
	s.engine.POST("/create-user", s.createUser)
	s.engine.PUT("/update-user/:id", s.updateUser)
	s.engine.DELETE("/delete-user/:id", s.deleteUser)
	s.engine.GET("/get-user-by-tg-id", s.getUserByTgID)
	s.engine.GET("/get-user-details", s.getUserDetails)
	s.engine.POST("/create-group", s.createGroup)
	s.engine.GET("/group-details/:id", s.groupDetails)
	s.engine.GET("/check-participants", s.checkParticipants)
	s.engine.GET("/get-user-groups", s.getUserGroups)
	s.engine.GET("/api/generate-qr", s.generateQR)
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}

func (s *Server) createUser(c *gin.Context) {
	var payload linkupapi.CreateUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.TgID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required field: tg_id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.TgID == payload.TgID {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "User with this tg_id already exists"})
			return
		}
	}

	now := timestamp()
	user := &linkupapi.Profile{
		UserID:          s.nextUserID,
		TgID:            payload.TgID,
		Username:        payload.Username,
		DisplayName:     payload.DisplayName,
		ProjectName:     payload.ProjectName,
		Role:            payload.Role,
		Description:     payload.Description,
		ProfileImageURL: payload.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.users[user.UserID] = user
	s.nextUserID++

	c.JSON(http.StatusCreated, gin.H{"message": "User created", "user_id": user.UserID})
}

func (s *Server) updateUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updated := false
	assign := func(key string, dst *string) {
		if value, ok := fields[key].(string); ok {
			*dst = value
			updated = true
		}
	}
	assign("username", &user.Username)
	assign("display_name", &user.DisplayName)
	assign("project_name", &user.ProjectName)
	assign("role", &user.Role)
	assign("description", &user.Description)
	assign("profile_image_url", &user.ProfileImageURL)

	if !updated {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
		return
	}

	user.UpdatedAt = timestamp()
	c.JSON(http.StatusOK, gin.H{"message": "User updated"})
}

func (s *Server) deleteUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID format"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	delete(s.users, userID)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (s *Server) getUserByTgID(c *gin.Context) {
	tgID, err := strconv.ParseInt(c.Query("tg_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing tg_id parameter"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.TgID == tgID {
			c.JSON(http.StatusOK, gin.H{"user": user})
			return
		}
	}
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
}

func (s *Server) getUserDetails(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing user_id parameter"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) createGroup(c *gin.Context) {
	var payload linkupapi.CreateGroupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.GroupLink == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required field: group_link"})
		return
	}
	if payload.User1ID == 0 || payload.User2ID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing required field: user1_id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, userID := range []int64{payload.User1ID, payload.User2ID} {
		if _, ok := s.users[userID]; !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with user_id %d not found", userID)})
			return
		}
	}

	now := timestamp()
	group := &storedGroup{
		group: linkupapi.Group{
			GroupID:         s.nextGroupID,
			GroupLink:       payload.GroupLink,
			EventName:       payload.EventName,
			MeetingLocation: payload.MeetingLocation,
			MeetingTime:     payload.MeetingTime,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		user1ID: payload.User1ID,
		user2ID: payload.User2ID,
	}
	s.groups[group.group.GroupID] = group
	s.nextGroupID++

	c.JSON(http.StatusCreated, gin.H{"message": "Group and participants created", "group_id": group.group.GroupID})
}

func (s *Server) groupDetails(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID format"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	participants := make([]linkupapi.Profile, 0, 2)
	for _, userID := range []int64{group.user1ID, group.user2ID} {
		if user, ok := s.users[userID]; ok {
			participants = append(participants, *user)
		}
	}
	c.JSON(http.StatusOK, gin.H{"group": group.group, "participants": participants})
}

func (s *Server) checkParticipants(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Query("group_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing group_id parameter"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[groupID]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"participants": []linkupapi.Participant{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": []linkupapi.Participant{{
		User1ID:   group.user1ID,
		User2ID:   group.user2ID,
		CreatedAt: group.group.CreatedAt,
		UpdatedAt: group.group.UpdatedAt,
	}}})
}

func (s *Server) getUserGroups(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing user_id parameter"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	connections := make([]linkupapi.Connection, 0)
	for _, group := range s.groups {
		var otherID int64
		switch userID {
		case group.user1ID:
			otherID = group.user2ID
		case group.user2ID:
			otherID = group.user1ID
		default:
			continue
		}

		other, ok := s.users[otherID]
		if !ok {
			continue
		}
		connections = append(connections, linkupapi.Connection{
			GroupID:         group.group.GroupID,
			GroupLink:       group.group.GroupLink,
			EventName:       group.group.EventName,
			MeetingLocation: group.group.MeetingLocation,
			MeetingTime:     group.group.MeetingTime,
			CreatedAt:       group.group.CreatedAt,
			UpdatedAt:       group.group.UpdatedAt,
			OtherUserID:     otherID,
			OtherUser:       *other,
		})
	}

	// Newest pairings first.
	sort.Slice(connections, func(i, j int) bool {
		return connections[i].GroupID > connections[j].GroupID
	})
	c.JSON(http.StatusOK, gin.H{"groups": connections})
}

func (s *Server) generateQR(c *gin.Context) {
	if _, err := strconv.ParseInt(c.Query("tg_id"), 10, 64); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing tg_id parameter"})
		return
	}
	c.Data(http.StatusOK, "image/png", pngPixel)
}
