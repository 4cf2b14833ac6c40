package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/starter-webapi/internal/application"
	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/internal/interface/middleware"
	"github.com/oksasatya/starter-webapi/pkg/response"
)

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// authorize checks the caller against targetID. A caller whose own record is
// gone gets 401; false means a response was already written.
func (h *UserHandler) authorize(c *gin.Context, targetID string, adminOnly bool) (*entity.User, bool) {
	requester, err := h.Svc.Authorize(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), targetID, adminOnly)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			response.JSON(c, response.Error[any](c, http.StatusUnauthorized, "account no longer exists", nil))
			return nil, false
		}
		writeError(c, h.Logger, err)
		return nil, false
	}
	return requester, true
}

// Me GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if errors.Is(err, entity.ErrUserNotFound) {
		response.JSON(c, response.Error[any](c, http.StatusUnauthorized, "account no longer exists", nil))
		return
	}
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, u, "user", nil))
}

// Get GET /api/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id, false); !ok {
		return
	}
	u, err := h.Svc.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, u, "user", nil))
}

// Update PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	requester, ok := h.authorize(c, id, false)
	if !ok {
		return
	}
	if req.Role != "" && requester.Role != entity.RoleAdmin && req.Role != string(requester.Role) {
		response.JSON(c, response.Error[any](c, http.StatusForbidden, "only an admin may change a role", nil))
		return
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), id, req.input(requester.Role == entity.RoleAdmin))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, u, "user updated", nil))
}

// Delete DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id, true); !ok {
		return
	}
	if err := h.Svc.DeleteUser(c.Request.Context(), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil))
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	if _, ok := h.authorize(c, "", true); !ok {
		return
	}
	size, _ := strconv.Atoi(c.Query("size"))
	users, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.JSON(c, response.Success(c, http.StatusOK, users, "users", gin.H{"count": len(users)}))
}
