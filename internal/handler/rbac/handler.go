package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/rbac"
	apperrors "github.com/clinicore/clinic-api/pkg/errors"
)

type Handler struct {
	service *rbac.Service
}

func NewHandler(service *rbac.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	group := r.Group("/rbac")
	{
		group.GET("/roles", auth.RequirePermission(model.PermRoleRead), h.ListRoles)
		group.GET("/permissions", auth.RequirePermission(model.PermRoleRead), h.ListPermissions)
		group.GET("/roles/:name/permissions", auth.RequirePermission(model.PermRoleRead), h.ListRoleGrants)
		group.POST("/roles/:name/permissions/:code", auth.RequirePermission(model.PermRoleUpdate), h.Grant)
		group.DELETE("/roles/:name/permissions/:code", auth.RequirePermission(model.PermRoleUpdate), h.Revoke)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(roles))
}

func (h *Handler) ListPermissions(c *gin.Context) {
	permissions, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(permissions))
}

func (h *Handler) ListRoleGrants(c *gin.Context) {
	role, ok := h.roleParam(c)
	if !ok {
		return
	}

	permissions, err := h.service.ListRoleGrants(c.Request.Context(), role)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(permissions))
}

// Grant takes effect on the grantee's next request; no token reissue needed.
func (h *Handler) Grant(c *gin.Context) {
	role, ok := h.roleParam(c)
	if !ok {
		return
	}

	if err := h.service.Grant(c.Request.Context(), role, model.PermissionCode(c.Param("code"))); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(nil))
}

func (h *Handler) Revoke(c *gin.Context) {
	role, ok := h.roleParam(c)
	if !ok {
		return
	}

	if err := h.service.Revoke(c.Request.Context(), role, model.PermissionCode(c.Param("code"))); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) roleParam(c *gin.Context) (model.RoleName, bool) {
	role := model.RoleName(c.Param("name"))
	if !role.Valid() {
		handler.RespondError(c, apperrors.Validation("invalid role name", nil))
		return "", false
	}
	return role, true
}
