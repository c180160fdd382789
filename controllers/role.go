package controllers

import (
	"fmt"
	"net/http"

	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// PermissionRoles gates the role management routes.
const PermissionRoles = "custom_role_permission"

// RoleResponse is the wire shape of a role.
type RoleResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// PermissionResponse is the wire shape of a catalog permission.
type PermissionResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RoleDetailResponse includes the role's permission set.
type RoleDetailResponse struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Permissions []PermissionResponse `json:"permissions"`
}

func mapRoleResponse(role *models.Role) RoleResponse {
	return RoleResponse{ID: role.ID, Name: role.Name}
}

func mapRoleDetailResponse(role *models.Role) RoleDetailResponse {
	perms := make([]PermissionResponse, len(role.Permissions))
	for i, p := range role.Permissions {
		perms[i] = PermissionResponse{ID: p.ID, Name: p.Name}
	}
	return RoleDetailResponse{ID: role.ID, Name: role.Name, Permissions: perms}
}

// RoleController exposes the role management routes.
type RoleController struct {
	roleService   services.RoleService
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

// NewRoleController creates a RoleController.
func NewRoleController(roleService services.RoleService, authenticator *auth.Authenticator, logger *zap.Logger) *RoleController {
	return &RoleController{roleService: roleService, authenticator: authenticator, logger: logger}
}

// RegisterRoutes sets up the /roles WebService. Every route requires
// authentication and the role management permission.
func (ctl *RoleController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/roles").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Filter(ctl.authenticator.Filter())
	ws.Filter(auth.RequirePermission(PermissionRoles))

	ws.Route(ws.GET("").To(ctl.list).
		Doc("List all roles").
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Writes([]RoleResponse{}).
		Returns(http.StatusOK, "Roles listed", []RoleResponse{}))

	ws.Route(ws.GET("/{role-id}").To(ctl.show).
		Doc("Get role by id, including its permissions").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Writes(RoleDetailResponse{}).
		Returns(http.StatusOK, "Role found", RoleDetailResponse{}).
		Returns(http.StatusNotFound, "Role not found", ErrorResponse{}))

	ws.Route(ws.POST("").To(ctl.create).
		Doc("Create a role").
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Reads(services.RoleInput{}).
		Returns(http.StatusCreated, "Role created", RoleResponse{}).
		Returns(http.StatusConflict, "Role name already exists", ErrorResponse{}).
		Returns(http.StatusUnprocessableEntity, "Validation failed", ValidationErrorResponse{}))

	ws.Route(ws.PUT("/{role-id}").To(ctl.update).
		Doc("Rename a role").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Reads(services.RoleInput{}).
		Returns(http.StatusOK, "Role updated", RoleResponse{}).
		Returns(http.StatusNotFound, "Role not found", ErrorResponse{}).
		Returns(http.StatusConflict, "Role name already exists", ErrorResponse{}))

	ws.Route(ws.DELETE("/{role-id}").To(ctl.delete).
		Doc("Delete a role, detaching all users and permissions").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Returns(http.StatusOK, "Role deleted", MessageResponse{}).
		Returns(http.StatusNotFound, "Role not found", ErrorResponse{}))

	ws.Route(ws.POST("/{role-id}/permission").To(ctl.assignPermissions).
		Doc("Replace the role's permission set wholesale").
		Param(ws.PathParameter("role-id", "Identifier of the role").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"roles"}).
		Reads(services.AssignPermissionsInput{}).
		Returns(http.StatusOK, "Permissions assigned", MessageResponse{}).
		Returns(http.StatusNotFound, "Role or permission not found", ErrorResponse{}))
}

func (ctl *RoleController) list(req *restful.Request, resp *restful.Response) {
	roles, err := ctl.roleService.ListRoles()
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	data := make([]RoleResponse, len(roles))
	for i := range roles {
		data[i] = mapRoleResponse(&roles[i])
	}
	writeJSON(resp, http.StatusOK, data)
}

func (ctl *RoleController) show(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "role-id")
	if !ok {
		return
	}
	role, err := ctl.roleService.GetRole(id)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, mapRoleDetailResponse(role))
}

func (ctl *RoleController) create(req *restful.Request, resp *restful.Response) {
	input := new(services.RoleInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}
	role, err := ctl.roleService.CreateRole(input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusCreated, mapRoleResponse(role))
}

func (ctl *RoleController) update(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "role-id")
	if !ok {
		return
	}
	input := new(services.RoleInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}
	role, err := ctl.roleService.UpdateRole(id, input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, mapRoleResponse(role))
}

func (ctl *RoleController) delete(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "role-id")
	if !ok {
		return
	}
	role, err := ctl.roleService.DeleteRole(id)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, MessageResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Role %q deleted successfully", role.Name),
	})
}

func (ctl *RoleController) assignPermissions(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "role-id")
	if !ok {
		return
	}
	input := new(services.AssignPermissionsInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}
	role, err := ctl.roleService.AssignPermissions(id, input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, MessageResponse{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("Role %q updated successfully", role.Name),
	})
}
