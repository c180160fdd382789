package controllers

import (
	"net/http"
	"strconv"

	"bookshelf-restful/auth"
	"bookshelf-restful/models"
	"bookshelf-restful/pagination"
	"bookshelf-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// PermissionUsers gates the user management routes.
const PermissionUsers = "custom_user"

// UserResponse is the wire shape of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func mapUserResponse(user *models.User) UserResponse {
	return UserResponse{ID: user.ID, Username: user.Username, Email: user.Email}
}

// UserController exposes the user management routes.
type UserController struct {
	userService   services.UserService
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

// NewUserController creates a UserController.
func NewUserController(userService services.UserService, authenticator *auth.Authenticator, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, authenticator: authenticator, logger: logger}
}

// RegisterRoutes sets up the /users WebService. Every route requires
// authentication and the user management permission.
func (ctl *UserController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/users").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Filter(ctl.authenticator.Filter())
	ws.Filter(auth.RequirePermission(PermissionUsers))

	ws.Route(ws.POST("").To(ctl.create).
		Doc("Create a user").
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Reads(services.CreateUserInput{}).
		Returns(http.StatusCreated, "User created", UserResponse{}).
		Returns(http.StatusConflict, "Username or email already exists", ErrorResponse{}).
		Returns(http.StatusUnprocessableEntity, "Validation failed", ValidationErrorResponse{}))

	ws.Route(ws.GET("").To(ctl.list).
		Doc("List users with pagination").
		Param(ws.QueryParameter("search", "Filter by username or email substring").DataType("string")).
		Param(ws.QueryParameter("page", "Page number").DataType("integer").DefaultValue("1")).
		Param(ws.QueryParameter("per_page", "Items per page, at most 100").DataType("integer").DefaultValue("10")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Writes(ListResponse{}).
		Returns(http.StatusOK, "Users listed", ListResponse{}))

	ws.Route(ws.GET("/{user-id}").To(ctl.show).
		Doc("Get user by id").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Writes(ItemResponse{}).
		Returns(http.StatusOK, "User found", ItemResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}))

	ws.Route(ws.PATCH("/{user-id}").To(ctl.update).
		Doc("Update user fields; omitted fields are left unchanged").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Reads(services.UpdateUserInput{}).
		Returns(http.StatusOK, "User updated", UserResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}).
		Returns(http.StatusConflict, "Username or email already in use", ErrorResponse{}))

	ws.Route(ws.DELETE("/{user-id}").To(ctl.delete).
		Doc("Delete user by id").
		Param(ws.PathParameter("user-id", "Identifier of the user").DataType("integer")).
		Metadata(restfulspec.KeyOpenAPITags, []string{"users"}).
		Returns(http.StatusOK, "User deleted", MessageResponse{}).
		Returns(http.StatusNotFound, "User not found", ErrorResponse{}))
}

func (ctl *UserController) create(req *restful.Request, resp *restful.Response) {
	input := new(services.CreateUserInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}
	user, err := ctl.userService.CreateUser(input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusCreated, mapUserResponse(user))
}

func (ctl *UserController) list(req *restful.Request, resp *restful.Response) {
	params := pagination.FromRequest(req)
	users, meta, err := ctl.userService.ListUsers(params)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	data := make([]UserResponse, len(users))
	for i := range users {
		data[i] = mapUserResponse(&users[i])
	}
	writeJSON(resp, http.StatusOK, ListResponse{Data: data, Meta: meta})
}

func (ctl *UserController) show(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "user-id")
	if !ok {
		return
	}
	user, err := ctl.userService.GetUser(id)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, ItemResponse{Data: mapUserResponse(user)})
}

func (ctl *UserController) update(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "user-id")
	if !ok {
		return
	}
	input := new(services.UpdateUserInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}
	user, err := ctl.userService.UpdateUser(id, input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, mapUserResponse(user))
}

func (ctl *UserController) delete(req *restful.Request, resp *restful.Response) {
	id, ok := pathID(req, resp, "user-id")
	if !ok {
		return
	}
	if err := ctl.userService.DeleteUser(id); err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, MessageResponse{StatusCode: http.StatusOK, Message: "User deleted successfully"})
}

// pathID parses a numeric path parameter, answering 400 itself when
// the value is not a positive integer.
func pathID(req *restful.Request, resp *restful.Response, name string) (uint, bool) {
	raw := req.PathParameter(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}
