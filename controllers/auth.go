package controllers

import (
	"net/http"

	"bookshelf-restful/auth"
	"bookshelf-restful/services"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"go.uber.org/zap"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ProfileResponse describes the authenticated principal, including its
// resolved permission set.
type ProfileResponse struct {
	ID          uint     `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// AuthController exposes login, registration and profile routes.
type AuthController struct {
	authService   services.AuthService
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

// NewAuthController creates an AuthController.
func NewAuthController(authService services.AuthService, authenticator *auth.Authenticator, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, authenticator: authenticator, logger: logger}
}

// RegisterRoutes sets up the /auth WebService.
func (ctl *AuthController) RegisterRoutes(ws *restful.WebService) {
	ws.Path("/auth").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/login").To(ctl.login).
		Doc("Authenticate with username and password").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(LoginRequest{}).
		Returns(http.StatusOK, "Token issued", TokenResponse{}).
		Returns(http.StatusUnauthorized, "Invalid credentials", ErrorResponse{}))

	ws.Route(ws.POST("/register").To(ctl.register).
		Doc("Register a new account").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Reads(services.RegisterInput{}).
		Returns(http.StatusCreated, "Account created", UserResponse{}).
		Returns(http.StatusConflict, "Username or email already registered", ErrorResponse{}).
		Returns(http.StatusUnprocessableEntity, "Validation failed", ValidationErrorResponse{}))

	ws.Route(ws.GET("/profile").Filter(ctl.authenticator.Filter()).To(ctl.profile).
		Doc("Get the authenticated user's profile").
		Metadata(restfulspec.KeyOpenAPITags, []string{"auth"}).
		Writes(ProfileResponse{}).
		Returns(http.StatusOK, "Profile", ProfileResponse{}).
		Returns(http.StatusUnauthorized, "Unauthorized", ErrorResponse{}))
}

func (ctl *AuthController) login(req *restful.Request, resp *restful.Response) {
	creds := new(LoginRequest)
	if err := req.ReadEntity(creds); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	token, err := ctl.authService.Login(creds.Username, creds.Password)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (ctl *AuthController) register(req *restful.Request, resp *restful.Response) {
	input := new(services.RegisterInput)
	if err := req.ReadEntity(input); err != nil {
		writeJSON(resp, http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
		return
	}

	user, err := ctl.authService.Register(input)
	if err != nil {
		writeError(resp, ctl.logger, err)
		return
	}
	writeJSON(resp, http.StatusCreated, mapUserResponse(user))
}

func (ctl *AuthController) profile(req *restful.Request, resp *restful.Response) {
	principal, ok := auth.PrincipalFrom(req)
	if !ok {
		writeJSON(resp, http.StatusUnauthorized, ErrorResponse{Message: "Could not validate credentials"})
		return
	}
	writeJSON(resp, http.StatusOK, ProfileResponse{
		ID:          principal.ID,
		Username:    principal.Username,
		Email:       principal.Email,
		Permissions: principal.Permissions.Names(),
	})
}
