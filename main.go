package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"bookshelf-restful/auth"
	"bookshelf-restful/config"
	"bookshelf-restful/controllers"
	"bookshelf-restful/database"
	"bookshelf-restful/repositories"
	"bookshelf-restful/services"
	"bookshelf-restful/storage"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if cfg.SeedData {
		if err := database.Seed(db, logger); err != nil {
			logger.Fatal("seeding failed", zap.Error(err))
		}
	}

	store, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg)
	if err != nil {
		logger.Fatal("token service init failed", zap.Error(err))
	}
	resolver := auth.NewIdentityResolver(db)
	authenticator := auth.NewAuthenticator(tokens, resolver)

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	bookRepo := repositories.NewBookRepository(db)

	authService := services.NewAuthService(userRepo, tokens)
	userService := services.NewUserService(userRepo)
	roleService := services.NewRoleService(roleRepo)
	bookService := services.NewBookService(db, bookRepo, store, logger)

	container := restful.NewContainer()
	container.Filter(requestLogger(logger))
	container.RecoverHandler(func(rec interface{}, w http.ResponseWriter) {
		logger.Error("panic recovered", zap.Any("panic", rec))
		w.Header().Set("Content-Type", restful.MIME_JSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal server error"}`))
	})

	registrars := []interface {
		RegisterRoutes(ws *restful.WebService)
	}{
		controllers.NewAuthController(authService, authenticator, logger),
		controllers.NewUserController(userService, authenticator, logger),
		controllers.NewRoleController(roleService, authenticator, logger),
		controllers.NewBookController(bookService, authenticator, cfg.StaticPrefix, logger),
	}
	for _, ctl := range registrars {
		ws := new(restful.WebService)
		ctl.RegisterRoutes(ws)
		container.Add(ws)
	}

	apiConfig := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     "/apidocs.json",
		PostBuildSwaggerObjectHandler: func(s *spec.Swagger) {
			s.Info = &spec.Info{
				InfoProps: spec.InfoProps{
					Title:       cfg.ServiceName,
					Description: "Token-authenticated book catalog with role-based access control.",
					Version:     "1.0.0",
				},
			}
		},
	}
	container.Add(restfulspec.NewOpenAPIService(apiConfig))

	mux := http.NewServeMux()
	mux.Handle("/", container)
	// Stored images are served verbatim under the static prefix.
	mux.Handle(cfg.StaticPrefix, http.StripPrefix(cfg.StaticPrefix, http.FileServer(http.Dir(store.Root()))))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("starting server", zap.String("addr", addr), zap.String("service", cfg.ServiceName))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger *zap.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)
		logger.Info("request",
			zap.String("method", req.Request.Method),
			zap.String("path", req.Request.URL.Path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", req.Request.RemoteAddr),
		)
	}
}
