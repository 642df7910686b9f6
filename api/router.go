// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"drivebox/file-api/catalog"
	"drivebox/file-api/db"
	"drivebox/file-api/identity"
	"drivebox/file-api/middleware"
	"drivebox/file-api/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Store    storage.Store
	Identity *identity.Service
	Catalog  *catalog.Catalog
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	store, err := storage.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage, %w", err)
	}
	a.Store = store

	a.Identity = identity.NewService(db)
	a.Catalog = catalog.New(db, store)

	auth := middleware.NewAuthMiddleware(a.Identity)
	authLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
		CleanupInterval:   time.Minute,
		TTL:               10 * time.Minute,
	})
	maxUploadSize := viper.GetInt64("upload.max_size")

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a session token
		main.HEAD("/validate", auth, a.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/users 		-> Registers a new user
		users.POST("", authLimiter, a.UserRegister)

		// POST /api/users/login 	-> Logs in a user and sets the auth cookie
		users.POST("/login", authLimiter, a.UserLogin)

		// POST /api/users/logout 	-> Clears the auth cookie
		users.POST("/logout", a.UserLogout)

		// GET /api/users		-> Returns the current principal and their stats
		users.GET("", auth, a.UserFetch)
	}

	files := main.Group("/files", auth)
	{
		// GET /api/files 		-> Lists all files owned by the user
		files.GET("", a.FileFetchBulk)

		// POST /api/files		-> Uploads a new file and records it
		// The slack on top of the cap leaves room for the multipart framing
		files.POST("", middleware.BodySizeLimiter(maxUploadSize+1<<20), a.FileUpload)

		// GET /api/files/:id/download	-> Streams a file back to its owner
		files.GET("/:id/download", a.FileServe)

		// PATCH /api/files/:id		-> Moves a file into or out of a folder
		files.PATCH("/:id", a.FileMove)

		// DELETE /api/files/:id	-> Deletes a file owned by a user
		files.DELETE("/:id", a.FileDelete)
	}

	folders := main.Group("/folders", auth)
	{
		// POST /api/folders		-> Creates a new folder
		folders.POST("", a.FolderCreate)

		// GET /api/folders		-> Lists folders with their files nested
		folders.GET("", a.FolderFetch)
	}

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
