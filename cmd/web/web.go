package main

import (
	"context"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/groundsync/groundsync-be/app"
	"github.com/groundsync/groundsync-be/config"
	"github.com/groundsync/groundsync-be/controllers"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/db/firestore"
	"github.com/groundsync/groundsync-be/db/memdb"
	"github.com/groundsync/groundsync-be/db/planetscale"
	"github.com/groundsync/groundsync-be/logging"
	"github.com/groundsync/groundsync-be/routes"
	"github.com/groundsync/groundsync-be/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	ctx := context.Background()
	if err := configureFirebaseCredentials(); err != nil {
		logging.Fatal().Err(err).Msg("an error occurred while configuring firebase credentials")
	}
	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: cfg.Storage.Bucket})
	if err != nil {
		logging.Fatal().Err(err).Msg("error initializing firebase")
	}
	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("error initializing auth client")
	}

	db, err := openDatabase(ctx, cfg, firebaseApp)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("received err when attempting to connect to DB")
	}
	defer db.Close()

	opts := &app.Opts{
		Geocoder: services.NewNominatimGeocoder(&services.GeocoderOpts{
			BaseURL:           cfg.Geocoder.URL,
			UserAgent:         cfg.Geocoder.UserAgent,
			Timeout:           cfg.Geocoder.Timeout,
			RequestsPerSecond: cfg.Geocoder.RequestsPerSecond,
		}),
		UploadTimeout: cfg.Storage.UploadTimeout,
	}
	if cfg.MediaEnabled() {
		mediaBucket, err := services.NewStorageBucket(ctx, firebaseApp, cfg.Storage.Bucket)
		if err != nil {
			logging.Fatal().Err(err).Msg("an error occurred while connecting to the media bucket")
		}
		opts.Blobs = mediaBucket
	} else {
		logging.Warn().Str("driver", cfg.Database.Driver).Msg("no storage bucket configured, discussion media uploads will be rejected")
	}
	core := app.New(db, opts)

	if cfg.SeedDemoData {
		if err := core.Seeder.Seed(ctx); err != nil {
			logging.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	locationController, err := controllers.NewLocationController(ctx, core.Locations, core.Validator, cfg.Server.LocationCacheInterval)
	if err != nil {
		logging.Fatal().Err(err).Msg("an error occurred while initializing the location controller")
	}
	defer locationController.Close()
	postController := controllers.NewPostController(locationController, core.Posts)

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	r.Use(logging.GinLogger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.Origins(),
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	routes.AddHealthCheckRoutes(&r.RouterGroup)
	routes.AddMetricsRoutes(&r.RouterGroup)
	routes.AddLocationRoutes(&r.RouterGroup, locationController)
	routes.AddPostRoutes(&r.RouterGroup, core, postController, db, authClient)
	routes.AddDiscussionRoutes(&r.RouterGroup, core, db, authClient, cfg.Server.Origins())
	routes.AddFollowRoutes(&r.RouterGroup, core.Follows, db, authClient)
	routes.AddUserRoutes(&r.RouterGroup, db, authClient)

	logging.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("starting server")
	if err := r.Run(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		logging.Fatal().Err(err).Msg("error when attempting to run web server")
	}
}

func openDatabase(ctx context.Context, cfg *config.Config, firebaseApp *firebase.App) (appDb.Database, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		return planetscale.GetDatabase(&planetscale.ConnectionConfig{
			User:         cfg.Database.User,
			Password:     cfg.Database.Password,
			Host:         cfg.Database.Host,
			Name:         cfg.Database.Name,
			MaxOpenConns: cfg.Database.MaxOpenConns,
		})
	case config.DriverMemory:
		logging.Warn().Msg("using the in-memory database, data is lost on restart")
		return memdb.New(), nil
	default:
		return firestore.GetDatabase(ctx, firebaseApp)
	}
}

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	TargetCredentialsFile = "./google-application-credentials.json"
)

func configureFirebaseCredentials() error {
	credentialsPath, hasCredentialsPath := os.LookupEnv(CredentialsPathEnvVar)
	if hasCredentialsPath {
		logging.Info().Str("path", credentialsPath).Msg("credentials path detected in env")
		return nil
	}
	credentialsJson, hasCredentialsJson := os.LookupEnv(CredentialsJsonEnvVar)
	if hasCredentialsJson {
		logging.Info().Msg("credentials JSON string detected in env")
		err := os.WriteFile(TargetCredentialsFile, []byte(credentialsJson), 0400)
		if err != nil {
			return fmt.Errorf("error writing credentials to temp file, %w", err)
		}
		err = os.Setenv(CredentialsPathEnvVar, TargetCredentialsFile)
		if err != nil {
			return fmt.Errorf("error setting %v env var %w", CredentialsPathEnvVar, err)
		}
		return nil
	}
	return fmt.Errorf("must specify either %v (a path)"+
		" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
}
