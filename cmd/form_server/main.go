package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"dynamic_forms/forms/schema"
	"dynamic_forms/forms/services"
	"dynamic_forms/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	slogmulti "github.com/samber/slog-multi"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type formServerEnv struct {
	DatabaseUri    string
	SqlitePath     string
	LogDir         string
	FieldTypesFile string
	AllowedOrigin  string
}

func loadEnvFile(envFile string) {
	slog.Info(fmt.Sprintf("loading env from file %v", envFile))
	err := godotenv.Load(envFile)
	if err != nil {
		log.Fatalf("error loading .env file '%v': %v", envFile, err)
	}
}

func loadEnv() formServerEnv {
	env := formServerEnv{
		DatabaseUri:    utils.OptionalEnv("DATABASE_URI"),
		SqlitePath:     utils.OptionalEnv("SQLITE_PATH"),
		LogDir:         utils.OptionalEnv("LOG_DIR"),
		FieldTypesFile: utils.OptionalEnv("FIELD_TYPES_FILE"),
		AllowedOrigin:  utils.OptionalEnv("ALLOWED_ORIGIN"),
	}

	if env.DatabaseUri == "" && env.SqlitePath == "" {
		log.Fatal("Must specify one of DATABASE_URI or SQLITE_PATH")
	}

	if env.AllowedOrigin == "" {
		env.AllowedOrigin = "*"
	}

	return env
}

func (env *formServerEnv) postgresDsn() string {
	parts, err := url.Parse(env.DatabaseUri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}

func initLogging(logDir string) {
	if logDir == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		return
	}

	err := os.MkdirAll(logDir, 0777)
	if err != nil {
		log.Fatalf("error creating log dir: %v", err)
	}

	logFile, err := os.OpenFile(filepath.Join(logDir, "form_server.log"), os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}

	slog.SetDefault(slog.New(slogmulti.Fanout(
		slog.NewJSONHandler(logFile, nil),
		slog.NewTextHandler(os.Stderr, nil),
	)))

	slog.Info("logging initialized", "log_file", logFile.Name())
}

func initDb(env *formServerEnv) *gorm.DB {
	var dialector gorm.Dialector
	if env.DatabaseUri != "" {
		dialector = postgres.Open(env.postgresDsn())
	} else {
		// The _foreign_keys pragma is required for delete cascades to fire.
		dialector = sqlite.Open(fmt.Sprintf("file:%v?_foreign_keys=on", env.SqlitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	err = db.AutoMigrate(schema.Tables()...)
	if err != nil {
		log.Fatalf("error migrating db schema: %v", err)
	}

	return db
}

func seedFieldTypes(db *gorm.DB, catalogFile string) {
	entries := schema.DefaultFieldTypes
	if catalogFile != "" {
		var err error
		entries, err = schema.LoadCatalogFile(catalogFile)
		if err != nil {
			log.Fatalf("error loading field type catalog '%v': %v", catalogFile, err)
		}
	}

	if err := schema.SeedFieldTypes(db, entries); err != nil {
		log.Fatalf("error seeding field types: %v", err)
	}
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from. If not specified will just load them from the environment variables already defined.")
	port := flag.Int("port", 8000, "Port to run server on")

	flag.Parse()

	if *envFile != "" {
		loadEnvFile(*envFile)
	}
	env := loadEnv()

	initLogging(env.LogDir)

	db := initDb(&env)

	seedFieldTypes(db, env.FieldTypesFile)

	platform := services.NewFormPlatform(db)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{env.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/api/v1", platform.Routes())

	slog.Info("starting server", "port", *port)
	err := http.ListenAndServe(fmt.Sprintf(":%d", *port), r)
	if err != nil {
		log.Fatalf("listen and serve returned error: %v", err.Error())
	}
}
