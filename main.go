package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"grumbler/captcha"
	"grumbler/handlers"
	"grumbler/passwords"
	"grumbler/posts"
	"grumbler/storage/mongostorage"
	"grumbler/storage/rediscached"
	"grumbler/users"
	"grumbler/workers"
)

const (
	defaultServerPort = "8080"
	defaultBcryptCost = 10
	frontPageCacheTTL = time.Minute
)

func Start() error {
	switch mode := os.Getenv("APP_MODE"); mode {
	case "SERVER":
		return runAsServer()
	case "WORKER":
		return runAsWorker()
	default:
		panic(fmt.Errorf("unexpected app mode: %s", mode))
	}
}

func mustGetenv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		panic(fmt.Errorf("empty %s", name))
	}
	return value
}

func runAsServer() error {
	ctx := context.Background()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = defaultServerPort
	}

	mongoURL := mustGetenv("MONGO_URL")
	dbName := mustGetenv("MONGO_DBNAME")
	brokerURL := mustGetenv("REDIS_URL")
	recaptchaSecret := mustGetenv("RECAPTCHA_SECRET")

	usersStorage := users.NewStorage(ctx, mongoURL, dbName)
	postsStorage := mongostorage.NewStorage(ctx, mongoURL, dbName)

	redisClient := redis.NewClient(&redis.Options{Addr: brokerURL})
	cachedPosts := rediscached.NewCachedStorage(postsStorage, redisClient, frontPageCacheTTL)

	scheduler := workers.NewScheduler(brokerURL)
	executor := workers.NewRenameTasksExecutor(cachedPosts)
	if err := scheduler.Register(*executor); err != nil {
		panic(err)
	}

	hasher := passwords.NewBcryptHasher(defaultBcryptCost)
	verifier := captcha.NewRecaptcha(recaptchaSecret)

	usersManager := users.NewUsersManager(usersStorage, cachedPosts, hasher, scheduler)
	postsManager := posts.NewPostsManager(cachedPosts, verifier)

	handler := handlers.NewHTTPHandler(postsManager, usersManager)
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/register", handler.HandleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/login", handler.HandleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/oauth", handler.HandleOAuth).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/about", handler.HandleAbout).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/posts", handler.HandleListPosts).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/posts", handler.HandleCreatePost).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/posts/settings", handler.HandlePostSettings).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/posts/{postId}", handler.HandleDeletePost).Methods(http.MethodDelete)

	r.HandleFunc("/api/v1/users/{userId}", handler.HandleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/users/{userId}", handler.HandleUpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/api/v1/users/{userId}", handler.HandleDeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/api/v1/users/{userId}/posts", handler.HandleGetUserPosts).Methods(http.MethodGet)

	r.HandleFunc("/maintenance/ping", handler.HandlePing).Methods(http.MethodGet)

	server := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf("0.0.0.0:%s", serverPort),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Printf("Start serving at %s", server.Addr)
	return server.ListenAndServe()
}

func runAsWorker() error {
	ctx := context.Background()

	mongoURL := mustGetenv("MONGO_URL")
	dbName := mustGetenv("MONGO_DBNAME")
	brokerURL := mustGetenv("REDIS_URL")

	postsStorage := mongostorage.NewStorage(ctx, mongoURL, dbName)

	redisClient := redis.NewClient(&redis.Options{Addr: brokerURL})
	cachedPosts := rediscached.NewCachedStorage(postsStorage, redisClient, frontPageCacheTTL)

	scheduler := workers.NewScheduler(brokerURL)
	executor := workers.NewRenameTasksExecutor(cachedPosts)
	if err := scheduler.Register(*executor); err != nil {
		panic(err)
	}

	return scheduler.Listen()
}

func main() {
	log.Println(Start())
}
