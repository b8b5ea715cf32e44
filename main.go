package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-mines/api"
	gameapi "github.com/beka-birhanu/vinom-mines/api/game"
	api_i "github.com/beka-birhanu/vinom-mines/api/i"
	"github.com/beka-birhanu/vinom-mines/api/identity"
	"github.com/beka-birhanu/vinom-mines/config"
	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	pb "github.com/beka-birhanu/vinom-mines/game/pb_encoder"
	"github.com/beka-birhanu/vinom-mines/infrastruture/grpc/gamesession"
	"github.com/beka-birhanu/vinom-mines/infrastruture/locker"
	logger "github.com/beka-birhanu/vinom-mines/infrastruture/log"
	"github.com/beka-birhanu/vinom-mines/infrastruture/repo"
	"github.com/beka-birhanu/vinom-mines/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-mines/infrastruture/sqlitestore"
	"github.com/beka-birhanu/vinom-mines/infrastruture/token"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

// Global variables for dependencies
var (
	mongoClient           *mongo.Client
	sqliteStore           *sqlitestore.Store
	redisClient           *redis.Client
	userRepo              i.UserRepo
	gameRepo              i.GameRepo
	leaderboard           i.Leaderboard
	gameLocker            i.Locker
	gameSessionManager    i.GameSessionManager
	jwtTokenizer          i.Tokenizer
	authService           i.Authenticator
	authController        api_i.Controller
	gameController        api_i.Controller
	leaderboardController api_i.Controller
	router                *api.Router
	grpcServer            *grpc.Server
	appLogger             *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	l.SetLevel(config.Envs.LogLevel)
	return l
}

func initMongo(ctx context.Context) {
	clientOptions := options.Client().ApplyURI(config.Envs.MongoURI())
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initRepos(ctx context.Context) {
	switch config.Envs.StoreDriver {
	case config.StoreSQLite:
		var err error
		sqliteStore, err = sqlitestore.Open(config.Envs.SQLitePath)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Opening SQLite store: %v", err))
			os.Exit(1)
		}
		userRepo = sqliteStore.Users()
		gameRepo = sqliteStore.Games()
		appLogger.Info(fmt.Sprintf("SQLite store opened at %s", config.Envs.SQLitePath))
	default:
		initMongo(ctx)
		users, err := repo.NewUserRepo(mongoClient, config.Envs.DBName, "users")
		if err != nil {
			appLogger.Error(fmt.Sprintf("Creating user repository: %v", err))
			os.Exit(1)
		}
		userRepo = users
		gameRepo = repo.NewGameRepo(mongoClient, config.Envs.DBName, "games")
	}
	appLogger.Info("Repositories initialized")
}

func initRedis(ctx context.Context) {
	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLeaderboard() {
	var err error
	leaderboard, err = sortedstorage.NewRedisLeaderboard(redisClient, config.Envs.LeaderboardTTL)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	gameLocker = locker.NewRedisLocker(redisClient, locker.WithExpiry(config.Envs.LockExpiry))
	appLogger.Info("Leaderboard and game locker initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		Games:       gameRepo,
		Users:       userRepo,
		Leaderboard: leaderboard,
		Locker:      gameLocker,
		Logger:      newLogger("SESSION-MANAGER", config.ColorCyan),
		Options: &service.Options{
			DefaultBoard: game.Config{
				Rows:  config.Envs.DefaultRows,
				Cols:  config.Envs.DefaultCols,
				Mines: config.Envs.DefaultMines,
			},
			MaxRegionVariables: config.Envs.SolverMaxRegion,
			RandSource:         field.LockedRandSource(field.DefaultRandSource()),
		},
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	var err error
	jwtTokenizer, err = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating JWT tokenizer: %v", err))
		os.Exit(1)
	}
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuthService(userRepo, jwtTokenizer)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initControllers() {
	var err error
	authController = identity.NewIdentityServer(authService, userRepo)
	gameController, err = gameapi.NewGameController(gameSessionManager)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}
	leaderboardController, err = gameapi.NewLeaderboardController(leaderboard)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, gameController, leaderboardController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func initGrpcServer() {
	grpcLogger := newLogger("GRPC", config.ColorMagenta)
	srv, err := gamesession.NewServer(&gamesession.Config{
		Sessions:  gameSessionManager,
		Tokenizer: jwtTokenizer,
		Encoder:   &pb.Protobuf{},
		Logger:    grpcLogger,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating gRPC game session server: %v", err))
		os.Exit(1)
	}

	grpcServer = grpc.NewServer(grpc.UnaryInterceptor(gamesession.UnaryLogger(grpcLogger)))
	gamesession.RegisterGameSessionServer(grpcServer, srv)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(gamesession.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	appLogger.Info("gRPC server initialized")
}

func main() {
	config.MustLoad()
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	appLogger.SetLevel(config.Envs.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	initRepos(initCtx)
	defer func() {
		if mongoClient != nil {
			_ = mongoClient.Disconnect(context.Background())
		}
		if sqliteStore != nil {
			_ = sqliteStore.Close()
		}
	}()

	initRedis(initCtx)
	defer redisClient.Close()

	initLeaderboard()
	initSessionManager()
	initJWTTokenizer()
	initAuthService()
	initControllers()
	initRouter(jwtTokenizer)
	initGrpcServer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", config.Envs.HostIP, config.Envs.GRPCPort))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Listening for gRPC: %v", err))
		os.Exit(1)
	}
	go func() {
		appLogger.Info(fmt.Sprintf("gRPC server listening on %s", lis.Addr()))
		errCh <- grpcServer.Serve(lis)
	}()

	httpServer := router.Server()
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening on %s", httpServer.Addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down")
	case err := <-errCh:
		appLogger.Error(fmt.Sprintf("Server stopped: %v", err))
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP shutdown: %v", err))
	}
	grpcServer.GracefulStop()
}
