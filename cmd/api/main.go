package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"rollcall.org/internal/attendance"
	"rollcall.org/internal/auth"
	"rollcall.org/internal/httpapi"
	"rollcall.org/internal/obs"
	"rollcall.org/internal/school"
	"rollcall.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var db *sql.DB
	if dsn := os.Getenv("ROLLCALL_PG_DSN"); dsn != "" {
		var err error
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Stores: Postgres when a DSN is configured, in-memory otherwise so the
	// API can run standalone for local frontend work.
	var (
		users   auth.UserStore
		classes school.Store
		att     attendance.Service
	)
	if db != nil {
		users = auth.NewPGStore(db)
		classes = school.NewPGStore(db)
		att = attendance.NewPGStore(db)
	} else {
		log.Println("ROLLCALL_PG_DSN not set, using in-memory stores")
		memUsers := auth.NewInMemoryUsers()
		memClasses := school.NewInMemory(memUsers)
		users = memUsers
		classes = memClasses
		att = attendance.NewInMemory(memClasses)
	}

	var opts []auth.ServiceOption
	if ttl := os.Getenv("ROLLCALL_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("parse ROLLCALL_TOKEN_TTL: %v", err)
		}
		opts = append(opts, auth.WithTokenTTL(d))
	}
	authSvc, err := auth.NewService(users, opts...)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, authSvc, classes, att, stream.New())

	addr := os.Getenv("ROLLCALL_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting rollcall-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// Optional gRPC health endpoint for infrastructure probes.
	var grpcStop func()
	if grpcAddr := os.Getenv("ROLLCALL_GRPC_ADDR"); grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv, serve := httpapi.ServeGRPC(lis, httpapi.ReadyProbe{DB: db})
		log.Printf("gRPC health on %s", grpcAddr)
		go func() {
			if err := serve(); err != nil {
				log.Printf("grpc serve: %v", err)
			}
		}()
		grpcStop = grpcSrv.GracefulStop
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcStop != nil {
		grpcStop()
	}
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
