package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskbox-api/internal/config"
	"github.com/taskbox-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/taskbox-api/internal/infrastructure/jwt"
	s3infra "github.com/taskbox-api/internal/infrastructure/s3"
	"github.com/taskbox-api/internal/infrastructure/smtp"
	"github.com/taskbox-api/internal/infrastructure/sns"
	transporthttp "github.com/taskbox-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// Session tokens are signed with an RSA keypair. Without it nothing
	// past signup works, so a missing keypair is fatal.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	// Activation links carry their own HMAC secret, separate from the
	// session keypair. Only required when the activation flow is enabled.
	var activationSigner *jwtinfra.ActivationSigner
	if signer, err := jwtinfra.NewActivationSigner(cfg.ActivationTokenSecret, cfg.ActivationTokenTTL); err == nil {
		activationSigner = signer
	} else if cfg.VerificationMode == config.VerificationModeActivation {
		log.Fatalf("activation signer: %v", err)
	} else {
		log.Printf("WARN: activation signer not available: %v", err)
	}

	// S3 store for todo images.
	s3Client := s3infra.NewClient(cfg)
	imageStore := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users, cfg.DynamoTables.UserUniques),
		VerificationRepo: dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.UserVerifications),
		TodoRepo:         dynamo.NewTodoRepo(dynamoClient, cfg.DynamoTables.Todos),
		ImageStore:       imageStore,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		ActivationSigner: activationSigner,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, verification=%s)", cfg.AppPort, cfg.AppEnv, cfg.VerificationMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
