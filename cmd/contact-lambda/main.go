package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"portfolio-contact/app"
	"portfolio-contact/config"
	"portfolio-contact/logging"
	"portfolio-contact/serverless"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer closeLog()

	// o limiter em memória vive enquanto a instância estiver quente;
	// para limite global use RATE_BACKEND=redis
	ctx := context.Background()
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build failed", zap.Error(err))
	}
	a.Start(ctx)

	logger.Info("contact lambda ready",
		zap.String("path", cfg.ContactPath),
		zap.String("rate_backend", cfg.RateBackend),
		zap.String("mail_provider", cfg.MailProvider),
		zap.String("traces_exporter", cfg.Trace.Exporter),
	)
	// SIGTERM chega antes do runtime encerrar a instância: é a última chance de
	// descarregar spans pendentes e fechar o Redis.
	lambda.StartWithOptions(serverless.NewAdapter(a.Handler).Handle,
		lambda.WithEnableSIGTERM(func() {
			if err := a.Close(); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
			closeLog()
		}),
	)
}
