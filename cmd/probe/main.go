package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/avaliece/internal/probe"
	"github.com/okian/avaliece/pkg/logger"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		baseURL  = flag.String("url", probe.DefaultBaseURL, "Base URL of the dashboard")
		username = flag.String("user", "Formace", "Login user")
		password = flag.String("password", os.Getenv("AVALIECE_PROBE_PASSWORD"), "Login password (default $AVALIECE_PROBE_PASSWORD)")
		workers  = flag.Int("workers", probe.DefaultWorkers, "Number of concurrent region requests")
		timeout  = flag.Duration("timeout", probe.DefaultTimeout, "HTTP request timeout")
		format   = flag.String("log-format", logger.FormatText, "Log format: text or json")
		verbose  = flag.Bool("verbose", false, "Log every region result")
	)
	flag.Parse()

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	_, err := probe.Run(ctx, &probe.Config{
		BaseURL:  *baseURL,
		Username: *username,
		Password: *password,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	})
	if err != nil {
		logger.Get().Error(ctx, "probe failed", logger.Error(err))
		os.Exit(1)
	}
}
