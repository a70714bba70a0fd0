package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/download"
)

func main() {
	var dataDir string
	flag.StringVar(&dataDir, "d", "data", "data directory")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if err := download.New(dataDir).FetchAll(ctx); err != nil {
		log.WithError(err).Fatal("download failed")
	}
}
