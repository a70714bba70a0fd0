package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/tccmaps/atlas/catalog"
	"github.com/tccmaps/atlas/extract"
	"github.com/tccmaps/atlas/geo"
	"github.com/tccmaps/atlas/layers"
	"github.com/tccmaps/atlas/output"
)

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("atlas")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("data.dir", "data")
	viper.SetDefault("output.dir", "output")
}

func main() {
	var configFile string

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Build is preparing to shutdown")
		cancel()
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
		Dist:             viper.GetString("sentry.dist"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	runID := uuid.New().String()
	log.WithField("prefix", "init").Info("Build run: ", runID)

	start := time.Now()
	if err := run(ctx); err != nil {
		sentry.CaptureException(err)
		sentry.Flush(2 * time.Second)
		log.WithError(err).Fatal("build failed")
	}
	log.WithField("prefix", "init").Infof("build finished in %s", time.Since(start).Round(time.Millisecond))
}

func run(ctx context.Context) error {
	dataDir := viper.GetString("data.dir")
	outputDir := viper.GetString("output.dir")

	destinations, err := catalog.Load()
	if err != nil {
		return err
	}

	set, err := layers.LoadSet(dataDir)
	if err != nil {
		return err
	}

	boundary, err := layers.LoadBoundary(dataDir)
	if err != nil {
		return err
	}
	splitter, err := geo.NewSplitter(boundary)
	if err != nil {
		return err
	}

	result, err := extract.Build(ctx, destinations, set, splitter)
	if err != nil {
		return err
	}

	if len(result.Failures) > 0 {
		log.Warnf("missing destinations (%d):", len(result.Failures))
		for _, f := range result.Failures {
			log.Warnf("  %s", f)
		}
	}

	return output.Write(result.Sorted(), filepath.Join(outputDir, output.MergedFile))
}
