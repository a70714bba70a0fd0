package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tccmaps/atlas/output"
	"github.com/tccmaps/atlas/schema"
	"github.com/tccmaps/atlas/store"
)

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("atlas")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func main() {
	var outputDir string
	flag.StringVar(&outputDir, "o", "output", "output directory")
	flag.Parse()

	ctx := context.Background()

	client, err := store.NewMongoClient(ctx, viper.GetString("mongo.conn"))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	dbName := viper.GetString("mongo.database")

	s := store.NewAtlasStore(client, dbName)
	defer s.Close()

	data, err := os.ReadFile(filepath.Join(outputDir, output.MergedFile))
	if err != nil {
		log.WithError(err).Fatal("failed to read merged collection, run the build first")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.WithError(err).Fatal("failed to parse merged collection")
	}

	features := make([]*schema.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if idx, ok := f.Properties["tcc_index"].(float64); ok {
			f.Properties["tcc_index"] = int(idx)
		}
		features = append(features, &schema.Feature{Geometry: f.Geometry, Properties: f.Properties})
	}

	if _, err := s.PublishBoundaries(ctx, features); err != nil {
		log.WithError(err).Fatal("failed to publish boundaries")
	}

	indexer, err := schema.NewMongoDBIndexer(viper.GetString("mongo.conn"), dbName)
	if err != nil {
		log.WithError(err).Fatal("failed to connect indexer")
	}
	if err := indexer.IndexAll(); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}
}
