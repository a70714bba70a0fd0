package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tccmaps/atlas/markers"
	"github.com/tccmaps/atlas/output"
)

func main() {
	var outputDir string
	flag.StringVar(&outputDir, "o", "output", "output directory")
	flag.Parse()

	viper.SetEnvPrefix("atlas")
	viper.AutomaticEnv()
	viper.SetDefault("markers.simplify", markers.DefaultSimplify)
	simplify := viper.GetString("markers.simplify")

	mergedPath := filepath.Join(outputDir, output.MergedFile)
	markersGeoJSON := filepath.Join(outputDir, "merged-markers.geojson")
	markersTopo := filepath.Join(outputDir, "tcc-330-markers.json")

	data, err := os.ReadFile(mergedPath)
	if err != nil {
		log.WithError(err).Fatal("failed to read merged collection, run the build first")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		log.WithError(err).Fatal("failed to parse merged collection")
	}

	polygons, points := markers.Classify(fc)

	polyData, err := json.Marshal(polygons)
	if err != nil {
		log.WithError(err).Fatal("failed to marshal polygon collection")
	}
	if err := os.WriteFile(markersGeoJSON, polyData, 0o644); err != nil {
		log.WithError(err).Fatal("failed to write polygon collection")
	}

	if err := markers.Simplify(context.Background(), markersGeoJSON, markersTopo, simplify); err != nil {
		log.WithError(err).Fatal("simplification failed")
	}
	if err := markers.InjectPoints(markersTopo, points); err != nil {
		log.WithError(err).Fatal("point injection failed")
	}
}
