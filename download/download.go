// Package download fetches the source datasets: the four vector layers
// and the Europe-Asia boundary line.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/layers"
)

const logPrefix = "download"

// DefaultLayerBaseURL serves the admin layers as GeoJSON.
const DefaultLayerBaseURL = "https://raw.githubusercontent.com/nvkelso/natural-earth-vector/master/geojson"

// DefaultBoundaryURL is Trubetskoy's Europe-Asia border line.
const DefaultBoundaryURL = "https://raw.githubusercontent.com/sashatrubetskoy/asia_europe_border/master/asia_europe_border.geojson"

// LayerFiles lists the admin layer files fetched from the layer base
// URL.
var LayerFiles = []string{
	layers.SubunitsFile,
	layers.UnitsFile,
	layers.Admin1File,
	layers.DisputedFile,
}

// Downloader fetches source files into a data directory, skipping
// files that already exist.
type Downloader struct {
	client      *http.Client
	dataDir     string
	layerBase   string
	boundaryURL string
}

// New builds a downloader for dataDir with the default sources.
func New(dataDir string) *Downloader {
	return &Downloader{
		client:      &http.Client{Timeout: 2 * time.Minute},
		dataDir:     dataDir,
		layerBase:   DefaultLayerBaseURL,
		boundaryURL: DefaultBoundaryURL,
	}
}

// WithSources overrides the source URLs. Used by tests.
func (d *Downloader) WithSources(layerBase, boundaryURL string) *Downloader {
	d.layerBase = layerBase
	d.boundaryURL = boundaryURL
	return d
}

// FetchAll downloads every missing source file.
func (d *Downloader) FetchAll(ctx context.Context) error {
	if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	for _, name := range LayerFiles {
		if err := d.fetch(ctx, d.layerBase+"/"+name, name); err != nil {
			return err
		}
	}
	if err := d.fetch(ctx, d.boundaryURL, layers.BoundaryFile); err != nil {
		return err
	}

	log.WithField("prefix", logPrefix).Info("all downloads complete")
	return nil
}

// fetch downloads one file unless it already exists. The file is
// written to a temporary name first so an interrupted download never
// leaves a truncated dataset behind.
func (d *Downloader) fetch(ctx context.Context, url, name string) error {
	target := filepath.Join(d.dataDir, name)
	if _, err := os.Stat(target); err == nil {
		log.WithField("prefix", logPrefix).Infof("%s already exists, skipping", name)
		return nil
	}

	log.WithField("prefix", logPrefix).Infof("downloading %s", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", name, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: status %d", name, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(d.dataDir, name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	log.WithField("prefix", logPrefix).Infof("%s done", name)
	return nil
}
