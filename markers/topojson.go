package markers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	log "github.com/sirupsen/logrus"
)

// DefaultSimplify is the mapshaper simplification fraction.
const DefaultSimplify = "3%"

// Simplify converts a polygon GeoJSON file to TopoJSON through
// mapshaper with weighted, shape-preserving simplification.
func Simplify(ctx context.Context, inputPath, outputPath, simplify string) error {
	if simplify == "" {
		simplify = DefaultSimplify
	}
	args := []string{
		"mapshaper", inputPath,
		"-simplify", simplify, "weighted", "keep-shapes",
		"-o", "format=topojson", outputPath, "quantization=1e5",
	}

	log.WithField("prefix", logPrefix).Infof("running npx %s", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, "npx", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("mapshaper failed: %w\n%s", err, out)
	}
	if len(out) > 0 {
		log.WithField("prefix", logPrefix).Info(strings.TrimSpace(string(out)))
	}
	return nil
}

type topology struct {
	Type      string                     `json:"type"`
	Transform *transform                 `json:"transform,omitempty"`
	Objects   map[string]json.RawMessage `json:"objects"`
	Arcs      json.RawMessage            `json:"arcs"`
	Bbox      json.RawMessage            `json:"bbox,omitempty"`
}

type transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoPoint struct {
	Type        string                 `json:"type"`
	Coordinates [2]float64             `json:"coordinates"`
	Properties  map[string]interface{} `json:"properties"`
}

type topoPointQuantized struct {
	Type        string                 `json:"type"`
	Coordinates [2]int64               `json:"coordinates"`
	Properties  map[string]interface{} `json:"properties"`
}

// InjectPoints appends point markers into a TopoJSON file as a second
// object. Points use no arcs, so the arc list is untouched; when the
// topology carries a quantization transform the coordinates are
// quantized to match, otherwise clients would apply the transform to
// raw degrees.
func InjectPoints(path string, points []*geojson.Feature) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read topology: %w", err)
	}
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return fmt.Errorf("failed to parse topology: %w", err)
	}

	geometries := make([]interface{}, 0, len(points))
	for _, f := range points {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return fmt.Errorf("marker feature is not a point: %v", f.Geometry.GeoJSONType())
		}
		props := map[string]interface{}(f.Properties)
		if t := topo.Transform; t != nil {
			geometries = append(geometries, topoPointQuantized{
				Type: "Point",
				Coordinates: [2]int64{
					quantize(pt[0], t.Scale[0], t.Translate[0]),
					quantize(pt[1], t.Scale[1], t.Translate[1]),
				},
				Properties: props,
			})
		} else {
			geometries = append(geometries, topoPoint{
				Type:        "Point",
				Coordinates: [2]float64{pt[0], pt[1]},
				Properties:  props,
			})
		}
	}

	obj, err := json.Marshal(map[string]interface{}{
		"type":       "GeometryCollection",
		"geometries": geometries,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal point object: %w", err)
	}
	topo.Objects["points"] = obj

	out, err := json.Marshal(topo)
	if err != nil {
		return fmt.Errorf("failed to marshal topology: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write topology: %w", err)
	}

	log.WithField("prefix", logPrefix).Infof("injected %d point markers into topology", len(points))
	return nil
}

// quantize inverts the topology transform: a client decodes with
// coord*scale+translate, so the encoder rounds (coord-translate)/scale.
func quantize(coord, scale, translate float64) int64 {
	return int64(math.Round((coord - translate) / scale))
}
