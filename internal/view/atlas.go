package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Atlas holds the static map geometry: landmass outlines and country
// borders as polylines of (lon, lat) points. Loaded once at startup and
// immutable afterwards.
type Atlas struct {
	Land    [][][2]float64
	Borders [][][2]float64
}

// LoadAtlas reads a world-topology JSON asset from disk. A missing or
// malformed asset is fatal to the caller: the map cannot render without it.
func LoadAtlas(path string) (*Atlas, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas: %w", err)
	}
	defer f.Close()
	a, err := DecodeAtlas(f)
	if err != nil {
		return nil, fmt.Errorf("decode atlas %q: %w", path, err)
	}
	return a, nil
}

// DecodeAtlas decodes a quantized-topology document containing `land` and
// `countries` objects into renderable polylines.
func DecodeAtlas(r io.Reader) (*Atlas, error) {
	var topo topology
	if err := json.NewDecoder(r).Decode(&topo); err != nil {
		return nil, fmt.Errorf("parse topology: %w", err)
	}
	if topo.Type != "Topology" {
		return nil, fmt.Errorf("unexpected document type %q", topo.Type)
	}

	arcs := decodeArcs(topo)

	land, ok := topo.Objects["land"]
	if !ok {
		return nil, fmt.Errorf("topology has no land object")
	}
	countries, ok := topo.Objects["countries"]
	if !ok {
		return nil, fmt.Errorf("topology has no countries object")
	}

	a := &Atlas{}
	if err := collectLines(land, arcs, &a.Land); err != nil {
		return nil, fmt.Errorf("land geometry: %w", err)
	}
	if err := collectLines(countries, arcs, &a.Borders); err != nil {
		return nil, fmt.Errorf("countries geometry: %w", err)
	}
	return a, nil
}

type topology struct {
	Type      string                  `json:"type"`
	Transform *topoTransform          `json:"transform"`
	Arcs      [][][]float64           `json:"arcs"`
	Objects   map[string]topoGeometry `json:"objects"`
}

type topoTransform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string          `json:"type"`
	Arcs       json.RawMessage `json:"arcs"`
	Geometries []topoGeometry  `json:"geometries"`
}

// decodeArcs expands the topology's arcs to absolute (lon, lat) polylines.
// Quantized topologies delta-encode positions and carry a transform.
func decodeArcs(topo topology) [][][2]float64 {
	out := make([][][2]float64, len(topo.Arcs))
	for i, arc := range topo.Arcs {
		line := make([][2]float64, 0, len(arc))
		var x, y float64
		for _, pt := range arc {
			if len(pt) < 2 {
				continue
			}
			if topo.Transform != nil {
				// Delta-encoded quantized coordinates.
				x += pt[0]
				y += pt[1]
				line = append(line, [2]float64{
					x*topo.Transform.Scale[0] + topo.Transform.Translate[0],
					y*topo.Transform.Scale[1] + topo.Transform.Translate[1],
				})
			} else {
				line = append(line, [2]float64{pt[0], pt[1]})
			}
		}
		out[i] = line
	}
	return out
}

// collectLines walks a geometry and appends every ring/line as a polyline,
// resolving arc indices (a negative index means the complement arc,
// reversed).
func collectLines(g topoGeometry, arcs [][][2]float64, out *[][][2]float64) error {
	switch g.Type {
	case "GeometryCollection":
		for _, sub := range g.Geometries {
			if err := collectLines(sub, arcs, out); err != nil {
				return err
			}
		}
		return nil
	case "LineString":
		var idx []int
		if err := json.Unmarshal(g.Arcs, &idx); err != nil {
			return fmt.Errorf("LineString arcs: %w", err)
		}
		*out = append(*out, stitchArcs(idx, arcs))
		return nil
	case "MultiLineString", "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return fmt.Errorf("%s arcs: %w", g.Type, err)
		}
		for _, ring := range rings {
			*out = append(*out, stitchArcs(ring, arcs))
		}
		return nil
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return fmt.Errorf("MultiPolygon arcs: %w", err)
		}
		for _, poly := range polys {
			for _, ring := range poly {
				*out = append(*out, stitchArcs(ring, arcs))
			}
		}
		return nil
	case "":
		return fmt.Errorf("geometry with empty type")
	default:
		return fmt.Errorf("unsupported geometry type %q", g.Type)
	}
}

// stitchArcs concatenates the referenced arcs into one polyline, dropping
// the duplicated join point between consecutive arcs.
func stitchArcs(indexes []int, arcs [][][2]float64) [][2]float64 {
	var line [][2]float64
	for _, idx := range indexes {
		var arc [][2]float64
		if idx >= 0 {
			if idx >= len(arcs) {
				continue
			}
			arc = arcs[idx]
		} else {
			ai := ^idx // -1 - idx
			if ai >= len(arcs) {
				continue
			}
			arc = reversed(arcs[ai])
		}
		if len(line) > 0 && len(arc) > 0 && line[len(line)-1] == arc[0] {
			arc = arc[1:]
		}
		line = append(line, arc...)
	}
	return line
}

func reversed(line [][2]float64) [][2]float64 {
	out := make([][2]float64, len(line))
	for i, pt := range line {
		out[len(line)-1-i] = pt
	}
	return out
}
