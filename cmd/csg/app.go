package main

import (
	"log/slog"

	"github.com/chazu/csg/pkg/config"
	"github.com/chazu/csg/pkg/engine"
	"github.com/chazu/csg/pkg/kernel"
	"github.com/chazu/csg/pkg/kernel/bsp"
	"github.com/chazu/csg/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs scripts end to end: evaluate, tessellate, package for output.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *slog.Logger
}

// MeshData is the JSON-serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32      `json:"vertices"`
	Normals  []float32      `json:"normals"`
	UVs      []float32      `json:"uvs,omitempty"`
	Colors   []float32      `json:"colors,omitempty"`
	Indices  []uint32       `json:"indices"`
	Groups   []kernel.Group `json:"groups,omitempty"`
	PartName string         `json:"partName"`
	Color    string         `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of running one script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with a bsp kernel configured from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	k := bsp.New(
		bsp.WithSphereDetail(cfg.Sphere.Slices, cfg.Sphere.Stacks),
		bsp.WithCylinderSlices(cfg.Cylinder.Slices),
	)
	return &App{
		engine: engine.NewEngine(k,
			engine.WithTimeout(cfg.Timeout.Duration),
			engine.WithSDFCells(cfg.SDF.Cells),
			engine.WithLogger(logger),
		),
		kernel: k,
		logger: logger,
	}
}

// Evaluate takes script source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into a scene of named parts.
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the output format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Tessellate each part into a triangle mesh.
	meshes, err := tessellate.Tessellate(scene, a.kernel)
	if err != nil {
		a.logger.Error("tessellate error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}
	if min, max, ok := tessellate.Bounds(meshes); ok {
		a.logger.Debug("tessellated", "parts", len(meshes), "min", min, "max", max)
	}

	// Step 4: Convert kernel meshes to the output format.
	for i, m := range meshes {
		if m.IsEmpty() {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: "part " + m.PartName + " is empty",
			})
			continue
		}
		result.Meshes = append(result.Meshes, meshData(m, colorPalette[i%len(colorPalette)]))
	}

	return result
}

// meshData packages m for output under the given part color.
func meshData(m *kernel.Mesh, color string) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		UVs:      m.UVs,
		Colors:   m.Colors,
		Indices:  m.Indices,
		Groups:   m.Groups,
		PartName: m.PartName,
		Color:    color,
	}
}
