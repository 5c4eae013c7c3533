// Package engine evaluates modelling scripts. It wraps zygomys in a
// sandboxed environment, exposes the kernel primitives and booleans as
// builtins, and collects the named parts a script defines into a Scene.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/csg/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// DefaultPartName names the solid a script evaluates to when it defines
// no parts of its own.
const DefaultPartName = "main"

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Part is a named solid produced by a script.
type Part struct {
	Name  string
	Solid kernel.Solid
}

// Scene holds the parts of one evaluation in definition order.
type Scene struct {
	Parts []Part
}

// Lookup returns the part with the given name, or nil.
func (s *Scene) Lookup(name string) *Part {
	for i := range s.Parts {
		if s.Parts[i].Name == name {
			return &s.Parts[i]
		}
	}
	return nil
}

func (s *Scene) add(name string, solid kernel.Solid) error {
	if s.Lookup(name) != nil {
		return fmt.Errorf("part %q already defined", name)
	}
	s.Parts = append(s.Parts, Part{Name: name, Solid: solid})
	return nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger used for evaluation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSDFCells sets the marching cubes resolution for the smooth shape
// builtins (rounded-box, capsule).
func WithSDFCells(n int) Option {
	return func(e *Engine) { e.sdfCells = n }
}

// Engine wraps the zygomys interpreter.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	kernel   kernel.Kernel
	timeout  time.Duration
	sdfCells int
	logger   *slog.Logger
}

// NewEngine creates an Engine that builds solids with k.
func NewEngine(k kernel.Kernel, opts ...Option) *Engine {
	e := &Engine{
		kernel:  k,
		timeout: EvalTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the script and returns the parts it defines.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	start := time.Now()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	s, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	switch {
	case err != nil:
		e.logger.Warn("evaluation failed", "generation", gen, "err", err)
	case len(evalErrs) > 0:
		e.logger.Debug("evaluation errors", "generation", gen, "count", len(evalErrs), "first", evalErrs[0].Error())
	default:
		e.logger.Debug("evaluated", "generation", gen, "parts", len(s.Parts), "elapsed", time.Since(start))
	}
	return s, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Scene, []EvalError, error) {
	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return &Scene{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	scene := &Scene{}
	registerBuiltins(env, &builtinContext{kernel: e.kernel, scene: scene, sdfCells: e.sdfCells})

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if len(scene.Parts) == 0 {
		if s, ok := last.(*sexpSolid); ok {
			scene.Parts = append(scene.Parts, Part{Name: DefaultPartName, Solid: s.solid})
		}
	}
	return scene, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
