package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/csg/pkg/kernel"
	"github.com/chazu/csg/pkg/kernel/sdfx"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: rounded-box -> rounded_box
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a kernel.Solid so it can be passed between builtins.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.solid.BoundingBox()
	return fmt.Sprintf("(solid %.1f,%.1f,%.1f..%.1f,%.1f,%.1f)", min[0], min[1], min[2], max[0], max[1], max[2])
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// vec3 is a plain 3-component vector as seen by scripts.
type vec3 struct {
	X, Y, Z float64
}

// sexpVec3 wraps a vec3.
type sexpVec3 struct {
	vec vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value; treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number returns the keyword value if present, else the positional
// argument at index pos, else def. A missing value with no default is an
// error.
func (a kwArgs) number(kw string, pos int, def *float64) (float64, error) {
	if v, ok := a.kw[kw]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", kw, err)
		}
		return f, nil
	}
	if pos >= 0 && pos < len(a.positional) {
		f, err := toFloat64(a.positional[pos])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", kw, err)
		}
		return f, nil
	}
	if def != nil {
		return *def, nil
	}
	return 0, fmt.Errorf("missing %s", kw)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toXYZ reads a vector given either as one vec3 or as three numbers. When
// uniform is set, a single number is also accepted and used for all axes.
func toXYZ(args []zygo.Sexp, uniform bool) (vec3, error) {
	switch len(args) {
	case 1:
		if uniform {
			if f, err := toFloat64(args[0]); err == nil {
				return vec3{f, f, f}, nil
			}
		}
		return toVec3(args[0])
	case 3:
		var out [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return vec3{}, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			out[i] = f
		}
		return vec3{out[0], out[1], out[2]}, nil
	}
	return vec3{}, fmt.Errorf("expected a vec3 or 3 numbers, got %d arguments", len(args))
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toSolids flattens solids and lists or arrays of solids, so that both
// (union a b c) and (union (list a b c)) work.
func toSolids(args []zygo.Sexp) ([]kernel.Solid, error) {
	var out []kernel.Solid
	for i, a := range args {
		if s, ok := a.(*sexpSolid); ok {
			out = append(out, s.solid)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: expected solid or list of solids, got %T", i+1, a)
		}
		nested, err := toSolids(items)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinContext is the state shared by the builtins of one evaluation.
type builtinContext struct {
	kernel   kernel.Kernel
	scene    *Scene
	sdfCells int
}

func (c *builtinContext) solid(s kernel.Solid) zygo.Sexp {
	return &sexpSolid{solid: s}
}

// importMesh brings a tessellated smooth shape into the kernel.
func (c *builtinContext) importMesh(m *kernel.Mesh, err error) (zygo.Sexp, error) {
	if err != nil {
		return zygo.SexpNull, err
	}
	s, err := c.kernel.Import(m)
	if err != nil {
		return zygo.SexpNull, err
	}
	return c.solid(s), nil
}

type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// booleanFold returns a builtin that left-folds op over one or more solids.
func (c *builtinContext) booleanFold(label string, op func(a, b kernel.Solid) kernel.Solid) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		solids, err := toSolids(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		if len(solids) == 0 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least one solid", label)
		}
		acc := solids[0]
		for _, s := range solids[1:] {
			acc = op(acc, s)
		}
		return c.solid(acc), nil
	}
}

// transformer returns a builtin of the form (name solid x y z) or
// (name solid (vec3 x y z)). With factors set a single number applies to
// every axis and zero is rejected.
func (c *builtinContext) transformer(label string, factors bool, op func(s kernel.Solid, x, y, z float64) kernel.Solid) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vector", label)
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		v, err := toXYZ(args[1:], factors)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		if factors && (v.X == 0 || v.Y == 0 || v.Z == 0) {
			return zygo.SexpNull, fmt.Errorf("%s: factors must be non-zero, got (%g %g %g)", label, v.X, v.Y, v.Z)
		}
		return c.solid(op(s, v.X, v.Y, v.Z)), nil
	}
}

// registerBuiltins installs the modelling builtins into a zygomys
// environment. Parts defined by the script are recorded in c.scene.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *builtinContext) {
	k := c.kernel

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toXYZ(args, false)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 5) or (box (vec3 10 20 5)); min corner at the origin
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toXYZ(args, false)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if v.X <= 0 || v.Y <= 0 || v.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: dimensions must be positive, got %v", v)
		}
		return c.solid(k.Box(v.X, v.Y, v.Z)), nil
	})

	// -----------------------------------------------------------------------
	// (cube 10) or (cube (vec3 1 2 3)); centred on the origin
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toXYZ(args, true)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		if v.X <= 0 || v.Y <= 0 || v.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %v", v)
		}
		return c.solid(k.Translate(k.Box(v.X, v.Y, v.Z), -v.X/2, -v.Y/2, -v.Z/2)), nil
	})

	// -----------------------------------------------------------------------
	// (sphere 5) or (sphere :radius 5 :at (vec3 0 0 10))
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r, err := pa.number("radius", 0, nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %g", r)
		}
		s := k.Sphere(r)
		if v, ok := pa.kw["at"]; ok {
			at, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: at: %w", err)
			}
			s = k.Translate(s, at.X, at.Y, at.Z)
		}
		return c.solid(s), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2 :segments 16) or (cylinder 10 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, err := pa.number("height", 0, nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		r, err := pa.number("radius", 1, nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if h <= 0 || r <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive")
		}
		segments := 0
		if v, ok := pa.kw["segments"]; ok {
			segments, err = toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
		}
		return c.solid(k.Cylinder(h, r, segments)), nil
	})

	// -----------------------------------------------------------------------
	// (rounded-box 20 10 5 :round 1)
	// -----------------------------------------------------------------------
	env.AddFunction("rounded_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		v, err := toXYZ(pa.positional, false)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rounded-box: %w", err)
		}
		zero := 0.0
		round, err := pa.number("round", -1, &zero)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rounded-box: %w", err)
		}
		s, err := c.importMesh(sdfx.RoundedBox(v.X, v.Y, v.Z, round, c.sdfCells))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rounded-box: %w", err)
		}
		return s, nil
	})

	// -----------------------------------------------------------------------
	// (capsule :height 10 :radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("capsule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		h, err := pa.number("height", 0, nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: %w", err)
		}
		r, err := pa.number("radius", 1, nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: %w", err)
		}
		s, err := c.importMesh(sdfx.Capsule(h, r, c.sdfCells))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: %w", err)
		}
		return s, nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (subtract a b ...), (intersect a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", c.booleanFold("union", k.Union))
	env.AddFunction("subtract", c.booleanFold("subtract", k.Difference))
	env.AddFunction("intersect", c.booleanFold("intersect", k.Intersection))

	// -----------------------------------------------------------------------
	// (translate s 1 2 3), (rotate s 0 0 90), (scale s 2) / (scale s 1 2 1)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", c.transformer("translate", false, k.Translate))
	env.AddFunction("rotate", c.transformer("rotate", false, k.Rotate))
	env.AddFunction("scale", c.transformer("scale", true, k.Scale))

	// -----------------------------------------------------------------------
	// (material s 2)
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("material requires a solid and an index")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: %w", err)
		}
		idx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("material: index: %w", err)
		}
		if idx < 0 {
			return zygo.SexpNull, fmt.Errorf("material: index must not be negative, got %d", idx)
		}
		return c.solid(k.Material(s, idx)), nil
	})

	// -----------------------------------------------------------------------
	// (part "name" solid) defines a part; (part "name") looks one up.
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("part requires a name and optionally a solid")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}

		if len(args) == 1 {
			p := c.scene.Lookup(partName)
			if p == nil {
				return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
			}
			return c.solid(p.Solid), nil
		}

		s, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}
		if err := c.scene.add(partName, s); err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}
		return c.solid(s), nil
	})
}
