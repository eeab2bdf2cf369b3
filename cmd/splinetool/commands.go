package main

import (
	"bufio"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/splinetool/internal/config"
	"github.com/Faultbox/splinetool/internal/logger"
	"github.com/Faultbox/splinetool/pkg/encoding"
	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
	"github.com/Faultbox/splinetool/pkg/splinefile"
	"github.com/Faultbox/splinetool/pkg/splineset"
)

type tool struct {
	cfg *config.Config
	out io.Writer
}

func (t *tool) newSet() *splineset.Set {
	return splineset.New(
		splineset.WithLogger(logger.Named("splineset")),
		splineset.WithResolution(t.cfg.Spline.Resolution),
	)
}

func (t *tool) load(file string) (*splineset.Set, string, error) {
	path := t.cfg.Resolve(file)
	set := t.newSet()
	if err := splinefile.Load(path, set); err != nil {
		return nil, "", err
	}
	logger.Debug("loaded spline file", zap.String("path", path), zap.Int("splines", set.SplineCount()))
	return set, path, nil
}

func (t *tool) save(path string, set *splineset.Set) error {
	if err := splinefile.Save(path, set); err != nil {
		return err
	}
	logger.Info("saved spline file", zap.String("path", path), zap.Int("splines", set.SplineCount()))
	return nil
}

// edit loads file, applies fn and writes the result back.
func (t *tool) edit(file string, fn func(set *splineset.Set) error) error {
	set, path, err := t.load(file)
	if err != nil {
		return err
	}
	if err := fn(set); err != nil {
		return err
	}
	return t.save(path, set)
}

func ints(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", a)
		}
		out[i] = n
	}
	return out, nil
}

func floats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (t *tool) cmdNew(args []string) error {
	if len(args) != 1 {
		return usage("new <file>")
	}
	return t.save(t.cfg.Resolve(args[0]), t.newSet())
}

func (t *tool) cmdInfo(args []string) error {
	if len(args) != 1 {
		return usage("info <file>")
	}
	set, path, err := t.load(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(t.out, "File:      %s\n", path)
	fmt.Fprintf(t.out, "Splines:   %d\n", set.SplineCount())
	fmt.Fprintf(t.out, "Junctions: %d (%d points)\n", len(set.Junctions()), set.ConnectedPointCount())
	fmt.Fprintln(t.out)

	for i := 0; i < set.SplineCount(); i++ {
		name, _ := set.SplineName(i)
		n, _ := set.PointCount(i)
		length, _ := set.ArcLength(i)
		fmt.Fprintf(t.out, "  [%d] %-16s %3d points  %10.3f units\n", i, name, n, length)
	}

	for g, members := range set.Junctions() {
		refs := make([]string, len(members))
		for i, m := range members {
			refs[i] = fmt.Sprintf("%d/%d", m[0], m[1])
		}
		fmt.Fprintf(t.out, "  junction %d: %s\n", g, strings.Join(refs, " "))
	}
	return nil
}

func (t *tool) cmdSample(args []string) error {
	if len(args) != 2 {
		return usage("sample <file> <spline>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	set, _, err := t.load(args[0])
	if err != nil {
		return err
	}
	si := idx[0]
	length, err := set.ArcLength(si)
	if err != nil {
		return err
	}

	step := t.cfg.Spline.SampleStep
	fmt.Fprintln(t.out, "distance\tx\ty\tz\tdx\tdy\tdz\tupx\tupy\tupz")
	for i := 0; ; i++ {
		d := float32(i) * step
		// Snap the last sample to the end so rounding never adds a sliver.
		if d >= length-step*1e-3 {
			d = length
		}
		p, _ := set.Position(si, d)
		dir, _ := set.Direction(si, d)
		up, _ := set.Up(si, d)
		dir = dir.Normalize()
		fmt.Fprintf(t.out, "%.3f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			d, p.X, p.Y, p.Z, dir.X, dir.Y, dir.Z, up.X, up.Y, up.Z)
		if d >= length {
			break
		}
	}
	return nil
}

func (t *tool) cmdAppend(args []string) error {
	if len(args) != 2 {
		return usage("append <file> <spline>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		pi, err := set.AppendPoint(idx[0])
		if err == nil {
			fmt.Fprintf(t.out, "added point %d/%d\n", idx[0], pi)
		}
		return err
	})
}

func (t *tool) cmdInsert(args []string) error {
	if len(args) != 3 {
		return usage("insert <file> <spline> <index>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		return set.InsertPoint(idx[0], idx[1])
	})
}

func (t *tool) cmdRemove(args []string) error {
	if len(args) != 3 {
		return usage("remove <file> <spline> <point>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		return set.RemovePoint(idx[0], idx[1])
	})
}

func (t *tool) cmdBranch(args []string) error {
	if len(args) != 3 {
		return usage("branch <file> <spline> <point>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		si, err := set.AddSplineFromPoint(idx[0], idx[1])
		if err == nil {
			name, _ := set.SplineName(si)
			fmt.Fprintf(t.out, "added spline %d (%s)\n", si, name)
		}
		return err
	})
}

func (t *tool) cmdConnect(args []string) error {
	if len(args) != 5 {
		return usage("connect <file> <s1> <p1> <s2> <p2>")
	}
	idx, err := ints(args[1:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		g, err := set.Connect(idx[0], idx[1], idx[2], idx[3])
		if err == nil {
			fmt.Fprintf(t.out, "junction %d has %d points\n", g, set.ConnectionPointCount(g))
		}
		return err
	})
}

func (t *tool) cmdMove(args []string) error {
	if len(args) != 6 {
		return usage("move <file> <spline> <point> <x> <y> <z>")
	}
	idx, err := ints(args[1:3])
	if err != nil {
		return err
	}
	xyz, err := floats(args[3:])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		return set.SetAnchor(idx[0], idx[1], math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	})
}

func (t *tool) cmdTurn(args []string) error {
	if len(args) != 4 {
		return usage("turn <file> <spline> <point> <degrees>")
	}
	idx, err := ints(args[1:3])
	if err != nil {
		return err
	}
	deg, err := floats(args[3:])
	if err != nil {
		return err
	}
	yaw := math.QuatFromAxisAngle(math.Up, deg[0]*gomath.Pi/180)
	return t.edit(args[0], func(set *splineset.Set) error {
		q, err := set.Rotation(idx[0], idx[1])
		if err != nil {
			return err
		}
		return set.SetRotation(idx[0], idx[1], yaw.Mul(q))
	})
}

func (t *tool) cmdMode(args []string) error {
	if len(args) != 4 {
		return usage("mode <file> <spline> <point> <free|aligned|mirrored>")
	}
	idx, err := ints(args[1:3])
	if err != nil {
		return err
	}
	mode, err := spline.ParseMode(args[3])
	if err != nil {
		return err
	}
	return t.edit(args[0], func(set *splineset.Set) error {
		return set.SetMode(idx[0], idx[1], mode)
	})
}

func (t *tool) cmdImport(args []string) error {
	if len(args) != 2 {
		return usage("import <file> <points.txt>")
	}
	f, err := os.Open(t.cfg.Resolve(args[1]))
	if err != nil {
		return err
	}
	defer f.Close()

	points, err := readPoints(encoding.NewReader(f))
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[1], err)
	}
	set := t.newSet()
	if err := set.ImportPolyline(points); err != nil {
		return err
	}
	fmt.Fprintf(t.out, "imported %d points\n", len(points))
	return t.save(t.cfg.Resolve(args[0]), set)
}

// readPoints parses one "x y z" triple per line. Blank lines and lines
// starting with # are skipped; commas count as whitespace.
func readPoints(r io.Reader) ([]math.Vec3, error) {
	var points []math.Vec3
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(strings.ReplaceAll(text, ",", " "))
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want 3 coordinates, got %d", line, len(fields))
		}
		xyz, err := floats(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		points = append(points, math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]})
	}
	return points, sc.Err()
}
