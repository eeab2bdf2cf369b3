// Package splinefile reads and writes spline sets as YAML documents.
//
// A document lists every spline with its control points. Vectors are
// written as flow sequences, modes by name, and each point carries its
// junction id (-1 or absent when free). A derived groups section lists the members
// of every junction for readers that want explicit membership; when
// present it must agree with the per-point ids. Arc-length tables are
// never stored.
package splinefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/splinetool/pkg/encoding"
	"github.com/Faultbox/splinetool/pkg/math"
	"github.com/Faultbox/splinetool/pkg/spline"
	"github.com/Faultbox/splinetool/pkg/splineset"
)

// Version is the document version this package writes.
const Version = 1

// ErrUnsupportedVersion is returned for documents newer than Version.
var ErrUnsupportedVersion = errors.New("unsupported spline file version")

type document struct {
	Version int         `yaml:"version"`
	Splines []splineDoc `yaml:"splines"`
	Groups  []groupDoc  `yaml:"groups,omitempty"`
}

type splineDoc struct {
	Name   string     `yaml:"name"`
	Points []pointDoc `yaml:"points"`
}

type pointDoc struct {
	Anchor  vec3    `yaml:"anchor,flow"`
	Handles [2]vec3 `yaml:"handles,flow"`
	Up      vec3    `yaml:"up,flow"`
	Mode    string  `yaml:"mode"`
	Group   *int    `yaml:"group"`
}

type groupDoc struct {
	ID      int      `yaml:"id"`
	Members [][2]int `yaml:"members,flow"`
}

type vec3 [3]float32

// toVec3 drops the sign of zero components so files never show -0.
func toVec3(v math.Vec3) vec3 {
	out := vec3{v.X, v.Y, v.Z}
	for i, c := range out {
		if c == 0 {
			out[i] = 0
		}
	}
	return out
}

func (v vec3) vec() math.Vec3 { return math.Vec3{X: v[0], Y: v[1], Z: v[2]} }

// Encode writes snap as a YAML document.
func Encode(w io.Writer, snap splineset.Snapshot) error {
	doc := document{Version: Version, Splines: make([]splineDoc, len(snap.Splines))}
	members := make(map[int][][2]int)
	for i, st := range snap.Splines {
		sd := splineDoc{Name: st.Name, Points: make([]pointDoc, len(st.Points))}
		for j, p := range st.Points {
			group := int(p.Group)
			sd.Points[j] = pointDoc{
				Anchor:  toVec3(p.Anchor),
				Handles: [2]vec3{toVec3(p.Handles[0]), toVec3(p.Handles[1])},
				Up:      toVec3(p.Up),
				Mode:    p.Mode.String(),
				Group:   &group,
			}
			if p.Group != spline.NoGroup {
				members[int(p.Group)] = append(members[int(p.Group)], [2]int{i, j})
			}
		}
		doc.Splines[i] = sd
	}
	for _, id := range sortedKeys(members) {
		doc.Groups = append(doc.Groups, groupDoc{ID: id, Members: members[id]})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding spline file: %w", err)
	}
	return enc.Close()
}

// Decode reads a YAML document, which may start with a UTF-8 or UTF-16 byte
// order mark. Structural problems are reported as
// splineset.ErrMalformedState.
func Decode(r io.Reader) (splineset.Snapshot, error) {
	var doc document
	if err := yaml.NewDecoder(encoding.NewReader(r)).Decode(&doc); err != nil {
		return splineset.Snapshot{}, fmt.Errorf("%w: %w", splineset.ErrMalformedState, err)
	}
	if doc.Version < 1 || doc.Version > Version {
		return splineset.Snapshot{}, fmt.Errorf("%w: %w %d", splineset.ErrMalformedState, ErrUnsupportedVersion, doc.Version)
	}

	snap := splineset.Snapshot{Splines: make([]splineset.SplineState, len(doc.Splines))}
	for i, sd := range doc.Splines {
		st := splineset.SplineState{Name: sd.Name, Points: make([]splineset.PointState, len(sd.Points))}
		for j, pd := range sd.Points {
			mode, err := spline.ParseMode(pd.Mode)
			if err != nil {
				return splineset.Snapshot{}, fmt.Errorf("%w: spline %d point %d: %w", splineset.ErrMalformedState, i, j, err)
			}
			group := spline.NoGroup
			if pd.Group != nil {
				group = spline.GroupID(*pd.Group)
			}
			st.Points[j] = splineset.PointState{
				Anchor:  pd.Anchor.vec(),
				Handles: [2]math.Vec3{pd.Handles[0].vec(), pd.Handles[1].vec()},
				Up:      pd.Up.vec(),
				Mode:    mode,
				Group:   group,
			}
		}
		snap.Splines[i] = st
	}

	if err := checkGroups(doc, snap); err != nil {
		return splineset.Snapshot{}, fmt.Errorf("%w: %w", splineset.ErrMalformedState, err)
	}
	return snap, nil
}

// checkGroups compares the explicit groups section with the per-point ids.
func checkGroups(doc document, snap splineset.Snapshot) error {
	if len(doc.Groups) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	for _, g := range doc.Groups {
		if seen[g.ID] {
			return fmt.Errorf("group %d listed twice", g.ID)
		}
		seen[g.ID] = true
		for _, m := range g.Members {
			si, pi := m[0], m[1]
			if si < 0 || si >= len(snap.Splines) || pi < 0 || pi >= len(snap.Splines[si].Points) {
				return fmt.Errorf("group %d references missing point %d/%d", g.ID, si, pi)
			}
			if got := int(snap.Splines[si].Points[pi].Group); got != g.ID {
				return fmt.Errorf("group %d lists point %d/%d which records group %d", g.ID, si, pi, got)
			}
		}
	}

	// Every grouped point must be listed.
	counts := make(map[int]int)
	for _, st := range snap.Splines {
		for _, p := range st.Points {
			if p.Group != spline.NoGroup {
				counts[int(p.Group)]++
			}
		}
	}
	for _, g := range doc.Groups {
		if counts[g.ID] != len(g.Members) {
			return fmt.Errorf("group %d lists %d members, points record %d", g.ID, len(g.Members), counts[g.ID])
		}
	}
	if len(counts) != len(doc.Groups) {
		return fmt.Errorf("%d groups recorded by points, %d listed", len(counts), len(doc.Groups))
	}
	return nil
}

func sortedKeys(m map[int][][2]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Save writes the state of set to path, creating parent directories.
func Save(path string, set *splineset.Set) error {
	var buf bytes.Buffer
	if err := Encode(&buf, set.Snapshot()); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Load replaces the state of set with the document at path. On error set is
// unchanged.
func Load(path string, set *splineset.Set) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	snap, err := Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if err := set.Restore(snap); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
