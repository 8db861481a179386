package holokin

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Snapshots serialize the full node table to a line-oriented text format,
// one node per line:
//
//	<name> <px> <py> <pz> <qx> <qy> <qz> <qw>
//
// Blank lines and lines starting with '#' are ignored. Snapshots are the
// fixture mechanism for deterministic solver tests and for the replay CLI.

// WriteSnapshot writes every node pose in enumeration order.
func (s *IkState) WriteSnapshot(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for id := 0; id < NodeCount; id++ {
		p := s.Positions[id]
		q := s.Rotations[id]
		_, err := fmt.Fprintf(bw, "%s %s %s %s %s %s %s %s\n",
			nodeNames[id],
			f32(p.X()), f32(p.Y()), f32(p.Z()),
			f32(q.X()), f32(q.Y()), f32(q.Z()), f32(q.W))
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Snapshot returns the serialized node table.
func (s *IkState) Snapshot() []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail.
	_ = s.WriteSnapshot(&buf)
	return buf.Bytes()
}

func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// ParseSnapshot parses snapshot text into a pose table. Any malformed line
// fails the whole parse.
func ParseSnapshot(data []byte) (map[NodeID]Pose, error) {
	poses := make(map[NodeID]Pose, NodeCount)
	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 8 {
			return nil, fmt.Errorf("snapshot line %d: want 8 fields, got %d", lineNo, len(fields))
		}
		id, ok := nodeIDByName[fields[0]]
		if !ok {
			return nil, fmt.Errorf("snapshot line %d: unknown node %q", lineNo, fields[0])
		}
		var v [7]float32
		for i := 0; i < 7; i++ {
			f, err := strconv.ParseFloat(fields[i+1], 32)
			if err != nil {
				return nil, fmt.Errorf("snapshot line %d: %w", lineNo, err)
			}
			v[i] = float32(f)
		}
		poses[id] = Pose{
			Position: mgl32.Vec3{v[0], v[1], v[2]},
			Rotation: mgl32.Quat{W: v[6], V: mgl32.Vec3{v[3], v[4], v[5]}},
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return poses, nil
}

// LoadSnapshot restores every node pose present in the snapshot. Nodes the
// snapshot does not mention keep their current pose.
func (s *IkState) LoadSnapshot(data []byte) error {
	poses, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	for id, p := range poses {
		s.Positions[id] = p.Position
		s.Rotations[id] = p.Rotation
	}
	return nil
}

// LoadSnapshotSubset restores only the listed nodes. Listed nodes missing
// from the snapshot are skipped, not an error.
func (s *IkState) LoadSnapshotSubset(data []byte, subset []NodeID) error {
	poses, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	for _, id := range subset {
		if p, ok := poses[id]; ok {
			s.Positions[id] = p.Position
			s.Rotations[id] = p.Rotation
		}
	}
	return nil
}
