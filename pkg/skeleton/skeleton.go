package skeleton

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// JointCount is the number of joints tracked per body in an NTU RGB+D
// skeleton recording.
const JointCount = 25

// ErrMalformed is wrapped by every error caused by the content of a file.
var ErrMalformed = errors.New("malformed skeleton file")

// Frame holds x, y, z for every joint of the first tracked body. Joints
// that were not recorded stay zero.
type Frame [JointCount][3]float64

// Sequence is the frames of one recording in file order.
type Sequence []Frame

// ParseFile reads a .skeleton recording from disk.
func ParseFile(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seq, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seq, nil
}

// Parse reads a skeleton recording. The declared frame count is an upper
// bound: if the input runs out at a frame boundary the frames read so far
// are returned. Running out inside a frame is an error.
func Parse(r io.Reader) (Sequence, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	c := &cursor{lines: lines}
	frameCount, err := c.nextCount("frame count")
	if err != nil {
		return nil, err
	}

	out := make(Sequence, 0, min(frameCount, len(lines)))
	for range frameCount {
		if c.done() {
			break
		}

		var frame Frame
		bodyCount, err := c.nextCount("body count")
		if err != nil {
			return nil, err
		}

		if bodyCount > 0 {
			// body header: tracking id, confidence, lean etc.
			if err := c.skip(1); err != nil {
				return nil, err
			}

			jointCount, err := c.nextCount("joint count")
			if err != nil {
				return nil, err
			}
			if jointCount > JointCount {
				return nil, fmt.Errorf("%w: line %d: joint count %d exceeds %d", ErrMalformed, c.pos, jointCount, JointCount)
			}

			for j := range jointCount {
				if frame[j], err = c.nextJoint(); err != nil {
					return nil, err
				}
			}

			// remaining bodies are laid out like the first: header, joint
			// count and one line per joint
			stride := 2 + jointCount
			if bodyCount-1 > c.remaining()/stride {
				return nil, fmt.Errorf("%w: line %d: %d bodies do not fit in the remaining %d lines", ErrMalformed, c.pos, bodyCount, c.remaining())
			}
			if err := c.skip((bodyCount - 1) * stride); err != nil {
				return nil, err
			}
		}

		out = append(out, frame)
	}

	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := []string{}
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

type cursor struct {
	lines []string
	pos   int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.lines)
}

func (c *cursor) remaining() int {
	return len(c.lines) - c.pos
}

func (c *cursor) next() (string, error) {
	if c.done() {
		return "", fmt.Errorf("%w: unexpected end of file after line %d", ErrMalformed, c.pos)
	}
	line := c.lines[c.pos]
	c.pos++
	return line, nil
}

func (c *cursor) skip(n int) error {
	if n < 0 || n > c.remaining() {
		return fmt.Errorf("%w: cannot skip %d lines after line %d of %d", ErrMalformed, n, c.pos, len(c.lines))
	}
	c.pos += n
	return nil
}

func (c *cursor) nextCount(what string) (int, error) {
	line, err := c.next()
	if err != nil {
		return 0, err
	}
	if v, err := strconv.Atoi(strings.TrimSpace(line)); err != nil {
		return 0, fmt.Errorf("%w: line %d: invalid %s %q", ErrMalformed, c.pos, what, line)
	} else if v < 0 {
		return 0, fmt.Errorf("%w: line %d: negative %s %d", ErrMalformed, c.pos, what, v)
	} else {
		return v, nil
	}
}

func (c *cursor) nextJoint() ([3]float64, error) {
	var joint [3]float64

	line, err := c.next()
	if err != nil {
		return joint, err
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return joint, fmt.Errorf("%w: line %d: expected at least 3 joint fields, got %d", ErrMalformed, c.pos, len(fields))
	}

	for i := range joint {
		if v, err := strconv.ParseFloat(fields[i], 64); err != nil {
			return joint, fmt.Errorf("%w: line %d: invalid coordinate %q", ErrMalformed, c.pos, fields[i])
		} else {
			joint[i] = v
		}
	}
	return joint, nil
}
