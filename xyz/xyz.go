// Package xyz reads and writes geometry files in the XYZ format: an atom
// count line, a free-form comment line, then one "symbol x y z" record per
// atom. Multiple frames may be concatenated in one file.
package xyz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Frame is a single XYZ geometry.
type Frame struct {
	Comment     string
	Species     []string
	Coordinates *mat.Dense // n x 3
}

// Read parses one frame. It returns io.EOF when the reader is exhausted
// before the count line.
func Read(r *bufio.Reader) (*Frame, error) {
	countLine, err := nextLine(r)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("xyz: bad atom count line %q", strings.TrimSpace(countLine))
	}
	comment, err := rawLine(r)
	if err != nil {
		return nil, fmt.Errorf("xyz: missing comment line: %w", unexpectedEOF(err))
	}

	species := make([]string, count)
	coords := mat.NewDense(count, 3, nil)
	for i := 0; i < count; i++ {
		line, err := nextLine(r)
		if err != nil {
			return nil, fmt.Errorf("xyz: expected %d atoms, got %d: %w", count, i, unexpectedEOF(err))
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("xyz: atom line %d has %d fields, want at least 4", i+1, len(fields))
		}
		species[i] = fields[0]
		for k := 0; k < 3; k++ {
			v, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("xyz: atom line %d: %w", i+1, err)
			}
			coords.Set(i, k, v)
		}
	}
	return &Frame{Comment: strings.TrimRight(comment, "\r\n"), Species: species, Coordinates: coords}, nil
}

// ReadAll parses every frame in the reader.
func ReadAll(r io.Reader) ([]*Frame, error) {
	br := bufio.NewReader(r)
	var frames []*Frame
	for {
		f, err := Read(br)
		if errors.Is(err, io.EOF) {
			if len(frames) == 0 {
				return nil, errors.New("xyz: no frames found")
			}
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
}

// ReadFile parses the first frame of the named file.
func ReadFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Write appends one frame to the writer.
func Write(w io.Writer, f *Frame) error {
	n, c := f.Coordinates.Dims()
	if c != 3 {
		return fmt.Errorf("xyz: coordinates must have 3 columns, got %d", c)
	}
	if len(f.Species) != n {
		return fmt.Errorf("xyz: %d species for %d atoms", len(f.Species), n)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", n, f.Comment)
	for i := 0; i < n; i++ {
		fmt.Fprintf(bw, "%-3s %20.12f %20.12f %20.12f\n",
			f.Species[i], f.Coordinates.At(i, 0), f.Coordinates.At(i, 1), f.Coordinates.At(i, 2))
	}
	return bw.Flush()
}

// WriteFile writes a single frame to the named file.
func WriteFile(path string, f *Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// nextLine returns the next non-blank line.
func nextLine(r *bufio.Reader) (string, error) {
	for {
		line, err := rawLine(r)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
}

// unexpectedEOF keeps a truncated frame from looking like a clean end of
// input to ReadAll.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func rawLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}
