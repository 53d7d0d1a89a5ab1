// Package savestate writes and reads the state of the emulated machine. A save
// state file is a magic string followed by one chunk for every component.
// Each chunk is the component name, the version of the component's state
// layout and the state itself.
package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the first bytes of every save state file
const Magic = "AMICHIP\x00"

// Sentinel errors returned by Load()
var (
	ErrMagic   = errors.New("savestate: not a save state")
	ErrVersion = errors.New("savestate: version mismatch")
	ErrMissing = errors.New("savestate: component missing")
	ErrUnknown = errors.New("savestate: unknown component")
)

// the maximum size of one chunk. larger values indicate a corrupt file
const maxChunk = 1 << 24

// Component is anything that can contribute a chunk to a save state.
type Component interface {
	Label() string
	StateVersion() uint32
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Encode a fixed size value. All fields of the value must have a fixed size.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("savestate: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode is the reverse of Encode. v must be a pointer.
func Decode(data []byte, v any) error {
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return fmt.Errorf("savestate: %w", err)
	}
	if r.Len() != 0 {
		return fmt.Errorf("savestate: %d bytes of trailing data", r.Len())
	}
	return nil
}

// Value adapts a pointer to a fixed size state type to the Component
// interface.
type Value struct {
	Name    string
	Version uint32
	State   any

	// called after the state has been replaced. may be nil
	Restored func()
}

func (v Value) Label() string {
	return v.Name
}

func (v Value) StateVersion() uint32 {
	return v.Version
}

func (v Value) Snapshot() ([]byte, error) {
	return Encode(v.State)
}

func (v Value) Restore(data []byte) error {
	if err := Decode(data, v.State); err != nil {
		return err
	}
	if v.Restored != nil {
		v.Restored()
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Save writes the state of every component
func Save(w io.Writer, components ...Component) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return fmt.Errorf("savestate: %w", err)
	}
	for _, c := range components {
		data, err := c.Snapshot()
		if err != nil {
			return fmt.Errorf("savestate: %s: %w", c.Label(), err)
		}
		if err := writeString(w, c.Label()); err != nil {
			return fmt.Errorf("savestate: %w", err)
		}
		hdr := [2]uint32{c.StateVersion(), uint32(len(data))}
		if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
			return fmt.Errorf("savestate: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("savestate: %w", err)
		}
	}
	return nil
}

type chunk struct {
	version uint32
	data    []byte
}

// Load reads a save state written by Save(). Every component must have a
// chunk with a matching version. The file is read completely before any
// component is restored, so a failed load leaves the components unchanged
// unless the failure is in a Restore() function.
func Load(r io.Reader, components ...Component) error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return ErrMagic
	}

	chunks := make(map[string]chunk)
	for {
		name, err := readString(r)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("savestate: %w", err)
		}
		var hdr [2]uint32
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return fmt.Errorf("savestate: %s: %w", name, err)
		}
		if hdr[1] > maxChunk {
			return fmt.Errorf("savestate: %s: chunk too large", name)
		}
		data := make([]byte, hdr[1])
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("savestate: %s: %w", name, err)
		}
		chunks[name] = chunk{version: hdr[0], data: data}
	}

	restore := make([][]byte, len(components))
	for i, c := range components {
		ch, ok := chunks[c.Label()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissing, c.Label())
		}
		if ch.version != c.StateVersion() {
			return fmt.Errorf("%w: %s is version %d, expected %d", ErrVersion, c.Label(), ch.version, c.StateVersion())
		}
		restore[i] = ch.data
		delete(chunks, c.Label())
	}
	for name := range chunks {
		return fmt.Errorf("%w: %s", ErrUnknown, name)
	}

	for i, c := range components {
		if err := c.Restore(restore[i]); err != nil {
			return fmt.Errorf("savestate: %s: %w", c.Label(), err)
		}
	}

	return nil
}
