package adf

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Entry is a single file or directory in a directory listing
type Entry struct {
	Name    string
	Dir     bool
	Size    int
	Block   int
	Protect uint32
	Comment string
	Date    time.Time
}

func (e Entry) String() string {
	if e.Dir {
		return fmt.Sprintf("%-30s  (dir)", e.Name)
	}
	return fmt.Sprintf("%-30s %7d", e.Name, e.Size)
}

func splitPath(path string) []string {
	path = strings.TrimPrefix(path, ":")
	var p []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			p = append(p, s)
		}
	}
	return p
}

// find searches a directory block for the named entry. the returned value is
// the block number of the entry's header
func (v *Volume) find(dir block, name string) (int, error) {
	n := int(dir.long(lHashTable + Hash(name)))

	// guard against a looping hash chain
	for range Blocks {
		if n == 0 {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		b, err := v.header(n, stUserDir, stFile)
		if err != nil {
			return 0, err
		}
		if sameName(b.name(), name) {
			return n, nil
		}
		n = int(b.long(lHashChain))
	}

	return 0, fmt.Errorf("%w: hash chain for %s", ErrCorrupt, name)
}

// Lookup returns the header block for a path. The empty path is the root
// directory
func (v *Volume) Lookup(path string) (int, error) {
	n := RootBlock
	for _, p := range splitPath(path) {
		dir, err := v.header(n, stRoot, stUserDir)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p, ErrNotDir)
		}
		n, err = v.find(dir, p)
		if err != nil {
			return 0, err
		}
	}
	return n, nil
}

func (v *Volume) entry(n int) (Entry, error) {
	b, err := v.header(n, stUserDir, stFile)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Name:    b.name(),
		Dir:     b.long(lSecType) == stUserDir,
		Size:    int(b.long(lByteSize)),
		Block:   n,
		Protect: b.long(lProtect),
		Comment: b.bcpl(offComment, maxComment),
		Date:    b.date(lDays),
	}, nil
}

// List the contents of a directory. Entries are sorted by name
func (v *Volume) List(path string) ([]Entry, error) {
	n, err := v.Lookup(path)
	if err != nil {
		return nil, err
	}
	dir, err := v.header(n, stRoot, stUserDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDir)
	}

	var entries []Entry
	for i := range HashSize {
		c := int(dir.long(lHashTable + i))
		for ct := 0; c != 0; ct++ {
			if ct > Blocks {
				return nil, fmt.Errorf("%w: hash chain in %s", ErrCorrupt, path)
			}
			e, err := v.entry(c)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
			c = int(v.block(c).long(lHashChain))
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(strings.ToUpper(a.Name), strings.ToUpper(b.Name))
	})

	return entries, nil
}

// Walk visits every entry in the volume, depth first. The path passed to the
// function uses '/' as a separator
func (v *Volume) Walk(f func(path string, e Entry) error) error {
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := v.List(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			p := e.Name
			if dir != "" {
				p = dir + "/" + e.Name
			}
			if err := f(p, e); err != nil {
				return err
			}
			if e.Dir {
				if err := walk(p); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk("")
}

// parent splits the path into the parent directory block and the name of
// the final component
func (v *Volume) parent(path string) (int, string, error) {
	p := splitPath(path)
	if len(p) == 0 {
		return 0, "", fmt.Errorf("%w: empty path", ErrName)
	}
	name := p[len(p)-1]
	if err := validName(name); err != nil {
		return 0, "", err
	}
	n, err := v.Lookup(strings.Join(p[:len(p)-1], "/"))
	if err != nil {
		return 0, "", err
	}
	if _, err := v.header(n, stRoot, stUserDir); err != nil {
		return 0, "", fmt.Errorf("%s: %w", path, ErrNotDir)
	}
	if _, err := v.find(v.block(n), name); err == nil {
		return 0, "", fmt.Errorf("%w: %s", ErrExists, path)
	}
	return n, name, nil
}

// link adds the header block to the directory's hash table. the new entry
// goes to the head of the hash chain
func (v *Volume) link(dir int, n int, name string) {
	d := v.block(dir)
	h := lHashTable + Hash(name)
	b := v.block(n)
	b.setLong(lHashChain, d.long(h))
	b.setLong(lParent, uint32(dir))
	v.commit(n)

	d.setLong(h, uint32(n))
	d.setDate(lDays, v.Clock())
	v.commit(dir)
}

// MkDir creates a new directory
func (v *Volume) MkDir(path string) error {
	dir, name, err := v.parent(path)
	if err != nil {
		return err
	}

	n, err := v.allocate()
	if err != nil {
		return err
	}

	b := v.block(n)
	b.setLong(lType, tHeader)
	b.setLong(lHeaderKey, uint32(n))
	b.setDate(lDays, v.Clock())
	b.setName(name)
	b.setLong(lSecType, stUserDir)
	v.link(dir, n, name)

	return nil
}
