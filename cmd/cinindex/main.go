// cinindex walks a directory of CIN tables, parses each one and writes a
// YAML manifest of their names and sizes. Tables that fail to parse are
// listed with the error.
//
//	go build ./cmd/cinindex
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cursork/cinlook/cin"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// entry describes one table file in the manifest.
type entry struct {
	File        string   `yaml:"file"`
	CName       string   `yaml:"cname,omitempty"`
	Tokens      int      `yaml:"tokens"`
	Keys        int      `yaml:"keys"`
	Chars       int      `yaml:"chars"`
	Entries     int      `yaml:"entries"`
	EndKey      string   `yaml:"endkey,omitempty"`
	Terminators []string `yaml:"terminators,flow,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

func main() {
	dir := flag.String("dir", ".", "directory to scan for .cin tables")
	output := flag.String("o", "manifest.yaml", "output manifest path, - for stdout")
	strict := flag.Bool("strict", false, "reject tables that declare a keyname twice")
	flag.Parse()

	var opts []cin.Option
	if *strict {
		opts = append(opts, cin.WithStrictKeynames())
	}

	entries, err := scan(context.Background(), *dir, opts...)
	if err != nil {
		fatal(err)
	}

	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
		}
	}
	fmt.Fprintf(os.Stderr, "Found %d tables, %d failed to parse\n", len(entries), failed)

	var w io.Writer = os.Stdout
	if *output != "-" {
		f, err := os.Create(*output)
		if err != nil {
			fatal(errors.Wrap(err, "create manifest"))
		}
		defer f.Close()
		w = f
	}
	if err := writeManifest(w, entries); err != nil {
		fatal(err)
	}
	if *output != "-" {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", *output)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "cinindex: %v\n", err)
	os.Exit(1)
}

// scan finds every .cin file below dir and describes each, parsing them in
// parallel. Entries are sorted by file.
func scan(ctx context.Context, dir string, opts ...cin.Option) ([]entry, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".cin") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", dir)
	}

	entries := make([]entry, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries[i] = describe(dir, path, opts...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].File < entries[j].File })
	return entries, nil
}

// describe parses one table. A parse failure is recorded, not returned.
func describe(root, path string, opts ...cin.Option) entry {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	e := entry{File: filepath.ToSlash(rel)}

	t, err := cin.Load(path, opts...)
	if err != nil {
		var fe *cin.FormatError
		if errors.As(err, &fe) {
			e.Error = fe.Error()
		} else {
			e.Error = err.Error()
		}
		return e
	}

	st := t.Stats()
	e.CName = st.Name
	e.Tokens = st.Tokens
	e.Keys = st.Keys
	e.Chars = st.Chars
	e.Entries = st.Entries
	if st.EndKeys != cin.Space {
		e.EndKey = trimSeparator(st.EndKeys)
	}
	e.Terminators = st.Terminators
	return e
}

// trimSeparator drops the one space or tab that follows %endkey.
func trimSeparator(keys string) string {
	if keys != "" && (keys[0] == ' ' || keys[0] == '\t') {
		return keys[1:]
	}
	return keys
}

func writeManifest(w io.Writer, entries []entry) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return errors.Wrap(err, "encode manifest")
	}
	return errors.Wrap(enc.Close(), "encode manifest")
}
