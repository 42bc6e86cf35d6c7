// nolint:goheader

/*
Copyright © 2022 spf13/afero
Copyright © 2022 SUSE LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fsutils layers a handful of afero/os-shaped helpers on top of
// vfs.FS, the one non-partition-table filesystem access point the core
// uses: /proc/swaps, /dev/disk/by-id, and scratch mount directories.
package fsutils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/twpayne/go-vfs/v5"
	"github.com/twpayne/go-vfs/v5/vfst"
)

// Exists checks if a file or directory exists.
func Exists(fsys vfs.FS, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir checks if path is a directory.
func IsDir(fsys vfs.FS, path string) (bool, error) {
	fi, err := fsys.Stat(path)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}

// MkdirAll creates a directory and all parents if not already present.
func MkdirAll(fsys vfs.FS, name string, mode os.FileMode) (err error) {
	if _, isReadOnly := fsys.(*vfs.ReadOnlyFS); isReadOnly {
		return permError("mkdir", name)
	}
	if name, err = fsys.RawPath(name); err != nil {
		return &os.PathError{Op: "mkdir", Path: name, Err: err}
	}
	return os.MkdirAll(name, mode)
}

func permError(op, path string) error {
	return &os.PathError{Op: op, Path: path, Err: os.ErrPermission}
}

var randState uint32
var randMu sync.Mutex

func reseed() uint32 {
	return uint32(time.Now().UnixNano() + int64(os.Getpid()))
}

func nextRandom() string {
	randMu.Lock()
	r := randState
	if r == 0 {
		r = reseed()
	}
	r = r*1664525 + 1013904223 // constants from Numerical Recipes
	randState = r
	randMu.Unlock()
	return strconv.Itoa(int(1e9 + r%1e9))[1:]
}

// TempDir creates a scratch directory in fsys, used ahead of an
// xfs_growfs-style operation that needs a live mount point. Under a
// vfst.TestFS, the random suffix is skipped so the path stays
// predictable across test runs.
func TempDir(fsys vfs.FS, dir, prefix string) (name string, err error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if _, isTestFs := fsys.(*vfst.TestFS); isTestFs {
		name = filepath.Join(dir, prefix)
		if err = MkdirAll(fsys, name, 0700); err != nil {
			return "", err
		}
		return name, nil
	}

	nconflict := 0
	for i := 0; i < 10000; i++ {
		try := filepath.Join(dir, prefix+nextRandom())
		err = MkdirAll(fsys, try, 0700)
		if os.IsExist(err) {
			if nconflict++; nconflict > 10 {
				randMu.Lock()
				randState = reseed()
				randMu.Unlock()
			}
			continue
		}
		if err == nil {
			name = try
		}
		break
	}
	return
}

type statDirEntry struct{ info fs.FileInfo }

func (d *statDirEntry) Name() string               { return d.info.Name() }
func (d *statDirEntry) IsDir() bool                { return d.info.IsDir() }
func (d *statDirEntry) Type() fs.FileMode          { return d.info.Mode().Type() }
func (d *statDirEntry) Info() (fs.FileInfo, error) { return d.info, nil }

// WalkDirFs is filepath.WalkDir over a vfs.FS, used to walk
// /dev/disk/by-id resolving symlinks back to device nodes during probe.
func WalkDirFs(fsys vfs.FS, root string, fn fs.WalkDirFunc) error {
	info, err := fsys.Stat(root)
	if err != nil {
		err = fn(root, nil, err)
	} else {
		err = walkDir(fsys, root, &statDirEntry{info}, fn)
	}
	if errors.Is(err, filepath.SkipDir) {
		return nil
	}
	return err
}

func walkDir(fsys vfs.FS, path string, d fs.DirEntry, walkDirFn fs.WalkDirFunc) error {
	if err := walkDirFn(path, d, nil); err != nil || !d.IsDir() {
		if err == filepath.SkipDir && d.IsDir() {
			err = nil
		}
		return err
	}

	dirs, err := readDir(fsys, path)
	if err != nil {
		if err = walkDirFn(path, d, err); err != nil {
			return err
		}
	}

	for _, d1 := range dirs {
		if err := walkDir(fsys, filepath.Join(path, d1.Name()), d1, walkDirFn); err != nil {
			if errors.Is(err, filepath.SkipDir) {
				break
			}
			return err
		}
	}
	return nil
}

func readDir(fsys vfs.FS, dirname string) ([]fs.DirEntry, error) {
	dirs, err := fsys.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })
	return dirs, nil
}

// ReadLines reads path and splits it on newlines, dropping the trailing
// blank entry a trailing "\n" would otherwise produce -- the shape
// /proc/swaps and /proc/mounts parsing both want.
func ReadLines(fsys vfs.FS, path string) ([]string, error) {
	b, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(b), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
