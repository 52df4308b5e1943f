// Command mkfs builds a fs.BlockStore image from a host directory tree,
// one flat directory of files (spec.md's Non-goals exclude a directory
// hierarchy). Grounded on the teacher's own mkfs/mkfs.go: a
// filepath.WalkDir sweep plus a chunked copy through a fixed-size
// staging buffer, adapted from biscuit's ufs.Ufs_t to fs.BlockStore.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oichkatzele/rvos/fs"
)

const blocksPerRun = 40000

func copydata(store *fs.BlockStore, src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	ino, ok := store.CreateInode(dst)
	if !ok {
		return fmt.Errorf("mkfs: could not create inode for %q", dst)
	}

	buf := make([]byte, fs.BSIZE)
	offset := 0
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if w := store.WriteAt(ino, offset, buf[:n]); w != n {
				return fmt.Errorf("mkfs: short write copying %q", dst)
			}
			offset += n
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

func addFiles(store *fs.BlockStore, skelDir string) error {
	return filepath.WalkDir(skelDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fmt.Printf("mkfs: failed to access %q: %v\n", path, err)
			return err
		}
		rel := strings.TrimPrefix(path, skelDir)
		rel = strings.TrimPrefix(rel, string(os.PathSeparator))
		if rel == "" {
			return nil
		}
		if d.IsDir() {
			fmt.Printf("mkfs: skipping directory %q (flat store, no hierarchy)\n", rel)
			return nil
		}
		if strings.Contains(rel, string(os.PathSeparator)) {
			fmt.Printf("mkfs: skipping nested file %q (flat store, no hierarchy)\n", rel)
			return nil
		}
		if err := copydata(store, path, rel); err != nil {
			fmt.Printf("mkfs: %v\n", err)
		}
		return nil
	})
}

func main() {
	skelDir := flag.String("skel", "", "host directory whose files populate the image")
	flag.Parse()
	if *skelDir == "" {
		fmt.Println("usage: mkfs -skel <dir>")
		os.Exit(1)
	}

	store := fs.NewBlockStore(blocksPerRun)
	if err := addFiles(store, *skelDir); err != nil {
		fmt.Printf("mkfs: error walking %q: %v\n", *skelDir, err)
		os.Exit(1)
	}
	fmt.Printf("mkfs: built image with %d names\n", len(store.Ls()))
}
