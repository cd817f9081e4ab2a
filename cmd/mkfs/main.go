//go:build !tinygo

// Command mkfs builds a littlefs flash image from a host directory.
// The result is what the storage driver mounts, either as the host
// flash file or written to hardware with a flasher.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tinygo.org/x/tinyfs/littlefs"
)

const (
	defaultImagePath = "nimbus.flash"
	defaultImageSize = 1 * 1024 * 1024
	defaultEraseSize = 4096
	writeBlockSize   = 256
)

// fileDev exposes a host file as an erase-block device.
type fileDev struct {
	f         *os.File
	size      int64
	eraseSize int64
	scratch   []byte
}

func openFileDev(path string, size, eraseSize int64) (*fileDev, error) {
	if eraseSize <= 0 || eraseSize%writeBlockSize != 0 {
		return nil, fmt.Errorf("invalid erase size %d", eraseSize)
	}
	if size <= 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("size %d not a multiple of erase size %d", size, eraseSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}

	d := &fileDev{f: f, size: size, eraseSize: eraseSize, scratch: make([]byte, eraseSize)}
	for i := range d.scratch {
		d.scratch[i] = 0xFF
	}
	if err := d.EraseBlocks(0, size/eraseSize); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

func (d *fileDev) Close() error { return d.f.Close() }

func (d *fileDev) ReadAt(p []byte, off int64) (int, error)  { return d.f.ReadAt(p, off) }
func (d *fileDev) WriteAt(p []byte, off int64) (int, error) { return d.f.WriteAt(p, off) }
func (d *fileDev) Size() int64                              { return d.size }
func (d *fileDev) WriteBlockSize() int64                    { return writeBlockSize }
func (d *fileDev) EraseBlockSize() int64                    { return d.eraseSize }

func (d *fileDev) EraseBlocks(start, length int64) error {
	for i := int64(0); i < length; i++ {
		if _, err := d.f.WriteAt(d.scratch, (start+i)*d.eraseSize); err != nil {
			return fmt.Errorf("erase block %d: %w", start+i, err)
		}
	}
	return nil
}

func main() {
	var (
		srcDir    = flag.String("src", "", "Source directory to import.")
		outPath   = flag.String("out", defaultImagePath, "Output image path.")
		size      = flag.Int64("size", defaultImageSize, "Image size in bytes.")
		eraseSize = flag.Int64("erase", defaultEraseSize, "Erase block size in bytes.")
	)
	flag.Parse()

	if *srcDir == "" {
		fmt.Fprintln(os.Stderr, "error: -src is required")
		os.Exit(2)
	}
	if err := run(*srcDir, *outPath, *size, *eraseSize); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(srcDir, outPath string, size, eraseSize int64) error {
	srcDir = filepath.Clean(srcDir)
	st, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", srcDir)
	}

	dev, err := openFileDev(outPath, size, eraseSize)
	if err != nil {
		return err
	}
	defer dev.Close()

	lfs := littlefs.New(dev)
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 512,
		BlockCycles:   100,
	})
	if err := lfs.Format(); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := lfs.Mount(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	defer lfs.Unmount()

	var dirs, files []string
	walkErr := filepath.WalkDir(srcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir || entry.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		lfsPath := "/" + filepath.ToSlash(rel)
		if entry.IsDir() {
			dirs = append(dirs, lfsPath)
		} else if entry.Type().IsRegular() {
			files = append(files, lfsPath)
		}
		return nil
	})
	if walkErr != nil {
		return walkErr
	}

	// Parents sort before children, so a plain string sort gives a
	// valid creation order.
	sort.Strings(dirs)
	sort.Strings(files)

	for _, d := range dirs {
		if err := lfs.Mkdir(d, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", d, err)
		}
	}
	for _, p := range files {
		hostPath := filepath.Join(srcDir, filepath.FromSlash(strings.TrimPrefix(p, "/")))
		if err := copyFile(lfs, hostPath, p); err != nil {
			return err
		}
		fmt.Println(p)
	}
	return nil
}

func copyFile(lfs *littlefs.LFS, hostPath, lfsPath string) error {
	in, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := lfs.OpenFile(lfsPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return fmt.Errorf("create %s: %w", lfsPath, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", lfsPath, err)
	}
	return out.Close()
}
