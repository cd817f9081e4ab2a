package storage

import "github.com/JustVugg/NimbusOS/hal"

const writeBlockBytes = 256

// flashDev adapts hal.Flash to the tinyfs block device contract.
type flashDev struct {
	flash hal.Flash
}

func (d *flashDev) ReadAt(p []byte, off int64) (int, error) {
	return d.flash.ReadAt(p, uint32(off))
}

func (d *flashDev) WriteAt(p []byte, off int64) (int, error) {
	return d.flash.WriteAt(p, uint32(off))
}

func (d *flashDev) Size() int64 {
	return int64(d.flash.SizeBytes())
}

func (d *flashDev) WriteBlockSize() int64 {
	return writeBlockBytes
}

func (d *flashDev) EraseBlockSize() int64 {
	return int64(d.flash.EraseBlockBytes())
}

func (d *flashDev) EraseBlocks(start, n int64) error {
	bs := int64(d.flash.EraseBlockBytes())
	return d.flash.Erase(uint32(start*bs), uint32(n*bs))
}
