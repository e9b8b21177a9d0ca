// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package protofile

import (
	"io"
	"os"
	"path/filepath"
)

const (
	// If a file is expected to be smaller than this (in bytes) won't seek
	// to EOF for writing a single byte, which would've "announced" the final size.
	reserveFileSizeThreshold = 1 << 15

	// needed for file allocations
	maxInt64 = 1<<63 - 1

	permBitsDir  = 0750
	permBitsFile = 0640
)

// ProtoFileBehaver is what IntentNew returns.
type ProtoFileBehaver interface {
	// Discards a file that has not yet been persisted.
	Zap() error

	// Emerges the file under the initially given name into observable namespace on disk.
	Persist() error

	// Reserves space on disk for the file contents.
	SizeWillBe(numBytes uint64) error

	io.Writer
}

// ProtoFile is the state all implementations share.
type ProtoFile struct {
	*os.File

	persisted bool // Has this already appeared under its final name?
	finalName string
}

// IntentNew results in a sink for writes to disk,
// which can be emerged into a regular file by calling member function 'Persist'.
//
// Depending on operation- and filesystem a degraded implementation of ProtoFile
// will be used.
var IntentNew = intentNewUniversal

type generalizedProtoFile ProtoFile

func intentNewUniversal(path, filename string) (ProtoFileBehaver, error) {
	err := os.MkdirAll(path, permBitsDir)
	if err != nil {
		return nil, err
	}
	t, err := os.CreateTemp(path, "."+filename+".")
	if err != nil {
		return nil, err
	}
	return &generalizedProtoFile{
		File:      t,
		finalName: filepath.Join(path, filename),
	}, nil
}

// Zap discards the file.
// If it has already been persisted (and thereby is a 'regular' one) this will be a NOP.
func (p *generalizedProtoFile) Zap() error {
	if p.persisted {
		return nil
	}
	_ = os.Remove(p.File.Name())
	return ignoreClosed(p.File.Close())
}

// Persist promotes a proto file to a 'regular' one, which will appear under its final name.
func (p *generalizedProtoFile) Persist() error {
	if p.persisted {
		return nil
	}
	defer p.File.Close() // yes, this gets called up to two times
	err := p.File.Sync()
	if err != nil {
		return err
	}
	err = os.Rename(p.File.Name(), p.finalName)
	if err != nil {
		return err
	}
	p.persisted = true
	return p.File.Close()
}

// ignoreClosed filters the error a second Close results in.
func ignoreClosed(err error) error {
	if pe, ok := err.(*os.PathError); ok && pe.Err == os.ErrClosed {
		return nil
	}
	return err
}
