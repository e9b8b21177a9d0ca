// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultPrefix is what directories of transactions start with.
const DefaultPrefix = "upload-"

// Store holds files that have been received, but not yet been saved.
type Store interface {
	// SetID adopts the id of an existing transaction.
	SetID(id TransactionID) error

	// ID returns the current id, and starts a new transaction if there is none.
	ID() TransactionID

	// Exists is true if 'path' is a file in the transaction.
	Exists(path string) bool

	// Append moves the upload into the transaction.
	Append(u Upload) (Record, error)

	// Destroy removes the transaction and every file in it.
	Destroy() error
}

// TempStore keeps every transaction in its own directory below BaseDir.
//
// Don't share instances between requests.
type TempStore struct {
	Fs      afero.Fs
	BaseDir string
	Prefix  string

	// Transactions older than this are subject to garbage collection.
	GCAgeLimit time.Duration

	// At most this many transactions are removed in one go. Zero disables GC.
	GCMaxCount int

	Logger *zap.Logger

	now func() time.Time
	id  TransactionID
}

var _ Store = (*TempStore)(nil)

// NewTempStore returns a store with defaults, but without garbage collection.
func NewTempStore(fsys afero.Fs, baseDir string) *TempStore {
	return &TempStore{
		Fs:      fsys,
		BaseDir: baseDir,
		Prefix:  DefaultPrefix,
		Logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// SetID implements the Store interface.
func (s *TempStore) SetID(id TransactionID) error {
	if id <= 0 {
		return ErrInvalidTransactionID
	}
	s.id = id
	return nil
}

// ID implements the Store interface.
func (s *TempStore) ID() TransactionID {
	if s.id == 0 {
		s.id = NewTransactionID(s.clock())
	}
	return s.id
}

// Dir is the directory of the current transaction.
func (s *TempStore) Dir() string {
	return s.dirOf(s.ID())
}

func (s *TempStore) dirOf(id TransactionID) string {
	return filepath.Join(s.BaseDir, s.Prefix+id.String())
}

// Exists implements the Store interface.
//
// Files outside of this transaction's directory are never reported,
// even if they exist in another transaction.
func (s *TempStore) Exists(path string) bool {
	if s.id == 0 || path == "" {
		return false
	}
	dir := s.dirOf(s.id) + string(filepath.Separator)
	if !strings.HasPrefix(filepath.Clean(path), dir) {
		return false
	}
	finfo, err := s.Fs.Stat(path)
	return err == nil && finfo.Mode().IsRegular()
}

// Append implements the Store interface.
//
// The file gets the upload's sanitized name. Any file of the same
// name in this transaction is replaced.
func (s *TempStore) Append(u Upload) (Record, error) {
	dir := s.Dir()
	if err := s.Fs.MkdirAll(dir, permBitsDir); err != nil {
		return Record{}, errors.WithStack(err)
	}

	dst := filepath.Join(dir, SanitizeFilename(u.SanitizedName()))
	if err := u.Move(s.Fs, dst); err != nil {
		return Record{}, err
	}
	s.logger().Debug("staged",
		zap.Stringer("transaction", s.id),
		zap.String("path", dst),
		zap.Int64("size", u.Size()))

	return Record{
		Path:        dst,
		ContentType: u.ContentType(),
		Name:        u.Name(),
	}, nil
}

// Destroy implements the Store interface.
//
// Calling it on a transaction that does not exist (anymore) is not an error.
func (s *TempStore) Destroy() error {
	if s.id == 0 {
		return nil
	}
	_, err := s.removeDir(s.dirOf(s.id))
	return err
}

// removeDir is true if 'dir' has been there, and is gone now.
func (s *TempStore) removeDir(dir string) (bool, error) {
	if _, err := s.Fs.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	err := s.Fs.RemoveAll(dir)
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*os.PathError); !ok {
		err = &os.PathError{Op: "remove", Path: dir, Err: err}
	}
	return false, errors.WithStack(err)
}

// CollectGarbage removes transactions other than the current one
// that are older than GCAgeLimit, the oldest first, and at most GCMaxCount of them.
//
// Only the base directory is listed. Returns how many have been removed.
func (s *TempStore) CollectGarbage(now time.Time) (int, error) {
	if s.GCMaxCount <= 0 {
		return 0, nil
	}
	entries, err := afero.ReadDir(s.Fs, s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.WithStack(err)
	}

	var stale []TransactionID
	for _, finfo := range entries {
		if !finfo.IsDir() || !strings.HasPrefix(finfo.Name(), s.Prefix) {
			continue
		}
		n, err := strconv.ParseInt(finfo.Name()[len(s.Prefix):], 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		id := TransactionID(n)
		if finfo.Name() != s.Prefix+id.String() {
			// Such as "+1" or "0042", which are not ours.
			continue
		}
		if id == s.id || id.Age(now) <= s.GCAgeLimit {
			continue
		}
		stale = append(stale, id)
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })
	if len(stale) > s.GCMaxCount {
		stale = stale[:s.GCMaxCount]
	}

	var (
		removed  int
		firstErr error
	)
	for _, id := range stale {
		dir := s.dirOf(id)
		gone, err := s.removeDir(dir)
		if err != nil {
			s.logger().Error("cannot remove stale transaction", zap.String("dir", dir), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !gone {
			continue
		}
		removed++
		s.logger().Info("removed stale transaction",
			zap.String("dir", dir),
			zap.Duration("age", id.Age(now)))
	}
	return removed, firstErr
}

func (s *TempStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *TempStore) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
