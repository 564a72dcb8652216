package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"tin-dog/internal/platform/apperr"
)

var (
	ErrTooLarge    = apperr.New(apperr.CodePayloadTooLarge, "file too large")
	ErrNotAnImage  = apperr.New(apperr.CodeValidation, "only image files are allowed")
	ErrBusy        = apperr.New(apperr.CodeRateLimited, "too many uploads in progress")
	ErrInvalidPath = errors.New("uploads: ref outside upload dir")
)

// PublicPrefix es el prefijo HTTP desde el que se sirven los archivos.
const PublicPrefix = "/uploads/"

type Options struct {
	Dir           string
	MaxBytes      int64
	MaxConcurrent int64
	Timeout       time.Duration
}

// Local guarda imágenes en disco. Implementa users.ImageStore.
type Local struct {
	dir      string
	maxBytes int64
	timeout  time.Duration
	sem      *semaphore.Weighted
}

func NewLocal(opts Options) (*Local, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("uploads: dir required")
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: mkdir: %w", err)
	}
	return &Local{
		dir:      opts.Dir,
		maxBytes: opts.MaxBytes,
		timeout:  opts.Timeout,
		sem:      semaphore.NewWeighted(opts.MaxConcurrent),
	}, nil
}

func (l *Local) Dir() string { return l.dir }

// Save lee como máximo maxBytes+1 bytes, valida que sea imagen y escribe
// el archivo con un nombre nuevo. Devuelve la ruta pública.
func (l *Local) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", ErrBusy
	}
	defer l.sem.Release(1)

	data, err := readLimited(ctx, r, l.maxBytes)
	if err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", ErrNotAnImage
	}

	ext := mt.Extension()
	if ext == "" {
		ext = strings.ToLower(filepath.Ext(filename))
	}
	name := "image-" + uuid.NewString() + ext

	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, filepath.Join(l.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}

	return PublicPrefix + name, nil
}

// Remove borra un archivo previamente guardado. Refs ajenas se ignoran.
func (l *Local) Remove(ref string) error {
	name, ok := strings.CutPrefix(ref, PublicPrefix)
	if !ok {
		return nil
	}
	if name == "" || name != path.Base(name) {
		return ErrInvalidPath
	}
	err := os.Remove(filepath.Join(l.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type readResult struct {
	data []byte
	err  error
}

func readLimited(ctx context.Context, r io.Reader, max int64) ([]byte, error) {
	ch := make(chan readResult, 1)
	go func() {
		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(r, max+1))
		if err == nil && n > max {
			err = ErrTooLarge
		}
		ch <- readResult{data: buf.Bytes(), err: err}
	}()

	select {
	case res := <-ch:
		return res.data, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
