// clipboard — транспорт готового текста: системный буфер обмена,
// произвольный поток или файл.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/atotto/clipboard"
)

// Драйверы транспорта.
const (
	DriverSystem = "system"
	DriverStdout = "stdout"
	DriverFile   = "file"
)

var (
	// ErrUnavailable — системный буфер обмена недоступен (нет xclip/xsel/pbcopy).
	ErrUnavailable = errors.New("clipboard: unavailable")
	// ErrUnknownDriver — неизвестное имя драйвера.
	ErrUnknownDriver = errors.New("clipboard: unknown driver")
)

// Writer доставляет текст получателю.
type Writer interface {
	Write(ctx context.Context, text string) error
}

// New создаёт Writer по имени драйвера.
// out используется драйвером stdout, path — драйвером file.
func New(driver, path string, out io.Writer) (Writer, error) {
	switch driver {
	case DriverSystem:
		return System{}, nil
	case DriverStdout, "":
		return NewStream(out), nil
	case DriverFile:
		if path == "" {
			return nil, fmt.Errorf("clipboard: file driver requires path")
		}

		return File{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// System пишет в буфер обмена ОС.
type System struct{}

func (System) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if clipboard.Unsupported {
		return ErrUnavailable
	}

	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard.System: %w", err)
	}

	return nil
}

// Stream пишет текст в поток (stdout CLI, буфер в тестах).
type Stream struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStream(out io.Writer) *Stream {
	if out == nil {
		out = os.Stdout
	}

	return &Stream{out: out}
}

func (s *Stream) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.out, text); err != nil {
		return fmt.Errorf("clipboard.Stream: %w", err)
	}

	return nil
}

// File перезаписывает файл содержимым последней выгрузки.
type File struct {
	Path string
}

func (f File) Write(ctx context.Context, text string) error {
	const op = "clipboard.File"

	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := os.WriteFile(f.Path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

var (
	_ Writer = System{}
	_ Writer = (*Stream)(nil)
	_ Writer = File{}
)
