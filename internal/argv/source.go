package argv

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"

	"github.com/Iron-Ham/singleton/internal/logging"
)

// CmdlineFileName is the name of the fallback command-line file.
const CmdlineFileName = "cmdline.txt"

// Source yields the current process's command-line arguments. ok is false
// when the source has nothing to offer, so a Chain can fall through to the
// next one.
type Source interface {
	Args() (args []string, ok bool)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() ([]string, bool)

// Args implements Source.
func (f SourceFunc) Args() ([]string, bool) { return f() }

// ProcessSource reads the standard argument vector, program name included.
type ProcessSource struct{}

// Args implements Source.
func (ProcessSource) Args() ([]string, bool) {
	if len(os.Args) == 0 {
		return nil, false
	}
	return append([]string(nil), os.Args...), true
}

// FileSource reads a UTF-16 command line handed over through a file, splits
// it with Windows quoting rules, and deletes the file once read. Any failure
// yields an empty batch.
type FileSource struct {
	Fs     afero.Fs
	Path   string
	Logger *logging.Logger
}

// NewFileSource returns a FileSource for {LocalAppDataDir}/{token}/cmdline.txt
// on the OS filesystem.
func NewFileSource(token string, logger *logging.Logger) *FileSource {
	return &FileSource{
		Fs:     afero.NewOsFs(),
		Path:   DefaultCmdlinePath(token),
		Logger: logger,
	}
}

// Args implements Source. It reports ok=false only when the file does not
// exist.
func (s *FileSource) Args() ([]string, bool) {
	log := s.Logger
	if log == nil {
		log = logging.NopLogger()
	}

	exists, err := afero.Exists(s.Fs, s.Path)
	if err != nil || !exists {
		return nil, false
	}

	raw, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		log.Warn("read fallback command line", "path", s.Path, "error", err.Error())
		return []string{}, true
	}

	text, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
	if err != nil {
		log.Warn("decode fallback command line", "path", s.Path, "error", err.Error())
		return []string{}, true
	}

	args := SplitWindows(string(text))
	if err := s.Fs.Remove(s.Path); err != nil {
		log.Warn("remove fallback command line", "path", s.Path, "error", err.Error())
	}
	return args, true
}

// Chain returns a Source that asks each source in turn and returns the first
// batch offered. If none offers one, it yields an empty batch.
func Chain(sources ...Source) Source {
	return SourceFunc(func() ([]string, bool) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if args, ok := src.Args(); ok {
				return args, true
			}
		}
		return []string{}, true
	})
}

// Default returns the standard retrieval chain for token: the process
// argument vector, then the fallback file.
func Default(token string, logger *logging.Logger) Source {
	return Chain(ProcessSource{}, NewFileSource(token, logger))
}

// DefaultCmdlinePath returns {LocalAppDataDir}/{token}/cmdline.txt.
func DefaultCmdlinePath(token string) string {
	return filepath.Join(LocalAppDataDir(), token, CmdlineFileName)
}

// LocalAppDataDir returns the per-user, machine-local application data
// directory: %LOCALAPPDATA% on Windows, $XDG_DATA_HOME or ~/.local/share
// elsewhere.
func LocalAppDataDir() string {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return dir
		}
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".local", "share")
}
