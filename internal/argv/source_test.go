package argv

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"
)

func writeUTF16(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(content))
	if err != nil {
		t.Fatalf("encode UTF-16: %v", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFileSource_ReadsSplitsAndDeletes(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/app/cmdline.txt"
	writeUTF16(t, fs, path, `"C:\Apps\My App.exe" --open "report 1.txt"`)

	src := &FileSource{Fs: fs, Path: path}
	got, ok := src.Args()
	if !ok {
		t.Fatal("Args() ok = false, want true")
	}

	want := []string{`C:\Apps\My App.exe`, "--open", "report 1.txt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Args() mismatch (-want +got):\n%s", diff)
	}

	if exists, _ := afero.Exists(fs, path); exists {
		t.Error("fallback file should be deleted after a successful read")
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	src := &FileSource{Fs: afero.NewMemMapFs(), Path: "/nope/cmdline.txt"}
	if args, ok := src.Args(); ok || args != nil {
		t.Errorf("Args() = %v, %v; want nil, false", args, ok)
	}
}

// openFailFs lets Stat succeed but fails every Open.
type openFailFs struct {
	afero.Fs
}

func (openFailFs) Open(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
}

func TestFileSource_UnreadableYieldsEmpty(t *testing.T) {
	mem := afero.NewMemMapFs()
	path := "/data/app/cmdline.txt"
	writeUTF16(t, mem, path, "app --x")

	src := &FileSource{Fs: openFailFs{Fs: mem}, Path: path}
	args, ok := src.Args()
	if !ok {
		t.Fatal("Args() ok = false, want true for an existing but unreadable file")
	}
	if len(args) != 0 {
		t.Errorf("Args() = %v, want empty", args)
	}
}

func TestProcessSource(t *testing.T) {
	args, ok := ProcessSource{}.Args()
	if !ok {
		t.Fatal("ProcessSource should be available in a test binary")
	}
	if diff := cmp.Diff(os.Args, args); diff != "" {
		t.Errorf("ProcessSource mismatch (-want +got):\n%s", diff)
	}

	args[0] = "mutated"
	if os.Args[0] == "mutated" {
		t.Error("ProcessSource must return a copy of os.Args")
	}
}

func TestChain(t *testing.T) {
	none := SourceFunc(func() ([]string, bool) { return nil, false })
	some := SourceFunc(func() ([]string, bool) { return []string{"x"}, true })
	other := SourceFunc(func() ([]string, bool) { return []string{"y"}, true })

	tests := []struct {
		name    string
		sources []Source
		want    []string
	}{
		{"first available wins", []Source{none, some, other}, []string{"x"}},
		{"nil sources skipped", []Source{nil, other}, []string{"y"}},
		{"nothing available", []Source{none}, []string{}},
		{"no sources", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Chain(tt.sources...).Args()
			if !ok {
				t.Error("Chain should always report ok")
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Chain mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultCmdlinePath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg")
	t.Setenv("LOCALAPPDATA", "/xdg")

	got := DefaultCmdlinePath("tok")
	want := "/xdg/tok/cmdline.txt"
	if got != want && got != `\xdg\tok\cmdline.txt` {
		t.Errorf("DefaultCmdlinePath() = %q, want %q", got, want)
	}
}
