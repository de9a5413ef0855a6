package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("text of "+name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestResolveDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.txt", "notes/b.md", "image.png", "drafts/c.txt")

	w := NewWalker(nil, []string{"drafts/**"})
	files, err := w.Resolve([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %+v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "a.txt" || filepath.Base(files[1].Path) != "b.md" {
		t.Errorf("unexpected files %+v", files)
	}
}

func TestResolveGlobAndFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "papers/attention.txt", "papers/bert.txt", "papers/old/gpt.txt", "readme.md")

	w := NewWalker(nil, nil)
	files, err := w.Resolve([]string{
		filepath.Join(root, "papers", "**", "*.txt"),
		filepath.Join(root, "readme.md"),
		filepath.Join(root, "papers", "bert.txt"), // duplicate of a glob match
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Errorf("expected 4 unique files, got %d", len(files))
	}
	for _, f := range files {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("expected absolute path, got %s", f.Path)
		}
	}
}

func TestResolveNoMatch(t *testing.T) {
	w := NewWalker(nil, nil)
	if _, err := w.Resolve([]string{filepath.Join(t.TempDir(), "*.pdf")}); err == nil {
		t.Error("expected error when nothing matches")
	}
}

func TestFileReader(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "doc.txt")

	text, err := FileReader{}.ReadFile(filepath.Join(root, "doc.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if text != "text of doc.txt" {
		t.Errorf("unexpected content %q", text)
	}
}
