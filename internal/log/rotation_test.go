package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingFile_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "obiee.log")
	rf, err := NewRotatingFile(path, 10, 2)
	if err != nil {
		t.Fatalf("NewRotatingFile failed: %v", err)
	}
	defer rf.Close()

	for _, line := range []string{"first\n", "second\n", "third\n", "fourth\n"} {
		if _, err := rf.Write([]byte(line)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	assertContent(t, path, "fourth\n")
	assertContent(t, path+".1", "third\n")
	assertContent(t, path+".2", "second\n")
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("expected no third backup, stat err = %v", err)
	}
}

func TestRotatingFile_AppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obiee.log")
	if err := os.WriteFile(path, []byte("old\n"), 0600); err != nil {
		t.Fatal(err)
	}

	rf, err := NewRotatingFile(path, 1024, 1)
	if err != nil {
		t.Fatalf("NewRotatingFile failed: %v", err)
	}
	if _, err := rf.Write([]byte("new\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := rf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	assertContent(t, path, "old\nnew\n")
}

func TestRotatingFile_NoBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obiee.log")
	rf, err := NewRotatingFile(path, 8, 0)
	if err != nil {
		t.Fatalf("NewRotatingFile failed: %v", err)
	}
	defer rf.Close()

	_, _ = rf.Write([]byte("aaaaaa\n"))
	_, _ = rf.Write([]byte("bbbbbb\n"))

	assertContent(t, path, "bbbbbb\n")
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Errorf("expected no backup, stat err = %v", err)
	}
}

func TestRotatingFile_Closed(t *testing.T) {
	rf, err := NewRotatingFile(filepath.Join(t.TempDir(), "obiee.log"), 100, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := rf.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := rf.Write([]byte("x")); err == nil {
		t.Error("expected error writing to closed file")
	}
	if err := rf.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestNewRotatingFile_InvalidSize(t *testing.T) {
	_, err := NewRotatingFile(filepath.Join(t.TempDir(), "x.log"), 0, 1)
	if err == nil || !strings.Contains(err.Error(), "max size") {
		t.Errorf("got %v, want max size error", err)
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(got) != want {
		t.Errorf("%s = %q, want %q", filepath.Base(path), got, want)
	}
}
