package logsink

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_UniquePaths(t *testing.T) {
	d := NewDir()
	a, err := d.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer a.Close()
	b, err := d.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if a.Path() == b.Path() {
		t.Errorf("two sinks share path %q", a.Path())
	}
	if filepath.Dir(a.Path()) != filepath.Dir(b.Path()) {
		t.Errorf("sinks in different directories: %q vs %q", a.Path(), b.Path())
	}
	if !strings.HasSuffix(a.Path(), ".log") {
		t.Errorf("Path = %q, want .log suffix", a.Path())
	}
}

func TestWrite_TaggedLines(t *testing.T) {
	d := NewDir()
	s, err := d.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s.Write(TagOut, "hello")
	s.Write(TagErr, "oops")
	s.Writef(TagInfo, "Process exited with code %d", 0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "[OUT] hello\n[ERR] oops\n[INFO] Process exited with code 0\n"
	if string(data) != want {
		t.Errorf("log content = %q, want %q", data, want)
	}
}

func TestClose_Idempotent(t *testing.T) {
	d := NewDir()
	s, err := d.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	// Writes after close are discarded, not a panic.
	s.Write(TagOut, "late")
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("write after close persisted: %q", data)
	}
}

func TestNilSink_Safe(t *testing.T) {
	var s *Sink
	s.Write(TagOut, "discarded")
	s.Writef(TagInfo, "also %s", "discarded")
	if got := s.Path(); got != "" {
		t.Errorf("Path on nil sink = %q, want empty", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil sink: %v", err)
	}
}
