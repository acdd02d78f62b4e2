package artifact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStripProxyFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		want        string
		wantRemoved int
	}{
		{
			name:        "removes proxy lines only",
			content:     "--a\n--proxy-server=socks5://127.0.0.1:9050\n--b\n",
			want:        "--a\n--b\n",
			wantRemoved: 1,
		},
		{
			name:        "removes every matching line",
			content:     "--proxy-server=a\n--x\n--proxy-server=b",
			want:        "--x\n",
			wantRemoved: 2,
		},
		{
			name:        "keeps crlf and spacing of other lines",
			content:     "  --a  \r\n--proxy-server=x\r\n\n--b",
			want:        "  --a  \r\n\n--b",
			wantRemoved: 1,
		},
		{
			name:        "no match leaves file alone",
			content:     "--a\n--b\n",
			want:        "--a\n--b\n",
			wantRemoved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "chromium-flags.conf")
			if err := os.WriteFile(path, []byte(tt.content), 0o640); err != nil {
				t.Fatal(err)
			}

			n, err := StripProxyFlags(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tt.wantRemoved {
				t.Errorf("expected %d removed, got %d", tt.wantRemoved, n)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.want {
				t.Errorf("expected %q, got %q", tt.want, data)
			}
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0o640 {
				t.Errorf("expected mode 0640 to be preserved, got %v", info.Mode().Perm())
			}
		})
	}
}

func TestStripProxyFlagsMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brave-flags.conf")
	n, err := StripProxyFlags(path)
	if err != nil || n != 0 {
		t.Errorf("expected no-op for missing file, got %d, %v", n, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to still be missing")
	}
}

func TestStripProxyFlagsFollowsSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "dotfiles-brave-flags.conf")
	link := filepath.Join(dir, "brave-flags.conf")
	if err := os.WriteFile(target, []byte("--enable-features=X\n--proxy-server=socks5://127.0.0.1:9050\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}

	n, err := StripProxyFlags(link)
	if err != nil || n != 1 {
		t.Fatalf("expected 1 removed, got %d, %v", n, err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("expected the flag file to remain a symlink")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "--enable-features=X\n" {
		t.Errorf("expected the link target to be filtered, got %q", data)
	}
	after, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(before, after) {
		t.Error("expected the target to be rewritten in place")
	}
}

func TestCountProxyFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "flags.conf")

	exists, n, err := CountProxyFlags(path)
	if err != nil || exists || n != 0 {
		t.Errorf("expected missing file, got %v, %d, %v", exists, n, err)
	}

	if err := os.WriteFile(path, []byte("--proxy-server=a\n--x\n--proxy-server=b\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	exists, n, err = CountProxyFlags(path)
	if err != nil || !exists || n != 2 {
		t.Errorf("expected 2 proxy lines, got %v, %d, %v", exists, n, err)
	}
}
