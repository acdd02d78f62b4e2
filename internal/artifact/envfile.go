package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/torbar/internal/fileutil"
)

// proxyVariables are written in this order, lower case first, because
// tools disagree on which spelling they read.
var proxyVariables = []string{
	"http_proxy",
	"https_proxy",
	"HTTP_PROXY",
	"HTTPS_PROXY",
	"all_proxy",
	"ALL_PROXY",
}

// ProxyEnvContent renders the environment.d file for proxyURL.
func ProxyEnvContent(proxyURL string) string {
	var b strings.Builder
	b.WriteString("# Tor SOCKS5 Proxy\n")
	for _, v := range proxyVariables {
		b.WriteString(v)
		b.WriteByte('=')
		b.WriteString(proxyURL)
		b.WriteByte('\n')
	}
	return b.String()
}

func ensureEnvDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755) //nolint:gosec // environment.d must be readable by the user session
}

func writeProxyEnv(path, proxyURL string) error {
	return fileutil.WriteFileAtomic(path, []byte(ProxyEnvContent(proxyURL)), 0o644)
}

func removeProxyEnv(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
