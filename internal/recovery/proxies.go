package recovery

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Every proxy host serves plain HTTP on one port and CONNECT/HTTPS on
// another.
const (
	proxyHTTPPort  = 8080
	proxyHTTPSPort = 8443
)

// ProxyPair is the HTTP/HTTPS address pair one pool entry expands to.
type ProxyPair struct {
	HTTP  *url.URL
	HTTPS *url.URL
}

// ProxyPool is a round-robin pool of egress proxies shared by all
// cycles and on-demand requests for one marketplace client. Rotation is
// last-writer-wins; a lost rotation just costs one extra retry later.
// A nil pool is valid and means no proxies are configured.
type ProxyPool struct {
	mu    sync.Mutex
	pairs []ProxyPair
	idx   int
}

// LoadProxyList reads a newline-delimited proxy host file. Blank lines
// and #-prefixed comments are ignored. A missing file is not an error:
// it returns a nil pool and the system runs without proxy rotation.
func LoadProxyList(path string) (*ProxyPool, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening proxy list: %w", err)
	}
	defer f.Close()

	pool, err := ParseProxyList(f)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy list %s: %w", path, err)
	}
	return pool, nil
}

// ParseProxyList parses proxy hosts from r. Returns nil if no usable
// entries are found.
func ParseProxyList(r io.Reader) (*ProxyPool, error) {
	var pairs []ProxyPair

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		host := strings.TrimSpace(scanner.Text())
		if host == "" || strings.HasPrefix(host, "#") {
			continue
		}
		pairs = append(pairs, ProxyPair{
			HTTP:  &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", host, proxyHTTPPort)},
			HTTPS: &url.URL{Scheme: "http", Host: fmt.Sprintf("%s:%d", host, proxyHTTPSPort)},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading proxy list: %w", err)
	}

	if len(pairs) == 0 {
		return nil, nil
	}
	return &ProxyPool{pairs: pairs}, nil
}

// Current returns the proxy pair in use. ok is false for a nil or empty
// pool.
func (p *ProxyPool) Current() (ProxyPair, bool) {
	if p == nil {
		return ProxyPair{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pairs) == 0 {
		return ProxyPair{}, false
	}
	return p.pairs[p.idx], true
}

// Rotate advances to the next proxy in round-robin order. Returns false
// when there is nothing to rotate to.
func (p *ProxyPool) Rotate() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pairs) == 0 {
		return false
	}
	p.idx = (p.idx + 1) % len(p.pairs)
	return true
}

// Size returns the number of proxy entries in the pool.
func (p *ProxyPool) Size() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pairs)
}
