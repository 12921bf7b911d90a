package proxy

import (
	"net/http"
	"net/url"
	"sync"
)

// Manager rotates outbound proxies sequentially and carries the fixed client
// identity sent with every request.
type Manager struct {
	userAgent  string
	proxies    []*url.URL
	mu         sync.Mutex
	proxyIndex int
}

// NewManager parses the configured proxy URLs. An empty list means direct
// connections.
func NewManager(userAgent string, proxies []string) (*Manager, error) {
	m := &Manager{userAgent: userAgent}
	for _, raw := range proxies {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, err
		}
		m.proxies = append(m.proxies, u)
	}
	return m, nil
}

// UserAgent returns the identity header value.
func (m *Manager) UserAgent() string {
	return m.userAgent
}

// GetProxy returns the next proxy, or nil when none are configured.
func (m *Manager) GetProxy() *url.URL {
	if len(m.proxies) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// ProxyFunc plugs the rotation into an http.Transport.
func (m *Manager) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return m.GetProxy(), nil
	}
}
