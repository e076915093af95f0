// pkg/httpclient/httpclient.go

package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"os"
	"time"
)

var defaultClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		TLSClientConfig: tlsConfig(),
		DialContext: (&net.Dialer{
			Timeout:   3 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

// DefaultClient returns the preconfigured client used for health probes.
// The short timeouts keep probes bounded so a dead endpoint resolves to a
// check outcome instead of hanging the run.
func DefaultClient() *http.Client {
	return defaultClient
}

// SetDefaultClient replaces the default client, for tests.
func SetDefaultClient(client *http.Client) {
	defaultClient = client
}

func tlsConfig() *tls.Config {
	if os.Getenv("POSTFLIGHT_INSECURE_TLS") == "true" {
		return &tls.Config{
			InsecureSkipVerify: true,
			MinVersion:         tls.VersionTLS12,
		}
	}
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
}
