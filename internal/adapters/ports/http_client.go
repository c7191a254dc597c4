package ports

import "net/http"

// HTTPClient is the transport used by the status endpoint adapter.
// *http.Client satisfies it; tests substitute a mock.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
