// Package main is a minimal HTTP health check binary for use in distroless
// containers. It exits 0 when /api/health returns HTTP 200, and 1 otherwise.
// Compile with CGO_ENABLED=0 for a fully static binary.
package main

import (
	"net/http"
	"os"
	"time"

	"grocerynana/internal/version"
)

const healthURL = "http://localhost:8080/api/health"

func main() {
	os.Exit(check(healthURL))
}

func check(url string) int {
	client := &http.Client{Timeout: 5 * time.Second}

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 1
	}
	req.Header.Set("User-Agent", version.GetInfo().UserAgent("healthcheck"))

	resp, err := client.Do(req)
	if err != nil {
		return 1
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
