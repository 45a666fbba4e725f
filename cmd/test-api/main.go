// Package main is a smoke-test utility for a running server. It checks /health,
// fetches the organisation list and requests the first page of audit logs for the
// first organisation, printing each status and body. Exits non-zero when any call
// does not return 200.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("PUBLINK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	token := os.Getenv("PUBLINK_API_TOKEN")

	client := &http.Client{Timeout: 10 * time.Second}

	if _, err := get(client, baseURL+"/health", ""); err != nil {
		fail(err)
	}

	body, err := get(client, baseURL+"/api/v1/organisations", token)
	if err != nil {
		fail(err)
	}

	var orgs struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &orgs); err != nil {
		fail(fmt.Errorf("decode organisations: %w", err))
	}
	if len(orgs.Items) == 0 {
		fmt.Println("No organisations found; skipping logs request")
		return
	}

	q := url.Values{}
	q.Set("organizationId", orgs.Items[0].ID)
	q.Set("pageNumber", "1")
	q.Set("pageSize", "5")
	if _, err := get(client, baseURL+"/api/v1/logs?"+q.Encode(), token); err != nil {
		fail(err)
	}
}

func get(client *http.Client, target, token string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	fmt.Printf("GET %s -> %d\n%s\n\n", target, resp.StatusCode, body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned %d", target, resp.StatusCode)
	}
	return body, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
