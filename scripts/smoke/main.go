// Command smoke probes a running instance and exits non-zero when any
// critical endpoint misbehaves. Intended for deploy pipelines.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type probe struct {
	Method   string
	Path     string
	Expect   int
	Token    bool
	Critical bool
}

type outcome struct {
	Probe    probe
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base    string
		token   string
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated probes")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	probes := []probe{
		{Method: http.MethodGet, Path: "/health", Expect: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/ready", Expect: http.StatusOK, Critical: true},
		{Method: http.MethodGet, Path: "/metrics", Expect: http.StatusOK},
		{Method: http.MethodGet, Path: "/api/v1/fi/requests", Expect: http.StatusOK, Token: true},
		{Method: http.MethodGet, Path: "/api/v1/fi/reports/summary", Expect: http.StatusOK, Token: true},
	}

	client := &http.Client{Timeout: timeout}
	failures := 0

	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, p := range probes {
		if p.Token && token == "" {
			fmt.Printf("[SKIP] %s %s (no token)\n", p.Method, p.Path)
			continue
		}
		res := run(client, base, token, p)
		label := "OK"
		if res.Err != nil || res.Status != p.Expect {
			label = "FAIL"
			if p.Critical {
				failures++
			}
		}
		if res.Err != nil {
			fmt.Printf("[%s] %s %s error: %v\n", label, p.Method, p.Path, res.Err)
			continue
		}
		fmt.Printf("[%s] %s %s status=%d expected=%d (%s)\n", label, p.Method, p.Path, res.Status, p.Expect, res.Duration)
	}

	if failures > 0 {
		fmt.Printf("critical failures: %d\n", failures)
		os.Exit(1)
	}
}

func run(client *http.Client, base, token string, p probe) outcome {
	res := outcome{Probe: p}
	url := strings.TrimRight(base, "/") + p.Path

	req, err := http.NewRequest(p.Method, url, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if p.Token {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			res.Err = fmt.Errorf("read body: %w", err)
			return res
		}
		var decoded interface{}
		if err := json.Unmarshal(body, &decoded); err != nil {
			res.Err = fmt.Errorf("invalid JSON body: %w", err)
		}
	}
	return res
}
