// Standalone system test for a running monitord instance. Point it at a
// service started with SAMPLER_TYPE=mock (or real hardware) and it
// exercises the public API end to end.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Test configuration
const (
	APIBaseURL      = "http://localhost:8080"
	MaxWaitDuration = 60 * time.Second
	PollInterval    = 2 * time.Second
)

// Device represents one entry of the device list response
type Device struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Overall  int    `json:"overall_score"`
	Stale    bool   `json:"stale"`
	Selected bool   `json:"selected"`
}

// DeviceList is the device list response
type DeviceList struct {
	Devices  []Device `json:"devices"`
	Total    int      `json:"total"`
	Selected int      `json:"selected"`
}

// Snapshot is the subset of the snapshot response the test inspects
type Snapshot struct {
	Device int    `json:"device"`
	Status string `json:"status"`
	Score  struct {
		Overall     int     `json:"overall"`
		Temperature float64 `json:"temperature_component"`
		Power       float64 `json:"power_component"`
		Memory      float64 `json:"memory_component"`
	} `json:"health_score"`
	Sample struct {
		Timestamp    time.Time `json:"timestamp"`
		TemperatureC float64   `json:"temperature_c"`
	} `json:"sample"`
	UptimeHrs float64 `json:"uptime_hours"`
	Stale     bool    `json:"stale"`
}

// History is the history response
type History struct {
	Device  int `json:"device"`
	Total   int `json:"total"`
	Samples []struct {
		Timestamp time.Time `json:"timestamp"`
	} `json:"samples"`
}

// TestResult tracks the result of each test
type TestResult struct {
	Name     string
	Passed   bool
	Error    error
	Duration time.Duration
}

func main() {
	fmt.Println("=== GPU Health Monitor E2E System Test ===")

	ctx := context.Background()
	results := []TestResult{}

	// Test 1: API Health Check
	results = append(results, runTest("API Health Check", func() error {
		return testHealthCheck(ctx)
	}))

	// Test 2: Wait for First Snapshots
	results = append(results, runTest("Wait for First Snapshots", func() error {
		return waitForSnapshots(ctx)
	}))

	// Test 3: List Devices
	var devices DeviceList
	results = append(results, runTest("List Devices", func() error {
		var err error
		devices, err = getDevices(ctx)
		if err != nil {
			return err
		}
		if devices.Total == 0 {
			return fmt.Errorf("expected at least one device, got zero")
		}
		return nil
	}))

	if devices.Total > 0 {
		id := devices.Devices[0].ID

		// Test 4: Snapshot Shape
		results = append(results, runTest("Snapshot Shape", func() error {
			return testSnapshot(ctx, id)
		}))

		// Test 5: History Grows and Stays Ordered
		results = append(results, runTest("History Order and Growth", func() error {
			return testHistory(ctx, id)
		}))

		// Test 6: Device Selection
		results = append(results, runTest("Device Selection", func() error {
			return testSelect(ctx, id)
		}))
	}

	// Test 7: Threshold Round Trip
	results = append(results, runTest("Threshold Round Trip", func() error {
		return testThresholds(ctx)
	}))

	// Print results
	fmt.Println("\n=== Test Results ===")
	passed := 0
	failed := 0
	for _, result := range results {
		status := "✅ PASS"
		if !result.Passed {
			status = "❌ FAIL"
			failed++
		} else {
			passed++
		}
		fmt.Printf("%s %s (%.2fs)\n", status, result.Name, result.Duration.Seconds())
		if result.Error != nil {
			fmt.Printf("   Error: %v\n", result.Error)
		}
	}

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total: %d | Passed: %d | Failed: %d\n", len(results), passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func runTest(name string, testFunc func() error) TestResult {
	fmt.Printf("Running: %s...\n", name)
	start := time.Now()
	err := testFunc()
	duration := time.Since(start)

	result := TestResult{
		Name:     name,
		Passed:   err == nil,
		Error:    err,
		Duration: duration,
	}

	if err != nil {
		fmt.Printf("  ❌ Failed: %v\n", err)
	} else {
		fmt.Printf("  ✅ Passed\n")
	}

	return result
}

func testHealthCheck(ctx context.Context) error {
	resp, err := http.Get(APIBaseURL + "/health")
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("  Health response: %s\n", string(body))
	return nil
}

func waitForSnapshots(ctx context.Context) error {
	fmt.Printf("  Waiting for first snapshots (max %v)...\n", MaxWaitDuration)

	deadline := time.Now().Add(MaxWaitDuration)
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		devices, err := getDevices(ctx)
		if err == nil && devices.Total > 0 {
			fmt.Printf("  Data available! Found %d devices\n", devices.Total)
			return nil
		}

		fmt.Printf("  Waiting... (no snapshots yet)\n")
		<-ticker.C
	}

	return fmt.Errorf("timeout: no snapshots after %v", MaxWaitDuration)
}

func getDevices(ctx context.Context) (DeviceList, error) {
	var list DeviceList
	if err := getJSON(APIBaseURL+"/api/v1/devices", &list); err != nil {
		return list, err
	}
	return list, nil
}

func testSnapshot(ctx context.Context, id int) error {
	var snap Snapshot
	url := fmt.Sprintf("%s/api/v1/devices/%d/snapshot", APIBaseURL, id)
	if err := getJSON(url, &snap); err != nil {
		return err
	}

	if snap.Device != id {
		return fmt.Errorf("snapshot device mismatch: want %d, got %d", id, snap.Device)
	}
	if snap.Score.Overall < 0 || snap.Score.Overall > 100 {
		return fmt.Errorf("overall score out of range: %d", snap.Score.Overall)
	}
	if snap.Status == "" {
		return fmt.Errorf("snapshot missing status")
	}
	if snap.Stale {
		return fmt.Errorf("device %d reported stale while actively polled", id)
	}
	if time.Since(snap.Sample.Timestamp) > 30*time.Second {
		return fmt.Errorf("snapshot sample is old: %v", snap.Sample.Timestamp)
	}

	fmt.Printf("  Device %d: score=%d status=%s temp=%.1fC\n",
		id, snap.Score.Overall, snap.Status, snap.Sample.TemperatureC)
	return nil
}

func testHistory(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/api/v1/devices/%d/history", APIBaseURL, id)

	var first History
	if err := getJSON(url, &first); err != nil {
		return err
	}
	if first.Total == 0 {
		return fmt.Errorf("expected retained samples, got zero")
	}

	for i := 1; i < len(first.Samples); i++ {
		if !first.Samples[i].Timestamp.After(first.Samples[i-1].Timestamp) {
			return fmt.Errorf("samples out of order at index %d", i)
		}
	}

	// A later read must have at least as many samples (up to the cap)
	time.Sleep(3 * time.Second)
	var second History
	if err := getJSON(url, &second); err != nil {
		return err
	}
	if second.Total < first.Total && first.Total < 300 {
		return fmt.Errorf("history shrank: %d -> %d", first.Total, second.Total)
	}

	fmt.Printf("  History: %d samples, oldest-first order verified\n", second.Total)
	return nil
}

func testSelect(ctx context.Context, id int) error {
	url := fmt.Sprintf("%s/api/v1/devices/%d/select", APIBaseURL, id)
	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("select request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	devices, err := getDevices(ctx)
	if err != nil {
		return err
	}
	if devices.Selected != id {
		return fmt.Errorf("selection not reflected: want %d, got %d", id, devices.Selected)
	}
	return nil
}

func testThresholds(ctx context.Context) error {
	var current struct {
		Thresholds map[string]any `json:"thresholds"`
	}
	if err := getJSON(APIBaseURL+"/api/v1/thresholds", &current); err != nil {
		return err
	}
	if len(current.Thresholds) == 0 {
		return fmt.Errorf("empty thresholds response")
	}

	// Put the same set back; must be accepted and echoed
	body, err := json.Marshal(current.Thresholds)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, APIBaseURL+"/api/v1/thresholds", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("threshold update failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	return nil
}

func getJSON(url string, out any) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s: status %d: %s", url, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
