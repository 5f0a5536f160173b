// Command simulate hammers the booking API with concurrent requests for a
// handful of professionals on a single day. Because the grid is finite, most
// requests after the first wave must be rejected with slot_conflict or
// agenda_busy; the summary at the end makes lock or overlap regressions
// obvious without a test database.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type simConfig struct {
	apiBaseURL string
	duration   time.Duration
	workers    int
	date       string
}

type operationMetrics struct {
	total    int64
	success  int64
	conflict int64
	errors   int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (om *operationMetrics) record(latency time.Duration, status int) {
	atomic.AddInt64(&om.total, 1)
	switch {
	case status == http.StatusCreated || status == http.StatusOK:
		atomic.AddInt64(&om.success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.conflict, 1)
	default:
		atomic.AddInt64(&om.errors, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *operationMetrics) stats() (avg, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.latencies) == 0 {
		return 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.latencies))
	copy(latencies, om.latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))
	p50 = latencies[len(latencies)*50/100]

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, p50, p95
}

type idListItem struct {
	ID string `json:"id"`
}

func main() {
	cfg := simConfig{}
	flag.StringVar(&cfg.apiBaseURL, "api", "http://localhost:8080", "API base URL")
	flag.DurationVar(&cfg.duration, "duration", 30*time.Second, "how long to run")
	flag.IntVar(&cfg.workers, "workers", 16, "concurrent workers")
	flag.StringVar(&cfg.date, "date", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "target agenda date")
	flag.Parse()

	log.SetFlags(log.LstdFlags)
	log.Printf("simulate starting: api=%s workers=%d duration=%s date=%s",
		cfg.apiBaseURL, cfg.workers, cfg.duration, cfg.date)

	client := &http.Client{Timeout: 10 * time.Second}

	patients, err := fetchIDs(client, cfg.apiBaseURL+"/patients")
	if err != nil {
		log.Fatalf("fetch patients: %v", err)
	}
	professionals, err := fetchIDs(client, cfg.apiBaseURL+"/professionals")
	if err != nil {
		log.Fatalf("fetch professionals: %v", err)
	}
	if len(patients) == 0 || len(professionals) == 0 {
		log.Fatal("no patients or professionals available, run cmd/seed first")
	}

	// A narrow pool of professionals concentrates contention on few agendas.
	if len(professionals) > 3 {
		professionals = professionals[:3]
	}

	slots, err := fetchSlots(client, cfg.apiBaseURL+"/agenda/slots")
	if err != nil {
		log.Fatalf("fetch slots: %v", err)
	}

	var booking operationMetrics

	deadline := time.Now().Add(cfg.duration)
	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for time.Now().Before(deadline) {
				attemptBooking(client, cfg, rng, patients, professionals, slots, &booking)
			}
		}(int64(w) + time.Now().UnixNano())
	}
	wg.Wait()

	avg, p50, p95 := booking.stats()
	fmt.Println("--- booking ---")
	fmt.Printf("total=%d success=%d conflict=%d error=%d\n",
		booking.total, booking.success, booking.conflict, booking.errors)
	fmt.Printf("latency avg=%s p50=%s p95=%s\n", avg, p50, p95)

	maxBookable := int64(len(professionals) * len(slots))
	if booking.success > maxBookable {
		log.Fatalf("OVERBOOKED: %d successes but only %d professional-slots exist", booking.success, maxBookable)
	}
	log.Printf("ok: %d successes within the %d bookable professional-slots", booking.success, maxBookable)
}

func attemptBooking(client *http.Client, cfg simConfig, rng *rand.Rand, patients, professionals, slots []string, m *operationMetrics) {
	durations := []int{30, 45, 60}

	payload := map[string]any{
		"patient_id":      patients[rng.Intn(len(patients))],
		"professional_id": professionals[rng.Intn(len(professionals))],
		"date":            cfg.date,
		"time":            slots[rng.Intn(len(slots))],
		"duration":        durations[rng.Intn(len(durations))],
	}
	body, _ := json.Marshal(payload)

	start := time.Now()
	resp, err := client.Post(cfg.apiBaseURL+"/appointments", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		m.record(latency, 0)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	m.record(latency, resp.StatusCode)
}

func fetchIDs(client *http.Client, url string) ([]string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	var items []idListItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func fetchSlots(client *http.Client, url string) ([]string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	var slots []string
	if err := json.NewDecoder(resp.Body).Decode(&slots); err != nil {
		return nil, err
	}
	return slots, nil
}
