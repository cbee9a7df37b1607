package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 25
	testDuration = 10 * time.Second
	seedCount    = 200
)

var containerTypes = []string{"countdown", "image", "text"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// idPool tracks the ids of containers created during seeding so the mixed
// phases can target real records.
type idPool struct {
	mu  sync.Mutex
	ids []string
}

func (p *idPool) add(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

func (p *idPool) random(rng *rand.Rand) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return "c-none"
	}
	return p.ids[rng.Intn(len(p.ids))]
}

var pool = &idPool{}

func main() {
	fmt.Println("=== Tempus Fugit Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Seed containers: %d\n\n", numWorkers, testDuration, seedCount)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/clock")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: Seed containers
	fmt.Printf("\n--- Phase 1: Seeding %d containers (POST /containers/add) ---\n", seedCount)
	seedStart := time.Now()
	seedStats := &stats{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < seedCount; i++ {
		r := doCreate(rng)
		seedStats.count++
		if r.err {
			seedStats.errors++
		}
		seedStats.latencies = append(seedStats.latencies, r.latency)
	}
	printResults(map[string]*stats{"POST /containers/add": seedStats}, time.Since(seedStart))

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (40% write, 60% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.15:
			return doUpdate(rng)
		case r < 0.30:
			return doHeight(rng)
		case r < 0.40:
			return doTodo(rng)
		case r < 0.75:
			return doGetContainers()
		case r < 0.90:
			return doGetClock()
		default:
			return doGetSettings()
		}
	})

	// Phase 3: Read-heavy load
	fmt.Println("\n--- Phase 3: Read-heavy load (5% write, 95% read) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doUpdate(rng)
		case r < 0.70:
			return doGetContainers()
		case r < 0.90:
			return doGetClock()
		default:
			return doGetSettings()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomDraft(rng *rand.Rand) map[string]interface{} {
	typ := containerTypes[rng.Intn(len(containerTypes))]
	draft := map[string]interface{}{
		"type":  typ,
		"title": fmt.Sprintf("load-%d", rng.Intn(100000)),
	}
	switch typ {
	case "countdown":
		start := time.Now().AddDate(0, 0, -rng.Intn(60)-1)
		target := time.Now().AddDate(0, 0, rng.Intn(365)+1)
		draft["data"] = map[string]string{
			"startDate":  start.Format("2006-01-02"),
			"targetDate": target.Format("2006-01-02"),
		}
	case "image":
		draft["data"] = map[string]string{
			"imageUrl": fmt.Sprintf("https://example.com/img/%d.png", rng.Intn(1000)),
		}
	default:
		draft["data"] = map[string]string{
			"content": "lorem ipsum dolor sit amet",
		}
	}
	return draft
}

func doCreate(rng *rand.Rand) result {
	data, _ := json.Marshal(randomDraft(rng))
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/containers/add", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /containers/add", 0, lat, true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == 201 {
		var view struct {
			ID string `json:"id"`
		}
		if json.NewDecoder(resp.Body).Decode(&view) == nil && view.ID != "" {
			pool.add(view.ID)
		}
	} else {
		io.Copy(io.Discard, resp.Body)
	}
	return result{"POST /containers/add", resp.StatusCode, lat, resp.StatusCode != 201}
}

func doUpdate(rng *rand.Rand) result {
	id := pool.random(rng)
	body, _ := json.Marshal(map[string]string{
		"title": fmt.Sprintf("updated-%d", rng.Intn(100000)),
	})
	url := fmt.Sprintf("%s/containers/update?id=%s", baseURL, id)
	start := time.Now()
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /containers/update", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == 200 || resp.StatusCode == 204
	return result{"POST /containers/update", resp.StatusCode, lat, !ok}
}

func doHeight(rng *rand.Rand) result {
	id := pool.random(rng)
	delta := 1
	if rng.Float64() < 0.5 {
		delta = -1
	}
	url := fmt.Sprintf("%s/containers/height?id=%s&delta=%d", baseURL, id, delta)
	start := time.Now()
	resp, err := httpClient.Post(url, "application/json", nil)
	lat := time.Since(start)
	if err != nil {
		return result{"POST /containers/height", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /containers/height", resp.StatusCode, lat, resp.StatusCode != 204}
}

func doTodo(rng *rand.Rand) result {
	id := pool.random(rng)
	body, _ := json.Marshal(map[string]string{
		"op":   "add",
		"text": fmt.Sprintf("todo-%d", rng.Intn(100000)),
	})
	url := fmt.Sprintf("%s/containers/todos?id=%s", baseURL, id)
	start := time.Now()
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /containers/todos", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /containers/todos", resp.StatusCode, lat, resp.StatusCode != 204}
}

func doGetContainers() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/containers")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /containers", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /containers", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetClock() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/clock")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /clock", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /clock", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetSettings() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/settings")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /settings", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /settings", resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
