// Command loadtest drives a running buildwatch instance with concurrent
// webhook reports and public reads, then checks that no report was lost.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

var (
	baseURL      = flag.String("url", "http://127.0.0.1:5000", "buildwatch base url")
	numWorkers   = flag.Int("workers", 50, "concurrent workers")
	testDuration = flag.Duration("duration", 10*time.Second, "duration of each phase")
	numTitles    = flag.Int("titles", 20, "distinct title ids")
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
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

// reported tracks every version accepted per title so lost updates show up.
var (
	reportedMu sync.Mutex
	reported   = map[string]map[string]struct{}{}
	versionSeq atomic.Int64
)

func main() {
	flag.Parse()

	fmt.Println("=== BuildWatch Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Titles: %d\n\n", *numWorkers, *testDuration, *numTitles)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
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

	fmt.Println("\n--- Phase 1: Concurrent webhook reports ---")
	runPhase(*testDuration, doReport)

	fmt.Println("\n--- Phase 2: Mixed load (30% reports, 70% reads) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doReport(rng)
		case r < 0.50:
			return doGet(rng, "GET /titles/{id}/version", "/titles/%s/version", true)
		case r < 0.70:
			return doGet(rng, "GET /titles/{id}/versions", "/titles/%s/versions", false)
		case r < 0.85:
			return doGet(rng, "GET /announcements", "/announcements", false)
		case r < 0.95:
			return doGet(rng, "GET /templates", "/templates", false)
		default:
			return doGet(rng, "GET /launcher/poll", "/launcher/poll?titleId=%s&clientId=loadtest", false)
		}
	})

	fmt.Println("\n--- Verifying history ---")
	verifyHistory()
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
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

	fmt.Printf("\n  %-30s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 96))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-30s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 96))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func titleID(rng *rand.Rand) string {
	return fmt.Sprintf("load-%d", rng.Intn(*numTitles))
}

func doReport(rng *rand.Rand) result {
	const endpoint = "POST /webhook/update/{id}"
	id := titleID(rng)
	version := fmt.Sprintf("v%d", versionSeq.Add(1))
	data, _ := json.Marshal(map[string]string{"version": version, "patchNotes": "load test"})

	start := time.Now()
	resp, err := httpClient.Post(*baseURL+"/webhook/update/"+id, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		reportedMu.Lock()
		if reported[id] == nil {
			reported[id] = map[string]struct{}{}
		}
		reported[id][version] = struct{}{}
		reportedMu.Unlock()
	}
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

// doGet hits path, formatting in a title id when it has a verb. A 404 counts
// as success when allow404 is set, for titles nobody reported yet.
func doGet(rng *rand.Rand, endpoint, path string, allow404 bool) result {
	if strings.Contains(path, "%s") {
		path = fmt.Sprintf(path, titleID(rng))
	}
	start := time.Now()
	resp, err := httpClient.Get(*baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	ok := resp.StatusCode == http.StatusOK || (allow404 && resp.StatusCode == http.StatusNotFound)
	return result{endpoint, resp.StatusCode, lat, !ok}
}

func verifyHistory() {
	reportedMu.Lock()
	defer reportedMu.Unlock()

	lost := 0
	for id, versions := range reported {
		resp, err := httpClient.Get(*baseURL + "/titles/" + id + "/versions")
		if err != nil {
			fmt.Printf("  %s: request failed: %s\n", id, err)
			continue
		}
		var body struct {
			Versions []struct {
				ID string `json:"id"`
			} `json:"versions"`
		}
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("  %s: decode failed: %s\n", id, err)
			continue
		}

		stored := make(map[string]struct{}, len(body.Versions))
		for _, v := range body.Versions {
			stored[v.ID] = struct{}{}
		}
		for v := range versions {
			if _, ok := stored[v]; !ok {
				lost++
			}
		}
	}
	fmt.Printf("  Titles: %d | Lost updates: %d\n", len(reported), lost)
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
