package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// simulate races many concurrent booking requests at identical
// doctor/date/time slots and checks that exactly one request wins each
// slot while the rest get 409s.

type simConfig struct {
	baseURL  string
	doctorID int64
	slots    int
	workers  int
}

type slotResult struct {
	success  int
	conflict int
	errors   int
}

type latencies struct {
	mu      sync.Mutex
	samples []time.Duration
}

func (l *latencies) record(d time.Duration) {
	l.mu.Lock()
	l.samples = append(l.samples, d)
	l.mu.Unlock()
}

func (l *latencies) percentile(p int) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(l.samples))
	copy(sorted, l.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "api-server base URL")
	flag.Int64Var(&cfg.doctorID, "doctor", 1, "doctor id to contend on")
	flag.IntVar(&cfg.slots, "slots", 20, "number of distinct slots to race")
	flag.IntVar(&cfg.workers, "workers", 50, "concurrent bookings per slot")
	flag.Parse()

	log.Printf("simulator starting: url=%s doctor=%d slots=%d workers=%d",
		cfg.baseURL, cfg.doctorID, cfg.slots, cfg.workers)

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 15 * time.Second}
	lat := &latencies{}

	var totalSuccess, totalConflict, totalErrors, violations int

	for slot := 0; slot < cfg.slots; slot++ {
		date := time.Now().AddDate(0, 0, 7+slot/10).Format("2006-01-02")
		timeOfDay := fmt.Sprintf("%02d:%02d", 9+slot%10, 0)

		result := raceSlot(client, cfg, date, timeOfDay, lat)
		totalSuccess += result.success
		totalConflict += result.conflict
		totalErrors += result.errors

		if result.success != 1 {
			violations++
			log.Printf("VIOLATION slot %s %s: %d winners (want exactly 1)",
				date, timeOfDay, result.success)
		}
	}

	log.Printf("done: success=%d conflict=%d errors=%d p50=%s p95=%s",
		totalSuccess, totalConflict, totalErrors,
		lat.percentile(50), lat.percentile(95))

	if violations > 0 {
		log.Printf("FAIL: %d slots had the wrong number of winners", violations)
		os.Exit(1)
	}
	log.Println("PASS: every contended slot had exactly one winner")
}

func raceSlot(client *http.Client, cfg simConfig, date, timeOfDay string, lat *latencies) slotResult {
	var (
		mu     sync.Mutex
		result slotResult
		wg     sync.WaitGroup
		start  = make(chan struct{})
	)

	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			status, err := book(client, cfg, date, timeOfDay, lat)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.errors++
			case status == http.StatusCreated:
				result.success++
			case status == http.StatusConflict:
				result.conflict++
			default:
				result.errors++
			}
		}()
	}

	close(start)
	wg.Wait()
	return result
}

func book(client *http.Client, cfg simConfig, date, timeOfDay string, lat *latencies) (int, error) {
	payload, err := json.Marshal(map[string]any{
		"patient_name":     gofakeit.Name(),
		"patient_email":    gofakeit.Email(),
		"patient_phone":    gofakeit.Phone(),
		"doctor_id":        cfg.doctorID,
		"appointment_date": date,
		"appointment_time": timeOfDay,
		"reason":           "load test",
	})
	if err != nil {
		return 0, err
	}

	begin := time.Now()
	resp, err := client.Post(cfg.baseURL+"/api/book", "application/json", bytes.NewReader(payload))
	lat.record(time.Since(begin))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
