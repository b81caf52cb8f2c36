package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hackgods/provider-booking/internal/logger"
)

// SimConfig drives a contention run against a live api-server: many workers
// try to book the same handful of windows, then the schedules are checked
// for double bookings.
type SimConfig struct {
	APIBaseURL   string
	Requests     int
	Workers      int
	RatePerSec   float64
	Windows      int
	CancelRatio  float64
	ProviderCap  int
	DayOffset    int
	RequestLimit time.Duration
}

type window struct {
	providerID uuid.UUID
	start      time.Time
	end        time.Time
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusConflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p50, p95, max time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	pct := func(p int) time.Duration {
		idx := len(latencies) * p / 100
		if idx >= len(latencies) {
			idx = len(latencies) - 1
		}
		return latencies[idx]
	}

	return sum / time.Duration(len(latencies)), pct(50), pct(95), latencies[len(latencies)-1]
}

type Simulator struct {
	config  SimConfig
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	booking OperationMetrics
	cancel  OperationMetrics

	mu     sync.Mutex
	booked []uuid.UUID
}

func main() {
	_ = godotenv.Load()
	log := logger.Init("simulate", getEnv("APP_ENV", "dev"), getEnv("LOG_LEVEL", "info"))

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	sim := &Simulator{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.RequestLimit},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Workers),
		log:     log,
	}

	ctx := context.Background()

	windows, err := sim.pickWindows(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("pick windows")
	}
	log.Info().
		Int("windows", len(windows)).
		Int("requests", cfg.Requests).
		Int("workers", cfg.Workers).
		Float64("rate", cfg.RatePerSec).
		Msg("simulation starting")

	if err := sim.Run(ctx, windows); err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}

	violations, err := sim.verify(ctx, windows)
	if err != nil {
		log.Fatal().Err(err).Msg("verify schedules")
	}

	sim.PrintReport(violations)
	if violations > 0 {
		os.Exit(1)
	}
}

func loadConfig() SimConfig {
	return SimConfig{
		APIBaseURL:   strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Requests:     getInt("SIM_REQUESTS", 500),
		Workers:      getInt("SIM_WORKERS", 20),
		RatePerSec:   getFloat("SIM_RATE", 200),
		Windows:      getInt("SIM_WINDOWS", 5),
		CancelRatio:  getFloat("SIM_CANCEL_RATIO", 0.1),
		ProviderCap:  getInt("SIM_PROVIDER_LIMIT", 3),
		DayOffset:    getInt("SIM_DAY_OFFSET", 2),
		RequestLimit: getDuration("SIM_REQUEST_TIMEOUT", 10*time.Second),
	}
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Requests <= 0 {
		return fmt.Errorf("SIM_REQUESTS must be > 0")
	}
	if cfg.Windows <= 0 {
		return fmt.Errorf("SIM_WINDOWS must be > 0")
	}
	if cfg.RatePerSec <= 0 {
		return fmt.Errorf("SIM_RATE must be > 0")
	}
	return nil
}

// pickWindows builds overlapping 30 minute windows on a future day so that
// most concurrent requests contend for the same provider time.
func (s *Simulator) pickWindows(ctx context.Context) ([]window, error) {
	var providers []struct {
		ID uuid.UUID `json:"id"`
	}
	if err := s.getJSON(ctx, "/api/providers", &providers); err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	if len(providers) == 0 {
		return nil, fmt.Errorf("no active providers, run the seed command first")
	}
	if len(providers) > s.config.ProviderCap {
		providers = providers[:s.config.ProviderCap]
	}

	var now struct {
		UTCNow time.Time `json:"utc_now"`
	}
	if err := s.getJSON(ctx, "/api/now", &now); err != nil {
		return nil, fmt.Errorf("server time: %w", err)
	}

	day := time.Date(now.UTCNow.Year(), now.UTCNow.Month(), now.UTCNow.Day(), 12, 0, 0, 0, time.UTC).
		AddDate(0, 0, s.config.DayOffset)

	var windows []window
	for _, p := range providers {
		for i := 0; i < s.config.Windows; i++ {
			start := day.Add(time.Duration(i*15) * time.Minute)
			windows = append(windows, window{providerID: p.ID, start: start, end: start.Add(30 * time.Minute)})
		}
	}
	return windows, nil
}

func (s *Simulator) Run(ctx context.Context, windows []window) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := 0; i < s.config.Requests; i++ {
		w := windows[rand.Intn(len(windows))]
		customer := "sim-" + strconv.Itoa(i)

		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			if rand.Float64() < s.config.CancelRatio {
				s.cancelRandom(gctx)
				return nil
			}
			s.book(gctx, w, customer)
			return nil
		})
	}

	return g.Wait()
}

func (s *Simulator) book(ctx context.Context, w window, customer string) {
	body, _ := json.Marshal(map[string]any{
		"provider_id":   w.providerID.String(),
		"customer_name": customer,
		"start_utc":     w.start,
		"end_utc":       w.end,
	})

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+"/api/appointments", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.log.Debug().Err(err).Msg("booking request failed")
		s.booking.Record(latency, 0)
		return
	}
	defer resp.Body.Close()

	s.booking.Record(latency, resp.StatusCode)

	if resp.StatusCode == http.StatusCreated {
		var created struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err == nil && created.ID != uuid.Nil {
			s.mu.Lock()
			s.booked = append(s.booked, created.ID)
			s.mu.Unlock()
		}
	}
}

func (s *Simulator) cancelRandom(ctx context.Context) {
	s.mu.Lock()
	if len(s.booked) == 0 {
		s.mu.Unlock()
		return
	}
	id := s.booked[rand.Intn(len(s.booked))]
	s.mu.Unlock()

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/appointments/%s/cancel", s.config.APIBaseURL, id), nil)

	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		s.cancel.Record(latency, 0)
		return
	}
	resp.Body.Close()
	s.cancel.Record(latency, resp.StatusCode)
}

// verify reads back every touched provider's schedule and counts booked
// appointments that overlap each other.
func (s *Simulator) verify(ctx context.Context, windows []window) (int, error) {
	type scheduled struct {
		StartUTC time.Time `json:"start_utc"`
		EndUTC   time.Time `json:"end_utc"`
		Status   string    `json:"status"`
	}

	seen := make(map[uuid.UUID]bool)
	violations := 0

	for _, w := range windows {
		if seen[w.providerID] {
			continue
		}
		seen[w.providerID] = true

		var schedule []scheduled
		path := fmt.Sprintf("/api/providers/%s/schedule?date=%s", w.providerID, w.start.Format(time.DateOnly))
		if err := s.getJSON(ctx, path, &schedule); err != nil {
			return 0, err
		}

		var booked []scheduled
		for _, a := range schedule {
			if a.Status == "booked" {
				booked = append(booked, a)
			}
		}

		for i := 0; i < len(booked); i++ {
			for j := i + 1; j < len(booked); j++ {
				if booked[i].StartUTC.Before(booked[j].EndUTC) && booked[j].StartUTC.Before(booked[i].EndUTC) {
					violations++
					s.log.Error().
						Str("provider_id", w.providerID.String()).
						Time("a_start", booked[i].StartUTC).
						Time("b_start", booked[j].StartUTC).
						Msg("double booking detected")
				}
			}
		}
	}

	return violations, nil
}

func (s *Simulator) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (s *Simulator) PrintReport(violations int) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Requests: %d  Workers: %d  Rate: %.0f/s\n\n", s.config.Requests, s.config.Workers, s.config.RatePerSec)

	printOperationReport("Booking", &s.booking)
	printOperationReport("Cancel", &s.cancel)

	if violations == 0 {
		fmt.Println("Double bookings: none")
	} else {
		fmt.Printf("Double bookings: %d\n", violations)
	}
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, p50, p95, max := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), max.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
