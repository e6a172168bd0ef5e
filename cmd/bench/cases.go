// README: Bench cases; storage checks, flow walks over HTTP and fare quote throughput.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres connect", Run: pingPostgres},
		{Name: "Env: Redis connect", Run: pingRedis},
		{Name: "Migration: apply (optional)", Run: applyMigrations},
		{Name: "Migration: tables exist", Run: tablesExist},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				return expect(r.call(ctx, http.MethodGet, base+"/health", nil), http.StatusOK)
			},
		},
		fareCase("Fares: auto 10km", base+"/api/fares?distance_km=10&vehicle=AUTO", 65),
		fareCase("Fares: auto 10km sharing", base+"/api/fares?distance_km=10&vehicle=AUTO&mode=SHARING", 39),
		fareCase("Fares: sedan 10km four seats", base+"/api/fares?distance_km=10&vehicle=CAR_SEDAN&seats=4", 368),
		{
			Name: "Fares: missing distance -> 400",
			Run: func(ctx context.Context, r *Runner) Result {
				return expect(r.call(ctx, http.MethodGet, base+"/api/fares?vehicle=AUTO", nil), http.StatusBadRequest)
			},
		},
		{
			Name: "Passenger: search, submit destination, cancel",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.sequence(ctx, []step{
					{http.MethodPost, base + "/api/passenger/cancel", nil, 0},
					{http.MethodPost, base + "/api/passenger/search", map[string]string{"vehicle": "AUTO"}, http.StatusOK},
					{http.MethodPut, base + "/api/passenger/destination", map[string]string{"label": "Connaught Place"}, http.StatusOK},
					{http.MethodPost, base + "/api/passenger/destination/submit", nil, http.StatusOK},
					{http.MethodPost, base + "/api/passenger/search", nil, http.StatusConflict},
					{http.MethodPost, base + "/api/passenger/cancel", nil, http.StatusOK},
				})
			},
		},
		{
			Name: "Driver: online twice -> 409",
			Run: func(ctx context.Context, r *Runner) Result {
				return r.sequence(ctx, []step{
					{http.MethodPost, base + "/api/driver/online", nil, 0},
					{http.MethodPost, base + "/api/driver/online", nil, http.StatusConflict},
					{http.MethodPost, base + "/api/driver/offline", nil, 0},
				})
			},
		},
		{
			Name: "Driver: invalid IFSC -> 422",
			Run: func(ctx context.Context, r *Runner) Result {
				profile := map[string]any{"bank": map[string]string{
					"accountName":   "Bench Driver",
					"bankName":      "Bench Bank",
					"accountNumber": "123456789",
					"ifsc":          "BAD",
				}}
				return r.sequence(ctx, []step{
					{http.MethodPost, base + "/api/driver/account/open", nil, 0},
					{http.MethodPut, base + "/api/driver/account/profile", profile, http.StatusUnprocessableEntity},
					{http.MethodPost, base + "/api/driver/account/close", nil, 0},
				})
			},
		},
		{
			Name: "Concurrency: parallel payouts settle once",
			Run: func(ctx context.Context, r *Runner) Result {
				return concurrentPayout(ctx, r, base)
			},
		},
		{
			Name: "Perf: fare quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/fares?distance_km=4.8&vehicle=CAR_SEDAN&seats=2")
			},
		},
	}
}

type response struct {
	status  int
	body    []byte
	latency time.Duration
	err     error
}

func (r *Runner) call(ctx context.Context, method, url string, body any) response {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return response{err: err}
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return response{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return response{err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	return response{status: resp.StatusCode, body: b, latency: time.Since(start), err: err}
}

func expect(resp response, want int) Result {
	if resp.err != nil {
		return Result{Status: statusFail, Note: resp.err.Error()}
	}
	if resp.status != want {
		return Result{Status: statusFail, Latency: resp.latency, Note: fmt.Sprintf("status=%d want=%d", resp.status, want)}
	}
	return Result{Status: statusPass, Latency: resp.latency, Note: fmt.Sprintf("status=%d", resp.status)}
}

// step is one request of a sequence; want 0 accepts any status.
type step struct {
	method string
	url    string
	body   any
	want   int
}

func (r *Runner) sequence(ctx context.Context, steps []step) Result {
	var total time.Duration
	for i, s := range steps {
		resp := r.call(ctx, s.method, s.url, s.body)
		if resp.err != nil {
			return Result{Status: statusFail, Note: fmt.Sprintf("step %d: %v", i, resp.err)}
		}
		total += resp.latency
		if s.want != 0 && resp.status != s.want {
			return Result{Status: statusFail, Latency: total, Note: fmt.Sprintf("step %d %s: status=%d want=%d", i, s.url, resp.status, s.want)}
		}
	}
	return Result{Status: statusPass, Latency: total}
}

func fareCase(name, url string, wantTotal int64) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			resp := r.call(ctx, http.MethodGet, url, nil)
			res := expect(resp, http.StatusOK)
			if res.Status != statusPass {
				return res
			}
			var fare struct {
				Total int64 `json:"total"`
			}
			if err := json.Unmarshal(resp.body, &fare); err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if fare.Total != wantTotal {
				return Result{Status: statusFail, Latency: resp.latency, Note: fmt.Sprintf("total=%d want=%d", fare.Total, wantTotal)}
			}
			return Result{Status: statusPass, Latency: resp.latency, Note: fmt.Sprintf("total=%d", fare.Total)}
		},
	}
}

func pingPostgres(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "dsn not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.db.Ping(ctx); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func pingRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: statusSkip, Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	return Result{Status: statusPass}
}

func migrationFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func applyMigrations(ctx context.Context, r *Runner) Result {
	if !r.cfg.ApplyMigration {
		return Result{Status: statusSkip, Note: "apply-migration=false"}
	}
	if r.db == nil {
		return Result{Status: statusFail, Note: "db not configured"}
	}
	files, err := migrationFiles(r.cfg.MigrationDir)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		for _, s := range splitSQL(string(sql)) {
			if _, err := r.db.Exec(ctx, s); err != nil {
				return Result{Status: statusFail, Note: fmt.Sprintf("%s: %v", filepath.Base(f), err)}
			}
		}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("files=%d", len(files))}
}

func tablesExist(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: statusSkip, Note: "dsn not configured"}
	}
	files, err := migrationFiles(r.cfg.MigrationDir)
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	var tables []string
	for _, f := range files {
		t, err := extractTables(f)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		tables = append(tables, t...)
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: statusFail, Note: err.Error()}
		}
		if !exists {
			return Result{Status: statusFail, Note: "missing table: " + t}
		}
	}
	return Result{Status: statusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
}

// concurrentPayout opens the account panel and fires parallel payouts; at most
// one may succeed because the first one empties the balance.
func concurrentPayout(ctx context.Context, r *Runner, base string) Result {
	if resp := r.call(ctx, http.MethodPost, base+"/api/driver/account/open", nil); resp.err != nil {
		return Result{Status: statusFail, Note: resp.err.Error()}
	}
	defer r.call(ctx, http.MethodPost, base+"/api/driver/account/close", nil)

	var wg sync.WaitGroup
	var succ, conflict atomic.Int64
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := r.call(ctx, http.MethodPost, base+"/api/driver/account/payout", nil)
			switch {
			case resp.err != nil:
			case resp.status == http.StatusOK:
				succ.Add(1)
			case resp.status == http.StatusConflict:
				conflict.Add(1)
			}
		}()
	}
	wg.Wait()
	note := fmt.Sprintf("success=%d conflict=%d", succ.Load(), conflict.Load())
	if succ.Load() <= 1 && succ.Load()+conflict.Load() == int64(r.cfg.Concurrency) {
		return Result{Status: statusPass, Note: note}
	}
	return Result{Status: statusFail, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				resp := r.call(ctx, http.MethodGet, url, nil)
				if resp.err != nil || resp.status != http.StatusOK {
					errCount.Add(1)
					continue
				}
				count.Add(1)
			}
		}()
	}
	wg.Wait()
	rps := float64(count.Load()) / r.cfg.Duration.Seconds()
	note := fmt.Sprintf("ok=%d err=%d rps=%.1f", count.Load(), errCount.Load(), rps)
	if errCount.Load() > 0 {
		return Result{Status: statusFail, Note: note}
	}
	return Result{Status: statusPass, Note: note}
}

var createTableRe = regexp.MustCompile(`(?i)CREATE TABLE (?:IF NOT EXISTS )?([a-z_][a-z0-9_]*)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range createTableRe.FindAllStringSubmatch(string(b), -1) {
		out = append(out, m[1])
	}
	return out, nil
}

// splitSQL drops comment lines and splits on semicolons.
func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if l := strings.TrimSpace(line); l == "" || strings.HasPrefix(l, "--") {
			continue
		}
		kept = append(kept, line)
	}
	var out []string
	for _, s := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
