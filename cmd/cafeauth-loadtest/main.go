// Command cafeauth-loadtest measures session reads, session writes and
// route decisions under concurrency against a chosen session storage.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/agosto18/cafeauth"
	"github.com/agosto18/cafeauth/jwt"
	"github.com/agosto18/cafeauth/permission"
	"github.com/agosto18/cafeauth/session"
)

func main() {
	var (
		storageKind = pflag.String("storage", "memory", "session storage: memory, file or redis")
		concurrency = pflag.Int("concurrency", 64, "number of concurrent workers")
		ops         = pflag.Int("ops", 100000, "operations per phase")
		redisAddr   = pflag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	pflag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	storage, cleanup, err := openStorage(*storageKind, *redisAddr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer cleanup()

	issuer, err := jwt.NewIssuer(jwt.IssuerConfig{
		TTL:           time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(uuid.NewString()),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store := session.NewStore(storage)
	sessions := make([]*session.Session, 0, 2)
	for _, role := range []string{permission.RoleAdmin, "MESERO"} {
		credential, err := issuer.Issue("loadtest-"+role, jwt.PrefixedRole(role))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		sessions = append(sessions, &session.Session{
			Profile:    session.Profile{Username: "loadtest-" + role},
			Credential: credential,
		})
	}
	if err := store.Write(ctx, sessions[0]); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	client, err := cafeauth.New().WithStorage(storage).Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()
	paths := client.Routes().Paths()

	readStats := runPhase(*ops, *concurrency, func(_ *rand.Rand, _ int) error {
		_, err := store.Read(ctx)
		return err
	})
	navigateStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		_, err := client.Navigate(ctx, paths[r.Intn(len(paths))])
		return err
	})
	writeStats := runPhase(*ops, *concurrency, func(_ *rand.Rand, i int) error {
		return store.Write(ctx, sessions[i%len(sessions)])
	})

	fmt.Printf("storage=%s concurrency=%d\n", *storageKind, *concurrency)
	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("navigate", navigateStats)
	printStats("write", writeStats)
}

func openStorage(kind, addr string) (session.Storage, func(), error) {
	switch kind {
	case "memory":
		return session.NewMemoryStorage(), func() {}, nil
	case "file":
		dir, err := os.MkdirTemp("", "cafeauth-loadtest-")
		if err != nil {
			return nil, nil, err
		}
		storage, err := session.NewFileStorage(filepath.Join(dir, "session.json"))
		if err != nil {
			return nil, nil, err
		}
		fmt.Printf("using file storage at %s\n", storage.Path())
		return storage, func() { _ = os.RemoveAll(dir) }, nil
	case "redis":
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to start miniredis: %w", err)
			}
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			fmt.Printf("using miniredis at %s\n", mr.Addr())
			return session.NewRedisStorage(client, ""), func() {
				_ = client.Close()
				mr.Close()
			}, nil
		}
		client := redis.NewClient(&redis.Options{Addr: addr})
		fmt.Printf("using redis at %s\n", addr)
		return session.NewRedisStorage(client, "cafeauth-loadtest:"), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", kind)
	}
}

// runPhase spreads ops calls of op over concurrency workers.
func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	switch {
	case len(sorted) == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[len(sorted)-1]
	}
	return sorted[(len(sorted)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%-8s ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
