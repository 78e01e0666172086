// Command loggen produces synthetic access-log CSV files for exercising the
// detection pipeline. Traffic is mostly benign background noise from a pool
// of actors, with an optional burst of failing requests from a single IP to
// give the detectors something to flag.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var endpoints = []string{
	"/home", "/login", "/logout", "/api/orders", "/api/users",
	"/api/products", "/search", "/checkout", "/admin", "/static/app.js",
}

var benignStatuses = []string{"200", "200", "200", "200", "301", "302", "404"}

func main() {
	var (
		rows      int
		actors    int
		burst     int
		seed      uint64
		out       string
		variant   bool
		startUnix int64
	)
	flag.IntVar(&rows, "rows", 500, "Number of benign log rows to generate")
	flag.IntVar(&actors, "actors", 8, "Number of distinct source IPs")
	flag.IntVar(&burst, "burst", 40, "Failed requests in the anomalous burst (0 disables)")
	flag.Uint64Var(&seed, "seed", 123, "Deterministic generator seed")
	flag.StringVar(&out, "out", "access.csv", "Output CSV path")
	flag.BoolVar(&variant, "variant-headers", false, "Emit alias column names instead of canonical ones")
	flag.Int64Var(&startUnix, "start", 0, "Unix timestamp of the first event (0 means one hour ago)")
	flag.Parse()

	if actors < 1 {
		actors = 1
	}
	start := time.Now().Add(-time.Hour).UTC()
	if startUnix > 0 {
		start = time.Unix(startUnix, 0).UTC()
	}

	faker := gofakeit.New(seed)

	pool := make([]string, actors)
	for i := range pool {
		pool[i] = faker.IPv4Address()
	}

	f, err := os.Create(out)
	if err != nil {
		slog.Error("create output file", slog.String("path", out), slog.Any("error", err))
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"ip", "timestamp", "status", "endpoint"}
	if variant {
		header = []string{"ip_address", "time", "response_code", "url"}
	}
	if err := w.Write(header); err != nil {
		slog.Error("write header", slog.Any("error", err))
		os.Exit(1)
	}

	ts := start
	for i := 0; i < rows; i++ {
		ip := pool[faker.Number(0, actors-1)]
		status := benignStatuses[faker.Number(0, len(benignStatuses)-1)]
		endpoint := endpoints[faker.Number(0, len(endpoints)-1)]
		ts = ts.Add(time.Duration(faker.Number(1, 15)) * time.Second)
		if err := w.Write([]string{ip, ts.Format(time.RFC3339), status, endpoint}); err != nil {
			slog.Error("write row", slog.Any("error", err))
			os.Exit(1)
		}
	}

	if burst > 0 {
		attacker := faker.IPv4Address()
		burstStart := ts.Add(time.Minute)
		for i := 0; i < burst; i++ {
			when := burstStart.Add(time.Duration(i) * time.Second)
			row := []string{attacker, when.Format(time.RFC3339), "401", "/login"}
			if err := w.Write(row); err != nil {
				slog.Error("write burst row", slog.Any("error", err))
				os.Exit(1)
			}
		}
		fmt.Fprintln(os.Stderr, "burst actor: "+attacker+" ("+strconv.Itoa(burst)+" failed logins)")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		slog.Error("flush output", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("generated access log", slog.String("path", out), slog.Int("rows", rows), slog.Int("burst", burst))
}
