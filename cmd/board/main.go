package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/liveview"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
	"github.com/noah-isme/absensi-rfid-api/pkg/config"
	"github.com/noah-isme/absensi-rfid-api/pkg/logger"
)

type rosterEnvelope struct {
	Data  *dto.RosterResponse `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// httpFetcher pulls the roster projection from the API gateway.
type httpFetcher struct {
	baseURL string
	client  *http.Client
}

func (f *httpFetcher) FetchToday(ctx context.Context) (*dto.RosterResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/api/v1/attendance/today", nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	var envelope rosterEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("empty roster response (http %d)", resp.StatusCode)
	}
	return envelope.Data, nil
}

func main() {
	statusFilter := flag.String("status", "", "show only one status: on_time, late, absent or not_yet")
	classFilter := flag.String("class", "", "show only one class")
	search := flag.String("search", "", "filter by student name")
	sortColumn := flag.String("sort", "status", "sort column: name, class, time or status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid timezone", "timezone", cfg.Timezone, "error", err)
	}
	now := func() time.Time { return time.Now().In(location) }

	win, err := window.Parse(cfg.Window.Start, cfg.Window.OnTimeDeadline, cfg.Window.End)
	if err != nil {
		logr.Sugar().Fatalw("invalid attendance window", "error", err)
	}

	view := liveview.NewView(liveview.Config{
		Window:       win,
		PollInterval: cfg.Board.PollInterval,
		TickInterval: cfg.Board.TickInterval,
		HighlightTTL: cfg.Board.HighlightTTL,
		Logger:       logr,
		Now:          now,
	})
	view.SetFilter(models.Status(strings.ToUpper(strings.TrimSpace(*statusFilter))))
	view.SetClassFilter(*classFilter)
	view.SetSearch(*search)
	view.ToggleSort(liveview.SortColumn(*sortColumn))

	fetcher := &httpFetcher{
		baseURL: strings.TrimRight(cfg.Board.ServerURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := view.Run(ctx, fetcher); err != nil && ctx.Err() == nil {
			logr.Sugar().Fatalw("board loop failed", "error", err)
		}
	}()

	render := time.NewTicker(cfg.Board.TickInterval)
	defer render.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-render.C:
			draw(view)
		}
	}
}

func draw(view *liveview.View) {
	rows := view.Visible()
	summary := view.Summary()
	clock := view.Clock()

	var b strings.Builder
	// ANSI clear screen and home.
	b.WriteString("\033[2J\033[H")
	fmt.Fprintf(&b, "ATTENDANCE %s", clock.Format("2006-01-02 15:04:05"))
	if view.Frozen() {
		b.WriteString("  [window closed]")
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "on time %d  late %d  absent %d  waiting %d  total %d\n\n",
		summary.OnTime, summary.Late, summary.Absent, summary.NotYet, summary.Total)
	fmt.Fprintf(&b, "%-12s %-28s %-10s %-10s\n", "CLASS", "NAME", "STATUS", "TIME")
	for _, row := range rows {
		marker := " "
		if row.Highlight {
			marker = "*"
		}
		scanTime := row.ScanTime
		if scanTime == "" {
			scanTime = "-"
		}
		fmt.Fprintf(&b, "%-12s %-28s %-10s %-10s %s\n", row.Class, row.Name, row.Status, scanTime, marker)
	}
	fmt.Fprint(os.Stdout, b.String())
}
