package liveview

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	"github.com/noah-isme/absensi-rfid-api/internal/models"
	"github.com/noah-isme/absensi-rfid-api/internal/window"
)

// Fetcher retrieves the current roster projection from the server.
type Fetcher interface {
	FetchToday(ctx context.Context) (*dto.RosterResponse, error)
}

// SortColumn names a sortable board column.
type SortColumn string

// Sortable columns.
const (
	SortByName   SortColumn = "name"
	SortByClass  SortColumn = "class"
	SortByTime   SortColumn = "time"
	SortByStatus SortColumn = "status"
)

// Row is one student line on the board.
type Row struct {
	StudentID string
	Name      string
	Class     string
	Status    models.Status
	ScanTime  string
	Highlight bool
}

// Config tunes the view loop.
type Config struct {
	Window       window.Window
	PollInterval time.Duration
	TickInterval time.Duration
	HighlightTTL time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

// View reconciles periodic roster polls with a local ticking clock. All state
// behind the mutex; Run owns the timers, everything else is callable from the
// render loop.
type View struct {
	mu sync.Mutex

	win          window.Window
	pollInterval time.Duration
	tickInterval time.Duration
	highlightTTL time.Duration
	logger       *zap.Logger
	now          func() time.Time

	rows       []Row
	statuses   map[string]models.Status
	highlights map[string]time.Time
	summary    models.RosterSummary

	statusFilter models.Status
	classFilter  string
	search       string
	sortColumn   SortColumn
	sortAsc      bool

	clock        time.Time
	lastUpdated  time.Time
	frozen       bool
	pollInFlight bool
}

// NewView builds a view with sensible defaults.
func NewView(cfg Config) *View {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.HighlightTTL <= 0 {
		cfg.HighlightTTL = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &View{
		win:          cfg.Window,
		pollInterval: cfg.PollInterval,
		tickInterval: cfg.TickInterval,
		highlightTTL: cfg.HighlightTTL,
		logger:       cfg.Logger,
		now:          cfg.Now,
		statuses:     make(map[string]models.Status),
		highlights:   make(map[string]time.Time),
		sortColumn:   SortByStatus,
		sortAsc:      true,
		clock:        cfg.Now(),
	}
}

type pollResult struct {
	roster *dto.RosterResponse
	err    error
}

// Run drives the poll and tick loop until the context is cancelled. At most
// one poll is in flight at any time; a poll tick that fires while the
// previous request is still outstanding is skipped, not queued.
func (v *View) Run(ctx context.Context, fetcher Fetcher) error {
	poll := time.NewTicker(v.pollInterval)
	defer poll.Stop()
	tick := time.NewTicker(v.tickInterval)
	defer tick.Stop()

	results := make(chan pollResult, 1)
	v.startPoll(ctx, fetcher, results)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			v.Tick(v.now())
		case <-poll.C:
			v.startPoll(ctx, fetcher, results)
		case res := <-results:
			v.mu.Lock()
			v.pollInFlight = false
			v.mu.Unlock()
			if res.err != nil {
				// Keep showing the last good roster until the next poll.
				v.logger.Warn("roster poll failed", zap.Error(res.err))
				continue
			}
			v.Apply(res.roster)
		}
	}
}

func (v *View) startPoll(ctx context.Context, fetcher Fetcher, results chan<- pollResult) {
	v.mu.Lock()
	if v.pollInFlight || v.frozen {
		v.mu.Unlock()
		return
	}
	v.pollInFlight = true
	v.mu.Unlock()

	go func() {
		roster, err := fetcher.FetchToday(ctx)
		select {
		case results <- pollResult{roster: roster, err: err}:
		case <-ctx.Done():
		}
	}()
}

// Apply merges a fresh projection into the view. Rows whose status changed
// since the last poll, and rows seen for the first time with a recorded
// status, are highlighted until the highlight expires.
func (v *View) Apply(roster *dto.RosterResponse) {
	if roster == nil {
		return
	}
	now := v.now()

	v.mu.Lock()
	defer v.mu.Unlock()

	rows := make([]Row, 0, len(roster.Rows))
	seen := make(map[string]models.Status, len(roster.Rows))
	for _, src := range roster.Rows {
		row := Row{
			StudentID: src.StudentID,
			Name:      src.StudentName,
			Class:     src.ClassName,
			Status:    src.Status,
		}
		if src.ScanTime != nil {
			row.ScanTime = *src.ScanTime
		}

		previous, known := v.statuses[row.StudentID]
		changed := known && previous != row.Status
		arrivedRecorded := !known && row.Status.Persisted()
		if changed || arrivedRecorded {
			v.highlights[row.StudentID] = now.Add(v.highlightTTL)
		}

		seen[row.StudentID] = row.Status
		rows = append(rows, row)
	}

	v.rows = rows
	v.statuses = seen
	v.summary = roster.Summary
	v.lastUpdated = now

	// A result landing after a local freeze must not resurrect NOT_YET rows.
	if roster.WindowClosed || v.frozen {
		v.freezeLocked()
	}
}

// Tick advances the local clock. Past the window end it relabels the waiting
// rows to absent and freezes the board without waiting for another poll.
func (v *View) Tick(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.clock = now

	for id, expiry := range v.highlights {
		if !expiry.After(now) {
			delete(v.highlights, id)
		}
	}

	if v.win.Closed(now) {
		if !v.frozen {
			v.freezeLocked()
		}
		return
	}
	// Clock moved back before the end, a new day started. Resume polling.
	v.frozen = false
}

// freezeLocked relabels NOT_YET rows to ABSENT and stops further polling.
// Safe to call repeatedly. Caller holds the mutex.
func (v *View) freezeLocked() {
	for i := range v.rows {
		if v.rows[i].Status == models.StatusNotYet {
			v.rows[i].Status = models.StatusAbsent
			v.statuses[v.rows[i].StudentID] = models.StatusAbsent
			v.summary.NotYet--
			v.summary.Absent++
		}
	}
	v.frozen = true
}

// SetFilter restricts visible rows to one status category. The filter sees
// the displayed status, so after the local relabel a NOT_YET filter goes
// empty and an ABSENT one picks the relabelled rows up. Empty clears it.
func (v *View) SetFilter(status models.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.statusFilter = status
}

// SetClassFilter restricts visible rows to one class. Empty clears it.
func (v *View) SetClassFilter(class string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.classFilter = strings.TrimSpace(class)
}

// SetSearch restricts visible rows to names containing the query.
func (v *View) SetSearch(query string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = strings.TrimSpace(query)
}

// ToggleSort sorts by the column, flipping direction when it is already the
// active column.
func (v *View) ToggleSort(column SortColumn) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.sortColumn == column {
		v.sortAsc = !v.sortAsc
		return
	}
	v.sortColumn = column
	v.sortAsc = true
}

// Visible returns the rows to render: search first, then the status and
// class filters, then a stable sort on the active column. Rows without a
// scan time always sort after rows with one, in either direction.
func (v *View) Visible() []Row {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.clock
	rows := make([]Row, 0, len(v.rows))
	query := strings.ToLower(v.search)
	for _, row := range v.rows {
		if query != "" && !strings.Contains(strings.ToLower(row.Name), query) {
			continue
		}
		if v.statusFilter != "" && row.Status != v.statusFilter {
			continue
		}
		if v.classFilter != "" && row.Class != v.classFilter {
			continue
		}
		if expiry, ok := v.highlights[row.StudentID]; ok && expiry.After(now) {
			row.Highlight = true
		}
		rows = append(rows, row)
	}

	column := v.sortColumn
	asc := v.sortAsc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch column {
		case SortByName:
			if a.Name == b.Name {
				return false
			}
			if asc {
				return a.Name < b.Name
			}
			return a.Name > b.Name
		case SortByClass:
			if a.Class == b.Class {
				return false
			}
			if asc {
				return a.Class < b.Class
			}
			return a.Class > b.Class
		case SortByTime:
			if (a.ScanTime == "") != (b.ScanTime == "") {
				return a.ScanTime != ""
			}
			if a.ScanTime == b.ScanTime {
				return false
			}
			if asc {
				return a.ScanTime < b.ScanTime
			}
			return a.ScanTime > b.ScanTime
		default:
			ra, rb := a.Status.Rank(), b.Status.Rank()
			if ra == rb {
				return false
			}
			if asc {
				return ra < rb
			}
			return ra > rb
		}
	})

	return rows
}

// Summary returns the current counts, reflecting any local relabel.
func (v *View) Summary() models.RosterSummary {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.summary
}

// Frozen reports whether the board stopped polling for the day.
func (v *View) Frozen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frozen
}

// Clock returns the last ticked time.
func (v *View) Clock() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clock
}

// LastUpdated returns when the last successful poll was applied.
func (v *View) LastUpdated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUpdated
}
