package classroom

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"classroom-backend/config"
	"classroom-backend/internal/briefing"
	"classroom-backend/internal/model"
	"classroom-backend/internal/roster"
	"classroom-backend/internal/seating"
	"classroom-backend/internal/store"
)

// fakeAnalyzer answers every request with canned output.
type fakeAnalyzer struct {
	mu       sync.Mutex
	analysis briefing.Analysis
	brief    string
	err      error
	prompts  []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string) (briefing.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, text)
	return f.analysis, f.err
}

func (f *fakeAnalyzer) Brief(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.brief, f.err
}

// testClock is a settable clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc   *Service
	store store.Store
	clock *testClock
	cfg   *config.Config
}

func newTestStore(t *testing.T) store.Store {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.KVEntry{}))
	return store.NewGormStore(db)
}

func newTestEnv(t *testing.T, analyzer briefing.Analyzer, tweak ...func(*config.Config)) *testEnv {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	for _, fn := range tweak {
		fn(cfg)
	}

	st := newTestStore(t)
	clock := &testClock{now: time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)}
	ids := 0
	engine := seating.NewEngine(seating.Options{Random: seating.NewRandom(7)})
	svc := NewService(st, engine, analyzer, cfg,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		}))
	return &testEnv{svc: svc, store: st, clock: clock, cfg: cfg}
}

func sampleRoster() roster.Roster {
	return roster.Roster{
		Grade: "2",
		Class: "3",
		Students: []model.Student{
			{Number: 3, Name: "Choi", Gender: model.GenderMale},
			{Number: 1, Name: "Kim", Gender: model.GenderFemale},
			{Number: 2, Name: "Lee", Gender: model.GenderMale},
			{Number: 4, Name: "Park", Gender: model.GenderFemale},
		},
	}
}

func (e *testEnv) importRoster(t *testing.T) {
	require.NoError(t, e.svc.ImportRoster(context.Background(), sampleRoster()))
}

func TestService_Roster(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	empty, err := env.svc.Roster(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Students)
	assert.NotNil(t, empty.Students)

	assert.ErrorIs(t, env.svc.ImportRoster(ctx, roster.Roster{}), roster.ErrNoStudents)

	env.importRoster(t)
	got, err := env.svc.Roster(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", got.Grade)
	assert.Equal(t, "3", got.Class)
	require.Len(t, got.Students, 4)
	assert.NotNil(t, got.Students[0].Attendance.MenstrualLog)
}

func TestService_Columns(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	cols, err := env.svc.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, cols)

	assert.ErrorIs(t, env.svc.SetColumns(ctx, 0), seating.ErrInvalidColumns)
	assert.ErrorIs(t, env.svc.SetColumns(ctx, 1<<40), seating.ErrInvalidColumns)
	require.NoError(t, env.svc.SetColumns(ctx, 2))
	cols, err = env.svc.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cols)
}

func TestService_GenerateSeating(t *testing.T) {
	ctx := context.Background()
	sorted := false

	t.Run("empty roster", func(t *testing.T) {
		env := newTestEnv(t, nil)
		_, err := env.svc.GenerateSeating(ctx, GenerateRequest{})
		assert.ErrorIs(t, err, seating.ErrEmptyRoster)
	})

	t.Run("sorted by number with stored columns", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)
		require.NoError(t, env.svc.SetColumns(ctx, 2))

		res, err := env.svc.GenerateSeating(ctx, GenerateRequest{Randomize: &sorted})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Columns)
		assert.Equal(t, map[string]int{"Kim": 1, "Lee": 2, "Choi": 3, "Park": 4}, res.Assignment)
		assert.Empty(t, res.Warnings)
	})

	t.Run("constraints and warnings", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)

		res, err := env.svc.GenerateSeating(ctx, GenerateRequest{
			Columns:   4,
			Pins:      "4:Kim, 9:Lee",
			Priority:  "Ghost",
			Randomize: &sorted,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, res.Assignment["Kim"])
		assert.True(t, res.HasWarning(seating.WarnPinSkipped))
		assert.True(t, res.HasWarning(seating.WarnPrioritySkipped))
	})

	t.Run("random run covers everyone", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)

		res, err := env.svc.GenerateSeating(ctx, GenerateRequest{Columns: 3, Incompatible: "Kim;Lee"})
		require.NoError(t, err)
		assert.Len(t, res.Assignment, 4)
		assert.Equal(t, 3, res.Grid.Columns())
	})

	t.Run("columns above the limit", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)
		_, err := env.svc.GenerateSeating(ctx, GenerateRequest{Columns: seating.MaxColumns + 1})
		assert.ErrorIs(t, err, seating.ErrInvalidColumns)
	})

	t.Run("out of range stored columns fall back to the default", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)
		require.NoError(t, store.SetJSON(ctx, env.store, store.KeySeatingColumns, 1<<40))
		res, err := env.svc.GenerateSeating(ctx, GenerateRequest{})
		require.NoError(t, err)
		assert.Equal(t, 6, res.Columns)
		assert.Len(t, res.Assignment, 4)
	})

	t.Run("negative columns", func(t *testing.T) {
		env := newTestEnv(t, nil)
		env.importRoster(t)
		_, err := env.svc.GenerateSeating(ctx, GenerateRequest{Columns: -1})
		assert.ErrorIs(t, err, seating.ErrInvalidColumns)
	})
}

func TestService_SeatingHistory(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, func(c *config.Config) { c.Seating.HistoryLimit = 2 })
	env.importRoster(t)

	history, err := env.svc.SeatingHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = env.svc.SaveSeating(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.svc.SaveSeating(ctx, map[string]int{"Kim": 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := env.svc.SaveSeating(ctx, map[string]int{"Kim": 1, "Lee": 2})
	require.NoError(t, err)
	assert.Equal(t, SaveResult{Date: "2025-03-14", Overwritten: false}, res)

	res, err = env.svc.SaveSeating(ctx, map[string]int{"Kim": 2, "Lee": 1})
	require.NoError(t, err)
	assert.True(t, res.Overwritten)

	env.clock.Advance(24 * time.Hour)
	_, err = env.svc.SaveSeating(ctx, map[string]int{"Park": 1})
	require.NoError(t, err)
	env.clock.Advance(24 * time.Hour)
	_, err = env.svc.SaveSeating(ctx, map[string]int{"Choi": 1})
	require.NoError(t, err)

	history, err = env.svc.SeatingHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-03-16", history[0].Date)
	assert.Equal(t, "2025-03-15", history[1].Date)

	grid, err := env.svc.LoadSeating(ctx, "2025-03-15", 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Park": 1}, grid.Assignment())

	_, err = env.svc.LoadSeating(ctx, "2025-03-14", 2)
	assert.ErrorIs(t, err, seating.ErrHistoryNotFound)
}

func TestService_GenerateAvoidsPreviousSeats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.importRoster(t)

	prior := map[string]int{"Kim": 1, "Lee": 2, "Choi": 3, "Park": 4}
	_, err := env.svc.SaveSeating(ctx, prior)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		res, err := env.svc.GenerateSeating(ctx, GenerateRequest{Columns: 2})
		require.NoError(t, err)
		same := 0
		for name, seat := range res.Assignment {
			if prior[name] == seat {
				same++
			}
		}
		// Only the last cell filled can be forced back onto its old seat.
		assert.LessOrEqual(t, same, 1)
	}
}

func TestService_Attendance(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.importRoster(t)

	testCases := []struct {
		name        string
		number      int
		category    string
		entry       model.AttendanceEntry
		expectedErr error
	}{
		{name: "Unknown student", number: 99, category: CategoryDomestic, entry: model.AttendanceEntry{StartDate: "2025-03-01"}, expectedErr: ErrStudentNotFound},
		{name: "Menstrual for a male student", number: 2, category: CategoryMenstrual, entry: model.AttendanceEntry{StartDate: "2025-03-01"}, expectedErr: ErrNotEligible},
		{name: "Unknown category", number: 1, category: "sick", entry: model.AttendanceEntry{StartDate: "2025-03-01"}, expectedErr: ErrUnknownCategory},
		{name: "Bad start date", number: 1, category: CategoryDomestic, entry: model.AttendanceEntry{StartDate: "03/01/2025"}, expectedErr: ErrInvalidInput},
		{name: "End before start", number: 1, category: CategoryDomestic, entry: model.AttendanceEntry{StartDate: "2025-03-05", EndDate: "2025-03-01"}, expectedErr: ErrInvalidInput},
		{name: "Menstrual for a female student", number: 1, category: CategoryMenstrual, entry: model.AttendanceEntry{StartDate: "2025-03-03"}},
		{name: "Domestic trip", number: 1, category: CategoryDomestic, entry: model.AttendanceEntry{StartDate: "2025-03-10", EndDate: "2025-03-12", Reason: " family trip "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.AddAttendance(ctx, tc.number, tc.category, tc.entry)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
		})
	}

	summary, err := env.svc.AttendanceSummary(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, summary.Menstrual)
	assert.Equal(t, 1, summary.Menstrual.Used)
	assert.Equal(t, 0, summary.Menstrual.Remaining)
	assert.False(t, summary.Menstrual.Exceeded)
	assert.Equal(t, 3, summary.ExpDomestic.Used)
	assert.Equal(t, 4, summary.ExpDomestic.Remaining)
	require.Len(t, summary.ExpDomestic.Entries, 1)
	entry := summary.ExpDomestic.Entries[0]
	assert.Equal(t, CategoryDomestic, entry.Type)
	assert.Equal(t, "family trip", entry.Reason)

	updated, err := env.svc.UpdateAttendance(ctx, 1, CategoryDomestic, entry.ID, model.AttendanceEntry{StartDate: "2025-03-10", Days: 9})
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)

	summary, err = env.svc.AttendanceSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.ExpDomestic.Used)
	assert.True(t, summary.ExpDomestic.Exceeded)

	_, err = env.svc.UpdateAttendance(ctx, 1, CategoryDomestic, "missing", model.AttendanceEntry{StartDate: "2025-03-10"})
	assert.ErrorIs(t, err, ErrEntryNotFound)

	require.NoError(t, env.svc.DeleteAttendance(ctx, 1, CategoryDomestic, entry.ID))
	assert.ErrorIs(t, env.svc.DeleteAttendance(ctx, 1, CategoryDomestic, entry.ID), ErrEntryNotFound)

	male, err := env.svc.AttendanceSummary(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, male.Menstrual)

	_, err = env.svc.AttendanceSummary(ctx, 42)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestService_AttendanceSummaryCountsCurrentPeriodOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.importRoster(t)

	_, err := env.svc.AddAttendance(ctx, 4, CategoryMenstrual, model.AttendanceEntry{StartDate: "2025-02-20"})
	require.NoError(t, err)
	_, err = env.svc.AddAttendance(ctx, 4, CategoryInternational, model.AttendanceEntry{StartDate: "2024-12-20", EndDate: "2024-12-31"})
	require.NoError(t, err)

	summary, err := env.svc.AttendanceSummary(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Menstrual.Used)
	assert.Equal(t, 0, summary.ExpInternational.Used)
	assert.Equal(t, 30, summary.ExpInternational.Remaining)
}

func TestService_Todos(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, func(c *config.Config) { c.Logs.TodoLimit = 3 })

	_, err := env.svc.AddTodo(ctx, "   ")
	assert.ErrorIs(t, err, ErrEmptyText)

	for _, text := range []string{"one", " two ", "three", "four"} {
		_, err := env.svc.AddTodo(ctx, text)
		require.NoError(t, err)
	}
	todos, err := env.svc.Todos(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	assert.Equal(t, "four", todos[0].Text)
	assert.Equal(t, "two", todos[2].Text)

	id := todos[1].ID
	item, err := env.svc.ToggleTodo(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.Completed)

	item, err = env.svc.UpdateTodo(ctx, id, " three (done) ")
	require.NoError(t, err)
	assert.Equal(t, "three (done)", item.Text)
	assert.True(t, item.Completed)

	_, err = env.svc.UpdateTodo(ctx, id, "")
	assert.ErrorIs(t, err, ErrEmptyText)
	_, err = env.svc.ToggleTodo(ctx, "missing")
	assert.ErrorIs(t, err, ErrTodoNotFound)

	require.NoError(t, env.svc.DeleteTodo(ctx, id))
	assert.ErrorIs(t, env.svc.DeleteTodo(ctx, id), ErrTodoNotFound)

	todos, err = env.svc.Todos(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestService_Messages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, func(c *config.Config) { c.Logs.MessageLimit = 2 })

	_, err := env.svc.AddMessage(ctx, "office", " ")
	assert.ErrorIs(t, err, ErrEmptyText)

	for _, text := range []string{"first", "second", "third"} {
		_, err := env.svc.AddMessage(ctx, "office", text)
		require.NoError(t, err)
	}
	messages, err := env.svc.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "third", messages[0].Original)
	assert.Equal(t, model.MessagePending, messages[0].Status)

	id := messages[0].ID
	require.NoError(t, env.svc.ApplyAnalysis(ctx, id, briefing.Analysis{Todos: []string{"reply"}}))
	require.NoError(t, env.svc.MarkAnalysisFailed(ctx, messages[1].ID, fmt.Errorf("quota")))

	messages, err = env.svc.Messages(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.MessageAnalyzed, messages[0].Status)
	assert.Equal(t, []string{"reply"}, messages[0].Todos)
	assert.Equal(t, []string{}, messages[0].Notices)
	assert.Equal(t, model.MessageFailed, messages[1].Status)

	assert.ErrorIs(t, env.svc.ApplyAnalysis(ctx, "missing", briefing.Analysis{}), ErrMessageNotFound)
	require.NoError(t, env.svc.DeleteMessage(ctx, id))
	assert.ErrorIs(t, env.svc.DeleteMessage(ctx, id), ErrMessageNotFound)
}

func TestService_MessageAnalysisRoundTrip(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: briefing.Analysis{Todos: []string{"send forms"}, Notices: []string{"assembly at 10"}}}
	env := newTestEnv(t, analyzer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, env.svc.Start(ctx))

	msg, err := env.svc.AddMessage(ctx, "office", "Please send the forms. Assembly at 10.")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		messages, err := env.svc.Messages(ctx)
		return err == nil && len(messages) == 1 && messages[0].ID == msg.ID && messages[0].Status == model.MessageAnalyzed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_StartRequeuesPending(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{analysis: briefing.Analysis{Notices: []string{"noted"}}}
	env := newTestEnv(t, analyzer)

	// Written before the workers run, so it sits pending in the store.
	require.NoError(t, store.SetJSON(ctx, env.store, store.KeyMessages, []model.MessageEntry{
		{ID: "old", Original: "left over", Status: model.MessagePending, Todos: []string{}, Notices: []string{}},
	}))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	require.NoError(t, env.svc.Start(runCtx))

	assert.Eventually(t, func() bool {
		messages, err := env.svc.Messages(ctx)
		return err == nil && len(messages) == 1 && messages[0].Status == model.MessageAnalyzed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_Briefing(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without analyzer", func(t *testing.T) {
		env := newTestEnv(t, nil)
		_, err := env.svc.GenerateBriefing(ctx)
		assert.ErrorIs(t, err, briefing.ErrDisabled)
	})

	t.Run("generates and stores", func(t *testing.T) {
		analyzer := &fakeAnalyzer{brief: "Good morning."}
		env := newTestEnv(t, analyzer)
		require.NoError(t, env.svc.SetAdminInfo(ctx, model.AdminInfo{Name: "Ms. Han", Homeroom: "2-3"}))
		_, err := env.svc.AddTodo(ctx, "grade quizzes")
		require.NoError(t, err)

		last, err := env.svc.LastBriefing(ctx)
		require.NoError(t, err)
		assert.Empty(t, last)

		text, err := env.svc.GenerateBriefing(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Good morning.", text)

		last, err = env.svc.LastBriefing(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Good morning.", last)

		prompt := analyzer.prompts[len(analyzer.prompts)-1]
		assert.Contains(t, prompt, "2025-03-14")
		assert.Contains(t, prompt, "Ms. Han")
		assert.Contains(t, prompt, "- grade quizzes")
	})
}

func TestService_Settings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, func(c *config.Config) { c.Briefing.APIKey = "from-config" })

	limits, err := env.svc.AttendanceSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AttendanceSettings{MenstrualLimit: 1, ExpDomesticLimit: 7, ExpInternationalLimit: 30}, limits)

	err = env.svc.SetAttendanceSettings(ctx, model.AttendanceSettings{MenstrualLimit: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, env.svc.SetAttendanceSettings(ctx, model.AttendanceSettings{MenstrualLimit: 2, ExpDomesticLimit: 5, ExpInternationalLimit: 20}))
	limits, err = env.svc.AttendanceSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, limits.MenstrualLimit)

	// A corrupt blob falls back to the defaults.
	require.NoError(t, env.store.Set(ctx, store.KeyAdminInfo, []byte(`"[object Object]"`)))
	info, err := env.svc.AdminInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.AdminInfo{}, info)

	key, err := APIKeySource(env.store, "from-config")(ctx)
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	require.NoError(t, env.svc.SetAPIKey(ctx, " stored "))
	key, err = APIKeySource(env.store, "from-config")(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stored", key)

	ok, err := env.svc.HasAPIKey(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
