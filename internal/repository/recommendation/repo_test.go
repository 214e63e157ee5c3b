package recommendation

import (
	"context"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/satvik-shyam/placematch/internal/domain"
)

// newTestRepo backs the repo with a sqlmock connection and captures every
// statement it issues, so tests can assert on the SQL itself: the list
// predicates and the upsert column set are the behavior under test.
func newTestRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, *[]string) {
	t.Helper()

	var captured []string
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(
		sqlmock.QueryMatcherFunc(func(_, actualSQL string) error {
			captured = append(captured, actualSQL)
			return nil
		}),
	))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return New(conn), mock, &captured
}

func lastStatement(t *testing.T, captured *[]string) string {
	t.Helper()
	if len(*captured) == 0 {
		t.Fatal("no statement captured")
	}
	return (*captured)[len(*captured)-1]
}

func TestEnsureSchema_UniquePerPair(t *testing.T) {
	repo, mock, captured := newTestRepo(t)
	mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ddl := lastStatement(t, captured)
	if !strings.Contains(ddl, "UNIQUE (candidate_id, job_id)") {
		t.Fatalf("schema must be unique per (candidate, job), got:\n%s", ddl)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpsert_NeverTouchesFlags(t *testing.T) {
	repo, mock, captured := newTestRepo(t)
	expiresAt := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("").
		WithArgs(int64(1), int64(10), 0.92, 100.0, true, "Overall match: 92%.", expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), domain.Recommendation{
		CandidateID:     1,
		JobID:           10,
		MatchScore:      0.92,
		SkillMatchPct:   100.0,
		ExperienceMatch: true,
		Reason:          "Overall match: 92%.",
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := lastStatement(t, captured)
	if !strings.Contains(query, "ON CONFLICT (candidate_id, job_id) DO UPDATE") {
		t.Fatalf("upsert must be conflict-keyed on (candidate_id, job_id), got:\n%s", query)
	}
	// Regeneration refreshes scores and expiry only; a viewed or applied
	// mark must survive any number of upserts.
	if strings.Contains(query, "is_viewed") || strings.Contains(query, "is_applied") {
		t.Fatalf("upsert must not reference the viewed/applied flags, got:\n%s", query)
	}
	if !strings.Contains(query, "created_at = NOW()") {
		t.Fatalf("upsert must refresh created_at, got:\n%s", query)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func listRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"candidate_id", "job_id", "title", "company_name",
		"match_score", "skill_match_pct", "experience_match",
		"recommendation_reason", "is_viewed", "is_applied",
		"created_at", "expires_at",
	}).AddRow(
		int64(1), int64(10), "Backend Engineer", "Acme",
		0.92, 100.0, true,
		"Overall match: 92%.", true, false,
		now, now.Add(time.Hour),
	)
}

func TestListByCandidate_FiltersExpiredClosedAndApplied(t *testing.T) {
	repo, mock, captured := newTestRepo(t)
	now := time.Now()

	mock.ExpectQuery("").WithArgs(int64(1)).WillReturnRows(listRows(now))

	recs, err := repo.ListByCandidate(context.Background(), 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(recs))
	}
	if recs[0].CompanyName != "Acme" || recs[0].JobTitle != "Backend Engineer" {
		t.Fatalf("join columns not mapped: %+v", recs[0])
	}
	if !recs[0].IsViewed || recs[0].IsApplied {
		t.Fatalf("flag columns not mapped: %+v", recs[0])
	}

	query := lastStatement(t, captured)
	for _, predicate := range []string{
		"r.expires_at > NOW()", // expired rows never surface, whatever their score
		"j.status = 'open'",    // closed jobs drop out of existing lists
		"r.is_applied = FALSE", // default listing hides applied rows
		"ORDER BY r.match_score DESC",
	} {
		if !strings.Contains(query, predicate) {
			t.Fatalf("list query missing %q, got:\n%s", predicate, query)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListByCandidate_IncludeApplied(t *testing.T) {
	repo, mock, captured := newTestRepo(t)

	mock.ExpectQuery("").WithArgs(int64(1)).WillReturnRows(listRows(time.Now()))

	if _, err := repo.ListByCandidate(context.Background(), 1, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	query := lastStatement(t, captured)
	if strings.Contains(query, "is_applied = FALSE") {
		t.Fatalf("include_applied must drop the applied filter, got:\n%s", query)
	}
	// Expiry and open-job filtering hold regardless of the applied toggle.
	if !strings.Contains(query, "r.expires_at > NOW()") || !strings.Contains(query, "j.status = 'open'") {
		t.Fatalf("expiry/open filters must always apply, got:\n%s", query)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkViewed_SetsOnlyViewedFlag(t *testing.T) {
	repo, mock, captured := newTestRepo(t)

	mock.ExpectExec("").WithArgs(int64(1), int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.MarkViewed(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true for an updated row")
	}

	query := lastStatement(t, captured)
	if !strings.Contains(query, "SET is_viewed = TRUE") {
		t.Fatalf("expected is_viewed update, got:\n%s", query)
	}
	if strings.Contains(query, "is_applied") {
		t.Fatalf("viewing must not touch is_applied, got:\n%s", query)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkApplied_MissingRow(t *testing.T) {
	repo, mock, captured := newTestRepo(t)

	mock.ExpectExec("").WithArgs(int64(1), int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkApplied(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when no row matches")
	}

	query := lastStatement(t, captured)
	if !strings.Contains(query, "SET is_applied = TRUE") {
		t.Fatalf("expected is_applied update, got:\n%s", query)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
