package patient

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/genreport/genreport/internal/platform/db"
)

// recordingTx captures every statement routed through the transaction and
// fails the first one matching failOn. The embedded interface panics if a
// test hits a method it does not stub.
type recordingTx struct {
	pgx.Tx
	execs      []string
	failOn     string
	committed  bool
	rolledBack bool
}

func (t *recordingTx) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	if t.failOn != "" && strings.Contains(sql, t.failOn) {
		return pgconn.CommandTag{}, errors.New("deadlock detected")
	}
	return pgconn.CommandTag{}, nil
}

func (t *recordingTx) Commit(_ context.Context) error   { t.committed = true; return nil }
func (t *recordingTx) Rollback(_ context.Context) error { t.rolledBack = true; return nil }

func (t *recordingTx) Begin(_ context.Context) (pgx.Tx, error) { return t, nil }

func (t *recordingTx) executed(fragment string) bool {
	for _, sql := range t.execs {
		if strings.Contains(sql, fragment) {
			return true
		}
	}
	return false
}

func multiSectionReport() *Report {
	return &Report{
		ID: "r1",
		FamilyGeneticImpact: &FamilyGeneticImpactSection{
			Description: "inherited cardiovascular risk",
			Impacts: []FamilyGeneticImpact{
				{Gene: "MTHFR", NormalAlleles: "CC", YourResult: "CT"},
			},
		},
		HealthSummary: &HealthSummary{
			Description: "overview",
			Data:        []HealthSummaryEntry{{Title: "BDNF", Description: "normal"}},
		},
	}
}

func TestSaveReportSectionFailureRollsBackTransaction(t *testing.T) {
	tx := &recordingTx{failOn: "INSERT INTO health_summary_entries"}
	r := &repoPG{} // no pool: every statement must ride the transaction

	err := db.WithTx(context.Background(), tx, func(ctx context.Context) error {
		return r.saveReport(ctx, "p1", multiSectionReport())
	})
	if err == nil || !strings.Contains(err.Error(), "health summary") {
		t.Fatalf("error = %v, want health summary failure", err)
	}
	if !tx.rolledBack || tx.committed {
		t.Errorf("rolledBack = %v, committed = %v", tx.rolledBack, tx.committed)
	}

	// The family-impact writes ran before the failure, on the same
	// transaction, so the rollback discards them too.
	if !tx.executed("family_impact_description") {
		t.Error("family impact description update never reached the transaction")
	}
	if !tx.executed("INSERT INTO family_genetic_impacts") {
		t.Error("family impact rows never reached the transaction")
	}

	// Nothing runs past the failing statement.
	last := tx.execs[len(tx.execs)-1]
	if !strings.Contains(last, "INSERT INTO health_summary_entries") {
		t.Errorf("statements continued after the failure: %q", last)
	}
}

func TestSaveReportCommitsWhenAllSectionsSucceed(t *testing.T) {
	tx := &recordingTx{}
	r := &repoPG{}

	err := db.WithTx(context.Background(), tx, func(ctx context.Context) error {
		return r.saveReport(ctx, "p1", multiSectionReport())
	})
	if err != nil {
		t.Fatalf("saveReport() error = %v", err)
	}
	if !tx.committed || tx.rolledBack {
		t.Errorf("committed = %v, rolledBack = %v", tx.committed, tx.rolledBack)
	}
	if !tx.executed("INSERT INTO health_summary_entries") {
		t.Error("health summary rows never written")
	}
}
