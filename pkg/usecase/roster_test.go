package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/service/rostercache"
	"github.com/oncowatch/oncowatch/pkg/usecase"
)

func TestKeySymptoms(t *testing.T) {
	testCases := []struct {
		name     string
		sub      *model.Submission
		expected string
	}{
		{"no submission", nil, ""},
		{"no positive severity", sub("s", at(0), types.TriageLevelGreen, sym("Pain", 0)), ""},
		{
			name:     "positive severities in order",
			sub:      sub("s", at(0), types.TriageLevelAmber, sym("Pain", 2), sym("Nausea", 0), sym("Fever", 1)),
			expected: "Pain, Fever",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.S(t, usecase.KeySymptoms(tc.sub)).Equal(tc.expected)
		})
	}
}

func TestRosterUseCase_Load(t *testing.T) {
	ctx := context.Background()
	stored := at(1)

	repo := newStubRepo()
	seedPatients(t, repo,
		&model.Patient{ID: "p-1", DisplayName: "ONC_001", CancerType: "breast"},
		&model.Patient{ID: "p-2", DisplayName: "ONC_002", CancerType: "lung", LastSubmissionDate: &stored},
		&model.Patient{ID: "p-3", DisplayName: "ONC_003"},
		&model.Patient{ID: "p-4", DisplayName: "ONC_004"},
		&model.Patient{ID: "c-1", Role: types.UserRoleClinician},
	)
	seedSubmissions(t, repo,
		forPatient("p-1", sub("s-1", at(0), types.TriageLevelAmber, sym("Pain", 1))),
		forPatient("p-1", sub("s-2", at(3), types.TriageLevelRed, sym("Pain", 3), sym("Nausea", 0), sym("Fever", 2))),
		forPatient("p-2", sub("s-3", at(2), types.TriageLevelGreen, sym("Fatigue", 1))),
		forPatient("p-4", sub("s-4", at(2), types.TriageLevelGreen, sym("Fatigue", 1))),
	)

	// earlier rows finish last
	repo.submissions.delays["p-1"] = 60 * time.Millisecond
	repo.submissions.delays["p-2"] = 30 * time.Millisecond
	repo.submissions.failures["p-4"] = true

	cache := rostercache.NewMemory()
	uc := usecase.NewRosterUseCase(repo, cache, 4, func() time.Time { return at(10) })

	snapshot, err := uc.Load(ctx)
	gt.NoError(t, err).Required()
	gt.B(t, snapshot.GeneratedAt.Equal(at(10))).True()
	gt.A(t, snapshot.Entries).Length(4).Required()

	t.Run("order follows the role query", func(t *testing.T) {
		ids := []model.PatientID{}
		for _, e := range snapshot.Entries {
			ids = append(ids, e.ID)
		}
		gt.V(t, ids).Equal([]model.PatientID{"p-1", "p-2", "p-3", "p-4"})
	})

	t.Run("latest submission drives derived fields", func(t *testing.T) {
		e := snapshot.Entries[0]
		gt.S(t, e.KeySymptoms).Equal("Pain, Fever")
		gt.V(t, e.LatestSubmissionID).Equal(model.SubmissionID("s-2"))
		gt.B(t, e.LastSubmissionDate.Equal(at(3))).True()
	})

	t.Run("stored last submission date wins", func(t *testing.T) {
		gt.B(t, snapshot.Entries[1].LastSubmissionDate.Equal(stored)).True()
	})

	t.Run("patient without submissions", func(t *testing.T) {
		e := snapshot.Entries[2]
		gt.S(t, e.KeySymptoms).Equal("")
		gt.V(t, e.LastSubmissionDate).Nil()
		gt.B(t, e.Degraded).False()
	})

	t.Run("failed lookup degrades only its row", func(t *testing.T) {
		e := snapshot.Entries[3]
		gt.B(t, e.Degraded).True()
		gt.S(t, e.KeySymptoms).Equal("")
		gt.S(t, e.StudyID()).Equal("ONC_004")
	})

	t.Run("snapshot is published", func(t *testing.T) {
		cached, err := cache.Get(ctx)
		gt.NoError(t, err).Required()
		gt.V(t, cached).Equal(snapshot)
	})
}

func TestRosterUseCase_Snapshot(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	seedPatients(t, repo, &model.Patient{ID: "p-1"})

	cache := rostercache.NewMemory()
	uc := usecase.NewRosterUseCase(repo, cache, 1, func() time.Time { return at(0) })

	first, err := uc.Snapshot(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, first.Entries).Length(1)

	// later patients are not visible until the next load
	seedPatients(t, repo, &model.Patient{ID: "p-2"})
	cached, err := uc.Snapshot(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, cached.Entries).Length(1)

	reloaded, err := uc.Load(ctx)
	gt.NoError(t, err).Required()
	gt.A(t, reloaded.Entries).Length(2)
}

func TestFilter(t *testing.T) {
	entries := []*model.RosterEntry{
		{Patient: model.Patient{ID: "1", DisplayName: "ONC_UHL001", CancerType: "Breast", TriageLevel: types.TriageLevelRed, KeySymptoms: "Pain"}},
		{Patient: model.Patient{ID: "2", DisplayName: "ONC_UHL002", CancerType: "lung", KeySymptoms: "Fever, Nausea"}},
		{Patient: model.Patient{ID: "3", CancerType: "melanoma", TriageLevel: types.TriageLevelHardRed}},
	}

	ids := func(es []*model.RosterEntry) []model.PatientID {
		out := []model.PatientID{}
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	testCases := []struct {
		name     string
		filter   usecase.RosterFilter
		expected []model.PatientID
	}{
		{"no filter", usecase.RosterFilter{}, []model.PatientID{"1", "2", "3"}},
		{"cancer type is case-insensitive", usecase.RosterFilter{CancerTypes: []string{"breast"}}, []model.PatientID{"1"}},
		{"any listed cancer type", usecase.RosterFilter{CancerTypes: []string{"lung", " Melanoma "}}, []model.PatientID{"2", "3"}},
		{"query over study id", usecase.RosterFilter{Query: "uhl002"}, []model.PatientID{"2"}},
		{"query over key symptoms", usecase.RosterFilter{Query: "nausea"}, []model.PatientID{"2"}},
		{"query over triage level", usecase.RosterFilter{Query: "red"}, []model.PatientID{"1", "3"}},
		{"query over absent values", usecase.RosterFilter{Query: "n/a"}, []model.PatientID{"2", "3"}},
		{"filters combine", usecase.RosterFilter{CancerTypes: []string{"breast", "lung"}, Query: "fever"}, []model.PatientID{"2"}},
		{"no match", usecase.RosterFilter{Query: "zzz"}, []model.PatientID{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.V(t, ids(usecase.Filter(entries, tc.filter))).Equal(tc.expected)
		})
	}
}
