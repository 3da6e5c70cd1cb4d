package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/interfaces"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

type RosterUseCase struct {
	repo        interfaces.Repository
	cache       interfaces.RosterCache
	concurrency int
	clock       func() time.Time
}

func NewRosterUseCase(repo interfaces.Repository, cache interfaces.RosterCache, concurrency int, clock func() time.Time) *RosterUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RosterUseCase{
		repo:        repo,
		cache:       cache,
		concurrency: concurrency,
		clock:       clock,
	}
}

// KeySymptoms joins the names of symptoms with a positive severity
func KeySymptoms(s *model.Submission) string {
	if s == nil {
		return ""
	}
	names := make([]string, 0, len(s.Symptoms))
	for _, sym := range s.Symptoms {
		if sym.Severity > 0 {
			names = append(names, sym.Name)
		}
	}
	return strings.Join(names, ", ")
}

func rosterEntry(p *model.Patient, latest *model.Submission) *model.RosterEntry {
	entry := &model.RosterEntry{Patient: *p.Clone()}
	if latest == nil {
		return entry
	}

	entry.LatestSubmissionID = latest.ID
	entry.ActionTaken = latest.ActionTaken
	entry.KeySymptoms = KeySymptoms(latest)
	if entry.LastSubmissionDate == nil {
		ts := latest.Timestamp
		entry.LastSubmissionDate = &ts
	}
	return entry
}

// Load builds a fresh roster and publishes it to the cache. Patient lookups
// run concurrently. A failed lookup degrades its row instead of failing the
// roster. The result keeps the order of the role query.
func (uc *RosterUseCase) Load(ctx context.Context) (*model.RosterSnapshot, error) {
	patients, err := uc.repo.Patient().ListByRole(ctx, types.UserRolePatient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list patients")
	}

	entries := make([]*model.RosterEntry, len(patients))

	var eg errgroup.Group
	eg.SetLimit(uc.concurrency)
	for i, p := range patients {
		eg.Go(func() error {
			latest, err := uc.repo.Submission().GetLatest(ctx, p.ID)
			if err != nil {
				logging.From(ctx).Warn("failed to get latest submission",
					"patient_id", p.ID,
					"error", err.Error(),
				)
				entries[i] = &model.RosterEntry{Patient: *p.Clone(), Degraded: true}
				return nil
			}
			entries[i] = rosterEntry(p, latest)
			return nil
		})
	}
	_ = eg.Wait()

	snapshot := &model.RosterSnapshot{
		Entries:     entries,
		GeneratedAt: uc.clock(),
	}

	if err := uc.cache.Put(ctx, snapshot); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to publish roster snapshot"), "roster cache write failed")
	}

	logging.From(ctx).Info("roster loaded", "patients", len(entries))
	return snapshot, nil
}

// Snapshot returns the cached roster, loading one when nothing is cached yet
func (uc *RosterUseCase) Snapshot(ctx context.Context) (*model.RosterSnapshot, error) {
	snapshot, err := uc.cache.Get(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to read roster snapshot"), "roster cache read failed")
	}
	if snapshot != nil {
		return snapshot, nil
	}
	return uc.Load(ctx)
}

// RosterFilter narrows roster entries. Zero values match everything.
type RosterFilter struct {
	// CancerTypes matches any listed type, case-insensitively
	CancerTypes []string
	// Query is a case-insensitive substring over the displayed columns
	Query string
}

// Filter returns the entries matching f in their roster order
func Filter(entries []*model.RosterEntry, f RosterFilter) []*model.RosterEntry {
	wanted := make(map[string]struct{}, len(f.CancerTypes))
	for _, t := range f.CancerTypes {
		if t = strings.TrimSpace(t); t != "" {
			wanted[strings.ToLower(t)] = struct{}{}
		}
	}
	query := strings.ToLower(strings.TrimSpace(f.Query))

	matched := []*model.RosterEntry{}
	for _, e := range entries {
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToLower(e.CancerType)]; !ok {
				continue
			}
		}
		if query != "" && !entryContains(e, query) {
			continue
		}
		matched = append(matched, e)
	}
	return matched
}

func entryContains(e *model.RosterEntry, query string) bool {
	for _, field := range []string{
		e.StudyID(),
		e.CancerType,
		e.TriageLevel.Label(),
		e.KeySymptoms,
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
