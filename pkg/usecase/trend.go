package usecase

import (
	"slices"
	"time"

	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
)

// chartColors is the number of series colours the chart palette cycles through
const chartColors = 5

// DistinctSymptoms returns every symptom name reported across submissions in
// first-seen order. The order drives chart series colour assignment.
func DistinctSymptoms(submissions []*model.Submission) []string {
	seen := make(map[string]struct{})
	names := []string{}
	for _, s := range submissions {
		for _, sym := range s.Symptoms {
			if _, ok := seen[sym.Name]; ok {
				continue
			}
			seen[sym.Name] = struct{}{}
			names = append(names, sym.Name)
		}
	}
	return names
}

// sortedByTimestamp returns a copy ordered by timestamp. Submissions sharing
// a timestamp keep their input order.
func sortedByTimestamp(submissions []*model.Submission) []*model.Submission {
	sorted := slices.Clone(submissions)
	slices.SortStableFunc(sorted, func(a, b *model.Submission) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

// BuildTimeline forward-fills severities across submissions. Each point
// starts from the previous point's severities and overwrites only the
// symptoms its submission reports. A symptom never reported so far is nil.
func BuildTimeline(submissions []*model.Submission, knownSymptoms []string) []model.TimelinePoint {
	timeline := make([]model.TimelinePoint, 0, len(submissions))

	current := make(map[string]*int, len(knownSymptoms))
	for _, name := range knownSymptoms {
		current[name] = nil
	}

	for _, s := range sortedByTimestamp(submissions) {
		next := make(map[string]*int, len(current))
		for name, v := range current {
			next[name] = v
		}
		for _, sym := range s.Symptoms {
			severity := sym.Severity
			next[sym.Name] = &severity
		}

		timeline = append(timeline, model.TimelinePoint{
			SubmissionID: s.ID,
			Timestamp:    s.Timestamp,
			Severities:   next,
		})
		current = next
	}

	return timeline
}

// BucketByWindow places each timeline point in every window whose maximum
// age covers it. Windows are nested, so a recent point lands in all of them.
// Labels are rendered in now's location.
func BucketByWindow(timeline []model.TimelinePoint, now time.Time) map[types.Window][]model.WindowPoint {
	buckets := make(map[types.Window][]model.WindowPoint, len(types.AllWindows()))
	for _, w := range types.AllWindows() {
		buckets[w] = []model.WindowPoint{}
	}

	for _, p := range timeline {
		ageDays := now.Sub(p.Timestamp).Hours() / 24
		for _, w := range types.AllWindows() {
			if ageDays > w.MaxAgeDays() {
				continue
			}
			buckets[w] = append(buckets[w], model.WindowPoint{
				TimelinePoint: p,
				Label:         p.Timestamp.In(now.Location()).Format(w.LabelLayout()),
			})
		}
	}

	return buckets
}

// Escalations returns the Red and Hard Red submissions in their input order
func Escalations(submissions []*model.Submission) []*model.Submission {
	escalated := []*model.Submission{}
	for _, s := range submissions {
		if s.TriageLevel.IsEscalation() {
			escalated = append(escalated, s)
		}
	}
	return escalated
}

// ComputeTrend runs the whole trend derivation for one patient's submissions
func ComputeTrend(submissions []*model.Submission, now time.Time) *model.Trend {
	names := DistinctSymptoms(sortedByTimestamp(submissions))

	series := make([]model.SymptomSeries, len(names))
	for i, name := range names {
		series[i] = model.SymptomSeries{Name: name, ColorIndex: i%chartColors + 1}
	}

	timeline := BuildTimeline(submissions, names)

	return &model.Trend{
		Symptoms:    series,
		Timeline:    timeline,
		Windows:     BucketByWindow(timeline, now),
		Escalations: Escalations(submissions),
		ComputedAt:  now,
	}
}
