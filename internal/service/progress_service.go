package service

import (
	"context"
	"fmt"
	"strings"

	"coachhub/internal/entities"
	apperrors "coachhub/internal/errors"
)

type CurriculumWeek struct {
	Title  string
	Drills []string
}

type CurriculumPhase struct {
	Title string
	Weeks []CurriculumWeek
}

// DefaultCurriculum is the academy programme every member follows.
var DefaultCurriculum = []CurriculumPhase{
	{
		Title: "Foundations",
		Weeks: []CurriculumWeek{
			{Title: "Grip and stance", Drills: []string{"p1w1-grip", "p1w1-stance"}},
			{Title: "Contact point", Drills: []string{"p1w2-shadow-swing", "p1w2-drop-feed"}},
		},
	},
	{
		Title: "Consistency",
		Weeks: []CurriculumWeek{
			{Title: "Rally tolerance", Drills: []string{"p2w1-crosscourt", "p2w1-down-the-line"}},
			{Title: "Footwork", Drills: []string{"p2w2-split-step", "p2w2-recovery"}},
		},
	},
	{
		Title: "Match play",
		Weeks: []CurriculumWeek{
			{Title: "Serve and return", Drills: []string{"p3w1-serve-targets", "p3w1-return-block"}},
			{Title: "Point construction", Drills: []string{"p3w2-patterns", "p3w2-tiebreak"}},
		},
	},
}

type ProgressStore interface {
	ListCompletedDrills(ctx context.Context, email string) ([]string, error)
	MarkDrillCompleted(ctx context.Context, email, drillID string) error
}

type ProgressService struct {
	store      ProgressStore
	curriculum []CurriculumPhase
}

func NewProgressService(store ProgressStore, curriculum []CurriculumPhase) *ProgressService {
	if curriculum == nil {
		curriculum = DefaultCurriculum
	}
	return &ProgressService{store: store, curriculum: curriculum}
}

func (s *ProgressService) GetProgress(ctx context.Context, email string) (*entities.ProgressResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	done, err := s.completed(ctx, email)
	if err != nil {
		return nil, err
	}
	return BuildProgress(email, s.curriculum, done), nil
}

// CompleteDrill records a drill as done. Drills of a locked week are refused.
func (s *ProgressService) CompleteDrill(ctx context.Context, req entities.CompleteDrillRequest) (*entities.ProgressResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apperrors.NewValidationError("email", "is required")
	}
	if req.DrillID == "" {
		return nil, apperrors.NewValidationError("drillId", "is required")
	}

	done, err := s.completed(ctx, email)
	if err != nil {
		return nil, err
	}
	progress := BuildProgress(email, s.curriculum, done)

	week, ok := findDrillWeek(progress.Weeks, req.DrillID)
	if !ok {
		return nil, fmt.Errorf("drill '%s': %w", req.DrillID, apperrors.ErrUnknownDrill)
	}
	if !week.Unlocked {
		return nil, fmt.Errorf("phase %d week %d: %w", week.Phase, week.Week, apperrors.ErrWeekLocked)
	}
	if done[req.DrillID] {
		return progress, nil
	}

	if err := s.store.MarkDrillCompleted(ctx, email, req.DrillID); err != nil {
		return nil, err
	}
	done[req.DrillID] = true
	return BuildProgress(email, s.curriculum, done), nil
}

func (s *ProgressService) completed(ctx context.Context, email string) (map[string]bool, error) {
	ids, err := s.store.ListCompletedDrills(ctx, email)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}

// BuildProgress walks the curriculum in order. The first week is always
// unlocked; every later week, across phase boundaries, unlocks once all drills
// of the week before it are done. The current week is the first unlocked week
// that is not complete, or the last week when everything is done.
func BuildProgress(email string, curriculum []CurriculumPhase, done map[string]bool) *entities.ProgressResponse {
	resp := &entities.ProgressResponse{Email: email, Weeks: []entities.WeekProgress{}}
	prevComplete := true
	for p, phase := range curriculum {
		for w, week := range phase.Weeks {
			wp := entities.WeekProgress{
				Phase:           p + 1,
				Week:            w + 1,
				Title:           week.Title,
				Unlocked:        prevComplete,
				Drills:          week.Drills,
				CompletedDrills: []string{},
			}
			for _, d := range week.Drills {
				if done[d] {
					wp.CompletedDrills = append(wp.CompletedDrills, d)
				}
			}
			wp.Completed = len(wp.CompletedDrills) == len(week.Drills)
			if wp.Unlocked && !wp.Completed && resp.CurrentPhase == 0 {
				resp.CurrentPhase, resp.CurrentWeek = wp.Phase, wp.Week
			}
			prevComplete = wp.Unlocked && wp.Completed
			resp.Weeks = append(resp.Weeks, wp)
		}
	}
	if resp.CurrentPhase == 0 && len(resp.Weeks) > 0 {
		last := resp.Weeks[len(resp.Weeks)-1]
		resp.CurrentPhase, resp.CurrentWeek = last.Phase, last.Week
	}
	return resp
}

func findDrillWeek(weeks []entities.WeekProgress, drillID string) (entities.WeekProgress, bool) {
	for _, w := range weeks {
		for _, d := range w.Drills {
			if d == drillID {
				return w, true
			}
		}
	}
	return entities.WeekProgress{}, false
}
