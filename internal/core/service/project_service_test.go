package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
)

type stubProjectRepo struct {
	created   []*domain.Project
	updated   []*domain.Project
	byID      map[int64]*domain.Project
	filter    ports.ProjectSearchFilter
	limit     int
	createErr error
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: map[int64]*domain.Project{}}
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	p.ID = int64(len(r.created) + 1)
	r.created = append(r.created, p)
	r.byID[p.ID] = p
	return p.ID, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return p, nil
}

func (r *stubProjectRepo) ListPopular(_ context.Context, limit int) ([]domain.Project, error) {
	r.limit = limit
	return nil, nil
}

func (r *stubProjectRepo) Search(_ context.Context, f ports.ProjectSearchFilter) ([]domain.Project, error) {
	r.filter = f
	return []domain.Project{}, nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	r.updated = append(r.updated, p)
	return nil
}

func validCreateInput() ports.CreateProjectInput {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return ports.CreateProjectInput{
		ManagerID: 3,
		Title:     "Solar Kiosk",
		Goal:      1000,
		FAQ:       "Where? Downtown.",
		StartDate: start,
		EndDate:   start.AddDate(0, 2, 0),
		Tags:      []string{"energy", " energy ", "", "community"},
		Rewards:   []ports.RewardInput{{Description: "Sticker", MinDonation: 5}},
	}
}

func TestProjectService_Create(t *testing.T) {
	repo := newStubProjectRepo()
	svc := NewProjectService(repo, nopLogger())

	id, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	p := repo.created[0]
	if p.Status != domain.ProjectActive {
		t.Errorf("expected active status, got %s", p.Status)
	}
	if p.RaisedAmount != 0 {
		t.Errorf("expected zero raised amount, got %v", p.RaisedAmount)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "energy" || p.Tags[1] != "community" {
		t.Errorf("expected deduplicated tags, got %v", p.Tags)
	}
	if len(p.Rewards) != 1 || p.Rewards[0].MinDonation != 5 {
		t.Errorf("unexpected rewards: %+v", p.Rewards)
	}
}

func TestProjectService_Create_Validation(t *testing.T) {
	svc := NewProjectService(newStubProjectRepo(), nopLogger())

	mutators := map[string]func(*ports.CreateProjectInput){
		"empty title": func(in *ports.CreateProjectInput) { in.Title = " " },
		"zero goal":   func(in *ports.CreateProjectInput) { in.Goal = 0 },
		"no end date": func(in *ports.CreateProjectInput) { in.EndDate = time.Time{} },
		"end < start": func(in *ports.CreateProjectInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) },
		"bad reward":  func(in *ports.CreateProjectInput) { in.Rewards = []ports.RewardInput{{MinDonation: 1}} },
	}
	for name, mutate := range mutators {
		in := validCreateInput()
		mutate(&in)
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestProjectService_Create_RepoFailure(t *testing.T) {
	repo := newStubProjectRepo()
	repo.createErr = errors.New("tx aborted")
	svc := NewProjectService(repo, nopLogger())

	if _, err := svc.Create(context.Background(), validCreateInput()); err == nil {
		t.Fatal("expected error")
	}
}

func TestProjectService_Popular_UsesLimit(t *testing.T) {
	repo := newStubProjectRepo()
	svc := NewProjectService(repo, nopLogger())

	if _, err := svc.Popular(context.Background()); err != nil {
		t.Fatalf("popular: %v", err)
	}
	if repo.limit != ports.PopularLimit {
		t.Errorf("expected limit %d, got %d", ports.PopularLimit, repo.limit)
	}
}

func TestProjectService_Search(t *testing.T) {
	repo := newStubProjectRepo()
	svc := NewProjectService(repo, nopLogger())

	if _, err := svc.Search(context.Background(), ports.ProjectSearchFilter{Query: "  ", Tags: []string{""}}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty search, got %v", err)
	}

	if _, err := svc.Search(context.Background(), ports.ProjectSearchFilter{Query: " solar "}); err != nil {
		t.Fatalf("search: %v", err)
	}
	if repo.filter.Query != "solar" {
		t.Errorf("expected trimmed query, got %q", repo.filter.Query)
	}

	if _, err := svc.Search(context.Background(), ports.ProjectSearchFilter{Tags: []string{"art", "art"}}); err != nil {
		t.Fatalf("tag search: %v", err)
	}
	if len(repo.filter.Tags) != 1 {
		t.Errorf("expected deduplicated tags, got %v", repo.filter.Tags)
	}
}

func TestProjectService_Update(t *testing.T) {
	repo := newStubProjectRepo()
	svc := NewProjectService(repo, nopLogger())
	id, _ := svc.Create(context.Background(), validCreateInput())

	in := ports.UpdateProjectInput{
		ID: id, Title: "Solar Kiosk v2", FAQ: "faq", Goal: 2000, Raised: 150,
		StartDate: time.Now(), EndDate: time.Now().AddDate(0, 1, 0),
	}
	if err := svc.Update(context.Background(), in); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updated[0].RaisedAmount != 150 {
		t.Errorf("expected raised amount replaced, got %v", repo.updated[0].RaisedAmount)
	}

	in.ID = 999
	if err := svc.Update(context.Background(), in); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	in.ID = id
	in.Raised = -1
	if err := svc.Update(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for negative raised, got %v", err)
	}
}

func TestProjectService_Update_EndBeforeStart(t *testing.T) {
	repo := newStubProjectRepo()
	svc := NewProjectService(repo, nopLogger())
	id, _ := svc.Create(context.Background(), validCreateInput())

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	err := svc.Update(context.Background(), ports.UpdateProjectInput{
		ID: id, Title: "t", FAQ: "f", Goal: 100,
		StartDate: start, EndDate: start.AddDate(0, 0, -1),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("repository must not be called, got %d updates", len(repo.updated))
	}
}

type stubCommentRepo struct {
	created []*domain.Comment
	err     error
}

func (r *stubCommentRepo) ListByProject(_ context.Context, _ int64) ([]domain.Comment, error) {
	return nil, nil
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.created = append(r.created, c)
	return int64(len(r.created)), nil
}

func TestCommentService_Add(t *testing.T) {
	repo := &stubCommentRepo{}
	svc := NewCommentService(repo)

	id, err := svc.Add(context.Background(), 1, 10, "  great idea ")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if id != 1 || repo.created[0].Content != "great idea" {
		t.Errorf("unexpected comment: id=%d %+v", id, repo.created[0])
	}

	if _, err := svc.Add(context.Background(), 1, 10, "   "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for blank content, got %v", err)
	}

	repo.err = domain.ErrProjectNotFound
	if _, err := svc.Add(context.Background(), 1, 99, "hi"); !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

type stubRatingRepo struct {
	ratings []float64
	err     error
}

func (r *stubRatingRepo) Submit(_ context.Context, _ int64, rating float64) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.ratings = append(r.ratings, rating)
	var sum float64
	for _, v := range r.ratings {
		sum += v
	}
	return sum / float64(len(r.ratings)), nil
}

func TestRatingService_Submit(t *testing.T) {
	repo := &stubRatingRepo{}
	svc := NewRatingService(repo, nopLogger())

	_, _ = svc.Submit(context.Background(), 10, 4)
	avg, err := svc.Submit(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if avg != 3 {
		t.Errorf("expected average 3, got %v", avg)
	}

	if _, err := svc.Submit(context.Background(), 10, math.NaN()); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for NaN, got %v", err)
	}

	repo.err = domain.ErrManagerNotFound
	if _, err := svc.Submit(context.Background(), 10, 5); !errors.Is(err, domain.ErrManagerNotFound) {
		t.Errorf("expected ErrManagerNotFound, got %v", err)
	}
}
