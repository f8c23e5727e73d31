// Package memory provides in-process repository implementations used for
// local development without MongoDB and as test doubles.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"formalyze/internal/model"
	"formalyze/internal/repository"
)

type surveyRepo struct {
	mu      sync.RWMutex
	surveys map[string]model.Survey
}

// NewSurveyRepo creates an empty in-memory survey repository
func NewSurveyRepo() repository.SurveyRepo {
	return &surveyRepo{surveys: map[string]model.Survey{}}
}

func (r *surveyRepo) Create(_ context.Context, s *model.Survey) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, ok := r.surveys[s.ID]; ok {
		return "", repository.ErrDuplicate
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	r.surveys[s.ID] = cloneSurvey(s)
	return s.ID, nil
}

func (r *surveyRepo) GetByID(_ context.Context, id string) (*model.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, nil
	}
	out := cloneSurvey(&s)
	return &out, nil
}

func (r *surveyRepo) ListByOwner(_ context.Context, ownerID string) ([]*model.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Survey{}
	for _, s := range r.surveys {
		if s.CreatedBy == ownerID {
			cp := cloneSurvey(&s)
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *surveyRepo) Update(_ context.Context, s *model.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.surveys[s.ID]
	if !ok {
		return repository.ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.CreatedBy = existing.CreatedBy
	s.UpdatedAt = time.Now().UTC()
	r.surveys[s.ID] = cloneSurvey(s)
	return nil
}

func (r *surveyRepo) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.surveys[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.IsActive = active
	s.UpdatedAt = time.Now().UTC()
	r.surveys[id] = s
	return nil
}

func (r *surveyRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.surveys[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.surveys, id)
	return nil
}

func cloneSurvey(s *model.Survey) model.Survey {
	out := *s
	out.Questions = make([]model.PersistedQuestion, len(s.Questions))
	for i, q := range s.Questions {
		if q.Choices != nil {
			q.Choices = append([]model.Choice(nil), q.Choices...)
		}
		out.Questions[i] = q
	}
	return out
}

type responseRepo struct {
	mu        sync.RWMutex
	responses []model.Response
}

// NewResponseRepo creates an empty in-memory response repository
func NewResponseRepo() repository.ResponseRepo {
	return &responseRepo{}
}

func (r *responseRepo) Create(_ context.Context, resp *model.Response) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.SubmittedAt.IsZero() {
		resp.SubmittedAt = time.Now().UTC()
	}
	cp := *resp
	cp.Answers = append([]model.Answer(nil), resp.Answers...)
	r.responses = append(r.responses, cp)
	return resp.ID, nil
}

func (r *responseRepo) ListBySurvey(_ context.Context, surveyID string) ([]*model.Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Response{}
	for i := range r.responses {
		if r.responses[i].SurveyID == surveyID {
			cp := r.responses[i]
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *responseRepo) CountBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for i := range r.responses {
		if r.responses[i].SurveyID == surveyID {
			n++
		}
	}
	return n, nil
}

func (r *responseRepo) DeleteBySurvey(_ context.Context, surveyID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.responses[:0]
	var deleted int64
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID {
			deleted++
			continue
		}
		kept = append(kept, resp)
	}
	r.responses = kept
	return deleted, nil
}

type userRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// NewUserRepo creates an empty in-memory user repository
func NewUserRepo() repository.UserRepo {
	return &userRepo{users: map[string]model.User{}}
}

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
