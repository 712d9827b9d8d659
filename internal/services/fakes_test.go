package services

import (
	"context"
	"errors"
	"sync"

	"github.com/fittrack/apiserver/internal/store"
	"github.com/fittrack/apiserver/types"
	"github.com/google/uuid"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	byName map[string]types.User
	err    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byName: map[string]types.User{}}
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return types.User{}, r.err
	}
	u, ok := r.byName[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return types.User{}, r.err
	}
	if _, ok := r.byName[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	user.ID = uuid.New()
	r.byName[user.Username] = user
	return user, nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens []types.Token
	err    error
}

func (r *fakeTokenRepo) Create(_ context.Context, token types.Token) (types.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return types.Token{}, r.err
	}
	token.ID = uuid.New()
	r.tokens = append(r.tokens, token)
	return token, nil
}

func (r *fakeTokenRepo) GetByValue(_ context.Context, value string) (types.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.tokens) - 1; i >= 0; i-- {
		if r.tokens[i].Value == value {
			return r.tokens[i], nil
		}
	}
	return types.Token{}, store.ErrNotFound
}

func (r *fakeTokenRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

type fakeFitnessRepo struct {
	rows map[uuid.UUID]types.FitnessData
	err  error
}

func (r *fakeFitnessRepo) Create(_ context.Context, data types.FitnessData) (types.FitnessData, error) {
	if r.err != nil {
		return types.FitnessData{}, r.err
	}
	if r.rows == nil {
		r.rows = map[uuid.UUID]types.FitnessData{}
	}
	data.ID = uuid.New()
	r.rows[data.ID] = data
	return data, nil
}

func (r *fakeFitnessRepo) Get(_ context.Context, id uuid.UUID) (types.FitnessData, error) {
	d, ok := r.rows[id]
	if !ok {
		return types.FitnessData{}, store.ErrNotFound
	}
	return d, nil
}

type published struct {
	channel string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, channel string, data []byte, _ map[string]string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, published{channel: channel, data: data})
	return "1", nil
}

var errBoom = errors.New("boom")
