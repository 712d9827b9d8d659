package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fittrack/apiserver/internal/auth"
	"github.com/fittrack/apiserver/internal/logger"
	"github.com/fittrack/apiserver/internal/services"
	"github.com/fittrack/apiserver/internal/store"
	"github.com/fittrack/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]types.User
	err    error
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	u, ok := m.byName[username]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return types.User{}, m.err
	}
	if _, ok := m.byName[user.Username]; ok {
		return types.User{}, store.ErrConflict
	}
	user.ID = uuid.New()
	m.byName[user.Username] = user
	return user, nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens []types.Token
}

func (m *memTokens) Create(_ context.Context, token types.Token) (types.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = uuid.New()
	m.tokens = append(m.tokens, token)
	return token, nil
}

func (m *memTokens) GetByValue(_ context.Context, value string) (types.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.tokens) - 1; i >= 0; i-- {
		if m.tokens[i].Value == value {
			return m.tokens[i], nil
		}
	}
	return types.Token{}, store.ErrNotFound
}

type memFitness struct {
	rows []types.FitnessData
	err  error
}

func (m *memFitness) Create(_ context.Context, data types.FitnessData) (types.FitnessData, error) {
	if m.err != nil {
		return types.FitnessData{}, m.err
	}
	data.ID = uuid.New()
	m.rows = append(m.rows, data)
	return data, nil
}

func (m *memFitness) Get(_ context.Context, id uuid.UUID) (types.FitnessData, error) {
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return types.FitnessData{}, store.ErrNotFound
}

type testEnv struct {
	router  http.Handler
	users   *memUsers
	tokens  *memTokens
	fitness *memFitness
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.Discard()
	env := &testEnv{
		users:   &memUsers{byName: map[string]types.User{}},
		tokens:  &memTokens{},
		fitness: &memFitness{},
	}

	userService, err := services.NewUserService(env.users, env.tokens, auth.NewPasswordHasher(bcrypt.MinCost), 0, nil, log)
	require.NoError(t, err)
	fitnessService := services.NewFitnessService(env.fitness, nil, log)

	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Get("/", Root)
	r.Get("/healthz", Healthz)
	r.Route("/users", func(r chi.Router) {
		AuthRouter(r, userService, log)
	})
	r.Route("/fitness", func(r chi.Router) {
		FitnessRouter(r, fitnessService, RequireToken(userService, log), log)
	})
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, password string) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/users/register", credentials(username, password), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/users/login", credentials(username, password), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Value
}

func credentials(username, password string) string {
	b, _ := json.Marshal(CredentialsRequest{Username: username, Password: password})
	return string(b)
}
