package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/cookbooks/dashboard/internal/session"
	"github.com/pageza/cookbooks/dashboard/internal/types"
)

// recordedRequest captures what the fake backend received
type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Body          string
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	server   *httptest.Server
}

func newFakeBackend(t *testing.T, handler http.HandlerFunc) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{}
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			Body:          string(body),
		})
		fb.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(fb.server.Close)

	c, err := New(fb.server.URL, 5*time.Second, nil)
	require.NoError(t, err)
	return fb, c
}

func (fb *fakeBackend) recorded() []recordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]recordedRequest(nil), fb.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func withToken(token string) context.Context {
	return session.WithSession(context.Background(), &types.SessionClaims{AccessToken: token, UserID: "u1"})
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:5000", time.Second, nil)
	assert.Error(t, err)

	_, err = New("/api", time.Second, nil)
	assert.Error(t, err)
}

func TestEndpointJoinsBaseURL(t *testing.T) {
	for _, base := range []string{"http://backend:5000", "http://backend:5000/"} {
		c, err := New(base, time.Second, nil)
		require.NoError(t, err)
		target, err := c.endpoint("api/cookbooks", nil)
		require.NoError(t, err)
		assert.Equal(t, "http://backend:5000/api/cookbooks", target)
	}

	c, err := New("http://backend:5000/v1", time.Second, nil)
	require.NoError(t, err)
	target, err := c.endpoint("api/recipes", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:5000/v1/api/recipes", target)
}

func TestFetchCookbooksAsMap(t *testing.T) {
	t.Run("unique keys", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"cookbooks": []types.Cookbook{
				{Key: "ottolenghi", Name: "Simple", Author: "Yotam Ottolenghi"},
				{Key: "salt", Name: "Salt Fat Acid Heat", Author: "Samin Nosrat"},
			}})
		})

		m, err := c.FetchCookbooksAsMap(context.Background())
		require.NoError(t, err)
		assert.Len(t, m, 2)
		assert.Equal(t, "Simple", m["ottolenghi"].Name)
		assert.Equal(t, "Samin Nosrat", m["salt"].Author)
	})

	t.Run("duplicate keys keep the last record", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"cookbooks": []types.Cookbook{
				{Key: "dup", Name: "First", Author: "A"},
				{Key: "dup", Name: "Second", Author: "B"},
			}})
		})

		m, err := c.FetchCookbooksAsMap(context.Background())
		require.NoError(t, err)
		assert.Len(t, m, 1)
		assert.Equal(t, types.Cookbook{Key: "dup", Name: "Second", Author: "B"}, m["dup"])
	})

	t.Run("failure", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.FetchCookbooksAsMap(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))
		assert.Contains(t, err.Error(), "failed to fetch cookbooks")
	})
}

func TestFetchRecipesPages(t *testing.T) {
	tests := []struct {
		count any
		want  int
	}{
		{count: 0, want: 0},
		{count: 1, want: 1},
		{count: 29, want: 1},
		{count: 30, want: 1},
		{count: 31, want: 2},
		{count: 60, want: 2},
		{count: 61, want: 3},
		{count: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count=%v", tt.count), func(t *testing.T) {
			fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.count == nil {
					writeJSON(w, http.StatusOK, map[string]any{})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"count": tt.count})
			})

			pages, err := c.FetchRecipesPages(context.Background(), "soup")
			require.NoError(t, err)
			assert.Equal(t, tt.want, pages)

			reqs := fb.recorded()
			require.Len(t, reqs, 1)
			assert.Equal(t, "/api/recipes/count", reqs[0].Path)
			assert.Equal(t, "query=soup", reqs[0].RawQuery)
		})
	}
}

func TestPageCount(t *testing.T) {
	assert.Equal(t, 0, PageCount(-5))
	assert.Equal(t, 0, PageCount(0))
	assert.Equal(t, 1, PageCount(1))
	assert.Equal(t, 1, PageCount(30))
	assert.Equal(t, 2, PageCount(31))
	assert.Equal(t, 34, PageCount(1000))
}

func TestFetchFilteredRecipes(t *testing.T) {
	t.Run("sends query and status but not page", func(t *testing.T) {
		fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"recipes": []map[string]any{
				{"_id": "r1", "name_of_dish": "Shakshuka", "cookbook_key": "simple", "page_number": 12},
			}})
		})

		recipes, err := c.FetchFilteredRecipes(withToken("tok"), "egg", types.StatusCooked, 3)
		require.NoError(t, err)
		require.Len(t, recipes, 1)
		assert.Equal(t, "r1", recipes[0].ID)
		assert.Equal(t, 12, recipes[0].PageNumber)

		reqs := fb.recorded()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/api/recipes", reqs[0].Path)
		assert.Equal(t, "query=egg&status=cooked%21", reqs[0].RawQuery)
		assert.Equal(t, "Bearer tok", reqs[0].Authorization)
	})

	t.Run("omits empty parameters", func(t *testing.T) {
		fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"recipes": []any{}})
		})

		recipes, err := c.FetchFilteredRecipes(context.Background(), "", "", 1)
		require.NoError(t, err)
		assert.Empty(t, recipes)
		assert.Empty(t, fb.recorded()[0].RawQuery)
		assert.Empty(t, fb.recorded()[0].Authorization)
	})

	t.Run("401 is distinguishable from other failures", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Token has expired"})
		})

		_, err := c.FetchFilteredRecipes(withToken("stale"), "", "", 1)
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))
		assert.False(t, errors.Is(err, ErrFetch))

		var clientErr *Error
		require.True(t, errors.As(err, &clientErr))
		assert.Equal(t, KindUnauthorized, clientErr.Kind)
		assert.Equal(t, http.StatusUnauthorized, clientErr.Status)
		assert.Contains(t, err.Error(), "authorization error")
	})

	t.Run("500 is a generic fetch failure", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.FetchFilteredRecipes(context.Background(), "", "", 1)
		require.Error(t, err)
		assert.False(t, IsUnauthorized(err))
		assert.True(t, errors.Is(err, ErrFetch))
		assert.Contains(t, err.Error(), "failed to fetch filtered recipes")
	})

	t.Run("malformed body is a fetch failure", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"recipes": "nope"`))
		})

		_, err := c.FetchFilteredRecipes(context.Background(), "", "", 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))
	})
}

func TestFetchRecipeByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"_id":          "abc",
				"name_of_dish": "Dal",
				"cookbook_key": "simple",
				"ingredients":  map[string][]string{"pantry": {"lentils"}},
				"instructions": []map[string]any{{"step": "Boil", "details": []string{"10 min"}}},
			})
		})

		recipe, err := c.FetchRecipeByID(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "Dal", recipe.NameOfDish)
		assert.Equal(t, []string{"lentils"}, recipe.Ingredients.Pantry)
		require.Len(t, recipe.Instructions, 1)
		assert.Equal(t, "Boil", recipe.Instructions[0].Step)
		assert.Equal(t, "/api/recipes/recipe/abc", fb.recorded()[0].Path)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Recipe not found"})
		})

		recipe, err := c.FetchRecipeByID(context.Background(), "missing")
		assert.Nil(t, recipe)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.False(t, errors.Is(err, ErrFetch))
		assert.Contains(t, err.Error(), "Recipe not found")
	})
}

func TestFetchUserRecipeByID(t *testing.T) {
	fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"_id":        "ur1",
			"recipe_id":  "abc",
			"status":     "cooked!",
			"rating":     7,
			"created_at": "2024-03-01T10:11:12.123456",
			"updated_at": "2024-03-02T10:11:12",
		})
	})

	ur, err := c.FetchUserRecipeByID(withToken("tok"), "ur1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCooked, ur.Status)
	assert.Equal(t, 7.0, ur.Rating)
	assert.Equal(t, 2024, ur.CreatedAt.Year())
	assert.Equal(t, 2, ur.UpdatedAt.Day())

	req := fb.recorded()[0]
	assert.Equal(t, "/api/recipes/user/ur1", req.Path)
	assert.Equal(t, "Bearer tok", req.Authorization)
}

func TestFetchNRecipes(t *testing.T) {
	fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"recipes": []map[string]any{
			{"_id": "a"}, {"_id": "b"}, {"_id": "c"},
		}})
	})

	recipes, err := c.FetchNRecipes(withToken("tok"), 3)
	require.NoError(t, err)
	assert.Len(t, recipes, 3)
	assert.Equal(t, "/api/recipes/random/3", fb.recorded()[0].Path)
	assert.Equal(t, "Bearer tok", fb.recorded()[0].Authorization)
}

func TestFetchRecipesForCookbook(t *testing.T) {
	fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"recipes": []map[string]any{{"_id": "a", "cookbook_key": "simple"}}})
	})

	recipes, err := c.FetchRecipesForCookbook(context.Background(), "simple")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "/api/recipes/simple", fb.recorded()[0].Path)
}

func TestFetchCardData(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/cookbooks/count":
				writeJSON(w, http.StatusOK, map[string]int{"count": 4})
			case "/api/recipes/count":
				writeJSON(w, http.StatusOK, map[string]int{"count": 312})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		data, err := c.FetchCardData(context.Background())
		require.NoError(t, err)
		assert.Equal(t, &types.CardData{NumberOfCookbooks: 4, NumberOfRecipes: 312}, data)
	})

	t.Run("one failing count fails the whole", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/recipes/count" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int{"count": 4})
		})

		data, err := c.FetchCardData(context.Background())
		assert.Nil(t, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch card data")
	})
}

func TestUpdateUserRecipe(t *testing.T) {
	var calls atomic.Int32
	fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"_id": "ur1", "status": "cooked!", "rating": 8})
	})

	updated, err := c.UpdateUserRecipe(withToken("tok"), "ur1", types.UserRecipeUpdate{Status: types.StatusCooked, Rating: 8})
	require.NoError(t, err)
	assert.Equal(t, types.StatusCooked, updated.Status)

	assert.Equal(t, int32(1), calls.Load())
	req := fb.recorded()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/recipes/user/ur1", req.Path)
	assert.Equal(t, "Bearer tok", req.Authorization)
	assert.JSONEq(t, `{"status":"cooked!","rating":8}`, req.Body)
}

func TestUpdateUserRecipeFailure(t *testing.T) {
	_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.UpdateUserRecipe(withToken("tok"), "ur1", types.UserRecipeUpdate{Status: types.StatusUncooked})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update recipe: ur1")
}

func TestLogin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fb, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"access_token": "jwt-token",
				"user":         map[string]string{"_id": "u1", "email": "cook@example.com", "first_name": "Kevin"},
			})
		})

		resp, err := c.Login(context.Background(), "cook@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "jwt-token", resp.AccessToken)
		assert.Equal(t, "u1", resp.User.ID)
		assert.Equal(t, "Kevin", resp.User.FirstName)

		req := fb.recorded()[0]
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/login", req.Path)
		assert.JSONEq(t, `{"email":"cook@example.com","password":"secret1"}`, req.Body)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, c := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "Bad email or password"})
		})

		_, err := c.Login(context.Background(), "cook@example.com", "wrong!")
		assert.True(t, IsUnauthorized(err))
	})
}

func TestBuildAuthorizationHeaders(t *testing.T) {
	c, err := New("http://backend:5000", time.Second, nil)
	require.NoError(t, err)

	base := http.Header{"Content-Type": []string{"application/json"}}

	t.Run("without session", func(t *testing.T) {
		headers := c.BuildAuthorizationHeaders(context.Background(), base)
		assert.Empty(t, headers.Get("Authorization"))
		assert.Equal(t, "application/json", headers.Get("Content-Type"))
	})

	t.Run("with session", func(t *testing.T) {
		headers := c.BuildAuthorizationHeaders(withToken("tok"), base)
		assert.Equal(t, "Bearer tok", headers.Get("Authorization"))
		assert.Equal(t, "application/json", headers.Get("Content-Type"))
		// base is left untouched
		assert.Empty(t, base.Get("Authorization"))
	})

	t.Run("nil base", func(t *testing.T) {
		headers := c.BuildAuthorizationHeaders(withToken("tok"), nil)
		assert.Equal(t, "Bearer tok", headers.Get("Authorization"))
	})
}

func TestErrorIs(t *testing.T) {
	err := fmt.Errorf("page: %w", &Error{Kind: KindNotFound, Message: "failed to fetch recipe"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "not_found", KindNotFound.String())
}
