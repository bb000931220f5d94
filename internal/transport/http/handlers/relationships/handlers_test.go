package relationshipshandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"notify/internal/requestctx"
)

type fakeMuter struct {
	muted map[string]bool
	err   error
}

func (f *fakeMuter) MuteConversation(_ context.Context, accountID, conversationID string) error {
	if f.err != nil {
		return f.err
	}
	f.muted[accountID+"/"+conversationID] = true
	return nil
}

func (f *fakeMuter) UnmuteConversation(_ context.Context, accountID, conversationID string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.muted, accountID+"/"+conversationID)
	return nil
}

func newRouter(store *fakeMuter) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestctx.WithAccount(r.Context(), requestctx.Account{AccountID: "alice"})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	NewHandler(store).RegisterRoutes(r)
	return r
}

func TestMuteAndUnmuteConversation(t *testing.T) {
	store := &fakeMuter{muted: map[string]bool{}}
	router := newRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/conversations/c1/mute", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !store.muted["alice/c1"] {
		t.Fatal("expected conversation to be muted")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/conversations/c1/mute", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.muted["alice/c1"] {
		t.Fatal("expected conversation mute to be lifted")
	}
}

func TestMuteStoreFailure(t *testing.T) {
	router := newRouter(&fakeMuter{muted: map[string]bool{}, err: errors.New("db down")})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/conversations/c1/mute", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
