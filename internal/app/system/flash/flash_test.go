package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
)

func TestAddThenPop(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-session-key-must-be-32-chars-long"))
	f := New(store, "test-session")

	addRec := httptest.NewRecorder()
	if err := f.Add(addRec, httptest.NewRequest("POST", "/community/groups", nil), Error("community.error.join_failed")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	req := httptest.NewRequest("GET", "/community/groups", nil)
	for _, c := range addRec.Result().Cookies() {
		req.AddCookie(c)
	}
	popRec := httptest.NewRecorder()
	got := f.Pop(popRec, req)
	if len(got) != 1 {
		t.Fatalf("Pop: got %d notices, want 1", len(got))
	}
	if got[0].Kind != KindError || got[0].Key != "community.error.join_failed" {
		t.Errorf("notice: got %+v", got[0])
	}

	// The save after Pop clears the queue.
	req2 := httptest.NewRequest("GET", "/community/groups", nil)
	for _, c := range popRec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if again := f.Pop(httptest.NewRecorder(), req2); len(again) != 0 {
		t.Errorf("second Pop: got %d notices, want 0", len(again))
	}
}

func TestAddIgnoresEmptyNotice(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-session-key-must-be-32-chars-long"))
	f := New(store, "test-session")

	rec := httptest.NewRecorder()
	if err := f.Add(rec, httptest.NewRequest("POST", "/", nil), Notice{Kind: KindError}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("empty notice should not write a cookie")
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	n, ok := normalize(Notice{Kind: "shout", Key: " a.b "})
	if !ok {
		t.Fatal("normalize rejected a keyed notice")
	}
	if n.Kind != KindInfo || n.Key != "a.b" {
		t.Errorf("normalize: got %+v", n)
	}
}

func TestPopWithoutCookie(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-session-key-must-be-32-chars-long"))
	f := New(store, "test-session")
	if got := f.Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Errorf("Pop without cookie: got %v, want nil", got)
	}
}

func TestMiddleware_SkipsFragments(t *testing.T) {
	store := sessions.NewCookieStore([]byte("test-session-key-must-be-32-chars-long"))
	f := New(store, "test-session")

	addRec := httptest.NewRecorder()
	_ = f.Add(addRec, httptest.NewRequest("POST", "/notes", nil), Success("notes.flash.saved"))
	cookies := addRec.Result().Cookies()

	var seen []Notice
	h := f.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	frag := httptest.NewRequest("GET", "/dashboard/panels/groups", nil)
	frag.Header.Set("HX-Request", "true")
	for _, c := range cookies {
		frag.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), frag)
	if len(seen) != 0 {
		t.Errorf("fragment request consumed %d notices", len(seen))
	}

	page := httptest.NewRequest("GET", "/notes", nil)
	for _, c := range cookies {
		page.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), page)
	if len(seen) != 1 || seen[0].Key != "notes.flash.saved" {
		t.Errorf("page request notices: got %+v", seen)
	}
}
