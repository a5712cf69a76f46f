package notes_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/edusphere/internal/app/live"
	"github.com/dalemusser/edusphere/internal/app/services/notes"
	"github.com/dalemusser/edusphere/internal/app/system/apperr"
	"github.com/dalemusser/edusphere/internal/domain/models"
	"github.com/dalemusser/edusphere/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func TestRemote_SuggestionsAndShare(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/notes/{id}/suggestions", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, []models.AISuggestion{
			{ID: "s1", NoteID: chi.URLParam(r, "id"), Kind: "clarity", Original: "u", Replacement: "you"},
		})
	})
	r.Post("/api/notes/{id}/suggestions/{sid}/apply", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "sid") == "stale" {
			testutil.WriteJSON(w, http.StatusConflict, map[string]string{"message": "suggestion no longer applies"})
			return
		}
		testutil.WriteJSON(w, http.StatusOK, models.Note{ID: chi.URLParam(r, "id"), Content: "you"})
	})
	r.Post("/api/notes/{id}/share", func(w http.ResponseWriter, r *http.Request) {
		var in notes.ShareInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		testutil.WriteJSON(w, http.StatusOK, models.Note{ID: chi.URLParam(r, "id"), Collaborators: []models.NoteCollaborator{
			{UserID: "u2", Email: in.Email, Permission: in.Permission},
		}})
	})
	r.Delete("/api/notes/{id}/collaborators/{uid}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(w, http.StatusOK, models.Note{ID: chi.URLParam(r, "id"), Collaborators: []models.NoteCollaborator{}})
	})
	svc := notes.NewRemote(testutil.NewBackend(t, r), 8, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()
	v := testutil.StudentUser().Viewer()

	sugs, err := svc.GetAISuggestions(ctx, v, "n1")
	if err != nil || len(sugs) != 1 || sugs[0].NoteID != "n1" {
		t.Errorf("GetAISuggestions: %+v %v", sugs, err)
	}
	n, err := svc.ApplyAISuggestion(ctx, v, "n1", "s1")
	if err != nil || n.Content != "you" {
		t.Errorf("ApplyAISuggestion: %+v %v", n, err)
	}
	if _, err := svc.ApplyAISuggestion(ctx, v, "n1", "stale"); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("stale suggestion: %v", err)
	}

	shared, err := svc.ShareNote(ctx, v, "n1", notes.ShareInput{Email: "friend@example.com", Permission: models.PermissionEdit})
	if err != nil || len(shared.Collaborators) != 1 || shared.Collaborators[0].Email != "friend@example.com" {
		t.Errorf("ShareNote: %+v %v", shared, err)
	}
	after, err := svc.RemoveCollaborator(ctx, v, "n1", "u2")
	if err != nil || len(after.Collaborators) != 0 {
		t.Errorf("RemoveCollaborator: %+v %v", after, err)
	}
}

func TestLocal_ShareByEmailAndSuggestionsUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc := notes.NewLocal(db, live.NewHub(8, zap.NewNop()), zap.NewNop())

	owner := fx.CreateStudent(ctx, "Owner", "owner@example.com", 0)
	friend := fx.CreateStudent(ctx, "Friend", "friend@example.com", 0)
	ov := models.Viewer{ID: owner.ID, Name: owner.FullName, Role: models.RoleStudent}
	fv := models.Viewer{ID: friend.ID, Role: models.RoleStudent}

	if _, err := svc.CreateNote(ctx, ov, notes.NoteInput{Title: ""}); apperr.LocalizationKey(err) != "notes.error.title_required" {
		t.Errorf("blank title: %v", err)
	}
	n, err := svc.CreateNote(ctx, ov, notes.NoteInput{Title: "Cells", Content: `<p onclick="x()">Nucleus</p>`})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if n.Content != "<p>Nucleus</p>" {
		t.Errorf("content not sanitized: %q", n.Content)
	}

	if _, err := svc.GetNote(ctx, fv, n.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("unshared read: %v", err)
	}

	tests := []struct {
		name string
		in   notes.ShareInput
		key  string
	}{
		{"bad permission", notes.ShareInput{Email: friend.Email, Permission: "admin"}, "notes.error.permission"},
		{"unknown email", notes.ShareInput{Email: "ghost@example.com", Permission: models.PermissionView}, "notes.error.unknown_email"},
		{"self", notes.ShareInput{Email: owner.Email, Permission: models.PermissionView}, "notes.error.share_self"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ShareNote(ctx, ov, n.ID, tt.in)
			if apperr.LocalizationKey(err) != tt.key {
				t.Errorf("got %q (%v)", apperr.LocalizationKey(err), err)
			}
		})
	}

	shared, err := svc.ShareNote(ctx, ov, n.ID, notes.ShareInput{Email: " FRIEND@example.com ", Permission: models.PermissionView})
	if err != nil || !shared.CanView(friend.ID) || shared.CanEdit(friend.ID) {
		t.Fatalf("ShareNote: %+v %v", shared, err)
	}
	if _, err := svc.GetNote(ctx, fv, n.ID); err != nil {
		t.Errorf("shared read: %v", err)
	}
	if _, err := svc.UpdateNote(ctx, fv, n.ID, notes.NoteInput{Title: "x", Content: "y"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("view-only update: %v", err)
	}

	if _, err := svc.GetAISuggestions(ctx, ov, n.ID); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("suggestions: %v", err)
	}
	if _, err := svc.ApplyAISuggestion(ctx, ov, n.ID, "s1"); apperr.LocalizationKey(err) != "notes.error.ai_unavailable" {
		t.Errorf("apply: %v", err)
	}

	if err := svc.DeleteNote(ctx, fv, n.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Errorf("delete by collaborator: %v", err)
	}
}

func TestLocal_LiveTextIsSavedAndRelayed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	svc := notes.NewLocal(db, live.NewHub(8, zap.NewNop()), zap.NewNop())

	owner := fx.CreateStudent(ctx, "Owner", "owner@example.com", 0)
	editor := fx.CreateStudent(ctx, "Editor", "editor@example.com", 0)
	outsider := fx.CreateStudent(ctx, "Out", "out@example.com", 0)
	n := fx.CreateNote(ctx, "Essay", "<p>draft</p>", owner)
	ov := models.Viewer{ID: owner.ID, Role: models.RoleStudent}
	ev := models.Viewer{ID: editor.ID, Role: models.RoleStudent}

	if _, err := svc.Connect(ctx, models.Viewer{ID: outsider.ID}, n.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("outsider connect: %v", err)
	}
	if _, err := svc.ShareNote(ctx, ov, n.ID, notes.ShareInput{Email: editor.Email, Permission: models.PermissionEdit}); err != nil {
		t.Fatalf("ShareNote: %v", err)
	}

	os, err := svc.Connect(ctx, ov, n.ID)
	if err != nil {
		t.Fatalf("Connect owner: %v", err)
	}
	defer os.Close()
	es, err := svc.Connect(ctx, ev, n.ID)
	if err != nil {
		t.Fatalf("Connect editor: %v", err)
	}
	defer es.Close()
	<-os.Messages() // presence.join for the editor

	f, _ := live.NewFrame(live.TypeNoteText, n.ID, editor.ID, live.TextPayload{Content: "<p>final</p><script>x</script>"})
	if err := es.Send(ctx, f); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-os.Messages():
		var p live.TextPayload
		if got.Type != live.TypeNoteUpdated || got.Decode(&p) != nil || p.Content != "<p>final</p>" {
			t.Errorf("owner got %q %s", got.Type, got.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("owner did not receive note.updated")
	}

	saved, err := svc.GetNote(ctx, ov, n.ID)
	if err != nil || saved.Content != "<p>final</p>" {
		t.Errorf("saved content: %q %v", saved.Content, err)
	}
}
