package social

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ototana/ototana/internal/apperr"
	"github.com/ototana/ototana/internal/db"
)

// fakeEdgeStore keeps friend edges in memory with the same directional
// semantics as the SQL layer.
type fakeEdgeStore struct {
	edges []*db.Friend
	users map[string]db.User
}

func newFakeEdgeStore() *fakeEdgeStore {
	return &fakeEdgeStore{users: make(map[string]db.User)}
}

func (f *fakeEdgeStore) addUser(id, username string, public bool) {
	f.users[id] = db.User{ID: id, Username: username, DisplayName: username, IsPublic: public}
}

func (f *fakeEdgeStore) GetBetween(_ context.Context, userA, userB string) (*db.Friend, error) {
	for _, e := range f.edges {
		if (e.UserID == userA && e.FriendID == userB) || (e.UserID == userB && e.FriendID == userA) {
			return e, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeEdgeStore) Create(_ context.Context, edge *db.Friend) error {
	edge.ID = uuid.New()
	f.edges = append(f.edges, edge)
	return nil
}

func (f *fakeEdgeStore) Accept(_ context.Context, requesterID, recipientID string) error {
	for _, e := range f.edges {
		if e.UserID == requesterID && e.FriendID == recipientID && e.Status == db.StatusPending {
			e.Status = db.StatusAccepted
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeEdgeStore) DeletePending(_ context.Context, requesterID, recipientID string) error {
	for i, e := range f.edges {
		if e.UserID == requesterID && e.FriendID == recipientID && e.Status == db.StatusPending {
			f.edges = append(f.edges[:i], f.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeEdgeStore) DeleteBetween(_ context.Context, userA, userB string) error {
	kept := f.edges[:0]
	for _, e := range f.edges {
		between := (e.UserID == userA && e.FriendID == userB) || (e.UserID == userB && e.FriendID == userA)
		if !between {
			kept = append(kept, e)
		}
	}
	f.edges = kept
	return nil
}

func (f *fakeEdgeStore) ListAccepted(_ context.Context, userID string) ([]db.User, error) {
	var out []db.User
	for _, e := range f.edges {
		if e.Status != db.StatusAccepted {
			continue
		}
		switch userID {
		case e.UserID:
			out = append(out, f.users[e.FriendID])
		case e.FriendID:
			out = append(out, f.users[e.UserID])
		}
	}
	return out, nil
}

func (f *fakeEdgeStore) ListPendingFor(_ context.Context, userID string) ([]db.User, error) {
	var out []db.User
	for _, e := range f.edges {
		if e.Status == db.StatusPending && e.FriendID == userID {
			out = append(out, f.users[e.UserID])
		}
	}
	return out, nil
}

func (f *fakeEdgeStore) Search(_ context.Context, query, excludeID string, limit int) ([]db.User, error) {
	var out []db.User
	for _, u := range f.users {
		if u.ID == excludeID || !u.IsPublic {
			continue
		}
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeEdgeStore) {
	f := newFakeEdgeStore()
	f.addUser("alice", "alice", true)
	f.addUser("bob", "bob", true)
	f.addUser("carol", "carol", true)
	return NewService(f, f), f
}

func TestSendRequest(t *testing.T) {
	tests := []struct {
		name     string
		caller   string
		friend   string
		seed     func(*fakeEdgeStore)
		wantKind apperr.Kind
		wantMsg  string
		wantErr  bool
	}{
		{
			name:   "fresh request",
			caller: "alice",
			friend: "bob",
		},
		{
			name:     "anonymous",
			caller:   "",
			friend:   "bob",
			wantErr:  true,
			wantKind: apperr.KindAuth,
		},
		{
			name:     "self request",
			caller:   "alice",
			friend:   "alice",
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsg:  "自分自身にフレンドリクエストは送れません",
		},
		{
			name:   "already pending",
			caller: "alice",
			friend: "bob",
			seed: func(f *fakeEdgeStore) {
				f.edges = append(f.edges, &db.Friend{UserID: "alice", FriendID: "bob", Status: db.StatusPending})
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsg:  "フレンドリクエストは送信済みです",
		},
		{
			name:   "pending in the other direction",
			caller: "alice",
			friend: "bob",
			seed: func(f *fakeEdgeStore) {
				f.edges = append(f.edges, &db.Friend{UserID: "bob", FriendID: "alice", Status: db.StatusPending})
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
		},
		{
			name:   "already friends",
			caller: "alice",
			friend: "bob",
			seed: func(f *fakeEdgeStore) {
				f.edges = append(f.edges, &db.Friend{UserID: "bob", FriendID: "alice", Status: db.StatusAccepted})
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsg:  "すでにフレンドです",
		},
		{
			name:   "blocked",
			caller: "alice",
			friend: "bob",
			seed: func(f *fakeEdgeStore) {
				f.edges = append(f.edges, &db.Friend{UserID: "bob", FriendID: "alice", Status: db.StatusBlocked})
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsg:  "このユーザーにはリクエストを送信できません",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService()
			if tt.seed != nil {
				tt.seed(store)
			}
			err := svc.SendRequest(context.Background(), tt.caller, tt.friend)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !apperr.Is(err, tt.wantKind) {
					t.Errorf("kind = %v, want %v", apperr.KindOf(err), tt.wantKind)
				}
				if tt.wantMsg != "" && apperr.MessageOf(err) != tt.wantMsg {
					t.Errorf("message = %q, want %q", apperr.MessageOf(err), tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("SendRequest: %v", err)
			}
			edge, err := store.GetBetween(context.Background(), tt.caller, tt.friend)
			if err != nil {
				t.Fatalf("edge not stored: %v", err)
			}
			if edge.Status != db.StatusPending {
				t.Errorf("status = %s, want pending", edge.Status)
			}
		})
	}
}

func TestFriendLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	// Bob sees the open request.
	pending, err := svc.ListPendingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("ListPendingRequests: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "alice" {
		t.Fatalf("pending = %+v", pending)
	}

	if err := svc.AcceptRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}

	// Both sides now list each other.
	for caller, want := range map[string]string{"alice": "bob", "bob": "alice"} {
		friends, err := svc.ListFriends(ctx, caller)
		if err != nil {
			t.Fatalf("ListFriends(%s): %v", caller, err)
		}
		if len(friends) != 1 || friends[0].ID != want {
			t.Errorf("ListFriends(%s) = %+v, want [%s]", caller, friends, want)
		}
	}

	// Either side can remove.
	if err := svc.RemoveFriend(ctx, "alice", "bob"); err != nil {
		t.Fatalf("RemoveFriend: %v", err)
	}
	friends, err := svc.ListFriends(ctx, "bob")
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if len(friends) != 0 {
		t.Errorf("friends remain after removal: %+v", friends)
	}
}

func TestAcceptMissingRequest(t *testing.T) {
	svc, _ := newTestService()
	err := svc.AcceptRequest(context.Background(), "bob", "alice")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("kind = %v, want not found", apperr.KindOf(err))
	}
}

func TestRejectIsIdempotent(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest: %v", err)
	}
	if err := svc.RejectRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("first reject: %v", err)
	}
	if err := svc.RejectRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("second reject: %v", err)
	}
	if len(store.edges) != 0 {
		t.Errorf("edges remain: %+v", store.edges)
	}

	// A rejected requester can ask again.
	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("re-request after reject: %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	svc, store := newTestService()
	store.addUser("dave", "dave_hidden", false)
	ctx := context.Background()

	t.Run("short query rejected", func(t *testing.T) {
		_, err := svc.SearchUsers(ctx, "alice", "b")
		if !apperr.Is(err, apperr.KindValidation) {
			t.Fatalf("kind = %v, want validation", apperr.KindOf(err))
		}
		if got := apperr.MessageOf(err); got != "検索キーワードは2文字以上で入力してください" {
			t.Errorf("message = %q", got)
		}
	})

	t.Run("caller excluded", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "carol", "caro")
		if err != nil {
			t.Fatalf("SearchUsers: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("caller matched their own search: %+v", users)
		}
	})

	t.Run("private users hidden", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "alice", "dave")
		if err != nil {
			t.Fatalf("SearchUsers: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("private user surfaced: %+v", users)
		}
	})

	t.Run("match by substring", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "alice", "bo")
		if err != nil {
			t.Fatalf("SearchUsers: %v", err)
		}
		if len(users) != 1 || users[0].ID != "bob" {
			t.Errorf("users = %+v, want [bob]", users)
		}
	})
}
