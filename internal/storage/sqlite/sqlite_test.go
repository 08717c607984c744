package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/watchtogether/internal/models"
	"github.com/mmynk/watchtogether/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "watchtogether-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, email, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com")

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", "hash"))
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("lookups", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != alice.ID {
			t.Errorf("ID = %q, want %q", byEmail.ID, alice.ID)
		}

		if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByID(nope) error = %v, want ErrNotFound", err)
		}
		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByEmail(nobody) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("genres round trip", func(t *testing.T) {
		if err := store.SetUserGenres(ctx, alice.ID, []int{28, 878}); err != nil {
			t.Fatalf("SetUserGenres failed: %v", err)
		}
		user, err := store.GetUserByID(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if len(user.Genres) != 2 || user.Genres[0] != 28 || user.Genres[1] != 878 {
			t.Errorf("Genres = %v, want [28 878]", user.Genres)
		}

		if err := store.SetUserGenres(ctx, "nope", []int{1}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("SetUserGenres(nope) error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Groups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	friend := createUser(t, store, "friend@example.com")

	group := &models.Group{
		Name:      "Movie Club",
		Icon:      models.Icon{Kind: models.IconColor, Value: "#FF6B6B"},
		JoinCode:  "ABC123",
		CreatedBy: owner.ID,
	}

	t.Run("CreateGroup writes group and owner edge", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" || group.CreatedAt == 0 {
			t.Error("expected ID and CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.JoinCode != "ABC123" || got.Icon.Kind != models.IconColor {
			t.Errorf("group = %+v", got)
		}
		if len(got.Members) != 1 || got.Members[0] != owner.ID {
			t.Errorf("Members = %v, want [owner]", got.Members)
		}
	})

	t.Run("JoinCodeExists", func(t *testing.T) {
		exists, err := store.JoinCodeExists(ctx, "ABC123")
		if err != nil || !exists {
			t.Errorf("JoinCodeExists(ABC123) = %v, %v; want true", exists, err)
		}
		exists, err = store.JoinCodeExists(ctx, "XYZ789")
		if err != nil || exists {
			t.Errorf("JoinCodeExists(XYZ789) = %v, %v; want false", exists, err)
		}
	})

	t.Run("duplicate join code conflicts without partial writes", func(t *testing.T) {
		dup := &models.Group{
			Name:      "Copycat",
			Icon:      models.Icon{Kind: models.IconImage, Value: "https://example.com/a.png"},
			JoinCode:  "ABC123",
			CreatedBy: friend.ID,
		}
		err := store.CreateGroup(ctx, dup)
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}

		groups, err := store.ListGroupsByUser(ctx, friend.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 0 {
			t.Errorf("friend has %d groups after failed create, want 0", len(groups))
		}
	})

	t.Run("RunInTx adds member", func(t *testing.T) {
		err := store.RunInTx(ctx, func(tx storage.GroupTx) error {
			g, err := tx.GetGroupByJoinCode(ctx, "ABC123")
			if err != nil {
				return err
			}
			return tx.AddMember(ctx, g.ID, friend.ID)
		})
		if err != nil {
			t.Fatalf("RunInTx failed: %v", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("Members = %v, want owner and friend", got.Members)
		}

		groups, err := store.ListGroupsByUser(ctx, friend.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID || len(groups[0].Members) != 2 {
			t.Errorf("friend's groups = %+v", groups)
		}
	})

	t.Run("duplicate edge conflicts", func(t *testing.T) {
		err := store.RunInTx(ctx, func(tx storage.GroupTx) error {
			return tx.AddMember(ctx, group.ID, friend.ID)
		})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("RunInTx rolls back on error", func(t *testing.T) {
		third := createUser(t, store, "third@example.com")
		sentinel := errors.New("abort")
		err := store.RunInTx(ctx, func(tx storage.GroupTx) error {
			if err := tx.AddMember(ctx, group.ID, third.ID); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("error = %v, want the callback's error", err)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.HasMember(third.ID) {
			t.Error("rolled back member is still present")
		}
	})

	t.Run("missing group", func(t *testing.T) {
		if _, err := store.GetGroup(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroup error = %v, want ErrNotFound", err)
		}
		err := store.RunInTx(ctx, func(tx storage.GroupTx) error {
			_, err := tx.GetGroupByJoinCode(ctx, "QQQ000")
			return err
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetGroupByJoinCode error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Ratings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, store, "alice@example.com")
	bob := createUser(t, store, "bob@example.com")

	group := &models.Group{
		Name:      "Pair",
		Icon:      models.Icon{Kind: models.IconColor, Value: "teal"},
		JoinCode:  "PAR001",
		CreatedBy: alice.ID,
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := store.RunInTx(ctx, func(tx storage.GroupTx) error {
		return tx.AddMember(ctx, group.ID, bob.ID)
	}); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	save := func(userID string, movieID int64, outcome models.Outcome, at int64) {
		t.Helper()
		if err := store.SaveRating(ctx, &models.Rating{UserID: userID, MovieID: movieID, Outcome: outcome, RatedAt: at}); err != nil {
			t.Fatalf("SaveRating failed: %v", err)
		}
	}

	save(alice.ID, 10, models.OutcomeLiked, 100)
	save(alice.ID, 20, models.OutcomeLiked, 101)
	save(alice.ID, 30, models.OutcomeSkipped, 102)
	save(bob.ID, 10, models.OutcomeLiked, 103)
	save(bob.ID, 20, models.OutcomeDisliked, 104)
	save(bob.ID, 30, models.OutcomeLiked, 105)

	t.Run("ListRatings newest first", func(t *testing.T) {
		ratings, err := store.ListRatings(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListRatings failed: %v", err)
		}
		if len(ratings) != 3 || ratings[0].MovieID != 30 || ratings[2].MovieID != 10 {
			t.Errorf("ratings = %+v", ratings)
		}
	})

	t.Run("matches need every member", func(t *testing.T) {
		matches, err := store.ListGroupMatches(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupMatches failed: %v", err)
		}
		if len(matches) != 1 || matches[0] != 10 {
			t.Errorf("matches = %v, want [10]", matches)
		}
	})

	t.Run("SaveRating upserts", func(t *testing.T) {
		save(bob.ID, 20, models.OutcomeLiked, 200)

		matches, err := store.ListGroupMatches(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupMatches failed: %v", err)
		}
		if len(matches) != 2 || matches[0] != 10 || matches[1] != 20 {
			t.Errorf("matches = %v, want [10 20]", matches)
		}

		ratings, err := store.ListRatings(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListRatings failed: %v", err)
		}
		if len(ratings) != 3 {
			t.Errorf("bob has %d ratings, want 3 after upsert", len(ratings))
		}
	})
}
