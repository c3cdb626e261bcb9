package models

import (
	"errors"
	"testing"
	"time"

	"agora/internal/apperr"
)

func TestParseWellKnown(t *testing.T) {
	names := []string{"PENDING", "APPROVED", "REFUSED", "ADMIN", "PORTALADMIN", "USER", "LIKE"}
	for i, want := range names {
		w, err := ParseWellKnown(i + 1)
		if err != nil {
			t.Fatalf("ParseWellKnown(%d) failed: %v", i+1, err)
		}
		if w.String() != want {
			t.Errorf("Expected %s, got %s", want, w)
		}
	}

	for _, code := range []int{0, 8, -1} {
		if _, err := ParseWellKnown(code); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for %d, got %v", code, err)
		}
		if _, err := NewWellKnownTag(code); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Expected NewWellKnownTag(%d) to fail, got %v", code, err)
		}
	}

	if len(WellKnownCodes()) != len(names) {
		t.Errorf("Expected %d codes", len(names))
	}
}

func TestNewTagRejectsBlankName(t *testing.T) {
	if _, err := NewTag("   "); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
	tag, err := NewTag(" LIKE ")
	if err != nil {
		t.Fatalf("NewTag failed: %v", err)
	}
	if !tag.Is(TagLike) {
		t.Errorf("Expected trimmed LIKE, got %q", tag.Name)
	}
}

func TestLikeRoundTrip(t *testing.T) {
	c, u1, u2 := fixture(t)
	post, _ := NewPost(nil, c, u1, "hello", time.Now())
	like := &Tag{ID: 7, Name: "LIKE"}
	other := &Tag{ID: 8, Name: "STAR"}
	_ = post.AddLike(other)

	beforePost := len(post.LikedTags)
	beforeUser := len(u2.Likes)

	if err := like.AddLikedPost(post); err != nil {
		t.Fatalf("AddLikedPost failed: %v", err)
	}
	if err := like.AddLiker(u2); err != nil {
		t.Fatalf("AddLiker failed: %v", err)
	}
	if !u2.HasLike(like) || !like.HasLiker(u2) {
		t.Fatalf("AddLiker must link both sides")
	}

	if err := like.RemoveLike(u2, post); err != nil {
		t.Fatalf("RemoveLike failed: %v", err)
	}
	if len(post.LikedTags) != beforePost || len(u2.Likes) != beforeUser {
		t.Errorf("Expected round trip to restore %d/%d, got %d/%d",
			beforePost, beforeUser, len(post.LikedTags), len(u2.Likes))
	}
	if like.HasLikedPost(post) || like.HasLiker(u2) {
		t.Errorf("tag must drop its own cross-references")
	}
	if !post.IsLikedWith(other) {
		t.Errorf("unrelated like must survive")
	}
}

func TestRemoveLikeNullEndpointsChangeNothing(t *testing.T) {
	c, u1, _ := fixture(t)
	post, _ := NewPost(nil, c, u1, "hello", time.Now())
	like := &Tag{ID: 7, Name: "LIKE"}
	_ = like.AddLikedPost(post)
	_ = like.AddLiker(u1)

	if err := like.RemoveLike(nil, post); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument, got %v", err)
	}
	if err := like.RemoveLike(u1, nil); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument, got %v", err)
	}
	if !post.IsLikedWith(like) || !u1.HasLike(like) {
		t.Errorf("failed removal must not touch either side")
	}
	if err := like.AddLikedPost(nil); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument, got %v", err)
	}
}

func TestRolesStayOnTheirOwnRelation(t *testing.T) {
	u := &User{ID: 3, Username: "admin", Password: "hash"}
	admin := &Tag{ID: 4, Name: "ADMIN"}
	like := &Tag{ID: 7, Name: "LIKE"}

	_ = admin.AddUser(u)
	_ = like.AddLiker(u)

	if !u.HasRole(TagAdmin) || u.HasRole(TagLike) {
		t.Errorf("role relation must only hold ADMIN, got %v", u.Roles)
	}
	if len(admin.LikedBy) != 0 || len(like.Users) != 0 {
		t.Errorf("relations must not bleed into each other")
	}

	_ = admin.RemoveUser(u)
	if u.HasRole(TagAdmin) || len(admin.Users) != 0 {
		t.Errorf("RemoveUser must clear both sides")
	}
}
