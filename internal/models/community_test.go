package models

import (
	"errors"
	"strings"
	"testing"

	"agora/internal/apperr"
)

func TestNewCommunity(t *testing.T) {
	pending := &Tag{ID: 1, Name: "PENDING"}
	c, err := NewCommunity("Chess", "desc", pending)
	if err != nil {
		t.Fatalf("NewCommunity failed: %v", err)
	}
	if !c.InState(TagPending) || c.StateTagID != 1 {
		t.Errorf("Expected PENDING state, got %+v", c.State)
	}
	if len(pending.Communities) != 1 {
		t.Errorf("state tag must list the community")
	}

	if _, err := NewCommunity(" ", "desc", pending); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := NewCommunity("x", strings.Repeat("d", MaxCommunityDescriptionLength+1), pending); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for long description, got %v", err)
	}
	if _, err := NewCommunity("x", "", nil); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument for missing state, got %v", err)
	}
}

func TestSetStateMovesBetweenTags(t *testing.T) {
	pending := &Tag{ID: 1, Name: "PENDING"}
	approved := &Tag{ID: 2, Name: "APPROVED"}
	c, _ := NewCommunity("Chess", "", pending)
	c.ID = 10

	if err := c.SetState(approved); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if !c.InState(TagApproved) || c.StateTagID != 2 {
		t.Errorf("Expected APPROVED, got %+v", c.State)
	}
	if len(pending.Communities) != 0 || len(approved.Communities) != 1 {
		t.Errorf("Expected community to move from PENDING to APPROVED")
	}
}

func TestMembers(t *testing.T) {
	c, u1, u2 := fixture(t)

	_ = c.AddMember(u1)
	_ = c.AddMember(u1)
	_ = c.AddMember(u2)
	if len(c.Members) != 2 || len(u1.Communities) != 1 {
		t.Fatalf("Expected 2 members, got %d", len(c.Members))
	}

	_ = c.RemoveMember(u1)
	if c.HasMember(u1) || len(u1.Communities) != 0 {
		t.Errorf("RemoveMember must clear both sides")
	}
	if err := c.AddMember(nil); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument, got %v", err)
	}
}
