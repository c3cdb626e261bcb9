package models

import (
	"errors"
	"strings"
	"testing"

	"agora/internal/apperr"
)

func TestNewPrivateMessage(t *testing.T) {
	_, u1, u2 := fixture(t)

	for _, text := range []string{"", "   ", "\t\n", strings.Repeat("a", MaxTextLength+1)} {
		if _, err := NewPrivateMessage(text, u1, u2); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument for %q, got %v", text, err)
		}
	}
	if len(u1.SentMessages) != 0 || len(u2.ReceivedMessages) != 0 {
		t.Fatalf("rejected messages must not be registered")
	}

	m, err := NewPrivateMessage("hi", u1, u2)
	if err != nil {
		t.Fatalf("NewPrivateMessage failed: %v", err)
	}
	if len(u1.SentMessages) != 1 || u1.SentMessages[0] != m {
		t.Errorf("Expected message in sender's sent collection")
	}
	if len(u2.ReceivedMessages) != 1 || u2.ReceivedMessages[0] != m {
		t.Errorf("Expected message in receiver's received collection")
	}

	if _, err := NewPrivateMessage("hi", nil, u2); !errors.Is(err, apperr.ErrNullArgument) {
		t.Errorf("Expected ErrNullArgument, got %v", err)
	}
}

func TestPrivateMessageEquality(t *testing.T) {
	_, u1, u2 := fixture(t)
	a := &PrivateMessage{ID: 1, Text: "hi", SenderID: u1.ID, ReceiverID: u2.ID}
	b := &PrivateMessage{ID: 2, Text: "hi", Sender: u1, Receiver: u2}
	c := &PrivateMessage{ID: 1, Text: "hi", SenderID: u2.ID, ReceiverID: u1.ID}

	if !a.Equal(b) {
		t.Errorf("same sender, receiver and text must be equal regardless of id")
	}
	if a.Equal(c) {
		t.Errorf("swapped direction must not be equal")
	}
	if a.Equal(nil) {
		t.Errorf("nil must not equal a message")
	}
}

func TestUserContact(t *testing.T) {
	_, u1, u2 := fixture(t)
	if _, err := NewUserContact(u1, u1); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for self contact, got %v", err)
	}
	c, err := NewUserContact(u1, u2)
	if err != nil {
		t.Fatalf("NewUserContact failed: %v", err)
	}
	if c.UserID != 1 || c.ContactID != 2 {
		t.Errorf("unexpected keys %d/%d", c.UserID, c.ContactID)
	}
}

func TestUserPassword(t *testing.T) {
	u, err := NewUser("james", "secret")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if u.Password == "secret" {
		t.Fatalf("password must be stored hashed")
	}
	if !u.CheckPassword("secret") || u.CheckPassword("wrong") {
		t.Errorf("CheckPassword mismatch")
	}
	if _, err := NewUser("", "secret"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for blank username, got %v", err)
	}
}
