package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"agora/internal/apperr"

	"gorm.io/gorm"
)

// PrivateMessage 私信。相等性按 (发送者, 接收者, 内容) 判断，而非 ID
type PrivateMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"size:1024;not null" json:"text"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"sender,omitempty"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"receiver,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *PrivateMessage) key() uint { return m.ID }

// NewPrivateMessage validates the text and registers the message with both users.
func NewPrivateMessage(text string, sender, receiver *User) (*PrivateMessage, error) {
	if err := checkMessageText("NewPrivateMessage", text); err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, apperr.Null("NewPrivateMessage", "sender")
	}
	if receiver == nil {
		return nil, apperr.Null("NewPrivateMessage", "receiver")
	}
	m := &PrivateMessage{
		Text:       text,
		Sender:     sender,
		SenderID:   sender.ID,
		Receiver:   receiver,
		ReceiverID: receiver.ID,
	}
	sender.addSentMessage(m)
	receiver.addReceivedMessage(m)
	return m, nil
}

func checkMessageText(op, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Invalid(op, "text must contain non-whitespace characters")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return apperr.Invalid(op, "text exceeds %d characters", MaxTextLength)
	}
	return nil
}

func (m *PrivateMessage) SetText(text string) error {
	if err := checkMessageText("PrivateMessage.SetText", text); err != nil {
		return err
	}
	m.Text = text
	return nil
}

// Equal compares sender id, receiver id and text. Two messages with the same
// content between the same users are equal even when stored twice.
func (m *PrivateMessage) Equal(o *PrivateMessage) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.senderKey() == o.senderKey() &&
		m.receiverKey() == o.receiverKey() &&
		m.Text == o.Text
}

func (m *PrivateMessage) senderKey() uint {
	if m.Sender != nil {
		return m.Sender.ID
	}
	return m.SenderID
}

func (m *PrivateMessage) receiverKey() uint {
	if m.Receiver != nil {
		return m.Receiver.ID
	}
	return m.ReceiverID
}

func (m *PrivateMessage) Validate() error {
	if err := checkMessageText("PrivateMessage.Validate", m.Text); err != nil {
		return err
	}
	if m.SenderID == 0 || m.ReceiverID == 0 {
		return apperr.Invalid("PrivateMessage.Validate", "sender and receiver must be saved users")
	}
	return nil
}

func (m *PrivateMessage) BeforeSave(tx *gorm.DB) error {
	if m.Sender != nil && m.Sender.ID != 0 {
		m.SenderID = m.Sender.ID
	}
	if m.Receiver != nil && m.Receiver.ID != 0 {
		m.ReceiverID = m.Receiver.ID
	}
	return m.Validate()
}
