package domain

import "time"

// Message 表示一条用户间的站内消息
//
// 发送者在创建时固定，不可变更；收件人集合在创建时一次性
// 建立（多对多关联），之后没有任何追加入口。
type Message struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Subject   string    `json:"subject" gorm:"type:varchar(500);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	SenderID  string    `json:"senderId" gorm:"type:varchar(36);index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Recipients 收件人列表，多对多关联
	Recipients []User `json:"recipients,omitempty" gorm:"many2many:message_recipients"`
}

// RecipientIDs 返回收件人 ID 列表
func (m *Message) RecipientIDs() []string {
	ids := make([]string, 0, len(m.Recipients))
	for i := range m.Recipients {
		ids = append(ids, m.Recipients[i].ID)
	}
	return ids
}

// IsRecipient 判断指定用户是否为该消息的收件人
func (m *Message) IsRecipient(userID string) bool {
	for i := range m.Recipients {
		if m.Recipients[i].ID == userID {
			return true
		}
	}
	return false
}
