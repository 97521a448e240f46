package domain

import "time"

// Attachment 表示消息的附件
//
// Data 为不透明的内容载荷（通常是 base64 字符串），系统不做
// 任何解析；所属消息与上传者在创建时固定。
type Attachment struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Alt        string    `json:"alt" gorm:"type:varchar(255);not null"`
	Data       string    `json:"data" gorm:"type:text;not null"`
	MessageID  string    `json:"messageId" gorm:"type:varchar(36);index;not null"`
	UploaderID string    `json:"uploaderId" gorm:"type:varchar(36);index;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
