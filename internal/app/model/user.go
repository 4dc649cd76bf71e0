package model

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                               // 사용자 ID
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`             // 이름
	Apartment    string    `gorm:"type:varchar(100);not null" json:"apartment"`        // 동/호수
	Phone        string    `gorm:"type:varchar(10);uniqueIndex;not null" json:"phone"` // 전화번호 (로그인 키, 숫자 10자리)
	PasswordHash string    `gorm:"not null" json:"-"`                                  // 비밀번호 해시
	Email        *string   `gorm:"type:varchar(255)" json:"email,omitempty"`           // 이메일 (선택)
	CreatedAt    time.Time `json:"created_at"`                                         // 생성 시각
	UpdatedAt    time.Time `json:"updated_at"`                                         // 수정 시각
}

func (User) TableName() string {
	return "users"
}

// Snapshot returns the profile fields carried in a session.
func (u *User) Snapshot() map[string]interface{} {
	data := map[string]interface{}{
		"id":        u.ID,
		"name":      u.Name,
		"apartment": u.Apartment,
		"phone":     u.Phone,
	}
	if u.Email != nil {
		data["email"] = *u.Email
	}
	return data
}
