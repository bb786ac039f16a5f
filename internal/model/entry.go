package model

import "time"

// Entry is one word/meaning/category/memo record owned by a single user.
// Category and Memo are nil when the user left them blank.
type Entry struct {
	ID        int64     `gorm:"column:word_id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;not null;size:50;index;index:idx_words_user_word,priority:1" json:"userId"`
	Word      string    `gorm:"not null;size:255;index:idx_words_user_word,priority:2" json:"word"`
	Meaning   string    `gorm:"type:text;not null" json:"meaning"`
	Category  *string   `gorm:"size:100" json:"category,omitempty"`
	Memo      *string   `gorm:"type:text" json:"memo,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updatedAt"`
}

func (Entry) TableName() string {
	return "words"
}

// CategoryName returns the category or "" when there is none.
func (e Entry) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}

// MemoText returns the memo or "" when there is none.
func (e Entry) MemoText() string {
	if e.Memo == nil {
		return ""
	}
	return *e.Memo
}
