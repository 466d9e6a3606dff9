package model

// 建议分类
const (
	AdviceCategoryAll     = "todos"
	AdviceCategoryDefault = "geral"
)

// AdviceCategories 允许的建议分类
var AdviceCategories = []string{"geral", "saude", "carreira", "relacionamentos", "estudos"}

// IsAdviceCategory 判断分类是否合法
func IsAdviceCategory(category string) bool {
	for _, c := range AdviceCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Advice 建议
type Advice struct {
	Base
	Title    string `gorm:"type:varchar(200);not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Category string `gorm:"type:varchar(30);not null;default:'geral';index" json:"category"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`

	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName 指定表名
func (Advice) TableName() string {
	return "advices"
}
