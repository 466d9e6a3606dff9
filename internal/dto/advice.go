package dto

// AdviceCreateRequest 发布建议请求
type AdviceCreateRequest struct {
	Title    string `json:"title" binding:"required,notblank,max=200"`
	Content  string `json:"content" binding:"required,notblank,max=5000"`
	Category string `json:"category" binding:"omitempty,oneof=geral saude carreira relacionamentos estudos"`
}

// AdviceListRequest 建议列表请求
type AdviceListRequest struct {
	Category string `form:"category"`
}

// AdviceResponse 建议响应
type AdviceResponse struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Category   string `json:"category"`
	AuthorID   uint   `json:"author_id"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}
