package dto

import "github.com/rajib3777/academia-sub001/pkg/pagination"

// ── 分页请求 ──

// PaginationRequest 通用分页参数；页大小由各接口策略规整，不在绑定层截断
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1"`
}

// ToRequest 按接口策略规整为分页请求
func (p PaginationRequest) ToRequest(limits pagination.Limits) pagination.Request {
	return pagination.NewRequest(p.Page, p.PageSize, limits)
}

// ── 通用响应片段 ──

// DropdownItem 下拉选项
type DropdownItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ChoiceItem 静态枚举选项
type ChoiceItem struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// GeoItem 地理选项
type GeoItem struct {
	ID     uint64 `json:"id"`
	Name   string `json:"name"`
	BnName string `json:"bn_name"`
}

// NamedItem 名称 + 描述
type NamedItem struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DeleteResultResponse 级联删除结果
type DeleteResultResponse struct {
	Outcome     string `json:"outcome"`
	Enrollments int64  `json:"enrollments_deleted"`
	Batches     int64  `json:"batches_deleted"`
	Courses     int64  `json:"courses_deleted"`
}

// ── 地理查询 ──

// DistrictQuery 县列表查询
type DistrictQuery struct {
	Division uint64 `form:"division"`
}

// UpazilaQuery 乡列表查询
type UpazilaQuery struct {
	District uint64 `form:"district"`
}
