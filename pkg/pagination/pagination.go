// Package pagination 提供页码/页大小规整与分页元数据计算
package pagination

// Meta 分页元数据，字段与前端约定一致
type Meta struct {
	Page         int   `json:"page"`
	PageSize     int   `json:"page_size"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
	NextPage     *int  `json:"next_page"`
	PreviousPage *int  `json:"previous_page"`
}

// Limits 单个列表接口的页大小策略
type Limits struct {
	Default int
	Max     int
}

// 各列表接口的页大小策略
var (
	LandingLimits         = Limits{Default: 12, Max: 24}
	ManageLimits          = Limits{Default: 10, Max: 20}
	FeaturedLimits        = Limits{Default: 6, Max: 12}
	FeaturedTeacherLimits = Limits{Default: 4, Max: 12}
)

// ClampSize 规整页大小：<=0 取默认值，超过上限截断
func (l Limits) ClampSize(size int) int {
	if size <= 0 {
		return l.Default
	}
	if size > l.Max {
		return l.Max
	}
	return size
}

// Request 规整后的分页请求
type Request struct {
	Page     int
	PageSize int
}

// NewRequest 按策略规整页码与页大小
func NewRequest(page, size int, limits Limits) Request {
	if page < 1 {
		page = 1
	}
	return Request{Page: page, PageSize: limits.ClampSize(size)}
}

// Offset 当前页偏移量
func (r Request) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// TotalPages 总页数，空集合视为 1 页
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	pages := int(total) / size
	if int(total)%size > 0 {
		pages++
	}
	return pages
}

// Resolve 将页码落到合法区间：超出末页取末页
// 返回修正后的请求，调用方据此计算 Offset 后再查询
func (r Request) Resolve(total int64) Request {
	pages := TotalPages(total, r.PageSize)
	if r.Page > pages {
		r.Page = pages
	}
	if r.Page < 1 {
		r.Page = 1
	}
	return r
}

// BuildMeta 根据总数与（已修正的）请求生成分页元数据
func BuildMeta(total int64, r Request) Meta {
	r = r.Resolve(total)
	pages := TotalPages(total, r.PageSize)

	m := Meta{
		Page:        r.Page,
		PageSize:    r.PageSize,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     r.Page < pages,
		HasPrevious: r.Page > 1,
	}
	if m.HasNext {
		next := r.Page + 1
		m.NextPage = &next
	}
	if m.HasPrevious {
		prev := r.Page - 1
		m.PreviousPage = &prev
	}
	return m
}
