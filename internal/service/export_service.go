package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rajib3777/academia-sub001/internal/dto"
	"github.com/rajib3777/academia-sub001/internal/model"
	"github.com/rajib3777/academia-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoAcademies  = errors.New("没有可导出的机构")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出范围与管理端机构列表一致（相同过滤条件与角色范围），但不分页
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportAcademies 导出机构列表为 Excel
	ExportAcademies(ctx context.Context, p Principal, req *dto.AcademyListRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, now: time.Now, logger: logger}
}

// 表头顺序即列顺序
var academyExportHeaders = []string{
	"ID", "名称", "联系电话", "邮箱", "网站", "成立年份",
	"Division", "District", "Upazila", "地址", "评分", "评价数", "是否推荐", "是否启用", "账号",
}

// ═══════════════════════════════════════════════════════════
// ExportAcademies — 导出机构列表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "机构列表"
//   - 第 1 行标题，第 2 行表头，第 3 行起每个机构一行
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportAcademies(ctx context.Context, p Principal, req *dto.AcademyListRequest) (*bytes.Buffer, string, error) {
	// 1. 范围与数据
	scope, err := resolveScope(ctx, s.repo, p)
	if err != nil {
		s.logger.Error("解析可见范围失败", zap.Error(err))
		return nil, "", err
	}
	academies, err := s.repo.Academy.ListAll(ctx, academyFilter(req), scope)
	if err != nil {
		s.logger.Error("查询导出机构失败", zap.Error(err))
		return nil, "", err
	}
	if len(academies) == 0 {
		return nil, "", ErrExportNoAcademies
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "机构列表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", colName(len(academyExportHeaders)-1), 18)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	exportedAt := s.now().Format(dateLayout)
	lastCol := colName(len(academyExportHeaders) - 1)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("机构列表（%s）", exportedAt))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range academyExportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for i := range academies {
		for col, v := range academyExportRow(&academies[i]) {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("academies_%s.xlsx", exportedAt)
	return buf, filename, nil
}

func academyExportRow(a *model.Academy) []interface{} {
	geoName := func(name string, ok bool) string {
		if !ok {
			return "-"
		}
		return name
	}
	var division, district, upazila string
	if a.Division != nil {
		division = a.Division.Name
	}
	if a.District != nil {
		district = a.District.Name
	}
	if a.Upazila != nil {
		upazila = a.Upazila.Name
	}

	established := "-"
	if a.EstablishedYear != nil {
		established = fmt.Sprintf("%d", *a.EstablishedYear)
	}
	rating := "-"
	if a.AvgRating != nil {
		rating = fmt.Sprintf("%.1f", *a.AvgRating)
	}
	account := "-"
	if a.User != nil {
		account = a.User.Username
	}

	return []interface{}{
		a.ID,
		a.Name,
		a.ContactNumber,
		a.Email,
		a.Website,
		established,
		geoName(division, a.Division != nil),
		geoName(district, a.District != nil),
		geoName(upazila, a.Upazila != nil),
		joinAddress(a.StreetAddress, a.AreaOrUnion, a.PostalCode),
		rating,
		a.ReviewCount,
		yesNo(a.IsFeatured),
		yesNo(a.IsActive),
		account,
	}
}

func joinAddress(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	if out == "" {
		return "-"
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "是"
	}
	return "否"
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
