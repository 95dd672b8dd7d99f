package model

// Division 行政区（一级）
type Division struct {
	ID     uint64 `gorm:"primaryKey"                  json:"id"`
	Name   string `gorm:"type:varchar(100);not null"  json:"name"`
	BnName string `gorm:"type:varchar(100);not null"  json:"bn_name"`
	BaseModel
}

// TableName 指定表名
func (Division) TableName() string { return "divisions" }

// District 县（二级），隶属 Division
type District struct {
	ID         uint64 `gorm:"primaryKey"                 json:"id"`
	DivisionID uint64 `gorm:"not null;index"             json:"division_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	BnName     string `gorm:"type:varchar(100);not null" json:"bn_name"`
	BaseModel

	Division *Division `gorm:"foreignKey:DivisionID" json:"division,omitempty"`
}

// TableName 指定表名
func (District) TableName() string { return "districts" }

// Upazila 乡（三级），隶属 District
type Upazila struct {
	ID         uint64 `gorm:"primaryKey"                 json:"id"`
	DistrictID uint64 `gorm:"not null;index"             json:"district_id"`
	Name       string `gorm:"type:varchar(100);not null" json:"name"`
	BnName     string `gorm:"type:varchar(100);not null" json:"bn_name"`
	BaseModel

	District *District `gorm:"foreignKey:DistrictID" json:"district,omitempty"`
}

// TableName 指定表名
func (Upazila) TableName() string { return "upazilas" }
