// Package entity 定义领域实体
package entity

// MaterialFamily 物料族，对应固定分类树中的一个节点。
// 只读参考数据，核心流程不会修改。
type MaterialFamily struct {
	// Label 唯一键，例如 "masonry_block"
	Label string `json:"label"`
	// DisplayName 展示名，例如 "Concrete Masonry Unit"
	DisplayName string `json:"display_name,omitempty"`
	// ClassificationCode 外部标准分类码（CSI MasterFormat），例如 "04 22 00"
	ClassificationCode string `json:"classification_code,omitempty"`
	// TypicalLeadTimeDays 典型交期（天）
	TypicalLeadTimeDays int `json:"typical_lead_time_days,omitempty"`
}

// TableName GORM 表名
func (MaterialFamily) TableName() string {
	return "material_families"
}
