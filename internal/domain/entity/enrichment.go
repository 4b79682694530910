package entity

// VendorSource 一个独立维护的供应商数据集（富化来源）。
type VendorSource struct {
	// ID 来源标识，例如 "acme_supply"
	ID string `json:"id"`
	// Table 该来源对应的富化表名
	Table string `json:"table"`
}

// EnrichmentRecord 单个候选在单个来源下的补充字段。
// 实践中每个候选只被一个来源富化；多来源冲突时按来源顺序后写覆盖。
type EnrichmentRecord struct {
	CandidateID   string            `json:"candidate_id"`
	SourceID      string            `json:"source_id"`
	UsageGuidance string            `json:"usage_guidance,omitempty"`
	KeyFeatures   []string          `json:"key_features,omitempty"`
	Specs         map[string]string `json:"specs,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}
