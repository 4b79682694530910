package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"

	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/pkg/logger"
)

// enrichmentColumns 富化表的预期结构。缺列的表在探测时被跳过，
// 因此新增供应商数据集只需建表，不需要代码改动。
var enrichmentColumns = []string{"candidate_id", "usage_guidance", "key_features", "specs", "attributes"}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// EnrichmentRepository 供应商富化仓储实现。
// 来源表按名称前缀在 information_schema 中探测。
type EnrichmentRepository struct {
	client      *Client
	tablePrefix string
}

// NewEnrichmentRepository 创建富化仓储
func NewEnrichmentRepository(client *Client, tablePrefix string) *EnrichmentRepository {
	if tablePrefix == "" {
		tablePrefix = "vendor_enrichment_"
	}
	return &EnrichmentRepository{client: client, tablePrefix: tablePrefix}
}

// DiscoverSources 探测所有暴露预期富化结构的供应商来源表
func (r *EnrichmentRepository) DiscoverSources(ctx context.Context) ([]*entity.VendorSource, error) {
	ctx, span := tracer.Start(ctx, "postgres.EnrichmentRepository.DiscoverSources")
	defer span.End()

	rows, err := r.client.db.WithContext(ctx).Raw(`
		SELECT table_name, array_agg(column_name::text)
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name LIKE ?
		GROUP BY table_name
		ORDER BY table_name`,
		escapeLike(r.tablePrefix)+"%",
	).Rows()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to probe enrichment tables: %w", err)
	}
	defer rows.Close()

	var sources []*entity.VendorSource
	for rows.Next() {
		var table string
		var columns pq.StringArray
		if err := rows.Scan(&table, &columns); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan enrichment table row: %w", err)
		}
		if missing := missingColumns(columns); len(missing) > 0 {
			logger.Warn(ctx, "enrichment table skipped, unexpected shape",
				"table", table, "missing_columns", strings.Join(missing, ","))
			continue
		}
		sources = append(sources, &entity.VendorSource{
			ID:    strings.TrimPrefix(table, r.tablePrefix),
			Table: table,
		})
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate enrichment tables: %w", err)
	}
	return sources, nil
}

// FetchEnrichment 查询单个来源下给定候选的富化记录
func (r *EnrichmentRepository) FetchEnrichment(ctx context.Context, source *entity.VendorSource, candidateIDs []string) ([]*entity.EnrichmentRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.EnrichmentRepository.FetchEnrichment")
	defer span.End()

	if len(candidateIDs) == 0 {
		return nil, nil
	}
	if !tableNamePattern.MatchString(source.Table) {
		return nil, fmt.Errorf("invalid enrichment table name: %q", source.Table)
	}

	query := fmt.Sprintf(
		"SELECT candidate_id, usage_guidance, key_features, specs, attributes FROM %s WHERE candidate_id = ANY(?)",
		pq.QuoteIdentifier(source.Table),
	)
	rows, err := r.client.db.WithContext(ctx).Raw(query, pq.Array(candidateIDs)).Rows()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query enrichment source %s: %w", source.ID, err)
	}
	defer rows.Close()

	var records []*entity.EnrichmentRecord
	for rows.Next() {
		rec, err := scanEnrichmentRow(rows, source.ID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan enrichment row from %s: %w", source.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to iterate enrichment rows from %s: %w", source.ID, err)
	}
	return records, nil
}

func scanEnrichmentRow(rows *sql.Rows, sourceID string) (*entity.EnrichmentRecord, error) {
	var (
		candidateID string
		guidance    sql.NullString
		features    pq.StringArray
		specsRaw    []byte
		attrsRaw    []byte
	)
	if err := rows.Scan(&candidateID, &guidance, &features, &specsRaw, &attrsRaw); err != nil {
		return nil, err
	}

	rec := &entity.EnrichmentRecord{
		CandidateID:   candidateID,
		SourceID:      sourceID,
		UsageGuidance: guidance.String,
		KeyFeatures:   features,
	}
	if len(specsRaw) > 0 {
		if err := json.Unmarshal(specsRaw, &rec.Specs); err != nil {
			return nil, fmt.Errorf("invalid specs payload: %w", err)
		}
	}
	if len(attrsRaw) > 0 {
		if err := json.Unmarshal(attrsRaw, &rec.Attributes); err != nil {
			return nil, fmt.Errorf("invalid attributes payload: %w", err)
		}
	}
	return rec, nil
}

func missingColumns(columns []string) []string {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	var missing []string
	for _, want := range enrichmentColumns {
		if _, ok := have[want]; !ok {
			missing = append(missing, want)
		}
	}
	return missing
}
