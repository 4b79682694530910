// Package search 实现检索编排：归一化 -> 策略检索 -> 富化扇出
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"bom-matching-api/internal/application/enrichment"
	"bom-matching-api/internal/application/normalize"
	"bom-matching-api/internal/application/strategy"
	"bom-matching-api/internal/domain/entity"
	"bom-matching-api/pkg/logger"
	"bom-matching-api/pkg/metrics"

	pkgErrors "bom-matching-api/pkg/errors"
)

// Orchestrator 检索编排器。对策略实现无感知，只按模式分发。
// 富化失败降级为告警；候选存储不可达、双分支失败与调用方取消为致命错误。
type Orchestrator struct {
	normalizer  *normalize.Normalizer
	strategies  map[strategy.Mode]strategy.Strategy
	defaultMode strategy.Mode
	fanout      *enrichment.Fanout
}

func NewOrchestrator(normalizer *normalize.Normalizer, strategies map[strategy.Mode]strategy.Strategy, defaultMode strategy.Mode, fanout *enrichment.Fanout) *Orchestrator {
	if defaultMode == "" {
		defaultMode = strategy.ModeFamilyFirst
	}
	return &Orchestrator{
		normalizer:  normalizer,
		strategies:  strategies,
		defaultMode: defaultMode,
		fanout:      fanout,
	}
}

// Search 执行一次物料匹配检索。mode 为空时取配置的默认模式。
// 零匹配是合法结果：除致命错误外总是返回带告警的 SearchOutcome。
func (o *Orchestrator) Search(ctx context.Context, rawText, modeStr string) (*entity.SearchOutcome, error) {
	start := time.Now()

	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, pkgErrors.New(pkgErrors.CodeInvalidParam, "query text is required")
	}
	mode, err := o.resolveMode(modeStr)
	if err != nil {
		return nil, err
	}

	outcome, err := o.search(ctx, rawText, mode)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchTotal.WithLabelValues(string(mode), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	outcome.Elapsed = time.Since(start)
	metrics.SearchMatches.WithLabelValues(string(mode)).Observe(float64(len(outcome.Matches)))
	logger.Info(ctx, "search completed",
		"mode", string(mode),
		"matches", len(outcome.Matches),
		"warnings", len(outcome.Warnings),
		"family", outcome.FamilyLabel,
		"elapsed_ms", outcome.Elapsed.Milliseconds(),
	)
	return outcome, nil
}

func (o *Orchestrator) search(ctx context.Context, rawText string, mode strategy.Mode) (*entity.SearchOutcome, error) {
	strat := o.strategies[mode]
	if strat == nil {
		return nil, pkgErrors.New(pkgErrors.CodeUnsupportedMode, "search mode not configured: "+string(mode))
	}

	q := o.normalizer.Normalize(rawText)
	outcome := &entity.SearchOutcome{Query: q}

	res, err := strat.Execute(ctx, q)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, pkgErrors.Wrap(err, pkgErrors.CodeCancelled, "search cancelled")
		}
		if recoverable(err) {
			// 降级为零匹配结果
			outcome.Warnings = append(outcome.Warnings, "search degraded: "+err.Error())
			metrics.SearchWarnings.WithLabelValues("strategy").Inc()
			return outcome, nil
		}
		return nil, err
	}

	outcome.FamilyLabel = res.FamilyLabel
	outcome.ClassificationCode = res.ClassificationCode
	outcome.Warnings = append(outcome.Warnings, res.Warnings...)
	metrics.SearchWarnings.WithLabelValues("strategy").Add(float64(len(res.Warnings)))

	matches := assembleMatches(res)
	if len(matches) > 0 && o.fanout != nil {
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		enriched, warnings, err := o.fanout.Enrich(ctx, ids)
		if err != nil {
			if cancelled(ctx, err) {
				return nil, pkgErrors.Wrap(err, pkgErrors.CodeCancelled, "search cancelled")
			}
			return nil, pkgErrors.Wrap(err, pkgErrors.CodeEnrichmentFailed, "enrichment failed")
		}
		outcome.Warnings = append(outcome.Warnings, warnings...)
		metrics.SearchWarnings.WithLabelValues("enrichment").Add(float64(len(warnings)))
		for i := range matches {
			matches[i].Enrichment = enriched[matches[i].ID]
		}
	}
	outcome.Matches = matches
	return outcome, nil
}

func (o *Orchestrator) resolveMode(modeStr string) (strategy.Mode, error) {
	if modeStr == "" {
		return o.defaultMode, nil
	}
	mode, err := strategy.ParseMode(modeStr)
	if err != nil {
		return "", pkgErrors.New(pkgErrors.CodeUnsupportedMode, err.Error())
	}
	return mode, nil
}

// assembleMatches 组装最终匹配列表：按序去重，保留首次出现的位置。
// 词法候选无相似度分，分数字段保持缺省而不是补零。
func assembleMatches(res *strategy.Result) []entity.FinalMatch {
	fusionScores := make(map[string]float64, len(res.Fused))
	for _, rm := range res.Fused {
		fusionScores[rm.Candidate.ID] = rm.FusionScore
	}

	seen := make(map[string]struct{}, len(res.Matches))
	matches := make([]entity.FinalMatch, 0, len(res.Matches))
	for _, c := range res.Matches {
		if c.ID == "" {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		m := entity.FinalMatch{CandidateProduct: c.CandidateProduct}
		if c.Similarity > 0 {
			sim := c.Similarity
			m.Similarity = &sim
		}
		if score, ok := fusionScores[c.ID]; ok {
			m.FusionScore = &score
		}
		matches = append(matches, m)
	}
	return matches
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// recoverable 判断策略错误是否可降级为告警。
// 候选存储不可达与双分支失败保持致命。
func recoverable(err error) bool {
	appErr := pkgErrors.AsAppError(err)
	if appErr == nil {
		return false
	}
	switch appErr.Code {
	case pkgErrors.CodeEmbeddingFailed, pkgErrors.CodeParseFailed, pkgErrors.CodeFamilyNotResolved:
		return true
	default:
		return false
	}
}
