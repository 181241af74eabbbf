// Package briefing turns registry and ledger state into operator narratives.
package briefing

import (
	"context"
	"fmt"
	"log/slog"

	"shieldhive/internal/store"
	"shieldhive/internal/threats"
	"shieldhive/pkg/api"
)

// Fixed sentinel narratives. Agents and the dashboard key off these exact
// strings, so they never change shape with the underlying failure.
const (
	OfflineNarrative  = "AI_OFFLINE: Heuristic Analysis Only."
	FallbackNarrative = "AI_UNREACHABLE: Fallback to standard DB analysis."
)

// Threat levels emitted by the fleet brief.
const (
	LevelCritical = "CRITICAL"
	LevelElevated = "ELEVATED"
	LevelLow      = "LOW"
	LevelNominal  = "NOMINAL"
	LevelUnknown  = "UNKNOWN"
)

// criticalThreshold is the high-severity count above which the fleet brief
// escalates to CRITICAL.
const criticalThreshold = 5

// StatsStore is the read-only slice of the store the brief consumes.
type StatsStore interface {
	CountAgents(ctx context.Context) (int64, error)
	CountAgentsByStatus(ctx context.Context, status store.AgentStatus) (int64, error)
	CountThreats(ctx context.Context) (int64, error)
	CountHighSeverity(ctx context.Context, threshold int) (int64, error)
}

// Engine produces per-threat narratives and the deterministic fleet brief.
type Engine struct {
	stats  StatsStore
	oracle Oracle
	logger *slog.Logger
}

// New creates a briefing engine. A nil oracle means offline mode: per-threat
// narratives return the offline sentinel without any network call.
func New(stats StatsStore, oracle Oracle, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{stats: stats, oracle: oracle, logger: logger}
}

// ThreatNarrative asks the oracle for a one-sentence assessment. Oracle
// failures never propagate: any error collapses into the fallback sentinel.
func (e *Engine) ThreatNarrative(ctx context.Context, threatName, reasons, fileHash string) string {
	if e.oracle == nil {
		return OfflineNarrative
	}

	text, err := e.oracle.Analyze(ctx, threatName, reasons, fileHash)
	if err != nil {
		e.logger.Warn("oracle analysis failed",
			"threat_name", threatName,
			"error", err,
		)
		return FallbackNarrative
	}
	return text
}

// FleetBrief classifies the current fleet posture without touching the
// oracle. It never fails on normal data; if the store is unreadable it
// reports UNKNOWN instead of erroring.
func (e *Engine) FleetBrief(ctx context.Context) api.BriefResponse {
	totalAgents, err := e.stats.CountAgents(ctx)
	if err != nil {
		return e.unknownBrief(err)
	}
	onlineAgents, err := e.stats.CountAgentsByStatus(ctx, store.AgentStatusOnline)
	if err != nil {
		return e.unknownBrief(err)
	}
	totalThreats, err := e.stats.CountThreats(ctx)
	if err != nil {
		return e.unknownBrief(err)
	}
	highSeverity, err := e.stats.CountHighSeverity(ctx, threats.DefaultHighSeverity)
	if err != nil {
		return e.unknownBrief(err)
	}

	var level, recommendation string
	switch {
	case highSeverity > criticalThreshold:
		level = LevelCritical
		recommendation = fmt.Sprintf(
			"%d high-severity threats detected. Immediate action required. Recommend isolation of affected systems.",
			highSeverity,
		)
	case highSeverity > 0:
		level = LevelElevated
		recommendation = fmt.Sprintf(
			"%d elevated threat(s) detected. Active monitoring in progress. Review threat intel feed.",
			highSeverity,
		)
	case totalThreats > 0:
		level = LevelLow
		recommendation = fmt.Sprintf(
			"%d known signature(s) catalogued. No active threats detected. Systems nominal.",
			totalThreats,
		)
	default:
		level = LevelNominal
		recommendation = fmt.Sprintf(
			"All systems operational. %d/%d agents reporting. No threats detected.",
			onlineAgents, totalAgents,
		)
	}

	return api.BriefResponse{
		Status:         "active",
		ThreatLevel:    level,
		Recommendation: recommendation,
		Summary:        fmt.Sprintf("%d agent(s) online. %d threat(s) tracked.", onlineAgents, totalThreats),
	}
}

func (e *Engine) unknownBrief(err error) api.BriefResponse {
	e.logger.Error("fleet brief stats unavailable", "error", err)
	return api.BriefResponse{
		Status:         "error",
		ThreatLevel:    LevelUnknown,
		Recommendation: "Unable to analyze threat data.",
		Error:          err.Error(),
	}
}
