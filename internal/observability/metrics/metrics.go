package metrics

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	gateDecisions   metric.Int64Counter
	ideasCreated    metric.Int64Counter
	votesCast       metric.Int64Counter
	rateLimitDenied metric.Int64Counter
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "hintboard"
	}
	meter := provider.Meter(name)

	gateDecisions, err := meter.Int64Counter("hintboard_gate_decisions_total")
	if err != nil {
		return nil, err
	}
	ideasCreated, err := meter.Int64Counter("hintboard_ideas_created_total")
	if err != nil {
		return nil, err
	}
	votesCast, err := meter.Int64Counter("hintboard_votes_cast_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("hintboard_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gateDecisions:   gateDecisions,
		ideasCreated:    ideasCreated,
		votesCast:       votesCast,
		rateLimitDenied: rateLimitDenied,
	}, nil
}

// RecordGateDecision counts gate outcomes per decision class.
func (m *Metrics) RecordGateDecision(ctx context.Context, decision string) {
	if m == nil {
		return
	}
	m.gateDecisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", strings.TrimSpace(decision)),
	))
}

// RecordIdeaCreated counts idea submissions per organization.
func (m *Metrics) RecordIdeaCreated(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.ideasCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
	))
}

// RecordVoteCast counts votes per organization.
func (m *Metrics) RecordVoteCast(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.votesCast.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
	))
}

// RecordRateLimitDenied counts limiter rejections.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, orgID, endpoint string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
	))
}
