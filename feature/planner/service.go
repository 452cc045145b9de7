package planner

import (
	"context"
	"errors"

	"azuread-connector/core/auth"
	"azuread-connector/core/graph"

	"go.uber.org/zap"
)

// Service walks the planner plans reachable through group membership.
type Service struct {
	client *graph.Client
	logger *zap.Logger
}

// NewService creates the planner service. Plans are always read with the
// application principal; the planner API has no meaningful delegated story
// for a bulk export.
func NewService(provider *auth.Provider, graphCfg graph.Config, logger *zap.Logger) *Service {
	return &Service{
		client: graph.NewClient(graphCfg, provider.Token, logger),
		logger: logger,
	}
}

// Plans opens a record stream over every planner plan of every group, with
// the plan details embedded under the details field. The group listing is
// primed eagerly so upstream failures surface before streaming begins.
func (s *Service) Plans(ctx context.Context) (*planStream, error) {
	groups := s.client.Fetch(ctx, "/groups/", "")
	if err := groups.Prime(); err != nil {
		return nil, err
	}
	return &planStream{ctx: ctx, client: s.client, logger: s.logger, groups: groups}, nil
}

// planStream yields plans group by group. Groups whose plan listing is
// rejected upstream are skipped: most tenants have plenty of groups that
// never provisioned a plan, and the API answers those with a 403 or 404
// rather than an empty collection.
type planStream struct {
	ctx    context.Context
	client *graph.Client
	logger *zap.Logger

	groups *graph.Pager
	plans  *graph.Pager
	err    error
}

// Next returns the next plan, fetching groups and their plan collections
// lazily. Detail lookups are per plan and a failure there aborts the stream;
// unlike the listing, a plan that exists must have details.
func (p *planStream) Next() (graph.Record, bool) {
	for {
		if p.err != nil {
			return nil, false
		}

		if p.plans != nil {
			if plan, ok := p.plans.Next(); ok {
				details, err := p.client.Get(p.ctx, "/planner/plans/"+plan.ID()+"/details")
				if err != nil {
					p.err = err
					return nil, false
				}
				plan["details"] = details
				return plan, true
			}

			if err := p.plans.Err(); err != nil {
				var reqErr *graph.RequestError
				if !errors.As(err, &reqErr) {
					p.err = err
					return nil, false
				}
				p.logger.Warn("skipping group without readable plans",
					zap.Int("status", reqErr.StatusCode),
				)
			}
			p.plans = nil
		}

		group, ok := p.groups.Next()
		if !ok {
			p.err = p.groups.Err()
			return nil, false
		}
		if group.ID() == "" {
			continue
		}
		p.plans = p.client.Fetch(p.ctx, "/groups/"+group.ID()+"/planner/plans", "")
	}
}

// Err returns the error that terminated the stream, if any.
func (p *planStream) Err() error { return p.err }
