package api

import (
	"context"
	"fmt"

	"github.com/hazyhaar/jawab/pkg/kit"
	"github.com/hazyhaar/jawab/pkg/match"
	"github.com/hazyhaar/jawab/pkg/store"
)

// Shared request/response types used by both HTTP and MCP transports.

type askReq struct {
	Question string
}

type askResponse struct {
	Outcome string  `json:"outcome"`
	Answer  string  `json:"answer,omitempty"`
	Stage   string  `json:"stage,omitempty"`
	Score   float64 `json:"score,omitempty"`
}

type teachReq struct {
	Question string
	Answer   string
}

type teachResponse struct {
	Created bool   `json:"created"`
	ID      string `json:"id,omitempty"`
}

type statsResponse struct {
	Records int `json:"records"`
}

// Endpoints return the core kit.Endpoints backed by the matcher and store.

func askEndpoint(m *match.Matcher) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*askReq)
		if req.Question == "" {
			return nil, fmt.Errorf("question is empty")
		}
		res := m.FindAnswer(ctx, req.Question)
		return askResponse{
			Outcome: res.Outcome.String(),
			Answer:  res.Answer,
			Stage:   res.Stage,
			Score:   res.Score,
		}, nil
	}
}

func teachEndpoint(m *match.Matcher) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*teachReq)
		created, rec, err := m.Teach(ctx, req.Question, req.Answer, kit.GetSource(ctx))
		if err != nil {
			return nil, err
		}
		resp := teachResponse{Created: created}
		if created {
			resp.ID = rec.ID
		}
		return resp, nil
	}
}

func statsEndpoint(st *store.DB) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		n, err := st.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
		return statsResponse{Records: n}, nil
	}
}
