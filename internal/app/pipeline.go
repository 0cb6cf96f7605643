package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gitlab-devtools/internal/types"
)

const (
	pipelinePollStep = 30 * time.Second
	pipelineMaxWait  = 2 * time.Hour
)

// WaitPipeline polls a pipeline until it leaves the running and pending
// states, sleeping 30 seconds between polls for at most two hours. A
// pipeline that ends in any state other than success is an error.
func (s Service) WaitPipeline(ctx context.Context, req WaitPipelineRequest) (WaitPipelineResult, error) {
	client := s.NewProject(req.Remote)
	deadline := s.Clock().Add(pipelineMaxWait)

	for {
		pipeline, err := client.GetPipeline(ctx, req.Project, req.PipelineID)
		if err != nil {
			return WaitPipelineResult{}, err
		}
		switch pipeline.Status {
		case types.PipelineStatusRunning, types.PipelineStatusPending:
			log.Info().
				Int("pipeline", pipeline.ID).
				Str("project", req.Project).
				Str("status", string(pipeline.Status)).
				Msgf("waiting %s for pipeline to finish", pipelinePollStep)
		case types.PipelineStatusSuccess:
			log.Info().
				Int("pipeline", pipeline.ID).
				Str("project", req.Project).
				Msg("pipeline succeeded")
			return WaitPipelineResult{Status: pipeline.Status}, nil
		default:
			return WaitPipelineResult{Status: pipeline.Status}, errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(fmt.Sprintf("pipeline %d of project %q ended with status %q",
					pipeline.ID, req.Project, pipeline.Status))
		}

		if s.Clock().After(deadline) {
			return WaitPipelineResult{Status: types.PipelineStatusRunning}, errbuilder.New().
				WithCode(errbuilder.CodeDeadlineExceeded).
				WithMsg(fmt.Sprintf("pipeline %d of project %q still running after %s",
					req.PipelineID, req.Project, pipelineMaxWait))
		}
		if err := ctx.Err(); err != nil {
			return WaitPipelineResult{}, err
		}
		s.Sleep(pipelinePollStep)
	}
}
