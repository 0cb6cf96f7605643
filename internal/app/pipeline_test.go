package app

import (
	"context"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/types"
)

// pollingProject serves a scripted sequence of pipeline states, one per
// GetPipeline call.
type pollingProject struct {
	fakeProject
	states []types.PipelineStatus
	polls  int
}

func (p *pollingProject) GetPipeline(_ context.Context, _ string, pipelineID int) (types.Pipeline, error) {
	state := p.states[p.polls]
	if p.polls < len(p.states)-1 {
		p.polls++
	}
	return types.Pipeline{ID: pipelineID, Status: state}, nil
}

func newWaitService(project *pollingProject, clock func() time.Time) Service {
	return Service{
		NewProject: func(_ RemoteConfig) ports.ProjectPort { return project },
		Clock:      clock,
		Sleep:      func(time.Duration) {},
	}
}

func TestWaitPipelineSucceeds(t *testing.T) {
	project := &pollingProject{states: []types.PipelineStatus{
		types.PipelineStatusPending,
		types.PipelineStatusRunning,
		types.PipelineStatusRunning,
		types.PipelineStatusSuccess,
	}}
	svc := newWaitService(project, time.Now)

	result, err := svc.WaitPipeline(context.Background(), WaitPipelineRequest{
		Project:    "group/sample",
		PipelineID: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, types.PipelineStatusSuccess, result.Status)
	assert.Equal(t, 3, project.polls)
}

func TestWaitPipelineFailureIsAnError(t *testing.T) {
	project := &pollingProject{states: []types.PipelineStatus{
		types.PipelineStatusRunning,
		types.PipelineStatusFailed,
	}}
	svc := newWaitService(project, time.Now)

	result, err := svc.WaitPipeline(context.Background(), WaitPipelineRequest{
		Project:    "group/sample",
		PipelineID: 7,
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), `status "failed"`)
	assert.Equal(t, types.PipelineStatusFailed, result.Status)
}

func TestWaitPipelineTimesOut(t *testing.T) {
	project := &pollingProject{states: []types.PipelineStatus{
		types.PipelineStatusRunning,
	}}
	// second clock reading is already past the two hour ceiling
	now := time.Now()
	readings := 0
	clock := func() time.Time {
		readings++
		if readings == 1 {
			return now
		}
		return now.Add(3 * time.Hour)
	}
	svc := newWaitService(project, clock)

	_, err := svc.WaitPipeline(context.Background(), WaitPipelineRequest{
		Project:    "group/sample",
		PipelineID: 7,
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeDeadlineExceeded, errbuilder.CodeOf(err))
}

func TestWaitPipelineCanceledState(t *testing.T) {
	project := &pollingProject{states: []types.PipelineStatus{
		types.PipelineStatusCanceled,
	}}
	svc := newWaitService(project, time.Now)

	_, err := svc.WaitPipeline(context.Background(), WaitPipelineRequest{
		Project:    "group/sample",
		PipelineID: 7,
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}
