package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"gitlab-devtools/internal/ports"
	"gitlab-devtools/internal/shared"
	"gitlab-devtools/internal/types"
)

// GitLabAdapter talks to the GitLab v4 REST API over plain HTTP. Reads are
// retried with capped exponential backoff on transient failures; writes
// (commits, tags, cancellations) are attempted exactly once.
type GitLabAdapter struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

const defaultGitLabTimeout = 60 * time.Second
const defaultGitLabRetries = 3
const defaultGitLabRetryDelay = 200 * time.Millisecond
const maxGitLabRetryDelay = 2 * time.Second

func NewGitLabAdapter(baseURL string, token string, timeoutSec int, retries int, retryDelayMs int) GitLabAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultGitLabTimeout
	}
	if retries <= 0 {
		retries = defaultGitLabRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultGitLabRetryDelay
	}
	return GitLabAdapter{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Token:      strings.TrimSpace(token),
		Timeout:    timeout,
		Retries:    retries,
		RetryDelay: retryDelay,
	}
}

func (a GitLabAdapter) GetProject(ctx context.Context, project string) (types.Project, error) {
	var payload struct {
		ID                int    `json:"id"`
		PathWithNamespace string `json:"path_with_namespace"`
		DefaultBranch     string `json:"default_branch"`
	}
	if err := a.getJSON(ctx, a.projectURL(project, ""), &payload); err != nil {
		return types.Project{}, err
	}
	return types.Project{
		ID:                payload.ID,
		PathWithNamespace: payload.PathWithNamespace,
		DefaultBranch:     payload.DefaultBranch,
	}, nil
}

func (a GitLabAdapter) GetRawFile(ctx context.Context, project string, path string, ref string) ([]byte, error) {
	endpoint := a.projectURL(project, "/repository/files/"+url.PathEscape(path)+"/raw")
	endpoint += "?ref=" + url.QueryEscape(ref)
	return a.getBody(ctx, endpoint)
}

func (a GitLabAdapter) CommitFiles(ctx context.Context, project string, branch string, message string, files []types.FileUpdate) (types.Commit, error) {
	type commitAction struct {
		Action   string `json:"action"`
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	actions := make([]commitAction, 0, len(files))
	for _, file := range files {
		actions = append(actions, commitAction{
			Action:   "update",
			FilePath: file.Path,
			Content:  file.Content,
		})
	}
	body := map[string]interface{}{
		"branch":         branch,
		"commit_message": message,
		"actions":        actions,
	}
	var payload struct {
		ID      string `json:"id"`
		ShortID string `json:"short_id"`
	}
	if err := a.postJSON(ctx, a.projectURL(project, "/repository/commits"), body, &payload); err != nil {
		return types.Commit{}, err
	}
	log.Debug().
		Str("project", project).
		Str("branch", branch).
		Str("commit", payload.ShortID).
		Msg("created commit")
	return types.Commit{ID: payload.ID, ShortID: payload.ShortID}, nil
}

func (a GitLabAdapter) ListReleaseTags(ctx context.Context, project string) ([]types.ReleaseTag, error) {
	var payload []struct {
		Name    string `json:"name"`
		TagName string `json:"tag_name"`
	}
	if err := a.getJSON(ctx, a.projectURL(project, "/releases"), &payload); err != nil {
		return nil, err
	}
	tags := make([]types.ReleaseTag, 0, len(payload))
	for _, entry := range payload {
		tags = append(tags, types.ReleaseTag{Name: entry.Name, TagName: entry.TagName})
	}
	return tags, nil
}

func (a GitLabAdapter) CreateReleaseTag(ctx context.Context, project string, tag types.ReleaseTag) error {
	body := map[string]interface{}{
		"name":     tag.Name,
		"tag_name": tag.TagName,
		"ref":      tag.Ref,
	}
	if strings.TrimSpace(tag.Description) != "" {
		body["description"] = tag.Description
	}
	return a.postJSON(ctx, a.projectURL(project, "/releases"), body, nil)
}

func (a GitLabAdapter) LastPipeline(ctx context.Context, project string) (types.Pipeline, error) {
	var payload []gitlabPipeline
	if err := a.getJSON(ctx, a.projectURL(project, "/pipelines")+"?per_page=1&page=1", &payload); err != nil {
		return types.Pipeline{}, err
	}
	if len(payload) == 0 {
		return types.Pipeline{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("no pipelines found for project %q", project))
	}
	return payload[0].toPipeline(), nil
}

func (a GitLabAdapter) GetPipeline(ctx context.Context, project string, pipelineID int) (types.Pipeline, error) {
	var payload gitlabPipeline
	endpoint := a.projectURL(project, fmt.Sprintf("/pipelines/%d", pipelineID))
	if err := a.getJSON(ctx, endpoint, &payload); err != nil {
		return types.Pipeline{}, err
	}
	return payload.toPipeline(), nil
}

func (a GitLabAdapter) CancelPipeline(ctx context.Context, project string, pipelineID int) error {
	endpoint := a.projectURL(project, fmt.Sprintf("/pipelines/%d/cancel", pipelineID))
	return a.postJSON(ctx, endpoint, map[string]interface{}{}, nil)
}

type gitlabPipeline struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
	Ref    string `json:"ref"`
	WebURL string `json:"web_url"`
}

func (p gitlabPipeline) toPipeline() types.Pipeline {
	return types.Pipeline{
		ID:     p.ID,
		Status: types.PipelineStatus(p.Status),
		Ref:    p.Ref,
		WebURL: p.WebURL,
	}
}

func (a GitLabAdapter) projectURL(project string, suffix string) string {
	return fmt.Sprintf("%s/api/v4/projects/%s%s", a.BaseURL, url.PathEscape(project), suffix)
}

func (a GitLabAdapter) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	body, err := a.getBody(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse gitlab response").
			WithCause(err)
	}
	return nil
}

func (a GitLabAdapter) getBody(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		body, retry, err := a.getBodyOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry || attempt == a.Retries-1 {
			return nil, err
		}
		time.Sleep(a.retryDelay(attempt))
	}
	return nil, lastErr
}

func (a GitLabAdapter) getBodyOnce(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create gitlab request").
			WithCause(err)
	}
	a.applyAuth(req)
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("gitlab request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, false, nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("gitlab resource not found: %s", endpoint))
	}
	retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
	return nil, retry, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("gitlab request failed").
		WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, endpoint, string(body)))
}

func (a GitLabAdapter) postJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode gitlab request").
			WithCause(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create gitlab request").
			WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	a.applyAuth(req)
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("gitlab request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("gitlab request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, endpoint, string(respBody)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse gitlab response").
			WithCause(err)
	}
	return nil
}

func (a GitLabAdapter) applyAuth(req *http.Request) {
	if a.Token != "" {
		req.Header.Set("PRIVATE-TOKEN", a.Token)
	}
}

func (a GitLabAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxGitLabRetryDelay {
		delay = maxGitLabRetryDelay
	}
	return delay
}

var _ ports.ProjectPort = GitLabAdapter{}
