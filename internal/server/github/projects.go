package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// projectPageSize bounds name-based lookups to one page of boards.
const projectPageSize = 50

// ProjectRef is a human-given project reference: an owner plus either
// a board number or an exact title.
type ProjectRef struct {
	Owner  string
	Name   string
	Number int
}

// Configured reports whether the reference selects a board at all.
func (r ProjectRef) Configured() bool {
	return r.Owner != "" && (r.Name != "" || r.Number > 0)
}

// Project is a resolved Projects v2 board.
type Project struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Number int    `json:"number"`
}

// ResolveProject maps a ProjectRef to a board. Numbers are looked up
// under the organization scope first, then the user scope; names are
// matched case-sensitively against the first page of boards in the
// same scope order. Returns (nil, nil) when nothing matches or a
// lookup fails: resolution degrades to no attachment, it never aborts
// issue creation.
func (c *Client) ResolveProject(ctx context.Context, ref ProjectRef) (*Project, error) {
	if !ref.Configured() {
		return nil, nil
	}

	for _, scope := range []string{"organization", "user"} {
		var (
			project *Project
			err     error
		)
		if ref.Number > 0 {
			project, err = c.projectByNumber(ctx, scope, ref.Owner, ref.Number)
		} else {
			project, err = c.projectByName(ctx, scope, ref.Owner, ref.Name)
		}
		if err != nil {
			c.log.Debug().Err(err).Str("scope", scope).Str("owner", ref.Owner).Msg("project lookup failed")
			continue
		}
		if project != nil {
			return project, nil
		}
	}

	return nil, nil
}

// AttachIssue adds a created issue to a board via addProjectV2ItemById.
func (c *Client) AttachIssue(ctx context.Context, projectID, contentID string) error {
	const mutation = `
		mutation($project: ID!, $content: ID!) {
			addProjectV2ItemById(input: {projectId: $project, contentId: $content}) {
				item { id }
			}
		}`

	var result struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string `json:"id"`
			} `json:"item"`
		} `json:"addProjectV2ItemById"`
	}

	if err := c.graphql(ctx, mutation, map[string]any{
		"project": projectID,
		"content": contentID,
	}, &result); err != nil {
		return err
	}

	if result.AddProjectV2ItemByID.Item.ID == "" {
		return fmt.Errorf("github: attach returned no item")
	}

	return nil
}

func (c *Client) projectByNumber(ctx context.Context, scope, owner string, number int) (*Project, error) {
	query := fmt.Sprintf(`
		query($login: String!, $number: Int!) {
			%s(login: $login) {
				projectV2(number: $number) { id title number }
			}
		}`, scope)

	var result map[string]struct {
		ProjectV2 *Project `json:"projectV2"`
	}

	if err := c.graphql(ctx, query, map[string]any{"login": owner, "number": number}, &result); err != nil {
		return nil, err
	}

	if ownerNode, ok := result[scope]; ok && ownerNode.ProjectV2 != nil {
		return ownerNode.ProjectV2, nil
	}

	return nil, nil
}

func (c *Client) projectByName(ctx context.Context, scope, owner, name string) (*Project, error) {
	query := fmt.Sprintf(`
		query($login: String!, $first: Int!) {
			%s(login: $login) {
				projectsV2(first: $first) {
					nodes { id title number }
				}
			}
		}`, scope)

	var result map[string]struct {
		ProjectsV2 struct {
			Nodes []Project `json:"nodes"`
		} `json:"projectsV2"`
	}

	if err := c.graphql(ctx, query, map[string]any{"login": owner, "first": projectPageSize}, &result); err != nil {
		return nil, err
	}

	if ownerNode, ok := result[scope]; ok {
		for _, p := range ownerNode.ProjectsV2.Nodes {
			if p.Title == name {
				project := p
				return &project, nil
			}
		}
	}

	return nil, nil
}

// graphql posts one query and decodes the data payload into dest.
// GraphQL-level errors surface as a single error.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]any, dest any) error {
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request: %w", err)
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		return fmt.Errorf("github graphql: %s", envelope.Errors[0].Message)
	}

	if dest != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, dest); err != nil {
			return fmt.Errorf("decode graphql data: %w", err)
		}
	}

	return nil
}
