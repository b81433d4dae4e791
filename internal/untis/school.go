package untis

import (
	"context"
	"fmt"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

type schoolSearchResult struct {
	Schools []struct {
		Server      string `json:"server"`
		LoginName   string `json:"loginName"`
		DisplayName string `json:"displayName"`
	} `json:"schools"`
}

// ResolveSchool looks a school up by name and returns the first match.
func (c *Client) ResolveSchool(ctx context.Context, name string) (*entity.School, error) {
	params := []map[string]string{{"search": name}}

	var result schoolSearchResult
	if _, err := c.call(ctx, c.schoolSearchURL, "searchSchool", params, "", &result); err != nil {
		return nil, fmt.Errorf("school search %q: %w", name, err)
	}
	if len(result.Schools) == 0 {
		return nil, fmt.Errorf("%w: %q", domain.ErrNoSchoolFound, name)
	}

	first := result.Schools[0]
	return &entity.School{LoginName: first.LoginName, Server: first.Server}, nil
}
