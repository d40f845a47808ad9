package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jwalitptl/hospital-dashboard/internal/repository"
)

// cityRepository reads the city list from a public source that is not the
// hospital backend. Give it its own Client so its failures trip a separate breaker.
type cityRepository struct {
	c   *Client
	url string
}

// NewCityRepository fetches the city list from sourceURL (absolute).
func NewCityRepository(c *Client, sourceURL string) repository.CityRepository {
	return &cityRepository{c: c, url: sourceURL}
}

func (r *cityRepository) List(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	if err := r.c.doURL(ctx, "cities", http.MethodGet, r.url, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch cities: %w", err)
	}

	var items []json.RawMessage
	if err := decodeList(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
				City string `json:"city"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				continue
			}
			name = obj.Name
			if name == "" {
				name = obj.City
			}
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
