package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"commander-league/internal/config"
	"commander-league/internal/constants"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

type ScryfallClient struct {
	baseURL     string
	client      *fasthttp.Client
	rateLimiter *rate.Limiter
}

// APIError is any non-200 answer from Scryfall.
type APIError struct {
	Status  int
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall API error: %d: %s", e.Status, e.Details)
	}
	return fmt.Sprintf("scryfall API error: %d", e.Status)
}

func NewScryfallClient(cfg *config.Config) *ScryfallClient {
	return &ScryfallClient{
		baseURL: strings.TrimRight(cfg.ScryfallBaseURL, "/"),
		client: &fasthttp.Client{
			Name:                constants.ScryfallUserAgent,
			MaxConnsPerHost:     constants.CommanderLookupLimit,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimiter: rate.NewLimiter(rate.Every(constants.ScryfallRequestInterval), 1),
	}
}

// NamedFuzzy looks a card up by approximate name.
func (c *ScryfallClient) NamedFuzzy(ctx context.Context, name string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/named?fuzzy=%s", c.baseURL, url.QueryEscape(name))
	card, err := doRequest[Card](ctx, c, u)
	if err != nil {
		return nil, fmt.Errorf("failed to look up card %q: %w", name, err)
	}
	return card, nil
}

func doRequest[T any](ctx context.Context, client *ScryfallClient, url string) (*T, error) {
	if err := client.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode()}
		var body errorBody
		if json.Unmarshal(resp.Body(), &body) == nil {
			apiErr.Details = body.Details
		}
		return nil, apiErr
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type errorBody struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Details string `json:"details"`
}

type Card struct {
	Name      string     `json:"name"`
	Colors    []string   `json:"colors"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

type CardFace struct {
	Name      string     `json:"name"`
	Colors    []string   `json:"colors"`
	ImageURIs *ImageURIs `json:"image_uris,omitempty"`
}

type ImageURIs struct {
	Small   string `json:"small"`
	Normal  string `json:"normal"`
	Large   string `json:"large"`
	ArtCrop string `json:"art_crop"`
}
