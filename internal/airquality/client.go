package airquality

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/kabar-api/kabar-api/internal/config"
	"github.com/kabar-api/kabar-api/internal/upstream"
)

var ErrBadPayload = errors.New("aqms payload has no features")

// Feature is one station in the AQMS FeatureCollection.
type Feature struct {
	Properties Properties `json:"properties"`
	Geometry   struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
}

type Properties struct {
	Alamat   string     `json:"alamat"`
	Kota     string     `json:"kota"`
	Provinsi string     `json:"provinsi"`
	Nilai    NullNumber `json:"nilai"`
	Cat      string     `json:"cat"`
	Waktu    string     `json:"waktu"`
}

// NullNumber accepts a JSON number, a numeric string, or null.
type NullNumber struct {
	Value float64
	Valid bool
}

func (n *NullNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = NullNumber{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" || s == "-" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		n.Value, n.Valid = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	n.Value, n.Valid = v, true
	return nil
}

type featureCollection struct {
	Features []Feature `json:"features"`
}

// Client fetches the SiPongi AQMS feed.
type Client struct {
	up       *upstream.Client
	endpoint string
}

func NewClient(cfg config.AirQualityConfig) *Client {
	return &Client{
		up:       upstream.New("aqms", upstream.Options{Timeout: cfg.Timeout}),
		endpoint: cfg.Endpoint,
	}
}

// DecodeFeatures parses an AQMS body.
func DecodeFeatures(body []byte) ([]Feature, error) {
	var fc featureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("decode aqms: %w", err)
	}
	if fc.Features == nil {
		return nil, ErrBadPayload
	}
	return fc.Features, nil
}

func (c *Client) Fetch(ctx context.Context) ([]Feature, error) {
	body, err := c.up.Get(ctx, c.endpoint, "application/json")
	if err != nil {
		return nil, err
	}
	return DecodeFeatures(body)
}
