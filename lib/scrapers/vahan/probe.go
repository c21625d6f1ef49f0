package vahan

import (
	"context"
	"fmt"
	"strings"
	"time"
	"vahanpulse-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Probe checks portal reachability over plain HTTP before a browser
// session is spun up. Launching chromium just to learn the portal is
// down wastes half a minute per sweep, so the probe runs first.
type Probe struct {
	client  *resty.Client
	baseURL string
}

func NewProbe(baseURL string) *Probe {
	if baseURL == "" {
		baseURL = DefaultPortalURL
	}
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml")
	// The portal sits behind Cloudflare and rejects default Go
	// user agents outright.
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	telemetry.InstrumentResty(client, "vahanpulse.lib.scrapers.vahan.probe")
	return &Probe{client: client, baseURL: baseURL}
}

// Check fetches the dashboard page and verifies it still looks like
// the JSF report view this package knows how to drive. A non-200
// response or missing widget markup means scraping would fail anyway.
func (p *Probe) Check(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "vahan.Probe.Check")
	defer span.End()

	res, err := p.client.R().SetContext(ctx).Get(p.baseURL)
	if err != nil {
		return fmt.Errorf("portal unreachable: %w", err)
	}
	if res.StatusCode() != 200 {
		return fmt.Errorf("portal returned status %d", res.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(res.String()))
	if err != nil {
		return fmt.Errorf("parse portal response: %w", err)
	}
	if doc.Find("form").Length() == 0 {
		return fmt.Errorf("portal response has no form, likely an interstitial page")
	}
	if doc.Find("div.ui-selectonemenu").Length() == 0 && doc.Find("select").Length() == 0 {
		return fmt.Errorf("dashboard widgets not found, markup may have drifted")
	}
	return nil
}
