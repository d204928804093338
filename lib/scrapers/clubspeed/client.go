package clubspeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"pgptimes-backend/lib/restyutil"
	"pgptimes-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// ErrPageUnavailable marks a heat page that could not be fetched or is
// obviously not a results page. Callers treat it as a skip, never as
// fatal to the run.
var ErrPageUnavailable = errors.New("page unavailable")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseUrl string
	// defaults to 30s
	Timeout time.Duration
	// transport-level retries; parsing code never retries on its own
	RetryCount int
	// minimum delay between successive fetches
	Politeness time.Duration
	// when set, every fetched page is dumped here for inspection
	DebugOutput restyutil.Output
}

type Client struct {
	BaseUrl    *url.URL
	Http       *resty.Client
	politeness time.Duration
	debug      restyutil.Output
}

func NewClient(opts ClientOptions) (*Client, error) {
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 30
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseUrl, "/"))
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("referer", opts.BaseUrl+"/sp_center/")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(timeout)
	client.SetRetryCount(opts.RetryCount)

	telemetry.InstrumentResty(client, "scrapers/clubspeed/http")

	return &Client{
		BaseUrl:    baseUrl,
		Http:       client,
		politeness: opts.Politeness,
		debug:      opts.DebugOutput,
	}, nil
}

func heatDetailsPath(heatNo int) string {
	return fmt.Sprintf("/sp_center/HeatDetails.aspx?HeatNo=%d", heatNo)
}

func racerHistoryPath(custId string) string {
	return "/sp_center/RacerHistory.aspx?CustID=" + url.QueryEscape(custId)
}

// FetchPage fetches one page and applies the politeness delay. A 4xx+
// status or an obviously empty/login page comes back wrapped in
// ErrPageUnavailable.
func (c *Client) FetchPage(ctx context.Context, ref string) (string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(ref)
	if err != nil {
		return "", err
	}
	if res.StatusCode() == 404 {
		return "", fmt.Errorf("%w: not found", ErrPageUnavailable)
	}
	if res.StatusCode() >= 400 {
		return "", fmt.Errorf("%w: status %d", ErrPageUnavailable, res.StatusCode())
	}

	body := res.String()
	if len(body) < 400 && !strings.Contains(body, "Heat") {
		return "", fmt.Errorf("%w: page too short", ErrPageUnavailable)
	}

	c.politeSleep()
	return body, nil
}

func (c *Client) politeSleep() {
	if c.politeness <= 0 {
		return
	}
	jitter := time.Duration(rand.Int63n(int64(time.Millisecond * 700)))
	time.Sleep(c.politeness + jitter)
}

func (c *Client) FetchHeatPage(ctx context.Context, heatNo int) (string, error) {
	html, err := c.FetchPage(ctx, heatDetailsPath(heatNo))
	if err != nil {
		return "", err
	}
	c.dump(fmt.Sprintf("%d_default.html", heatNo), html)
	return html, nil
}

// PageVariant is one raw rendition of the same heat page fetched with
// alternate query parameters.
type PageVariant struct {
	Tag  string
	HTML string
}

// FetchHeatVariants fetches the default, lap-times and print renditions
// of one heat page, in that fixed order. Variants that fail to fetch
// are simply absent from the result.
func (c *Client) FetchHeatVariants(ctx context.Context, heatNo int) []PageVariant {
	refs := []struct {
		tag string
		ref string
	}{
		{"default", heatDetailsPath(heatNo)},
		{"show", heatDetailsPath(heatNo) + "&ShowLapTimes=true"},
		{"print", fmt.Sprintf("/sp_center/HeatDetailsPrint.aspx?HeatNo=%d", heatNo)},
	}

	var variants []PageVariant
	for _, r := range refs {
		html, err := c.FetchPage(ctx, r.ref)
		if err != nil {
			slog.DebugContext(ctx, "variant fetch failed",
				"heat", heatNo, "variant", r.tag, "err", err)
			continue
		}
		c.dump(fmt.Sprintf("%d_%s.html", heatNo, r.tag), html)
		variants = append(variants, PageVariant{Tag: r.tag, HTML: html})
	}
	return variants
}

func (c *Client) FetchRacerHistory(ctx context.Context, custId string) (string, error) {
	return c.FetchPage(ctx, racerHistoryPath(custId))
}

// ResolveRef turns a relative href found on a heat page (usually a lap
// times popup link) into an absolute url.
func (c *Client) ResolveRef(href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base := *c.BaseUrl
	base.Path = "/sp_center/"
	return base.ResolveReference(ref).String()
}

func (c *Client) dump(id, contents string) {
	if c.debug == nil {
		return
	}
	c.debug.Write(id, contents)
}
