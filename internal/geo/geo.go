package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mathmotion/internal/cache"
	"mathmotion/internal/pricing"
)

// detectTimeout bounds the geolocation lookup; past it the locale guess wins.
const detectTimeout = 2 * time.Second

const cacheTTL = 24 * time.Hour

// Detector resolves a request's display currency from its IP, with an
// Accept-Language fallback and a Redis cache.
type Detector struct {
	apiURL string
	client *http.Client
	cache  *cache.Redis
	logger *slog.Logger
}

func New(apiURL string, redisCache *cache.Redis, logger *slog.Logger) *Detector {
	return &Detector{
		apiURL: strings.TrimSuffix(apiURL, "/"),
		client: &http.Client{Timeout: detectTimeout},
		cache:  redisCache,
		logger: logger.With("component", "geo"),
	}
}

// Detect returns the currency for the caller. An explicit override wins;
// otherwise the cached or freshly looked-up country decides, and on lookup
// failure the Accept-Language header decides.
func (d *Detector) Detect(ctx context.Context, ip, acceptLanguage, override string) pricing.Currency {
	if cur := pricing.Currency(strings.ToUpper(override)); pricing.ValidCurrency(cur) {
		return cur
	}

	key := "geo:currency:" + ip
	if d.cache != nil {
		var cached string
		if ok, err := d.cache.GetJSON(ctx, key, &cached); err == nil && ok {
			if cur := pricing.Currency(cached); pricing.ValidCurrency(cur) {
				return cur
			}
		}
	}

	cur, err := d.lookup(ctx, ip)
	if err != nil {
		d.logger.Debug("geolocation lookup failed, using locale fallback", "ip", ip, "error", err)
		return CurrencyFromLocale(acceptLanguage)
	}

	if d.cache != nil {
		if err := d.cache.SetJSON(ctx, key, string(cur), cacheTTL); err != nil {
			d.logger.Debug("currency cache write failed", "error", err)
		}
	}
	return cur
}

func (d *Detector) lookup(ctx context.Context, ip string) (pricing.Currency, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s/json/", d.apiURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geolocation status %d", resp.StatusCode)
	}

	var body struct {
		CountryCode string `json:"country_code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	if strings.EqualFold(body.CountryCode, "IN") {
		return pricing.INR, nil
	}
	return pricing.USD, nil
}

// CurrencyFromLocale guesses the currency from an Accept-Language header:
// an Indian region or Hindi language tag maps to INR, everything else to USD.
func CurrencyFromLocale(header string) pricing.Currency {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(tag)
		if tag == "" {
			continue
		}
		if strings.HasSuffix(tag, "-in") || tag == "hi" || strings.HasPrefix(tag, "hi-") {
			return pricing.INR
		}
	}
	return pricing.USD
}
