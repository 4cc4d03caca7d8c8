package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"titan-screener/internal/domain"
	"titan-screener/internal/infrastructure/fcm"
)

// GemNotifier pushes an FCM alert when a scan finds gems. A per-symbol
// cooldown keeps repeated scans from spamming the same signal.
type GemNotifier struct {
	fcmClient *fcm.Client
	tokens    domain.DeviceTokenRepository
	cooldown  time.Duration
	log       zerolog.Logger

	mu       sync.Mutex
	notified map[string]time.Time
}

func NewGemNotifier(fcmClient *fcm.Client, tokens domain.DeviceTokenRepository, cooldown time.Duration, log zerolog.Logger) *GemNotifier {
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	return &GemNotifier{
		fcmClient: fcmClient,
		tokens:    tokens,
		cooldown:  cooldown,
		log:       log,
		notified:  make(map[string]time.Time),
	}
}

// NotifyGems sends one alert per gem not currently in cooldown.
func (n *GemNotifier) NotifyGems(gems []domain.GemResult) {
	if n.fcmClient == nil || !n.fcmClient.IsEnabled() {
		return
	}
	tokens := n.tokens.GetAllTokens()
	if len(tokens) == 0 {
		return
	}

	now := time.Now()
	for _, gem := range gems {
		n.mu.Lock()
		last, seen := n.notified[gem.Symbol]
		n.mu.Unlock()
		if seen && now.Sub(last) < n.cooldown {
			continue
		}

		title := fmt.Sprintf("💎 %s - Titan BUY", gem.Symbol)
		body := fmt.Sprintf("Price: %.2f | RSI: %.0f | Volume: %.1fx avg | %s",
			gem.Price, gem.RSI, gem.VolumeX, gem.Structure)
		data := map[string]string{
			"symbol":  gem.Symbol,
			"price":   fmt.Sprintf("%.2f", gem.Price),
			"rsi":     fmt.Sprintf("%.0f", gem.RSI),
			"verdict": string(domain.VerdictBuy),
		}

		if err := n.fcmClient.SendMulticast(tokens, title, body, data); err != nil {
			n.log.Error().Str("symbol", gem.Symbol).Err(err).Msg("gem notification failed")
			continue
		}
		n.log.Info().Str("symbol", gem.Symbol).Int("devices", len(tokens)).Msg("gem notification sent")

		n.mu.Lock()
		n.notified[gem.Symbol] = now
		n.mu.Unlock()
	}

	// Drop entries long past the cooldown so the map does not grow with
	// the symbol universe.
	n.mu.Lock()
	for symbol, ts := range n.notified {
		if now.Sub(ts) > n.cooldown*2 {
			delete(n.notified, symbol)
		}
	}
	n.mu.Unlock()
}
