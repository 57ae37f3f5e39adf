package api

import (
	"net/http"
	"time"

	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// PriceStreamHandler pushes the live price of a ticker over a websocket on
// a fixed interval. Pushes go through the same cached read path as the REST
// endpoint, so many subscribers of one ticker cost a single upstream fetch
// per TTL window.
type PriceStreamHandler struct {
	logger   *xlogger.Logger
	quotes   *usecase.QuoteService
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewPriceStreamHandler(logger *xlogger.Logger, quotes *usecase.QuoteService, interval time.Duration) *PriceStreamHandler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PriceStreamHandler{
		logger:   logger,
		quotes:   quotes,
		interval: interval,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			// browser clients connect cross-origin from the dashboard
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream upgrades the connection and pushes the current price until the
// client disconnects.
func (h *PriceStreamHandler) Stream(c echo.Context) error {
	ticker := util.NormalizeTicker(c.Param("ticker"))
	if ticker == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ticker is required"))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			xlogger.String("ticker", ticker), xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	h.logger.Debug("price stream opened", xlogger.String("ticker", ticker))

	ctx := c.Request().Context()

	// reader goroutine drains control frames and signals disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() bool {
		p, err := h.quotes.LivePrice(ctx, ticker)
		if err != nil {
			h.logger.Warn("price stream fetch failed",
				xlogger.String("ticker", ticker), xlogger.Error(err))
			return true
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(p); err != nil {
			return false
		}
		return true
	}

	if !push() {
		return nil
	}

	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			h.logger.Debug("price stream closed", xlogger.String("ticker", ticker))
			return nil
		case <-t.C:
			if !push() {
				return nil
			}
		}
	}
}
