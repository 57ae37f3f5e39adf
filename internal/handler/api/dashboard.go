package api

import (
	"errors"

	"StockPulse/internal/domain/models"
	"StockPulse/internal/usecase"
	xhttp "StockPulse/pkg/http"
	xlogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// UserResolver extracts the caller identity from a request. Authentication
// itself lives in front of this service; the default resolver trusts the
// X-User-ID header set by the gateway.
type UserResolver func(c echo.Context) (string, error)

// HeaderUserResolver resolves the user from the X-User-ID header.
func HeaderUserResolver(c echo.Context) (string, error) {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return "", errors.New("missing X-User-ID header")
	}
	return userID, nil
}

// DashboardHandler implements Echo-based HTTP handlers following Clean Architecture.
type DashboardHandler struct {
	logger    *xlogger.Logger
	quotes    *usecase.QuoteService
	timeline  *usecase.Synthesizer
	watchlist *usecase.WatchlistService
	auditor   *usecase.Auditor
	search    *usecase.SearchService
	stream    *PriceStreamHandler
	resolve   UserResolver
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	quotes *usecase.QuoteService,
	timeline *usecase.Synthesizer,
	watchlist *usecase.WatchlistService,
	auditor *usecase.Auditor,
	search *usecase.SearchService,
	stream *PriceStreamHandler,
) *DashboardHandler {
	return &DashboardHandler{
		logger:    logger,
		quotes:    quotes,
		timeline:  timeline,
		watchlist: watchlist,
		auditor:   auditor,
		search:    search,
		stream:    stream,
		resolve:   HeaderUserResolver,
	}
}

// SetUserResolver overrides the default header-based identity resolver.
func (h *DashboardHandler) SetUserResolver(r UserResolver) { h.resolve = r }

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	stocks := e.Group("/api/stocks")
	stocks.GET("/price/:ticker", h.Price)
	stocks.GET("/unified/:ticker", h.Unified)
	stocks.GET("/forecast/:ticker", h.Forecast)

	e.GET("/api/market/trending", h.Trending)
	e.GET("/api/search", h.Search)
	e.GET("/api/audit", h.Audit)

	wl := e.Group("/api/watchlist")
	wl.POST("/toggle", h.ToggleWatchlist)
	wl.GET("", h.Watchlist)
	wl.GET("/details", h.WatchlistDetails)

	if h.stream != nil {
		e.GET("/ws/price/:ticker", h.stream.Stream)
	}
}

// Price serves the current quote for a ticker, cached or live.
func (h *DashboardHandler) Price(c echo.Context) error {
	ticker := util.NormalizeTicker(c.Param("ticker"))
	if ticker == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ticker is required"))
	}

	p, err := h.quotes.LivePrice(c.Request().Context(), ticker)
	if err != nil {
		if errors.Is(err, models.ErrNoData) || errors.Is(err, models.ErrUpstream) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no price data for %s", ticker).WithError(err))
		}
		h.logger.Error("price usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, p)
}

// Unified serves the stitched history+forecast timeline. An empty synthesis
// means there is nothing to chart, which surfaces as 404, not 5xx.
func (h *DashboardHandler) Unified(c echo.Context) error {
	ticker := util.NormalizeTicker(c.Param("ticker"))
	if ticker == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ticker is required"))
	}

	pts, err := h.timeline.Unified(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("unified usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(pts) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no timeline data for %s", ticker))
	}
	return xhttp.SuccessResponse(c, pts)
}

type forecastPayload struct {
	Ticker     string                   `json:"ticker"`
	Forecast   []float64                `json:"forecast"`
	Prediction *models.PredictionRecord `json:"prediction,omitempty"`
}

// Forecast serves the raw model forecast and records the pending prediction
// it implies.
func (h *DashboardHandler) Forecast(c echo.Context) error {
	ticker := util.NormalizeTicker(c.Param("ticker"))
	if ticker == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("ticker is required"))
	}

	series, rec, err := h.timeline.Forecast(c.Request().Context(), ticker)
	if err != nil {
		h.logger.Error("forecast usecase error", xlogger.String("ticker", ticker), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if len(series) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no forecast for %s", ticker))
	}

	payload := forecastPayload{Ticker: ticker, Forecast: series}
	if rec.ID != 0 {
		payload.Prediction = &rec
	}
	return xhttp.SuccessResponse(c, payload)
}

// Trending serves the trending symbols enriched with live quotes.
func (h *DashboardHandler) Trending(c echo.Context) error {
	out, err := h.quotes.Trending(c.Request().Context())
	if err != nil {
		if errors.Is(err, models.ErrUpstream) || errors.Is(err, models.ErrNoData) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("trending data unavailable").WithError(err))
		}
		h.logger.Error("trending usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, out)
}

// Search serves symbol lookups; short queries fall back to the gainers feed.
func (h *DashboardHandler) Search(c echo.Context) error {
	res, err := h.search.Search(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		h.logger.Error("search usecase error",
			xlogger.String("query", c.QueryParam("query")), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Audit serves the recent audit log and global accuracy.
func (h *DashboardHandler) Audit(c echo.Context) error {
	summary, err := h.auditor.Summary(c.Request().Context())
	if err != nil {
		h.logger.Error("audit summary error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, summary)
}

// ToggleWatchlist adds or removes a ticker from the caller's watchlist.
func (h *DashboardHandler) ToggleWatchlist(c echo.Context) error {
	userID, err := h.resolve(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	req := &models.ToggleWatchlistRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.watchlist.Toggle(c.Request().Context(), userID, req.Symbol)
	if err != nil {
		h.logger.Error("watchlist toggle error",
			xlogger.String("user", userID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Watchlist serves the caller's raw ticker list.
func (h *DashboardHandler) Watchlist(c echo.Context) error {
	userID, err := h.resolve(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	list, err := h.watchlist.List(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("watchlist list error",
			xlogger.String("user", userID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, list)
}

// WatchlistDetails serves the caller's watchlist enriched with quotes and
// sparklines.
func (h *DashboardHandler) WatchlistDetails(c echo.Context) error {
	userID, err := h.resolve(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	out, err := h.watchlist.Details(c.Request().Context(), userID)
	if err != nil {
		h.logger.Error("watchlist details error",
			xlogger.String("user", userID), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, out)
}
