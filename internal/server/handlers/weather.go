package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/nimbus/internal/dispatcher"
	"github.com/vzahanych/nimbus/internal/server/utils"
	"go.uber.org/zap"
)

// Lookup runs the city lookup chain.
type Lookup interface {
	Submit(ctx context.Context, cityText string) dispatcher.Result
}

type WeatherHandler struct {
	lookups Lookup
	weather dispatcher.WeatherResolver
	logger  *zap.Logger
}

func NewWeatherHandler(lookups Lookup, weather dispatcher.WeatherResolver, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		lookups: lookups,
		weather: weather,
		logger:  logger,
	}
}

// GetWeather handles GET /weather?city=.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.RequestLogger(c, h.logger)

	var req CityWeatherRequest
	if !h.bind(c, reqLogger, &req) {
		return
	}

	reqLogger.Info("Processing city weather request", zap.String("city", req.City))

	res := h.lookups.Submit(ctx, req.City)
	if !res.OK() {
		status, code := failureStatus(res.Failure.Kind)
		reqLogger.Warn("City weather lookup failed",
			zap.String("kind", string(res.Failure.Kind)),
			zap.String("reason", res.Failure.Reason))
		c.JSON(status, ErrorResponse{
			Error:   res.Failure.Reason,
			Code:    code,
			Details: string(res.Failure.Kind),
		})
		return
	}

	c.JSON(http.StatusOK, CityWeatherResponse{
		Query:    res.Query,
		Location: *res.Location,
		Weather:  *res.Weather,
	})
}

// GetWeatherByCoordinates handles GET /weather/coordinates?lat=&lon=,
// skipping the geocoding stage.
func (h *WeatherHandler) GetWeatherByCoordinates(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.RequestLogger(c, h.logger)

	var req CoordinatesRequest
	if !h.bind(c, reqLogger, &req) {
		return
	}

	reqLogger.Info("Processing coordinates weather request",
		zap.Float64("lat", *req.Lat),
		zap.Float64("lon", *req.Lon))

	rec := h.weather.Resolve(ctx, req.Lat, req.Lon)
	if !rec.Usable() {
		reqLogger.Warn("Coordinates weather lookup failed", zap.String("reason", rec.ErrorReason))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: rec.ErrorReason,
			Code:  CodeWeatherProvider,
		})
		return
	}

	c.JSON(http.StatusOK, CoordinatesWeatherResponse{
		Lat:     *req.Lat,
		Lon:     *req.Lon,
		Weather: rec,
	})
}

func (h *WeatherHandler) bind(c *gin.Context, reqLogger *zap.Logger, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    CodeInvalidParams,
			Details: err.Error(),
		})
		return false
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		reqLogger.Warn("Request validation failed", zap.Any("errors", errs))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    CodeInvalidParams,
			Details: utils.Summary(errs),
		})
		return false
	}

	return true
}

func failureStatus(kind dispatcher.FailureKind) (int, string) {
	switch kind {
	case dispatcher.KindInput:
		return http.StatusBadRequest, CodeInvalidInput
	case dispatcher.KindLocationNotFound:
		return http.StatusNotFound, CodeLocationNotFound
	case dispatcher.KindLocationFieldMissing:
		return http.StatusBadGateway, CodeLocationIncomplete
	case dispatcher.KindWeatherProvider:
		return http.StatusBadGateway, CodeWeatherProvider
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}
