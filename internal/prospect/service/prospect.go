package service

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/prospect-finder/internal/pkg/errors"
	"github.com/lk2023060901/prospect-finder/internal/pkg/logger"
	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
	"github.com/lk2023060901/prospect-finder/internal/pkg/response"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

// Processor runs the pipeline for one location.
type Processor interface {
	Process(ctx context.Context, location, postcode string) (*biz.ProcessResult, error)
}

// ProspectService handles the process-location endpoint.
type ProspectService struct {
	uc     Processor
	logger *zap.Logger
}

func NewProspectService(uc Processor, logger *zap.Logger) *ProspectService {
	return &ProspectService{uc: uc, logger: logger}
}

// RegisterRoutes registers prospect routes
func (s *ProspectService) RegisterRoutes(r gin.IRouter) {
	r.POST("/process-location", s.ProcessLocation)
}

type ProcessLocationRequest struct {
	Location string `json:"location" binding:"required"`
	Postcode string `json:"postcode" binding:"required"`
}

type ProcessLocationResponse struct {
	Status          string                `json:"status"`
	ExecutionTime   float64               `json:"execution_time"`
	Data            []*biz.BusinessRecord `json:"data"`
	PersistFailures int                   `json:"persist_failures,omitempty"`
}

// ProcessLocation runs the full discovery pipeline synchronously.
func (s *ProspectService) ProcessLocation(c *gin.Context) {
	start := time.Now()

	var req ProcessLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RequestsTotal.WithLabelValues("invalid").Inc()
		response.BadRequest(c, err.Error())
		return
	}

	ctx := logger.WithTarget(c.Request.Context(), req.Location, req.Postcode)
	result, err := s.uc.Process(ctx, req.Location, req.Postcode)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("error").Inc()
		code := errorCode(err)
		fields := append(logger.Fields(ctx), zap.Int("code", code), zap.Error(err))
		if apperrors.IsServerError(code) {
			s.logger.Error("process location failed", fields...)
		} else {
			s.logger.Warn("process location rejected", fields...)
		}
		response.Fail(c, apperrors.Wrap(err, code))
		return
	}

	metrics.RequestsTotal.WithLabelValues("success").Inc()
	data := result.Records
	if data == nil {
		data = []*biz.BusinessRecord{}
	}
	response.Success(c, ProcessLocationResponse{
		Status:          response.StatusSuccess,
		ExecutionTime:   time.Since(start).Seconds(),
		Data:            data,
		PersistFailures: result.PersistFailures,
	})
}

func errorCode(err error) int {
	switch {
	case errors.Is(err, biz.ErrEmptyLocation):
		return apperrors.ErrInvalidParams
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.ErrTimeout
	case errors.Is(err, biz.ErrQueryGeneration):
		return apperrors.ErrQueryGeneration
	}
	return apperrors.ErrInternalServer
}

// Health reports liveness.
func Health(c *gin.Context) {
	response.Success(c, gin.H{"status": response.StatusHealthy})
}
