package data

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/prospect-finder/internal/conf"
	appdata "github.com/lk2023060901/prospect-finder/internal/data"
	"github.com/lk2023060901/prospect-finder/internal/pkg/metrics"
	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

var ErrRejected = errors.New("record rejected by sink")

// LogSink writes records to the log only.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Add(_ context.Context, collection string, rec *biz.BusinessRecord) (bool, error) {
	s.logger.Info("prospect",
		zap.String("collection", collection),
		zap.String("id", rec.ID),
		zap.String("business_name", rec.BusinessName),
		zap.String("address", rec.Address),
		zap.String("phone_number", rec.PhoneNumber),
		zap.String("email", rec.Email),
		zap.String("website_link", rec.WebsiteLink),
		zap.String("postcode", rec.Postcode),
		zap.String("internal_navigation_link", rec.InternalNavigationLink),
	)
	return true, nil
}

// instrumentedSink counts failures per driver.
type instrumentedSink struct {
	name string
	next biz.Sink
}

func (s *instrumentedSink) Add(ctx context.Context, collection string, rec *biz.BusinessRecord) (bool, error) {
	ok, err := s.next.Add(ctx, collection, rec)
	if err != nil || !ok {
		metrics.PersistFailures.WithLabelValues(s.name).Inc()
	}
	return ok, err
}

// MultiSink writes to every member and succeeds only if all of them do.
type MultiSink struct {
	sinks []biz.Sink
}

func NewMultiSink(sinks ...biz.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Add(ctx context.Context, collection string, rec *biz.BusinessRecord) (bool, error) {
	var errs []error
	for _, s := range m.sinks {
		ok, err := s.Add(ctx, collection, rec)
		switch {
		case err != nil:
			errs = append(errs, err)
		case !ok:
			errs = append(errs, ErrRejected)
		}
	}
	if len(errs) > 0 {
		return false, errors.Join(errs...)
	}
	return true, nil
}

// NewSink builds the sink selected by sink.driver from the opened stores.
func NewSink(d *appdata.Data, config *conf.Config, logger *zap.Logger) (biz.Sink, error) {
	members := config.Sink.Members()
	sinks := make([]biz.Sink, 0, len(members))
	for _, name := range members {
		s, err := newDriver(name, d, config, logger)
		if err != nil {
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		sinks = append(sinks, &instrumentedSink{name: name, next: s})
	}
	if len(sinks) == 0 {
		return nil, errors.New("no sink configured")
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}

func newDriver(name string, d *appdata.Data, config *conf.Config, logger *zap.Logger) (biz.Sink, error) {
	switch name {
	case "log":
		return NewLogSink(logger), nil
	case "postgres":
		return NewPostgresSink(d.DB)
	case "elasticsearch":
		return NewElasticsearchSink(d.Elasticsearch, config.Elasticsearch.IndexPrefix)
	}
	return nil, fmt.Errorf("unknown driver %q", name)
}
