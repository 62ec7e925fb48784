package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kartoza/material-forecast/internal/forecast"
	"github.com/kartoza/material-forecast/internal/history"
	"github.com/kartoza/material-forecast/internal/predict"
)

// Predictor produces a forecast for a request
type Predictor interface {
	Predict(ctx context.Context, req forecast.Request) (*forecast.Result, error)
}

// Recorder stores submitted forecasts
type Recorder interface {
	Record(e *history.Entry) error
}

// Forecaster validates a request, calls the prediction service once and
// records the outcome. Both the HTML pages and the JSON API submit through it.
type Forecaster struct {
	predictor Predictor
	recorder  Recorder
}

// NewForecaster creates a Forecaster. recorder may be nil.
func NewForecaster(predictor Predictor, recorder Recorder) *Forecaster {
	return &Forecaster{predictor: predictor, recorder: recorder}
}

// Submit returns the result or one of two errors: a *forecast.ValidationError
// when the request is incomplete (the service is not called), or an error
// wrapping predict.ErrPredictionFailed.
func (f *Forecaster) Submit(ctx context.Context, req forecast.Request) (*forecast.Result, error) {
	if err := forecast.Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := f.predictor.Predict(ctx, req)
	elapsed := time.Since(start)

	entry := &history.Entry{
		CreatedAt:  start,
		Request:    req,
		Result:     res,
		DurationMS: elapsed.Milliseconds(),
	}
	if err != nil {
		log.Printf("Prediction failed after %v: %v", elapsed, err)
		entry.Result = nil
		entry.Error = predict.ErrPredictionFailed.Error()
		if !errors.Is(err, predict.ErrPredictionFailed) {
			err = fmt.Errorf("%w: %v", predict.ErrPredictionFailed, err)
		}
	}

	if f.recorder != nil {
		if rerr := f.recorder.Record(entry); rerr != nil {
			log.Printf("Warning: could not record forecast: %v", rerr)
		}
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}
